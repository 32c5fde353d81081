package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nuclibook/nuclibook/internal/platform/db"
)

// Logger attaches a request-scoped logger to the request context, so code
// further down can use zerolog.Ctx(ctx), and writes one access line per request.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			reqLogger := logger.With().Str("request_id", rid).Logger()
			c.SetRequest(req.WithContext(reqLogger.WithContext(req.Context())))

			err := next(c)

			status := c.Response().Status
			evt := reqLogger.Info()
			if err != nil {
				// The error handler has not written the response yet, so
				// derive the status the client will see.
				status = db.HTTPError(err).Code
				evt = reqLogger.Error().Err(err)
				if status < 500 {
					evt = reqLogger.Warn().Err(err)
				}
			}

			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
