package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const StaffIDKey contextKey = "staff_id"

// StaffHeader carries the id of the staff member acting on the request.
// Authentication happens in front of this service; the header is trusted.
const StaffHeader = "X-Staff-ID"

// StaffActor resolves the acting staff member from StaffHeader. Requests
// without the header pass through anonymously; a malformed header is a 400.
func StaffActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsPublicPath(c.Path()) {
				return next(c)
			}
			raw := strings.TrimSpace(c.Request().Header.Get(StaffHeader))
			if raw == "" {
				return next(c)
			}
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid "+StaffHeader+" header")
			}

			c.Set("staff_id", id)
			c.SetRequest(c.Request().WithContext(WithStaffID(c.Request().Context(), id)))
			return next(c)
		}
	}
}

// WithStaffID returns a copy of ctx carrying the acting staff id.
func WithStaffID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, StaffIDKey, id)
}

// StaffIDFromContext returns the acting staff id, if any.
func StaffIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(StaffIDKey).(int)
	return id, ok && id > 0
}
