package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireStaff rejects requests that carry no acting staff member. Mutating
// routes sit behind it because every change is written to the action log.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := StaffIDFromContext(c.Request().Context()); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing "+StaffHeader+" header")
			}
			return next(c)
		}
	}
}
