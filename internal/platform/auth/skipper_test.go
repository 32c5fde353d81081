package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestSkipper_PublicPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
			c.SetPath(path)

			if !Skipper(c) {
				t.Errorf("expected Skipper to return true for %s", path)
			}
		})
	}
}

func TestSkipper_ProtectedPaths(t *testing.T) {
	protectedPaths := []string{
		"/api/v1/therapies",
		"/api/v1/therapies/:id",
		"/api/v1/action-log",
		"/",
		"/health/extra",
	}

	for _, path := range protectedPaths {
		t.Run(path, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
			c.SetPath(path)

			if Skipper(c) {
				t.Errorf("expected Skipper to return false for %s", path)
			}
			if IsPublicPath(path) {
				t.Errorf("expected IsPublicPath to return false for %s", path)
			}
		})
	}
}
