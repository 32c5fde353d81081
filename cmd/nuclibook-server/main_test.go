package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nuclibook/nuclibook/internal/config"
	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/internal/platform/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:        "8000",
		Env:         "test",
		DBSchema:    "nuclibook",
		CORSOrigins: []string{"http://localhost:3000"},
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()
	for _, path := range [][]string{{"serve"}, {"migrate", "up"}, {"migrate", "status"}} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("expected subcommand %v, got %v (%v)", path, cmd, err)
		}
	}
}

func TestMigrateCmd_Flags(t *testing.T) {
	up, _, _ := rootCmd().Find([]string{"migrate", "up"})
	for _, name := range []string{"schema", "dir"} {
		if up.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag on migrate up", name)
		}
	}
}

func TestNewRateLimiter_InMemory(t *testing.T) {
	mw, closeFn, err := newRateLimiter(testConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mw == nil {
		t.Fatal("expected middleware")
	}
	if err := closeFn(); err != nil {
		t.Errorf("expected no-op close, got %v", err)
	}
}

func TestNewRateLimiter_InvalidRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "not-a-url://"
	if _, _, err := newRateLimiter(cfg, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid REDIS_URL")
	}
}

func TestNewRateLimiter_Redis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://localhost:6379/0"
	mw, closeFn, err := newRateLimiter(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mw == nil {
		t.Fatal("expected middleware")
	}
	closeFn()
}

func TestNewServer_MetricsEndpoint(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), metrics.New())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected request id header")
	}
}

func TestNewServer_RejectsInvalidStaffHeader(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), metrics.New())
	e.GET("/api/v1/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("X-Staff-ID", "abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRegisterDomains_Routes(t *testing.T) {
	e := echo.New()
	registerDomains(e.Group("/api/v1"), nil, metrics.New())

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/staff",
		"POST /api/v1/staff-roles",
		"GET /api/v1/tracers",
		"GET /api/v1/camera-types",
		"GET /api/v1/therapies",
		"GET /api/v1/therapies/:id",
		"PUT /api/v1/therapies/:id/booking-pattern",
		"PUT /api/v1/therapies/:id/camera-types",
		"GET /api/v1/action-log",
	} {
		if !registered[want] {
			t.Errorf("expected route %s", want)
		}
	}
}

func TestNewRateLimiter_SkipsPublicPaths(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	mw, _, err := newRateLimiter(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := newServer(cfg, zerolog.Nop(), metrics.New())
	e.Use(mw)
	e.GET("/api/v1/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("metrics request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected 204 then 429 on api routes, got %v", codes)
	}
}

func TestNewServer_MapsServiceErrors(t *testing.T) {
	e := newServer(testConfig(), zerolog.Nop(), metrics.New())
	e.GET("/api/v1/therapies/:id", func(c echo.Context) error {
		return fmt.Errorf("therapy %s: %w", c.Param("id"), db.ErrNotFound)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/therapies/9", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
