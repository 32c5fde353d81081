package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nuclibook/nuclibook/internal/config"
	"github.com/nuclibook/nuclibook/internal/domain/actionlog"
	"github.com/nuclibook/nuclibook/internal/domain/cameratype"
	"github.com/nuclibook/nuclibook/internal/domain/staff"
	"github.com/nuclibook/nuclibook/internal/domain/therapy"
	"github.com/nuclibook/nuclibook/internal/domain/tracer"
	"github.com/nuclibook/nuclibook/internal/platform/auth"
	"github.com/nuclibook/nuclibook/internal/platform/db"
	"github.com/nuclibook/nuclibook/internal/platform/logging"
	"github.com/nuclibook/nuclibook/internal/platform/metrics"
	"github.com/nuclibook/nuclibook/internal/platform/middleware"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nuclibook-server",
		Short: "Nuclibook clinic scheduling API server",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Create the schema if needed and apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool, schema, dir string) error {
				if err := db.CreateSchema(ctx, pool, schema, ""); err != nil {
					return err
				}
				count, err := db.NewMigrator(pool, dir).Up(ctx, schema)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) to schema %s.\n", count, schema)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool, schema, dir string) error {
				statuses, err := db.NewMigrator(pool, dir).Status(ctx, schema)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}

				fmt.Printf("Migration status for schema: %s\n", schema)
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					status := "pending"
					appliedAt := ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}

	for _, c := range []*cobra.Command{upCmd, statusCmd} {
		c.Flags().String("schema", "", "Target schema (defaults to DB_SCHEMA)")
		c.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
		cmd.AddCommand(c)
	}
	return cmd
}

// withPool loads config, resolves the schema and directory flags against it
// and hands fn an open pool.
func withPool(cmd *cobra.Command, fn func(ctx context.Context, pool *pgxpool.Pool, schema, dir string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	schema, _ := cmd.Flags().GetString("schema")
	if schema == "" {
		schema = cfg.DBSchema
	}
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, pool, schema, dir)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		Console:        cfg.IsDev(),
		File:           cfg.LogFile,
		FileMaxSizeMB:  cfg.LogFileMaxSizeMB,
		FileMaxBackups: cfg.LogFileMaxBackups,
		FileMaxAgeDays: cfg.LogFileMaxAgeDays,
		FileCompress:   cfg.LogFileCompress,
	})
	defer closer.Close()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	limiter, closeLimiter, err := newRateLimiter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	m := metrics.New()
	e := newServer(cfg, logger, m)
	e.GET("/health", db.HealthHandler(pool, version))

	e.Use(limiter)
	api := e.Group("/api/v1", db.ConnMiddleware(pool, cfg.DBSchema))
	registerDomains(api, pool, m)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the echo instance with the global middleware chain and
// the metrics endpoint.
func newServer(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// Unwrapped service errors get the same status the access log reports.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(db.HTTPError(err), c)
	}

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader, auth.StaffHeader},
	}))
	e.Use(m.Middleware())
	e.Use(auth.StaffActor())

	e.GET("/metrics", m.Handler())
	return e
}

// newRateLimiter picks the Redis-backed limiter when REDIS_URL is set and the
// in-process one otherwise. The returned func releases the Redis client.
func newRateLimiter(cfg *config.Config, logger zerolog.Logger) (echo.MiddlewareFunc, func() error, error) {
	rl := middleware.DefaultRateLimitConfig()
	rl.Skipper = auth.Skipper
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}

	if cfg.RedisURL == "" {
		return middleware.RateLimit(rl), func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	logger.Info().Str("addr", opts.Addr).Msg("rate limiting through redis")
	return middleware.RedisRateLimit(client, rl, logger), client.Close, nil
}

// registerDomains wires repositories, services and handlers onto api. Every
// mutation is audited through the action log service.
func registerDomains(api *echo.Group, pool *pgxpool.Pool, m *metrics.Metrics) {
	audit := actionlog.NewService(actionlog.NewRepo(pool), m)
	actionlog.NewHandler(audit).RegisterRoutes(api)

	staffSvc := staff.NewService(staff.NewStaffRepo(pool), staff.NewRoleRepo(pool), audit)
	staff.NewHandler(staffSvc).RegisterRoutes(api)

	tracerRepo := tracer.NewRepo(pool)
	tracer.NewHandler(tracer.NewService(tracerRepo, audit)).RegisterRoutes(api)

	cameraRepo := cameratype.NewRepo(pool)
	cameratype.NewHandler(cameratype.NewService(cameraRepo, audit)).RegisterRoutes(api)

	therapyRepo := therapy.NewRepo(pool)
	projector := therapy.NewProjector(therapyRepo, m)
	therapySvc := therapy.NewService(therapyRepo, tracerRepo, cameraRepo, audit, projector)
	therapy.NewHandler(therapySvc).RegisterRoutes(api)
}
