package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jakartamandarin/jm_finance/internal/adapters/database/memory"
	"github.com/jakartamandarin/jm_finance/internal/adapters/database/pgsql"
	portsrepo "github.com/jakartamandarin/jm_finance/internal/core/ports/repositories"
	"github.com/jakartamandarin/jm_finance/internal/core/services"
	"github.com/jakartamandarin/jm_finance/internal/events"
	"github.com/jakartamandarin/jm_finance/internal/handlers"
	"github.com/jakartamandarin/jm_finance/internal/metrics"
	"github.com/jakartamandarin/jm_finance/internal/middleware"
	"github.com/jakartamandarin/jm_finance/internal/platform/config"
	"github.com/jakartamandarin/jm_finance/internal/seed"
	"github.com/jakartamandarin/jm_finance/pkg/database"
)

const (
	migrationsDir      = "migrations"
	eventChannelPrefix = "jm_finance."
	seedActor          = "seed"
)

// @title Jakarta Mandarin Finance API
// @version 1.0
// @description Double-entry ledger, student credit, invoicing, bank reconciliation and reporting for Jakarta Mandarin.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level.Set(parseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, pool, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if pool != nil {
		defer database.ClosePgxPool(pool)
	}

	bus, forwarder, err := newEventBus(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize event bus", slog.String("error", err.Error()))
		os.Exit(1)
	}

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		logger.Error("Failed to initialize ID generator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	financeMetrics := metrics.Default()
	container, err := services.NewServiceContainer(cfg, repos, services.Dependencies{
		Bus:     bus,
		Metrics: financeMetrics,
		Node:    node,
	})
	if err != nil {
		logger.Error("Failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}

	chart := seed.DefaultChart()
	if cfg.ChartOfAccountsFile != "" {
		if chart, err = seed.LoadChart(cfg.ChartOfAccountsFile); err != nil {
			logger.Error("Failed to load chart of accounts", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	seeded, err := seed.Apply(ctx, container.Account, chart, seedActor)
	if err != nil {
		logger.Error("Failed to seed chart of accounts", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Chart of accounts ready", slog.Int("accounts", seeded))

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	limiterInstance, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.ActorHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.MetricsMiddleware(financeMetrics), middleware.RateLimit(limiterInstance))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var health handlers.HealthCheck
	if pool != nil {
		health = pool.Ping
	}
	handlers.RegisterRoutes(r, cfg, container, health)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	// Drain queued events after the last request finished publishing.
	if err := bus.Close(shutdownCtx); err != nil {
		logger.Error("Event bus shutdown failed", slog.String("error", err.Error()))
	}
	if forwarder != nil {
		if err := forwarder.Close(); err != nil {
			logger.Error("Failed to close Redis client", slog.String("error", err.Error()))
		}
	}
}

// openRepositories migrates and connects to PostgreSQL when PGSQL_URL is set and
// falls back to the in-memory store otherwise.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, *pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("Running on the in-memory store; data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), nil, nil
	}

	logger.Info("Running database migrations...")
	if err := database.Migrate(cfg.DatabaseURL, migrationsDir); err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(pool), pool, nil
}

// newEventBus starts the in-process bus, forwarding to Redis when REDIS_URL is set.
func newEventBus(cfg *config.Config, logger *slog.Logger) (*events.Bus, *events.RedisForwarder, error) {
	opts := []events.BusOption{events.WithLogger(logger)}
	var forwarder *events.RedisForwarder
	if cfg.RedisURL != "" {
		var err error
		if forwarder, err = events.NewRedisForwarder(cfg.RedisURL, eventChannelPrefix); err != nil {
			return nil, nil, err
		}
		opts = append(opts, events.WithForwarder(forwarder))
		logger.Info("Forwarding domain events to Redis", slog.String("prefix", eventChannelPrefix))
	}
	return events.NewBus(0, opts...), forwarder, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
