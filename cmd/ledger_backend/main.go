package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/notifier"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/SscSPs/ledger_engine/internal/utils"
	"github.com/SscSPs/ledger_engine/migrations"
	"github.com/SscSPs/ledger_engine/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, dbPool, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if dbPool != nil {
		defer database.ClosePgxPool(dbPool, logger)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	postingNotifier, closeNotifiers := setupNotifiers(cfg, posthogClient, logger)

	serviceContainer := services.NewServiceContainer(cfg, repos, postingNotifier)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer,
		middleware.RateLimit(limiter.New(limitermemory.NewStore(), rate)),
		middleware.PosthogMiddleware(posthogClient),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Flush queued posting events before the store goes away
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	closeNotifiers(shutdownCtx)
	logger.Info("Server stopped")
}

// setupStorage builds the repositories for the configured driver. The pool is nil for the memory driver.
func setupStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, *pgxpool.Pool, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore(memory.WithLockTimeout(cfg.PostingLockTimeout))
		return *store.Provider(), nil, nil
	}

	if cfg.RunMigrations {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, migrations.FS, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(dbPool), dbPool, nil
}

// setupNotifiers fans posting events out to the log, PostHog and, when configured, RabbitMQ.
// Only the broker sits behind the retrying dispatcher; PostHog batches on its own.
func setupNotifiers(cfg *config.Config, posthogClient *utils.PosthogClientWrapper, logger *slog.Logger) (portssvc.PostingNotifier, func(context.Context)) {
	fanOut := []portssvc.PostingNotifier{
		notifier.NewLog(logger),
		notifier.NewPosthog(posthogClient),
	}

	var async *notifier.Async
	var broker *notifier.AMQP
	if cfg.RabbitMQURL != "" {
		var err error
		broker, err = notifier.DialAMQP(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		if err != nil {
			// Posting must keep working without the broker
			logger.Error("Failed to connect to RabbitMQ, posting events will not be published", slog.String("error", err.Error()))
		} else {
			async = notifier.NewAsync(broker, logger,
				notifier.WithQueueSize(cfg.NotifierQueueSize),
				notifier.WithMaxTries(cfg.NotifierMaxRetries),
			)
			fanOut = append(fanOut, async)
			logger.Info("RabbitMQ publisher ready", slog.String("exchange", cfg.RabbitMQExchange))
		}
	}

	closeFn := func(ctx context.Context) {
		if async != nil {
			if err := async.Close(ctx); err != nil {
				logger.Warn("Posting events dropped on shutdown", slog.String("error", err.Error()))
			}
		}
		if broker != nil {
			if err := broker.Close(); err != nil {
				logger.Warn("Failed to close RabbitMQ connection", slog.String("error", err.Error()))
			}
		}
	}
	return notifier.NewMulti(fanOut...), closeFn
}
