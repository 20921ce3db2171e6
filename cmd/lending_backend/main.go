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

	"github.com/SscSPs/library_lending_app/internal/core/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/handlers"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/SscSPs/library_lending_app/internal/platform/config"
	"github.com/SscSPs/library_lending_app/internal/repositories/cache/rediscache"
	"github.com/SscSPs/library_lending_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/library_lending_app/internal/repositories/fallback"
	"github.com/SscSPs/library_lending_app/internal/storage"
	"github.com/SscSPs/library_lending_app/internal/utils"
	"github.com/SscSPs/library_lending_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title Library Lending API
// @version 1.0
// @description Catalogue, loans, fines and student verification for the library.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(dbPool, logger)

	if cfg.EnableDBCheck {
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp, logger); err != nil {
			return err
		}
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		return err
	}
	repos := pgsql.NewRepositoryProvider(dbPool)
	var mirror *rediscache.Mirror
	if redisClient != nil {
		defer redisClient.Close()
		mirror = rediscache.NewMirror(redisClient, cfg.CacheKeyPrefix)
		repos = fallback.NewRepositoryProvider(repos, mirror)
	}

	var store storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return err
		}
		store = minioStore
	}

	notifier := newNotifier(cfg, logger)
	defer func() {
		if cerr := notifier.Close(); cerr != nil {
			logger.Error("Failed to close notifier", slog.String("error", cerr.Error()))
		}
	}()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	rateLimiter, err := newRateLimiter(cfg, redisClient)
	if err != nil {
		return err
	}

	dto.RegisterValidators()
	serviceContainer := services.NewServiceContainer(cfg, repos, store, notifier)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "X-Lending-Degraded"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(rateLimiter),
		middleware.PosthogMiddleware(posthogClient),
	)
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	if mirror != nil {
		resyncer := fallback.NewResyncer(mirror, pgsql.NewSyncRepository(dbPool), logger)
		g.Go(func() error {
			logger.Info("Resync worker started", slog.Duration("interval", cfg.ResyncInterval))
			return resyncer.RunEvery(gctx, cfg.ResyncInterval)
		})
	}
	return g.Wait()
}

func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	if cfg.AMQPURL == "" {
		return notify.NewLogNotifier()
	}
	n, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Warn("AMQP unavailable, lending events will only be logged", slog.String("error", err.Error()))
		return notify.NewLogNotifier()
	}
	logger.Info("Publishing lending events", slog.String("exchange", cfg.AMQPExchange))
	return n
}

// newRateLimiter shares the quota across instances through Redis when the
// mirror is configured and falls back to an in-process store otherwise.
func newRateLimiter(cfg *config.Config, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return limiter.New(memory.NewStore(), rate), nil
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: cfg.CacheKeyPrefix + ":ratelimit"})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}
