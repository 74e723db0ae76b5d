// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/casannunci/backend/internal/account"
	"github.com/casannunci/backend/internal/admin"
	"github.com/casannunci/backend/internal/auth"
	"github.com/casannunci/backend/internal/config"
	"github.com/casannunci/backend/internal/core"
	"github.com/casannunci/backend/internal/events"
	"github.com/casannunci/backend/internal/favorite"
	"github.com/casannunci/backend/internal/health"
	"github.com/casannunci/backend/internal/listing"
	"github.com/casannunci/backend/internal/middleware"
	"github.com/casannunci/backend/internal/rolerequest"
	"github.com/casannunci/backend/internal/server"
	"github.com/casannunci/backend/internal/settings"
	"github.com/casannunci/backend/internal/storage"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	publisher, err := events.NewPublisher(cfg.Events, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()
	logger.Info("event publisher ready", "enabled", cfg.Events.Enabled)

	uploader, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("blob storage ready", "bucket", cfg.Storage.Bucket)

	accountRepo := account.NewRepository(db.DB)
	accountSvc := account.NewService(accountRepo)
	accountHandler := account.NewHandler(accountSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, accountSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	listingRepo := listing.NewRepository(db.DB)
	listingSvc := listing.NewService(listingRepo, publisher, cfg.Listing)
	listingHandler := listing.NewHandler(listingSvc)

	roleReqRepo := rolerequest.NewRepository(db.DB)
	roleReqSvc := rolerequest.NewService(roleReqRepo, publisher)
	roleReqHandler := rolerequest.NewHandler(roleReqSvc)

	favoriteRepo := favorite.NewRepository(db.DB)
	favoriteSvc := favorite.NewService(favoriteRepo)
	favoriteHandler := favorite.NewHandler(favoriteSvc)

	settingsRepo := settings.NewRepository(db.DB)
	settingsSvc := settings.NewService(settingsRepo, redis.Client, logger)
	settingsHandler := settings.NewHandler(settingsSvc)

	storageHandler := storage.NewHandler(uploader, cfg.Storage)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:      db.Stats,
		RedisStats:   redis.PoolStats,
		DBPing:       db.Ping,
		RedisPing:    redis.Ping,
		ListingStats: listingRepo.CountByStatus,
		PendingRoles: roleReqRepo.CountPending,
		TotalUsers:   accountRepo.Count,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	// The auth service wraps the JWT manager so blacklisted access tokens
	// are refused at the door. Authenticated routes also get per-role rate
	// limits, which need resolved claims and so run after the verifier.
	verifyToken := middleware.Authenticator(authSvc)
	roleLimiter := middleware.RoleRateLimiter(
		redis.Client, middleware.DefaultRoleLimits)
	authenticator := func(next http.Handler) http.Handler {
		return verifyToken(roleLimiter(next))
	}
	optionalAuth := middleware.OptionalAuth(authSvc)
	adminOnly := middleware.RequireAdmin
	advertiserOnly := middleware.RequireAdvertiser
	activeOnly := middleware.RequireActive

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		settingsHandler.RegisterPublicRoutes(r)
		listingHandler.RegisterPublicRoutes(r, optionalAuth)

		accountHandler.RegisterRoutes(r, authenticator, activeOnly)
		favoriteHandler.RegisterRoutes(r, authenticator, activeOnly)
		roleReqHandler.RegisterRoutes(r, authenticator, activeOnly)
		listingHandler.RegisterOwnerRoutes(
			r, authenticator, activeOnly, advertiserOnly)
		storageHandler.RegisterRoutes(
			r, authenticator, activeOnly, advertiserOnly)

		accountHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		listingHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		roleReqHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		settingsHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	go tokenJanitor(ctx, authSvc, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// tokenJanitor prunes expired refresh tokens hourly until shutdown.
func tokenJanitor(ctx context.Context, svc *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := svc.CleanupExpiredTokens(ctx)
			if err != nil {
				logger.Warn("refresh token cleanup", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("refresh token cleanup", "deleted", deleted)
			}
		}
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
