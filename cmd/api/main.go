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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/datapulse/datapulse-go/internal/config"
	"github.com/datapulse/datapulse-go/internal/crypto"
	"github.com/datapulse/datapulse-go/internal/handler"
	"github.com/datapulse/datapulse-go/internal/middleware"
	"github.com/datapulse/datapulse-go/internal/ratelimit"
	"github.com/datapulse/datapulse-go/internal/repository"
	"github.com/datapulse/datapulse-go/internal/service"
)

const (
	sweepInterval = time.Minute
	purgeInterval = 15 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Env)
	if cfg.UsesDevSecret() {
		slog.Warn("JWT_SECRET not set, using insecure development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	hasher := crypto.NewPasswordHasher(crypto.DefaultHashParams())
	manager := crypto.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	tokenService := service.NewTokenService(repository.NewTokenRepository(db), manager, cfg.PersistTokens)
	userService := service.NewUserService(userRepo, hasher)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			slog.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	leadLimiter, closeLimiter, err := newLeadLimiter(ctx, cfg)
	if err != nil {
		slog.Error("rate limiter setup failed", "error", err)
		os.Exit(1)
	}
	defer closeLimiter()

	go tokenService.RunPurge(ctx, purgeInterval)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:         service.NewAuthService(userRepo, tokenService, hasher),
		Users:        userService,
		Tasks:        service.NewTaskService(repository.NewTaskRepository(db)),
		Tokens:       tokenService,
		Leads:        service.NewLeadService(repository.NewLeadRepository(db), userRepo),
		DB:           db,
		Version:      cfg.AppVersion,
		PublicRoutes: middleware.NewPublicRoutes(cfg.PublicRoutes, cfg.PublicMatch == config.MatchPrefix),
		LeadLimiter:  leadLimiter,
		AuthThrottle: middleware.RateLimit(ctx, cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, middleware.RemoteIP),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func setupLogger(env string) {
	var h slog.Handler
	if env == "production" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// newLeadLimiter builds the lead capture limiter for the configured backend.
// The in-memory limiter is swept in the background until ctx is cancelled.
func newLeadLimiter(ctx context.Context, cfg config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.RateLimitBackend == config.BackendRedis {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, lead rate limiting will fail open", "error", err)
		}
		limiter := ratelimit.NewRedis(rdb, cfg.LeadRateLimitMax, cfg.LeadRateLimitWindow).WithPrefix("ratelimit:leads:")
		return limiter, func() { rdb.Close() }, nil
	}

	limiter := ratelimit.NewMemory(cfg.LeadRateLimitMax, cfg.LeadRateLimitWindow)
	go limiter.Run(ctx, sweepInterval)
	return limiter, func() {}, nil
}
