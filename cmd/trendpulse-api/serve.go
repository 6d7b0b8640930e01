package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nitesh/trendpulse-api/internal/api"
	"github.com/nitesh/trendpulse-api/internal/cache"
	"github.com/nitesh/trendpulse-api/internal/config"
	"github.com/nitesh/trendpulse-api/internal/logger"
	"github.com/nitesh/trendpulse-api/internal/metrics"
	"github.com/nitesh/trendpulse-api/internal/newsapi"
	"github.com/nitesh/trendpulse-api/internal/ratelimit"
	"github.com/nitesh/trendpulse-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Init(cfg.Env)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()

	store := openStore(cmd.Context(), cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.WithError(err).Warn("closing cache store")
		}
	}()

	svc := service.NewService(store, newClient(cfg), m)

	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)
	limiter.Start()
	defer limiter.Close()

	router := api.NewRouter(api.NewHandler(svc, cfg.AdminToken), api.RouterOptions{
		FrontendURL: cfg.FrontendURL,
		Production:  cfg.IsProduction(),
		Metrics:     m,
		Limiter:     limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithFields(logger.Fields{
			"port":    cfg.Port,
			"env":     cfg.Env,
			"version": version,
		}).Info("TrendPulse API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Log.Info("Server stopped")
	return nil
}

// openStore picks Redis when an address is configured and the in-process
// store otherwise. An unreachable Redis is only a warning: its errors read as
// cache misses until it comes back.
func openStore(ctx context.Context, cfg *config.Config) cache.Store {
	if cfg.RedisAddr == "" {
		logger.Log.WithField("ttl", cfg.CacheTTL.String()).Info("using in-memory cache")
		return cache.NewMemoryStore(cfg.CacheTTL, cfg.CacheSweepInterval)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis ping failed")
	}
	logger.Log.WithFields(logger.Fields{"addr": cfg.RedisAddr, "ttl": cfg.CacheTTL.String()}).Info("using redis cache")
	return cache.NewRedisStore(rdb, cfg.CacheTTL)
}

func newClient(cfg *config.Config) *newsapi.Client {
	return newsapi.NewClient(newsapi.Options{
		BaseURL:   cfg.NewsAPIBaseURL,
		APIKey:    cfg.NewsAPIKey,
		Country:   cfg.Country,
		UserAgent: cfg.UserAgent,
	})
}
