package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"megasena"
)

const version = "1.0.0"

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := megasena.NewZapLogger(zapLogger)

	cm := megasena.NewConfigManager()
	cfg, err := cm.LoadConfig()
	if err != nil {
		zapLogger.Fatal("config error", zap.Error(err))
	}
	cm.WatchConfig(func(updated *megasena.Config) {
		logger.Info("Configuration reloaded")
	})

	cache := megasena.NewCacheManager(cfg.Cache.Kind, cfg.Redis, logger)
	breaker := megasena.NewBreaker(cfg.CircuitBreaker, logger)
	client := megasena.NewAPIClient(cfg.API.BaseURL, nil, cfg.API.RequestTimeout, logger)
	aggregator := megasena.NewAggregator(client, breaker, cfg.API.HistoryWindow, cfg.API.Concurrency, logger)
	service := megasena.NewService(cfg, cache, aggregator, client, breaker, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Server.WarmupEnabled {
		go service.WarmUp(ctx)
	}

	srv := newServer(service, logger)
	h := http.Handler(srv.routes())
	if cfg.Server.RateLimitEnabled {
		store := newLimiterStore(cfg.Server.RateLimitPerMinute)
		store.startJanitor(ctx)
		h = rateLimitMiddleware(store)(h)
	}
	h = corsMiddleware(cfg.Server.CORSOrigins)(h)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("megasena server listening on %s (cache=%s)", cfg.Server.Addr, cache.Kind())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zapLogger.Fatal("server error", zap.Error(err))
	}
}
