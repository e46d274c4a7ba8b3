package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexus-club/site-api/internal/cache"
	"github.com/nexus-club/site-api/internal/config"
	"github.com/nexus-club/site-api/internal/db"
	httpx "github.com/nexus-club/site-api/internal/http"
	"github.com/nexus-club/site-api/internal/observability"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, "nexus-site-api", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL, int32(cfg.DBMaxConns))

	if err != nil {
		log.Error("could not open database pool", "err", err)
		os.Exit(1)
	}

	// proxy cache: redis when configured, in-process TTL map otherwise
	var proxyCache cache.Store

	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.ProxyCacheTTL,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)
		pingErr := rc.Ping(pingCtx)
		cancel()

		if pingErr != nil {
			log.Warn("redis unreachable, falling back to memory cache", "err", pingErr)
			_ = rc.Close()
			proxyCache = cache.NewMemory(cfg.ProxyCacheTTL)
		} else {
			proxyCache = rc
			defer func() { _ = rc.Close() }()
		}
	} else {
		proxyCache = cache.NewMemory(cfg.ProxyCacheTTL)
	}

	router := httpx.NewRouter(log, pool, proxyCache, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(sctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}

	pool.Close()

	tctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := shutdownTracer(tctx); err != nil {
		log.Warn("tracer shutdown failed", "err", err)
	}
}
