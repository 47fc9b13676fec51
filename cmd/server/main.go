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

	"github.com/spf13/pflag"

	"github.com/Carig-G/the-bench/internal/app"
	"github.com/Carig-G/the-bench/internal/cache"
	"github.com/Carig-G/the-bench/internal/config"
	"github.com/Carig-G/the-bench/internal/httpserver"
	"github.com/Carig-G/the-bench/internal/service"
)

// @title           The Bench API
// @version         1.0
// @description     Anonymous one-on-one conversations with a paywall and mutual identity reveal.

// @host            localhost:8000
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	migrateOnly := pflag.Bool("migrate-only", false, "apply the schema and exit")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := app.NewLogger(cfg.Debug)
	slog.SetDefault(log)

	if err := run(cfg, log, *migrateOnly); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, migrateOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	log.Info("database ready", "driver", st.Dialect())
	if migrateOnly {
		return nil
	}

	var trending service.TrendingCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, trending tags are not cached", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rdb.Close()
			trending = cache.NewTrending(rdb, cfg.TrendingCacheTTL())
		}
	}

	svc, err := app.NewServices(cfg, st, trending, log)
	if err != nil {
		return err
	}
	router := httpserver.NewRouter(httpserver.Options{
		AppName:     cfg.AppName,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	}, svc)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.HTTPAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
