package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/FilipeAphrody/vocalgate/internal/app"
	"github.com/FilipeAphrody/vocalgate/internal/config"
	delivery "github.com/FilipeAphrody/vocalgate/internal/delivery/http"
	"github.com/FilipeAphrody/vocalgate/internal/observe"
)

func main() {
	// Load .env file for local development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "err", err)
		os.Exit(1)
	}
	slog.Info("server exiting")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		slog.Warn("JWT_SECRET is not set, using the development secret")
	}

	// 1. Metrics
	prov, err := observe.InitProvider(ctx, "vocalgate", delivery.Version)
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	defer func() {
		if err := prov.Shutdown(context.Background()); err != nil {
			slog.Warn("metrics shutdown", "err", err)
		}
	}()

	// 2. Gate
	a, err := app.New(ctx, cfg, app.WithMetrics(prov.Metrics))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("failed to release resources", "err", err)
		}
	}()

	// 3. HTTP
	e := delivery.NewRouter(a, prov.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting VocalGate server", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
