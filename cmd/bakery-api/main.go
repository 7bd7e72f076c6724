package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ViduraMC/Bakery-App/cmd/bakery-api/app"
	"github.com/ViduraMC/Bakery-App/configs"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("read .env: %v", err)
	}

	env := os.Getenv("APP_ENV") // dev | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	a, cleanup, err := app.InitWithConfig(cfg)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      a.Router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(shutdownCtx)

	g.Go(func() error {
		logger.Info("bakery-api listening", "env", env, "addr", cfg.App.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	for _, w := range a.Workers {
		w := w
		g.Go(func() error {
			logger.Info("worker started", "worker", w.Name)
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", w.Name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done() // block and listen shutdown signals
		logger.Info("shutting down, draining in-flight requests")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server failed shutdown gracefully: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("bakery-api stopped", "err", err)
		cleanup()
		os.Exit(1)
	}
	logger.Info("bakery-api stopped")
}
