package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/quizsmith/internal/app"
	"github.com/markdave123-py/quizsmith/internal/config"
	"github.com/markdave123-py/quizsmith/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, cfg.LogNoColor)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("quizsmith stopped", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("quizsmith stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(application.Server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return application.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
