package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Blind-Test-Club/songquiz-bot/app"
	"github.com/Blind-Test-Club/songquiz-bot/config"
	"github.com/Blind-Test-Club/songquiz-bot/internal/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.Environment)

	application := &app.App{}
	if err := application.Initialize(ctx, cfg, logger); err != nil {
		logger.Error("failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	defer application.Close()

	logger.Info("songquiz bot starting",
		slog.String("environment", cfg.Observability.Environment),
	)

	if err := application.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("songquiz bot shut down")
}
