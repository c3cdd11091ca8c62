package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/bibalign/internal/app"
	"github.com/agenthands/bibalign/internal/config"
	"github.com/agenthands/bibalign/internal/logging"
	"github.com/agenthands/bibalign/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadOrDefault(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found, using defaults")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, app.Options{Graph: true})
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close(ctx)

	if err := a.Catalog.BuildIndices(ctx); err != nil {
		logger.Warn("failed to build indices", "error", err)
	}

	r := server.NewServer(a.Catalog, a.Metrics, logger).SetupRouter()

	logger.Info("starting server", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
