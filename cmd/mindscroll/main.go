package main

import (
	"context"
	"os"

	"github.com/saffan19/MindScroll/internal/app"
	"github.com/saffan19/MindScroll/internal/config"
	"github.com/saffan19/MindScroll/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("ingestion run failed", "error", err)
		os.Exit(1)
	}
}
