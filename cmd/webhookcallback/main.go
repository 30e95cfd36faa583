package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"StockResearch/internal/app"
	"StockResearch/internal/config"
	"StockResearch/internal/logging"
	"StockResearch/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	router, err := application.WebhookRouter()
	if err != nil {
		logger.Error("webhook init failed", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Webhook.Port)
	if err := webhook.Serve(ctx, addr, router, cfg.Webhook.ShutdownTimeout, logger); err != nil {
		logger.Error("webhook server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("webhook server closed")
}
