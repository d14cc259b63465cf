package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aprovame/internal/platform/config"
	"aprovame/internal/platform/logger"
	"aprovame/internal/server"
)

// main wires configuration and logging, then hands the lifecycle to the
// server package. Business logic lives in internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing aprovame",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.Database.URL != "",
		"kafka", cfg.Kafka.Enabled(),
		"smtp", cfg.SMTP.Enabled(),
		"batch_dedup", cfg.Batch.Dedup,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
