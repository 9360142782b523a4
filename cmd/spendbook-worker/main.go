package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendbook/internal/amqp"
	"spendbook/internal/backend"
	"spendbook/internal/config"
	applog "spendbook/internal/log"
	csvstore "spendbook/internal/store/csv"
	"spendbook/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "spendbook-worker"})
	applog.SetDefault(logger)

	logger.Info("Starting spendbook-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Primary store is the same backend the server writes to.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateStore(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize primary backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	mirrorStore := csvstore.New(cfg.MirrorCSVPath, cfg.DefaultUser)
	mirror := worker.NewMirror(result.Store, mirrorStore)
	logger.Info("Mirror target configured", "path", cfg.MirrorCSVPath)

	// On startup, bring the mirror up to date before waiting for events.
	logger.Info("Performing startup sync check...")
	if err := mirror.SyncOnce(ctx); err != nil {
		logger.Error("Startup sync failed", "error", err)
		// Don't exit - the scheduled sync will retry
	}

	// Consume save events when a broker is configured.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeTableSaved(ctx, mirror.HandleTableSaved(ctx)); err != nil {
				if err != context.Canceled {
					logger.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP disabled - mirror syncs on schedule only")
	}

	// Scheduled catch-up sync for events lost while the worker was down.
	scheduler, err := mirror.Schedule(ctx, cfg.MirrorCron)
	if err != nil {
		logger.Error("Failed to register mirror schedule", "error", err, "spec", cfg.MirrorCron)
		os.Exit(1)
	}
	defer scheduler.Stop()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
	logger.Info("Worker shutdown complete")
}
