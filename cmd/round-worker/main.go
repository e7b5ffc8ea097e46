package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finanzas/internal/amqp"
	"finanzas/internal/config"
	applog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: applog.ComponentRounds,
		Format:    os.Getenv("LOG_FORMAT"),
	})
	applog.SetDefault(logger)

	logger.Info("Starting round-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP disabled - payout events will not be published")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor := services.NewRoundProcessor(store, publisher)

	// One pass at startup so a restart never delays due payouts by a full
	// interval.
	if advanced, err := processor.ProcessAll(ctx); err != nil {
		logger.Error("Initial round pass failed", "error", err)
	} else if advanced > 0 {
		logger.Info("Initial round pass complete", "advanced", advanced)
	}

	if err := processor.Run(ctx, cfg.RoundInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Round worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Round worker stopped gracefully")
}
