package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finsight/internal/amqp"
	"finsight/internal/analytics"
	"finsight/internal/config"
	"finsight/internal/log"
	"finsight/internal/services"
	"finsight/internal/storage"
)

// insight-worker consumes ledger change events and re-runs the anomaly
// detector for the affected user, logging any flagged transactions.
func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the insight worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize SQLite repository",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	policy := analytics.NewPolicy(cfg.FixedCategories, cfg.ExemptFixedFromBudgetShare)
	insights := services.NewInsightService(repo, policy, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(evt *amqp.TransactionEvent) error {
		ids, err := insights.Anomalies(ctx, evt.UserID)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			logger.Info("anomalous transactions detected",
				log.FieldUserID, evt.UserID,
				log.FieldAnomalyCount, len(ids),
				"anomaly_ids", ids)
		}
		return nil
	}

	logger.Info("starting insight worker", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeTransactionEvents(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("event consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("insight worker stopped")
}
