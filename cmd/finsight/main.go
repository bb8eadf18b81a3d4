package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finsight/internal/amqp"
	"finsight/internal/analytics"
	"finsight/internal/config"
	"finsight/internal/export"
	apphttp "finsight/internal/http"
	"finsight/internal/log"
	"finsight/internal/services"
	"finsight/internal/storage"
)

func main() {
	// Load .env for local development, ignore errors in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize SQLite repository",
			log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without a broker, writes simply go unannounced.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, no AMQP_URL provided")
	}

	policy := analytics.NewPolicy(cfg.FixedCategories, cfg.ExemptFixedFromBudgetShare)
	ledger := services.NewLedgerService(repo, publisher, logger)
	insights := services.NewInsightService(repo, policy, logger)

	var reportWriter export.ReportWriter
	switch cfg.ReportBackend {
	case "sheets":
		writer, err := export.NewSheetsWriter(context.Background(), cfg.ReportSpreadsheetID, cfg.ReportSheetName)
		if err != nil {
			logger.Error("failed to initialize Sheets report writer", log.FieldError, err)
			os.Exit(1)
		}
		reportWriter = writer
		logger.Info("savings reports exported to Google Sheets",
			"spreadsheet_id", cfg.ReportSpreadsheetID, "sheet", cfg.ReportSheetName)
	case "memory":
		reportWriter = export.NewMemoryWriter()
		logger.Info("savings reports kept in memory")
	default:
		logger.Info("savings report export disabled")
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger, insights, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting finsight server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var processor *services.ReportProcessor
	if reportWriter != nil {
		processor = services.NewReportProcessor(repo, reportWriter, services.ReportProcessorConfig{
			PollInterval: cfg.ReportInterval,
		}, logger)
		if err := processor.Start(ctx); err != nil {
			logger.Error("failed to start report processor", log.FieldError, err)
			os.Exit(1)
		}
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if processor != nil {
			if err := processor.Stop(shutdownCtx); err != nil {
				logger.Error("report processor shutdown error", log.FieldError, err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
