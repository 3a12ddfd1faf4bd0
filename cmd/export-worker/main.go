package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"brokemate/internal/amqp"
	"brokemate/internal/cache"
	"brokemate/internal/cli"
	"brokemate/internal/config"
	"brokemate/internal/sheets"
	gsheet "brokemate/internal/sheets/google"
	"brokemate/internal/sheets/memory"
	"brokemate/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger.Info("Starting export-worker")

	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration validation failed", "error", err)
		os.Exit(1)
	}

	exporter, err := newExporter(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize exporter", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(exporter)
	cacheManager := cache.NewManager()
	cacheManager.Register(exportWorker.Seen())
	cacheManager.StartCleanup(time.Hour)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		cacheManager.Stop()
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
	})

	logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeLedgerEvents(ctx, exportWorker.HandleLedgerEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Export-worker shutdown complete")
}

// newExporter returns the Google Sheets client, or an in-memory exporter when
// EXPORT_DRY_RUN is set.
func newExporter(cfg *config.Config, logger *slog.Logger) (sheets.LedgerExporter, error) {
	if cfg.ExportDryRun {
		logger.Warn("Dry run, exported rows are kept in memory only")
		return memory.New(), nil
	}

	opts, err := cli.SheetsOptions(cfg)
	if err != nil {
		return nil, err
	}
	client, err := gsheet.New(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName,
		"oauth", opts.UsesOAuth())
	return client, nil
}
