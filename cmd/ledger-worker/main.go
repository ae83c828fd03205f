package main

import (
	"context"
	"errors"
	"os"
	"time"

	"moneymanager/internal/amqp"
	"moneymanager/internal/backend"
	"moneymanager/internal/cli"
	"moneymanager/internal/config"
	"moneymanager/internal/log"
	ports "moneymanager/internal/sheets"
	gsheet "moneymanager/internal/sheets/google"
	mem "moneymanager/internal/sheets/memory"
	"moneymanager/internal/worker"
)

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting ledger-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	mirror, err := newMirror(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", log.FieldError, err)
		os.Exit(1)
	}
	mw := worker.NewMirrorWorker(mirror, logger)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	if cfg.WorkerResyncOnStart {
		if err := resync(ctx, cfg, mw, logger); err != nil {
			// Not fatal: events keep flowing.
			logger.Error("Startup resync failed", log.FieldError, err)
		}
	}

	if err := amqpClient.Consume(ctx, mw.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("ledger-worker stopped")
}

// newMirror returns the Sheets mirror when a spreadsheet is configured and an
// in-process one otherwise.
func newMirror(cfg *config.Config, logger *log.Logger) (ports.Mirror, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
		return mem.New(), nil
	}
	client, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

// resync pushes the persisted ledger to the mirror, covering events lost while
// the worker was down.
func resync(ctx context.Context, cfg *config.Config, mw *worker.MirrorWorker, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	store, cleanup, err := backend.NewFactory(logger).OpenStore(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return mw.Resync(ctx, store.Export())
}
