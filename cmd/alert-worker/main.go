package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/backend/factory"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export/gsheet"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
)

// alert-worker periodically evaluates due-date reminders and budget
// overruns for the configured principal, without the HTTP server. When
// the Google Sheets export is configured it also appends the month's
// budget lines after each run.
func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.Principal == "" {
		logger.Error("PRINCIPAL must be set for the alert worker")
		os.Exit(1)
	}

	adapters, err := factory.Build(cfg)
	if err != nil {
		logger.Error("Failed to build backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := adapters.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	sinks := notify.Fanout{notify.NewLogNotifier(logger)}
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP notifier unavailable, continuing with log only", log.FieldError, err)
		} else {
			defer amqpNotifier.Close()
			sinks = append(sinks, amqpNotifier)
		}
	}

	session := backend.StaticSession{Principal: cfg.Principal}
	transactions := services.NewTransactions(session, adapters.Store, adapters.Blobs, sinks, logger)
	budgets := services.NewBudgets(session, adapters.Store, sinks, logger)
	recurring := services.NewRecurring(session, adapters.Store, sinks, logger)
	engine := services.NewAlertEngine(transactions, budgets, recurring, sinks, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exporter *gsheet.Client
	if cfg.SheetsExportEnabled() {
		exporter, err = gsheet.New(ctx, cfg, logger)
		if err != nil {
			logger.Warn("Sheets export unavailable, continuing without it", log.FieldError, err)
			exporter = nil
		} else {
			logger.Info("Sheets export enabled", "spreadsheet", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
		}
	}

	runOnce := func(now time.Time) {
		if err := engine.Run(ctx); err != nil {
			logger.Error("Alert run failed", log.FieldError, err)
			return
		}
		if exporter == nil {
			return
		}
		today := core.DateOf(now)
		txs, err := transactions.List(ctx)
		if err != nil {
			logger.Error("Failed to fetch transactions for export", log.FieldError, err)
			return
		}
		monthBudgets, err := budgets.ListForMonth(ctx, today.MonthStart())
		if err != nil {
			logger.Error("Failed to fetch budgets for export", log.FieldError, err)
			return
		}
		lines := core.CompareBudgets(core.CategorySpending(txs, today), monthBudgets)
		if err := exporter.AppendMonthSummary(ctx, today.MonthStart(), lines); err != nil {
			logger.Error("Month summary export failed", log.FieldError, err)
		}
	}

	logger.Info("Alert worker configured",
		"interval", cfg.AlertInterval,
		"backend", cfg.DataBackend,
		log.FieldOwner, cfg.Principal)

	// Initial run at startup, then on every tick.
	runOnce(time.Now())

	ticker := time.NewTicker(cfg.AlertInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runOnce(now)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())
	cancel()
	logger.Info("Alert worker stopped")
}
