package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/backend/factory"
	"fintrack/internal/backend/fsblob"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/snapshot"
)

func main() {
	// Load .env for local development; ignore errors in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
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

	// Snapshot cache in front of the store, with periodic expiry sweeps.
	snapshots := snapshot.New(adapters.Store, cfg.SnapshotEntries, cfg.SnapshotTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(snapshots.Cache())
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	// Notification sinks: always the log, plus AMQP when configured.
	sinks := notify.Fanout{notify.NewLogNotifier(logger)}
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP notifier unavailable, continuing with log only", log.FieldError, err)
		} else {
			defer amqpNotifier.Close()
			sinks = append(sinks, amqpNotifier)
			logger.Info("AMQP notifier initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	session := backend.ContextSession{}
	transactions := services.NewTransactions(session, snapshots, adapters.Blobs, sinks, logger)
	transactions.SetReceiptTTL(cfg.ReceiptURLTTL)
	budgets := services.NewBudgets(session, snapshots, sinks, logger)
	recurring := services.NewRecurring(session, snapshots, sinks, logger)
	profiles := services.NewProfiles(session, snapshots, sinks, logger)

	// Recompute alerts whenever an input collection changes. The engine
	// evaluates as the configured principal.
	if cfg.Principal != "" {
		worker := backend.StaticSession{Principal: cfg.Principal}
		engine := services.NewAlertEngine(
			services.NewTransactions(worker, snapshots, adapters.Blobs, sinks, logger),
			services.NewBudgets(worker, snapshots, sinks, logger),
			services.NewRecurring(worker, snapshots, sinks, logger),
			sinks, logger)
		engine.Bind(snapshots)
	}

	files, _ := adapters.Blobs.(*fsblob.Store)
	srv := apphttp.NewServer(":"+cfg.Port, transactions, budgets, recurring, profiles, logger, apphttp.Options{
		Files:            files,
		DefaultPrincipal: cfg.Principal,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
