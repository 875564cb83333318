package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fincast/internal/amqp"
	"fincast/internal/config"
	apphttp "fincast/internal/http"
	"fincast/internal/log"
	"fincast/internal/storage"
)

// amqpRecorder publishes finished runs to the broker instead of writing
// them to SQLite directly. The worker persists them on the other side.
type amqpRecorder struct {
	client *amqp.Client
}

func (r amqpRecorder) RecordRun(ctx context.Context, rec storage.RunRecord) error {
	msg := amqp.NewRunRecordedMessage(rec.Kind, rec.CreatedAt, rec.Request, rec.Summary)
	return r.client.PublishRunRecorded(ctx, msg)
}

func main() {
	// Load .env for local development, ignore errors in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	var (
		store     *storage.Store
		recorder  apphttp.RunRecorder
		runs      apphttp.RunLister
		scenarios apphttp.ScenarioStore
	)

	if cfg.SQLiteDBPath != "" {
		var err error
		store, err = storage.NewStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer store.Close()
		runs = store
		scenarios = store
		recorder = store
		logger.Info("SQLite store initialized", "path", cfg.SQLiteDBPath)
	} else {
		logger.Info("Run history disabled, no SQLITE_DB_PATH provided")
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		recorder = amqpRecorder{client: client}
		logger.Info("AMQP run recording enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	srv := apphttp.NewServer(":"+cfg.Port, recorder, runs, scenarios)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

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
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting fincast server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
