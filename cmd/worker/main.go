package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-scheduler/internal/app"
	"github.com/benvon/smart-scheduler/internal/config"
	"github.com/benvon/smart-scheduler/internal/logger"
	"github.com/benvon/smart-scheduler/internal/notify"
	"github.com/benvon/smart-scheduler/internal/queue"
	"github.com/benvon/smart-scheduler/internal/workers"
	"go.uber.org/zap"
)

const serviceName = "smart-scheduler-worker"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
		zap.Duration("sweep_window", cfg.SweepWindow),
		zap.Bool("webhook_transport", cfg.NotifyWebhookURL != ""),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_worker", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			zapLogger.Warn("failed_to_close_connections", zap.Error(err))
		}
	}()

	transport := notify.New(cfg.NotifyWebhookURL, cfg.NotifyTimeout, zapLogger)
	dispatcher := workers.NewDispatcher(a.Assistant, transport, a.Queue, a.Metrics, zapLogger)
	sweeper := workers.NewSweeper(a.Queue, a.Meetings, cfg.SweepWindow, zapLogger)

	// Metrics endpoint
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", a.Metrics.Handler())
	adminSrv := &http.Server{
		Addr:              ":" + cfg.WorkerAdminPort,
		Handler:           adminMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := adminSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("metrics_server_failed", zap.Error(err))
		}
	}()

	// Twice-daily preparation sweep
	go sweeper.Run(ctx)

	janitor := queue.NewDLQJanitor(a.Queue, cfg.DLQRetention, zapLogger)
	go func() {
		if err := janitor.Run(ctx, time.Hour); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_janitor_stopped_with_error", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start consuming messages
	msgChan, errChan, err := a.Queue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	zapLogger.Info("worker_started")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				if err := dispatcher.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("failed_to_process_job",
						zap.Error(err),
						zap.String("job_id", msg.Job().ID.String()),
						zap.String("job_type", string(msg.Job().Type)),
						zap.Bool("redelivered", msg.Redelivered()),
					)
				}
			}
		}
	}()

	// Handle errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("worker_shutting_down")

	// Cancel context to stop processing
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("metrics_server_shutdown_failed", zap.Error(err))
	}

	zapLogger.Info("worker_stopped")
}
