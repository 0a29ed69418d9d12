package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agexparts/freight-service/internal/activities"
	"github.com/agexparts/freight-service/internal/bootstrap"
	"github.com/agexparts/freight-service/internal/config"
	"github.com/agexparts/freight-service/internal/workflows"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/temporal"
	"github.com/agexparts/freight-service/pkg/tracing"
)

const serviceName = "freight-worker"

func main() {
	cfg := config.Load(serviceName)

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting freight quote worker")

	ctx := context.Background()

	tracerProvider, err := tracing.Initialize(ctx, cfg.Tracing)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracerProvider.Shutdown(shutdownCtx)
		}()
	}

	// No metrics endpoint on the worker; collectors are left nil.
	pipeline, err := bootstrap.New(ctx, cfg, logger, nil)
	if err != nil {
		logger.WithError(err).Error("Failed to build quote pipeline")
		os.Exit(1)
	}
	defer func() {
		if err := pipeline.Close(context.Background()); err != nil {
			logger.WithError(err).Error("Failed to close quote pipeline")
		}
	}()

	cfg.Temporal.Identity = serviceName
	temporalClient, err := temporal.NewClient(ctx, cfg.Temporal)
	if err != nil {
		logger.WithError(err).Error("Failed to create Temporal client")
		os.Exit(1)
	}
	defer temporalClient.Close()
	logger.Info("Connected to Temporal", "hostPort", cfg.Temporal.HostPort, "namespace", cfg.Temporal.Namespace)

	quoteActivities := activities.NewQuoteActivities(pipeline.Service, logger)

	w := temporalClient.NewWorker(temporal.DefaultWorkerOptions(temporal.TaskQueues.FreightQuote))
	w.RegisterWorkflow(workflows.FreightQuoteWorkflow)
	w.RegisterActivity(quoteActivities.GetFreightQuote)
	logger.Info("Registered workflows and activities",
		"workflows", []string{temporal.WorkflowNames.FreightQuote},
		"activities", []string{workflows.GetFreightQuoteActivity},
	)

	go func() {
		if err := w.Run(nil); err != nil {
			logger.WithError(err).Error("Worker failed")
			os.Exit(1)
		}
	}()
	logger.Info("Worker started", "taskQueue", temporal.TaskQueues.FreightQuote)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down worker...")

	w.Stop()
	logger.Info("Worker stopped")
}
