package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/gpp-indexer/internal/bootstrap"
	"github.com/feral-file/gpp-indexer/internal/config"
	"github.com/feral-file/gpp-indexer/internal/logger"
	temporal "github.com/feral-file/gpp-indexer/internal/providers/temporal"
	"github.com/feral-file/gpp-indexer/internal/workflows"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Environment:     cfg.Environment,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "gpp-worker",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting GPP worker")

	components, err := bootstrap.BuildUpdater(ctx, &cfg.UpdaterConfig)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to initialize updater", zap.Error(err))
	}
	defer components.Close()

	// Expose run metrics for scraping
	var metricsServer *http.Server
	if cfg.Metrics.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", components.Metrics.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorCtx(ctx, err, zap.String("component", "metrics"))
			}
		}()
		logger.InfoCtx(ctx, "Serving metrics", zap.String("address", cfg.Metrics.ListenAddr))
	}

	// Connect to Temporal with logger integration
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()
	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("namespace", cfg.Temporal.Namespace))

	temporalWorker := worker.New(
		temporalClient,
		cfg.Temporal.TaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
			Interceptors:                       []interceptor.WorkerInterceptor{temporal.NewSentryActivityInterceptor()},
		})
	logger.InfoCtx(ctx, "Created Temporal worker", zap.String("task_queue", cfg.Temporal.TaskQueue))

	executor := workflows.NewExecutor(components.Updater)
	gppWorker := workflows.NewWorker(executor, workflows.WorkerConfig{
		RunTimeout:     cfg.Temporal.RunTimeout,
		RunMaxAttempts: cfg.Temporal.RunMaxAttempts,
	})

	temporalWorker.RegisterWorkflow(gppWorker.UpdateGPPTable)
	temporalWorker.RegisterActivity(executor.CheckDue)
	temporalWorker.RegisterActivity(executor.RunUpdate)
	logger.InfoCtx(ctx, "Registered workflows and activities")

	if err := temporalWorker.Start(); err != nil {
		logger.FatalCtx(ctx, "Failed to start worker", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Worker started and listening for tasks")

	if err := workflows.StartSchedule(ctx, temporalClient, gppWorker, workflows.ScheduleConfig{
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: cfg.Temporal.CronSchedule,
	}); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("cron", cfg.Temporal.CronSchedule))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	cancel()

	logger.Info("Shutting down worker...")
	temporalWorker.Stop()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	logger.Info("Worker stopped")
}
