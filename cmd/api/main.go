package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/gpp-indexer/internal/api/middleware"
	"github.com/feral-file/gpp-indexer/internal/api/server"
	"github.com/feral-file/gpp-indexer/internal/bootstrap"
	"github.com/feral-file/gpp-indexer/internal/config"
	"github.com/feral-file/gpp-indexer/internal/logger"
	temporal "github.com/feral-file/gpp-indexer/internal/providers/temporal"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Environment:     cfg.Environment,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags:            map[string]string{"service": "gpp-api"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Flush(2 * time.Second)

	// The API only reads, from the replica when one is configured
	tables, err := bootstrap.OpenStore(ctx, bootstrap.StoreOptions{
		Storage:       cfg.Storage,
		Database:      cfg.Database,
		ObjectStorage: cfg.ObjectStorage,
		ReadOnly:      true,
	})
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to open store: %w", err), zap.String("backend", cfg.Storage.Backend))
		return 1
	}
	defer func() { _ = tables.Close() }()

	authenticator, err := middleware.NewAuthenticator(middleware.AuthConfig{
		JWTPublicKey: cfg.Auth.JWTPublicKey,
		APIKeys:      cfg.Auth.APIKeys,
	})
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("component", "auth"))
		return 1
	}
	if authenticator == nil {
		logger.WarnCtx(ctx, "No credentials configured, the update trigger is unauthenticated")
	}

	orchestrator, closeTemporal := dialTemporal(ctx, cfg.Temporal)
	defer closeTemporal()

	srv := server.New(server.Config{
		Debug:                 cfg.Debug,
		Host:                  cfg.Server.Host,
		Port:                  cfg.Server.Port,
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins:        cfg.Server.AllowedOrigins,
		OrchestratorTaskQueue: cfg.Temporal.TaskQueue,
		Authenticator:         authenticator,
	}, tables, orchestrator, promhttp.Handler())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Error(err, zap.String("component", "server"))
			exitCode = 1
		}
	}

	// the signal context is done here, shut down on a fresh one
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", "server"))
		return 1
	}

	logger.Info("API server stopped")
	return exitCode
}

// dialTemporal connects the update trigger. Without Temporal the API still serves reads.
func dialTemporal(ctx context.Context, cfg config.TemporalConfig) (temporal.TemporalOrchestrator, func()) {
	if cfg.HostPort == "" {
		logger.WarnCtx(ctx, "Temporal is not configured, update trigger disabled")
		return nil, func() {}
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to connect to Temporal, update trigger disabled", zap.Error(err), zap.String("host_port", cfg.HostPort))
		return nil, func() {}
	}

	logger.InfoCtx(ctx, "Connected to Temporal", zap.String("host_port", cfg.HostPort), zap.String("namespace", cfg.Namespace))
	return c, c.Close
}
