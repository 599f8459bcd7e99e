package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/gpp-indexer/internal/bootstrap"
	"github.com/feral-file/gpp-indexer/internal/config"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/updater"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	force      = flag.Bool("force", false, "Run even if the minimum interval since the last update has not elapsed")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadUpdaterConfig(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Environment:     cfg.Environment,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "gpp-updater",
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting GPP updater", zap.Bool("force", *force))

	components, err := bootstrap.BuildUpdater(ctx, cfg)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to initialize updater: %w", err))
		return 1
	}
	defer components.Close()

	if !*force {
		if err := components.Updater.EnsureDue(ctx); err != nil {
			if errors.Is(err, domain.ErrNotDue) {
				logger.InfoCtx(ctx, "Update not due yet, nothing to do", zap.Error(err))
				return 0
			}
			logger.ErrorCtx(ctx, fmt.Errorf("failed to check schedule: %w", err))
			return 1
		}
	}

	trigger := "cli"
	if *force {
		trigger = "cli-force"
	}

	summary, err := components.Updater.Run(ctx, updater.Options{Trigger: trigger})
	if err != nil {
		if updater.IsSkippable(err) {
			logger.InfoCtx(ctx, "Update skipped", zap.Error(err))
			return 0
		}
		if errors.Is(err, domain.ErrRemoteSource) {
			logger.ErrorCtx(ctx, fmt.Errorf("remote source unavailable, state left untouched: %w", err))
			return 1
		}
		logger.ErrorCtx(ctx, err)
		return 1
	}

	logger.InfoCtx(ctx, "Update finished",
		zap.String("run_id", summary.RunID),
		zap.Int("processed_units", summary.ProcessedUnits),
		zap.Int("regions", summary.Regions),
		zap.Strings("periods", summary.Periods),
		zap.Time("watermark", summary.Watermark),
	)
	return 0
}
