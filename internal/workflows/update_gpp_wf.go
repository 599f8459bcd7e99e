package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
)

// UpdateGPPTable checks the schedule and runs one update pass
func (w *worker) UpdateGPPTable(ctx workflow.Context, req UpdateRequest) (*UpdateResult, error) {
	logger.InfoWf(ctx, "Updating GPP table", zap.Bool("force", req.Force), zap.String("trigger", req.Trigger))

	if !req.Force {
		checkCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: w.config.CheckTimeout,
			RetryPolicy: &temporal.RetryPolicy{
				InitialInterval: 5 * time.Second,
				MaximumAttempts: 3,
			},
		})

		var due bool
		if err := workflow.ExecuteActivity(checkCtx, w.executor.CheckDue).Get(ctx, &due); err != nil {
			logger.ErrorWf(ctx, fmt.Errorf("failed to check update schedule: %w", err))
			return nil, err
		}
		if !due {
			logger.InfoWf(ctx, "Update not due yet")
			return &UpdateResult{Due: false}, nil
		}
	}

	runCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: w.config.RunTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Minute,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Minute,
			MaximumAttempts:        w.config.RunMaxAttempts,
			NonRetryableErrorTypes: []string{ERROR_TYPE_RUN_IN_PROGRESS, ERROR_TYPE_INVALID_FEATURE},
		},
	})

	var summary *domain.RunSummary
	if err := workflow.ExecuteActivity(runCtx, w.executor.RunUpdate, req.Trigger).Get(ctx, &summary); err != nil {
		logger.ErrorWf(ctx, fmt.Errorf("failed to run update: %w", err))
		return nil, err
	}

	if summary != nil {
		logger.InfoWf(ctx, "GPP table updated",
			zap.String("run_id", summary.RunID),
			zap.Int("processed", summary.ProcessedUnits),
			zap.Int("skipped", summary.SkippedUnits),
			zap.Time("watermark", summary.Watermark),
		)
	}

	return &UpdateResult{Due: true, Summary: summary}, nil
}
