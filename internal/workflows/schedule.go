package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/logger"
	internalTemporal "github.com/feral-file/gpp-indexer/internal/providers/temporal"
)

const (
	// UPDATE_WORKFLOW_ID is the id of the scheduled update workflow
	UPDATE_WORKFLOW_ID = "gpp-indexer-update"
	// TRIGGER_SCHEDULE marks passes started by the cron schedule
	TRIGGER_SCHEDULE = "schedule"
	// TRIGGER_API marks passes requested over the HTTP API
	TRIGGER_API = "api"
	// MANUAL_WORKFLOW_ID_PREFIX prefixes the id of workflows started on demand
	MANUAL_WORKFLOW_ID_PREFIX = "gpp-indexer-manual-"
)

// ScheduleConfig describes the cron schedule of the update workflow
type ScheduleConfig struct {
	TaskQueue string
	// CronSchedule is a standard cron expression, e.g. "0 3 * * *"
	CronSchedule string
}

// StartSchedule starts the cron update workflow. Starting it again while it runs is a no-op.
func StartSchedule(ctx context.Context, orchestrator internalTemporal.TemporalOrchestrator, w Worker, cfg ScheduleConfig) error {
	if cfg.CronSchedule == "" {
		return nil
	}

	options := client.StartWorkflowOptions{
		ID:                                       UPDATE_WORKFLOW_ID,
		TaskQueue:                                cfg.TaskQueue,
		CronSchedule:                             cfg.CronSchedule,
		WorkflowIDReusePolicy:                    enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: false,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	run, err := orchestrator.ExecuteWorkflow(ctx, options, w.UpdateGPPTable, UpdateRequest{Trigger: TRIGGER_SCHEDULE})
	if err != nil {
		return fmt.Errorf("failed to start update schedule: %w", err)
	}

	logger.InfoCtx(ctx, "Update schedule started",
		zap.String("workflow_id", run.GetID()),
		zap.String("run_id", run.GetRunID()),
		zap.String("cron", cfg.CronSchedule),
	)
	return nil
}
