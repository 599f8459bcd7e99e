package logger

import (
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"
)

// WorkflowInfo identifies a workflow execution in log lines and sentry events
type WorkflowInfo struct {
	WorkflowType string
	WorkflowID   string
	RunID        string
	Namespace    string
	TaskQueue    string
}

// GetWorkflowInfo extracts workflow information from workflow.Context
func GetWorkflowInfo(ctx workflow.Context) *WorkflowInfo {
	info := workflow.GetInfo(ctx)
	if info == nil {
		return nil
	}

	workflowType := info.WorkflowType.Name
	if workflowType == "" {
		workflowType = "unknown"
	}

	return &WorkflowInfo{
		WorkflowType: workflowType,
		WorkflowID:   info.WorkflowExecution.ID,
		RunID:        info.WorkflowExecution.RunID,
		Namespace:    info.Namespace,
		TaskQueue:    info.TaskQueueName,
	}
}

// WithWorkflowInfo returns a logger annotated with the workflow execution
func WithWorkflowInfo(info WorkflowInfo) *zap.Logger {
	return log.With(
		zap.String("workflow_type", info.WorkflowType),
		zap.String("workflow_id", info.WorkflowID),
		zap.String("workflow_run_id", info.RunID),
		zap.String("namespace", info.Namespace),
		zap.String("task_queue", info.TaskQueue),
	)
}

// fromWorkflow returns nil while the workflow is replaying so history replays do not duplicate log lines
func fromWorkflow(ctx workflow.Context) *zap.Logger {
	if workflow.IsReplaying(ctx) {
		return nil
	}
	if info := GetWorkflowInfo(ctx); info != nil {
		return WithWorkflowInfo(*info)
	}
	return log
}

// InfoWf logs an info message with workflow context
func InfoWf(ctx workflow.Context, msg string, fields ...zap.Field) {
	if l := fromWorkflow(ctx); l != nil {
		l.Info(msg, fields...)
	}
}

// WarnWf logs a warning message with workflow context
func WarnWf(ctx workflow.Context, msg string, fields ...zap.Field) {
	if l := fromWorkflow(ctx); l != nil {
		l.Warn(msg, fields...)
	}
}

// ErrorWf logs an error with workflow context
func ErrorWf(ctx workflow.Context, err error, fields ...zap.Field) {
	if l := fromWorkflow(ctx); l != nil {
		l.Error(errorMessage(err), fields...)
	}
}
