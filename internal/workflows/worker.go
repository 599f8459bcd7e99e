package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// UpdateRequest is the input of the UpdateGPPTable workflow
type UpdateRequest struct {
	// Force skips the minimum interval check
	Force bool `json:"force"`
	// Trigger names what started the workflow
	Trigger string `json:"trigger"`
}

// UpdateResult is the output of the UpdateGPPTable workflow
type UpdateResult struct {
	// Due is false when the pass was skipped because the watermark is too recent
	Due     bool               `json:"due"`
	Summary *domain.RunSummary `json:"summary,omitempty"`
}

// Worker defines the workflows run by the indexer worker
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker.go -package=mocks -mock_names=Worker=MockWorker
type Worker interface {
	// UpdateGPPTable checks the schedule and runs one update pass
	UpdateGPPTable(ctx workflow.Context, req UpdateRequest) (*UpdateResult, error)
}

// WorkerConfig holds workflow level settings
type WorkerConfig struct {
	// CheckTimeout bounds the CheckDue activity
	CheckTimeout time.Duration
	// RunTimeout bounds the RunUpdate activity
	RunTimeout time.Duration
	// RunMaxAttempts bounds RunUpdate retries
	RunMaxAttempts int32
}

type worker struct {
	config   WorkerConfig
	executor Executor
}

// NewWorker creates a new worker instance
func NewWorker(executor Executor, config WorkerConfig) Worker {
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = time.Minute
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = 2 * time.Hour
	}
	if config.RunMaxAttempts <= 0 {
		config.RunMaxAttempts = 3
	}
	return &worker{config: config, executor: executor}
}
