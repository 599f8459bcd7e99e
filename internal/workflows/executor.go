package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/updater"
)

const (
	// ERROR_TYPE_RUN_IN_PROGRESS marks an activity failure caused by another holder of the update lock
	ERROR_TYPE_RUN_IN_PROGRESS = "RunInProgress"
	// ERROR_TYPE_INVALID_FEATURE marks a reduction result that no retry can fix
	ERROR_TYPE_INVALID_FEATURE = "InvalidFeature"
)

// Executor defines the interface for executing activities
//
//go:generate mockgen -source=executor.go -destination=../mocks/executor.go -package=mocks -mock_names=Executor=MockExecutor
type Executor interface {
	// CheckDue reports whether the minimum interval has elapsed since the watermark
	CheckDue(ctx context.Context) (bool, error)

	// RunUpdate performs one update pass
	RunUpdate(ctx context.Context, trigger string) (*domain.RunSummary, error)
}

type executor struct {
	updater updater.Updater
}

// NewExecutor creates a new executor instance
func NewExecutor(u updater.Updater) Executor {
	return &executor{updater: u}
}

func (e *executor) CheckDue(ctx context.Context) (bool, error) {
	err := e.updater.EnsureDue(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotDue):
		return false, nil
	default:
		return false, err
	}
}

func (e *executor) RunUpdate(ctx context.Context, trigger string) (*domain.RunSummary, error) {
	summary, err := e.updater.Run(ctx, updater.Options{Trigger: trigger})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunInProgress):
			logger.WarnCtx(ctx, "Update already running elsewhere", zap.String("trigger", trigger))
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ERROR_TYPE_RUN_IN_PROGRESS, err)
		case errors.Is(err, domain.ErrInvalidFeature):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), ERROR_TYPE_INVALID_FEATURE, err)
		}
		return nil, err
	}

	return summary, nil
}
