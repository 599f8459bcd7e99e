package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/collector"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/lock"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/merge"
	"github.com/feral-file/gpp-indexer/internal/messaging"
	"github.com/feral-file/gpp-indexer/internal/metrics"
	"github.com/feral-file/gpp-indexer/internal/reshape"
	"github.com/feral-file/gpp-indexer/internal/store"
	"github.com/feral-file/gpp-indexer/internal/tracker"
)

// Options describes a single update pass
type Options struct {
	// Trigger names what started the pass, e.g. "cli" or "schedule"
	Trigger string
}

// Updater runs the incremental collect, reshape and merge pass
//
//go:generate mockgen -source=updater.go -destination=../mocks/updater.go -package=mocks -mock_names=Updater=MockUpdater
type Updater interface {
	// Due reports whether at least the minimum interval has elapsed since the watermark.
	// Callers check it before Run unless the pass is forced.
	Due(ctx context.Context) (bool, error)

	// EnsureDue returns domain.ErrNotDue when Due is false and records the pass as skipped
	EnsureDue(ctx context.Context) error

	// Run performs one pass and commits its result. Nothing is persisted when it fails.
	Run(ctx context.Context, opts Options) (*domain.RunSummary, error)
}

// Config holds updater configuration
type Config struct {
	MinInterval time.Duration
	MergePolicy domain.MergePolicy
	Reshape     reshape.Options
}

// Deps groups the collaborators of the updater
type Deps struct {
	Tracker   tracker.Tracker
	Collector collector.Collector
	Tables    store.Reader
	Locker    lock.Locker
	Publisher messaging.Publisher
	Metrics   metrics.Recorder
	Clock     adapter.Clock
}

type updater struct {
	cfg  Config
	deps Deps
}

// NewUpdater creates a new updater. A nil Locker or Publisher disables locking or notifications.
func NewUpdater(cfg Config, deps Deps) Updater {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = domain.DEFAULT_MIN_INTERVAL
	}
	if cfg.MergePolicy == "" {
		cfg.MergePolicy = domain.MergePolicyAverage
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewNoopLocker()
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.NewNoopPublisher()
	}
	return &updater{cfg: cfg, deps: deps}
}

func (u *updater) Due(ctx context.Context) (bool, error) {
	watermark, _, err := u.deps.Tracker.Load(ctx)
	if err != nil {
		return false, err
	}

	elapsed := u.deps.Clock.Now().Sub(watermark)
	due := elapsed >= u.cfg.MinInterval

	logger.InfoCtx(ctx, "Checked update schedule",
		zap.Time("watermark", watermark),
		zap.Duration("elapsed", elapsed),
		zap.Duration("min_interval", u.cfg.MinInterval),
		zap.Bool("due", due),
	)
	return due, nil
}

func (u *updater) EnsureDue(ctx context.Context) error {
	due, err := u.Due(ctx)
	if err != nil {
		return err
	}
	if due {
		return nil
	}

	if u.deps.Metrics != nil {
		u.deps.Metrics.RecordRun(nil, 0, domain.ErrNotDue)
		if pushErr := u.deps.Metrics.Push(ctx); pushErr != nil {
			logger.WarnCtx(ctx, "Failed to push metrics", zap.Error(pushErr))
		}
	}
	return fmt.Errorf("%w: minimum interval is %s", domain.ErrNotDue, u.cfg.MinInterval)
}

func (u *updater) Run(ctx context.Context, opts Options) (summary *domain.RunSummary, err error) {
	started := u.deps.Clock.Now()
	runID := ulid.Make().String()

	defer func() {
		if u.deps.Metrics == nil {
			return
		}
		u.deps.Metrics.RecordRun(summary, u.deps.Clock.Since(started), err)
		if pushErr := u.deps.Metrics.Push(ctx); pushErr != nil {
			logger.WarnCtx(ctx, "Failed to push metrics", zap.String("run_id", runID), zap.Error(pushErr))
		}
	}()

	token, err := u.deps.Locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		// the lock must be released even when ctx is already canceled
		if releaseErr := u.deps.Locker.Release(context.WithoutCancel(ctx), token); releaseErr != nil {
			logger.WarnCtx(ctx, "Failed to release update lock", zap.String("run_id", runID), zap.Error(releaseErr))
		}
	}()

	logger.InfoCtx(ctx, "Starting update run", zap.String("run_id", runID), zap.String("trigger", opts.Trigger))

	summary, err = u.run(ctx, runID, started)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("update run %s failed: %w", runID, err))
		return nil, err
	}

	logger.InfoCtx(ctx, "Update run completed",
		zap.String("run_id", runID),
		zap.Int("processed", summary.ProcessedUnits),
		zap.Int("skipped", summary.SkippedUnits),
		zap.Time("watermark", summary.Watermark),
		zap.Bool("table_changed", summary.TableChanged),
	)
	return summary, nil
}

func (u *updater) run(ctx context.Context, runID string, started time.Time) (*domain.RunSummary, error) {
	watermark, processed, err := u.deps.Tracker.Load(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := u.deps.Collector.Collect(ctx, watermark, started, processed)
	if err != nil {
		return nil, err
	}

	summary := &domain.RunSummary{
		RunID:             runID,
		StartedAt:         started,
		PreviousWatermark: watermark,
		Watermark:         watermark,
		ProcessedUnits:    len(batch.NewUnits),
		SkippedUnits:      len(batch.SkippedUnits),
		Rows:              len(batch.Rows),
	}

	var table *domain.WideTable
	if len(batch.NewUnits) > 0 {
		if batch.MaxDate.After(watermark) {
			summary.Watermark = batch.MaxDate
		}

		if len(batch.Rows) > 0 {
			var fragment *domain.WideTable
			table, fragment, err = u.mergeRows(ctx, runID, batch.Rows)
			if err != nil {
				return nil, err
			}
			summary.TableChanged = true
			summary.Regions = len(table.Rows)
			summary.Periods = fragment.Labels()
		}
	} else {
		logger.InfoCtx(ctx, "No new source units", zap.String("run_id", runID), zap.Int("skipped", summary.SkippedUnits))
	}

	if err := u.deps.Tracker.Save(ctx, summary.Watermark, batch.Processed, table); err != nil {
		return nil, err
	}
	summary.FinishedAt = u.deps.Clock.Now()

	if summary.TableChanged {
		u.publish(ctx, summary)
	}

	return summary, nil
}

// mergeRows reshapes this run's rows and folds them into the persisted table
func (u *updater) mergeRows(ctx context.Context, runID string, rows []domain.RegionRow) (*domain.WideTable, *domain.WideTable, error) {
	fragment := reshape.Pivot(rows, u.cfg.Reshape)

	persisted, err := u.deps.Tables.GetWideTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load wide table: %w", err)
	}

	table, stats := merge.Merge(persisted, fragment, u.cfg.MergePolicy)
	logger.InfoCtx(ctx, "Merged wide table",
		zap.String("run_id", runID),
		zap.String("policy", string(u.cfg.MergePolicy)),
		zap.Int("fragment_rows", len(fragment.Rows)),
		zap.Strings("fragment_periods", fragment.Labels()),
		zap.Int("new_rows", stats.NewRows),
		zap.Int("new_columns", stats.NewColumns),
		zap.Int("new_cells", stats.NewCells),
		zap.Int("combined_cells", stats.Combined),
	)

	return table, fragment, nil
}

// publish announces the committed table, failures are logged only
func (u *updater) publish(ctx context.Context, summary *domain.RunSummary) {
	event := &domain.TableUpdatedEvent{
		RunID:          summary.RunID,
		Watermark:      summary.Watermark,
		ProcessedUnits: summary.ProcessedUnits,
		Periods:        summary.Periods,
		Regions:        summary.Regions,
		OccurredAt:     summary.FinishedAt,
	}

	if err := u.deps.Publisher.PublishTableUpdated(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish table update", zap.String("run_id", summary.RunID), zap.Error(err))
	}
}

// IsSkippable reports whether err means the pass did not need to run
func IsSkippable(err error) bool {
	return errors.Is(err, domain.ErrNotDue) || errors.Is(err, domain.ErrRunInProgress)
}
