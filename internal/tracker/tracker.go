package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/store"
)

// Tracker remembers the watermark and the source units already merged
//
//go:generate mockgen -source=tracker.go -destination=../mocks/tracker.go -package=mocks -mock_names=Tracker=MockTracker
type Tracker interface {
	// Load returns the persisted watermark and processed set.
	// Without usable state it returns now minus the lookback and an empty set.
	Load(ctx context.Context) (time.Time, domain.ProcessedIDSet, error)

	// Save commits watermark and processed together with table. A nil table leaves the persisted table unchanged.
	Save(ctx context.Context, watermark time.Time, processed domain.ProcessedIDSet, table *domain.WideTable) error
}

// Config holds tracker configuration
type Config struct {
	// Lookback is how far before now a fresh start begins
	Lookback time.Duration
}

type tracker struct {
	cfg   Config
	store store.Store
	clock adapter.Clock
}

// NewTracker creates a tracker persisting through st
func NewTracker(cfg Config, st store.Store, clock adapter.Clock) Tracker {
	if cfg.Lookback <= 0 {
		cfg.Lookback = domain.DEFAULT_LOOKBACK
	}
	return &tracker{cfg: cfg, store: st, clock: clock}
}

func (t *tracker) Load(ctx context.Context) (time.Time, domain.ProcessedIDSet, error) {
	state, err := t.store.GetRunState(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrCorruptState) {
			return time.Time{}, nil, fmt.Errorf("failed to load run state: %w", err)
		}
		logger.WarnCtx(ctx, "Ignoring unreadable run state", zap.Error(err))
		state = nil
	}

	if state == nil {
		watermark := t.clock.Now().Add(-t.cfg.Lookback)
		logger.InfoCtx(ctx, "No prior run state, starting fresh", zap.Time("watermark", watermark))
		return watermark, domain.NewProcessedIDSet(), nil
	}

	processed := state.Processed
	if processed == nil {
		processed = domain.NewProcessedIDSet()
	}

	// the processed set never shrinks, even when only the watermark is unset
	watermark := state.Watermark.UTC()
	if watermark.IsZero() {
		watermark = t.clock.Now().Add(-t.cfg.Lookback)
	}

	logger.InfoCtx(ctx, "Loaded run state",
		zap.Time("watermark", watermark),
		zap.Int("processed", processed.Len()),
	)

	return watermark, processed, nil
}

func (t *tracker) Save(ctx context.Context, watermark time.Time, processed domain.ProcessedIDSet, table *domain.WideTable) error {
	if processed == nil {
		processed = domain.NewProcessedIDSet()
	}

	state := domain.RunState{
		Watermark: watermark.UTC(),
		Processed: processed,
		UpdatedAt: t.clock.Now(),
	}
	if err := t.store.Commit(ctx, table, state); err != nil {
		return fmt.Errorf("failed to save run state: %w", err)
	}

	logger.InfoCtx(ctx, "Saved run state",
		zap.Time("watermark", state.Watermark),
		zap.Int("processed", processed.Len()),
		zap.Bool("table_changed", table != nil),
	)
	return nil
}
