package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/reducer"
)

// Batch is the result of one collection pass
type Batch struct {
	// Rows are ordered by source unit date, then unit id
	Rows []domain.RegionRow
	// Processed is the input set plus every unit reduced in this pass
	Processed domain.ProcessedIDSet
	// NewUnits were reduced in this pass
	NewUnits []domain.SourceUnit
	// SkippedUnits were already in the processed set
	SkippedUnits []domain.SourceUnit
	// MaxDate is the latest acquisition day of NewUnits, zero when there are none
	MaxDate time.Time
}

// Config holds collector configuration
type Config struct {
	// Concurrency is the number of units reduced at the same time. Values below 1 mean 1.
	Concurrency int
}

// Collector gathers the region rows of every unprocessed unit since the watermark
//
//go:generate mockgen -source=collector.go -destination=../mocks/collector.go -package=mocks -mock_names=Collector=MockCollector
type Collector interface {
	// Collect lists the units acquired in [day(watermark), day(now)), skips those in processed
	// and reduces the rest. processed itself is never modified. Any reduction failure fails
	// the whole pass.
	Collect(ctx context.Context, watermark, now time.Time, processed domain.ProcessedIDSet) (*Batch, error)
}

type collector struct {
	cfg     Config
	catalog reducer.Catalog
	reducer reducer.Reducer
}

// NewCollector creates a new collector
func NewCollector(cfg Config, catalog reducer.Catalog, r reducer.Reducer) Collector {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &collector{cfg: cfg, catalog: catalog, reducer: r}
}

func (c *collector) Collect(ctx context.Context, watermark, now time.Time, processed domain.ProcessedIDSet) (*Batch, error) {
	batch := &Batch{Processed: processed.Clone()}

	from := domain.TruncateDay(watermark)
	to := domain.TruncateDay(now)
	if !from.Before(to) {
		logger.InfoCtx(ctx, "Empty collection window", zap.Time("from", from), zap.Time("to", to))
		return batch, nil
	}

	units, err := c.catalog.ListUnits(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list source units: %w", err)
	}

	pending := make([]domain.SourceUnit, 0, len(units))
	queued := make(map[string]struct{}, len(units))
	for _, unit := range units {
		if processed.Contains(unit.ID) {
			logger.InfoCtx(ctx, "Skipping already processed unit", zap.String("unit_id", unit.ID))
			batch.SkippedUnits = append(batch.SkippedUnits, unit)
			continue
		}
		if _, dup := queued[unit.ID]; dup {
			continue
		}
		queued[unit.ID] = struct{}{}
		pending = append(pending, unit)
	}
	reducer.SortUnits(pending)

	logger.InfoCtx(ctx, "Collecting source units",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("listed", len(units)),
		zap.Int("pending", len(pending)),
		zap.Int("skipped", len(batch.SkippedUnits)),
	)

	if len(pending) == 0 {
		return batch, nil
	}

	results, err := c.reduceAll(ctx, pending)
	if err != nil {
		return nil, err
	}

	// results follow submission order, which is unit order
	for i, unit := range pending {
		logger.InfoCtx(ctx, "Processed unit", zap.String("unit_id", unit.ID), zap.Int("rows", len(results[i])))
		batch.Rows = append(batch.Rows, results[i]...)
		batch.Processed.Add(unit.ID)
		batch.NewUnits = append(batch.NewUnits, unit)
		if d := unit.Date(); d.After(batch.MaxDate) {
			batch.MaxDate = d
		}
	}

	return batch, nil
}

func (c *collector) reduceAll(ctx context.Context, units []domain.SourceUnit) ([][]domain.RegionRow, error) {
	pool := pond.NewResultPool[[]domain.RegionRow](c.cfg.Concurrency, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	for _, unit := range units {
		group.SubmitErr(func() ([]domain.RegionRow, error) {
			rows, err := c.reducer.Reduce(ctx, unit)
			if err != nil {
				return nil, fmt.Errorf("failed to reduce unit %s: %w", unit.ID, err)
			}
			return rows, nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, err
	}

	return results, nil
}
