package reducer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/providers/earthengine"
)

// Catalog lists the source units available in a date range
//
//go:generate mockgen -source=catalog.go -destination=../mocks/catalog.go -package=mocks -mock_names=Catalog=MockCatalog
type Catalog interface {
	// ListUnits returns the units acquired in [from, to), ordered by acquisition time then id
	ListUnits(ctx context.Context, from, to time.Time) ([]domain.SourceUnit, error)
}

type catalog struct {
	cfg    Config
	client earthengine.Client
}

// NewCatalog creates a catalog backed by an Earth Engine image collection
func NewCatalog(cfg Config, client earthengine.Client) Catalog {
	return &catalog{cfg: cfg.withDefaults(), client: client}
}

func (c *catalog) ListUnits(ctx context.Context, from, to time.Time) ([]domain.SourceUnit, error) {
	images, err := c.client.ListImages(ctx, earthengine.ListImagesRequest{
		Collection: c.cfg.ImageCollection,
		Start:      from,
		End:        to,
		Region:     c.cfg.ListingRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.cfg.ImageCollection, err)
	}

	units := make([]domain.SourceUnit, 0, len(images))
	for _, img := range images {
		id := img.ID
		if id == "" {
			id = strings.TrimPrefix(img.Name, earthengine.PUBLIC_CATALOG_PREFIX)
		}
		if id == "" {
			continue
		}
		units = append(units, domain.SourceUnit{ID: id, AcquiredAt: img.StartTime.UTC()})
	}

	SortUnits(units)
	return units, nil
}

// SortUnits orders units by acquisition time, then id
func SortUnits(units []domain.SourceUnit) {
	sort.SliceStable(units, func(i, j int) bool {
		if !units[i].AcquiredAt.Equal(units[j].AcquiredAt) {
			return units[i].AcquiredAt.Before(units[j].AcquiredAt)
		}
		return units[i].ID < units[j].ID
	})
}
