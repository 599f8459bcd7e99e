package reducer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/providers/earthengine"
)

// Reducer turns one source unit into one row per region
//
//go:generate mockgen -source=reducer.go -destination=../mocks/reducer.go -package=mocks -mock_names=Reducer=MockReducer
type Reducer interface {
	// Reduce clips the unit to the region set, applies the scale factor and returns
	// the mean value of every region, dated with the unit's acquisition day.
	// Regions without valid pixels get a nil value.
	Reduce(ctx context.Context, unit domain.SourceUnit) ([]domain.RegionRow, error)
}

type reducer struct {
	cfg    Config
	client earthengine.Client
}

// NewReducer creates an Earth Engine backed reducer
func NewReducer(cfg Config, client earthengine.Client) Reducer {
	return &reducer{cfg: cfg.withDefaults(), client: client}
}

func (r *reducer) Reduce(ctx context.Context, unit domain.SourceUnit) ([]domain.RegionRow, error) {
	features, err := r.client.ComputeFeatures(ctx, BuildExpression(r.cfg, unit.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to reduce %s: %w", unit.ID, err)
	}

	date := unit.Date()
	rows := make([]domain.RegionRow, 0, len(features))
	missing := 0
	for i, f := range features {
		row, err := r.toRow(f, unit.ID, date)
		if err != nil {
			return nil, fmt.Errorf("feature %d of %s: %w", i, unit.ID, err)
		}
		if row.Value == nil {
			missing++
		}
		rows = append(rows, row)
	}

	logger.DebugCtx(ctx, "Reduced source unit",
		zap.String("unit_id", unit.ID),
		zap.Time("date", date),
		zap.Int("regions", len(rows)),
		zap.Int("missing_values", missing),
	)

	return rows, nil
}

func (r *reducer) toRow(f earthengine.Feature, unitID string, date time.Time) (domain.RegionRow, error) {
	rawName, ok := f.Properties[domain.REGION_NAME_PROPERTY]
	if !ok {
		return domain.RegionRow{}, fmt.Errorf("%w: missing %s", domain.ErrInvalidFeature, domain.REGION_NAME_PROPERTY)
	}
	var name string
	if err := json.Unmarshal(rawName, &name); err != nil {
		return domain.RegionRow{}, fmt.Errorf("%w: %s is not a string", domain.ErrInvalidFeature, domain.REGION_NAME_PROPERTY)
	}

	key, err := domain.NewRegionKey(name, f.Geometry)
	if err != nil {
		return domain.RegionRow{}, err
	}

	value, err := r.value(f.Properties[r.cfg.Band])
	if err != nil {
		return domain.RegionRow{}, err
	}

	return domain.RegionRow{
		Region: domain.Region{Key: key, Name: name},
		UnitID: unitID,
		Date:   date,
		Value:  value,
	}, nil
}

// value decodes the reduced band; an absent or null property means no valid pixels
func (r *reducer) value(raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %s is not a number: %s", domain.ErrInvalidFeature, r.cfg.Band, string(raw))
	}
	return &v, nil
}

// BuildExpression returns the computation graph that reduces one image over the region collection
func BuildExpression(cfg Config, imageID string) earthengine.Expression {
	cfg = cfg.withDefaults()

	regions := earthengine.Invoke("Collection.filter", map[string]earthengine.ValueNode{
		"collection": earthengine.Invoke("Collection.loadTable", map[string]earthengine.ValueNode{
			"tableId": earthengine.Constant(cfg.RegionTable),
		}),
		"filter": earthengine.Invoke("Filter.equals", map[string]earthengine.ValueNode{
			"leftField":  earthengine.Constant(domain.REGION_COUNTRY_PROPERTY),
			"rightValue": earthengine.Constant(cfg.CountryCode),
		}),
	})
	regionsRef := earthengine.ValueNode{ValueReference: "1"}

	image := earthengine.Invoke("Image.select", map[string]earthengine.ValueNode{
		"input": earthengine.Invoke("Image.load", map[string]earthengine.ValueNode{
			"id": earthengine.Constant(imageID),
		}),
		"bandSelectors": earthengine.Constant([]string{cfg.Band}),
	})

	clipped := earthengine.Invoke("Image.clipToCollection", map[string]earthengine.ValueNode{
		"input":      image,
		"collection": regionsRef,
	})

	scaled := earthengine.Invoke("Image.multiply", map[string]earthengine.ValueNode{
		"image1": clipped,
		"image2": earthengine.Invoke("Image.constant", map[string]earthengine.ValueNode{
			"value": earthengine.Constant(cfg.ScaleFactor),
		}),
	})

	mean := earthengine.Invoke("Reducer.setOutputs", map[string]earthengine.ValueNode{
		"reducer": earthengine.Invoke("Reducer.mean", nil),
		"outputs": earthengine.Constant([]string{cfg.Band}),
	})

	reduced := earthengine.Invoke("Image.reduceRegions", map[string]earthengine.ValueNode{
		"image":      scaled,
		"collection": regionsRef,
		"reducer":    mean,
		"scale":      earthengine.Constant(cfg.ScaleMeters),
		"tileScale":  earthengine.Constant(cfg.TileScale),
	})

	return earthengine.Expression{
		Result: "0",
		Values: map[string]earthengine.ValueNode{
			"0": reduced,
			"1": regions,
		},
	}
}
