package reducer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/mocks"
	"github.com/feral-file/gpp-indexer/internal/providers/earthengine"
	"github.com/feral-file/gpp-indexer/internal/reducer"
)

var kibraGeometry = json.RawMessage(`{"type":"Point","coordinates":[36.78,-1.31]}`)

func feature(t *testing.T, name interface{}, gpp interface{}) earthengine.Feature {
	t.Helper()
	props := map[string]json.RawMessage{}
	if name != nil {
		raw, err := json.Marshal(name)
		require.NoError(t, err)
		props[domain.REGION_NAME_PROPERTY] = raw
	}
	if gpp != nil {
		raw, err := json.Marshal(gpp)
		require.NoError(t, err)
		props[domain.DEFAULT_BAND] = raw
	}
	return earthengine.Feature{Type: "Feature", Geometry: kibraGeometry, Properties: props}
}

func TestReduce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEarthEngineClient(ctrl)
	r := reducer.NewReducer(reducer.DefaultConfig(), client)

	unit := domain.SourceUnit{
		ID:         "MODIS/061/MOD17A2H/2024_01_09",
		AcquiredAt: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	}

	client.EXPECT().
		ComputeFeatures(gomock.Any(), reducer.BuildExpression(reducer.DefaultConfig(), unit.ID)).
		Return([]earthengine.Feature{
			feature(t, "Kibra", 0.0125),
			feature(t, "Turkana Central", nil),
		}, nil)

	rows, err := r.Reduce(context.Background(), unit)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	expectedKey, err := domain.NewRegionKey("Kibra", kibraGeometry)
	require.NoError(t, err)

	assert.Equal(t, expectedKey, rows[0].Region.Key)
	assert.Equal(t, "Kibra", rows[0].Region.Name)
	assert.Equal(t, unit.ID, rows[0].UnitID)
	assert.Equal(t, unit.AcquiredAt, rows[0].Date)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 0.0125, *rows[0].Value)

	assert.Nil(t, rows[1].Value)
}

func TestReduce_InvalidFeatures(t *testing.T) {
	tests := []struct {
		name    string
		feature func(t *testing.T) earthengine.Feature
	}{
		{
			name:    "missing name",
			feature: func(t *testing.T) earthengine.Feature { return feature(t, nil, 1.0) },
		},
		{
			name:    "name is not a string",
			feature: func(t *testing.T) earthengine.Feature { return feature(t, 42, 1.0) },
		},
		{
			name:    "value is not a number",
			feature: func(t *testing.T) earthengine.Feature { return feature(t, "Kibra", "high") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mocks.NewMockEarthEngineClient(ctrl)
			client.EXPECT().ComputeFeatures(gomock.Any(), gomock.Any()).Return([]earthengine.Feature{tt.feature(t)}, nil)

			_, err := reducer.NewReducer(reducer.Config{}, client).Reduce(context.Background(), domain.SourceUnit{ID: "x"})
			assert.ErrorIs(t, err, domain.ErrInvalidFeature)
		})
	}
}

func TestReduce_ClientError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEarthEngineClient(ctrl)
	client.EXPECT().ComputeFeatures(gomock.Any(), gomock.Any()).Return(nil, domain.ErrRemoteSource)

	_, err := reducer.NewReducer(reducer.Config{}, client).Reduce(context.Background(), domain.SourceUnit{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrRemoteSource)
}

func TestBuildExpression(t *testing.T) {
	expr := reducer.BuildExpression(reducer.Config{}, "MODIS/061/MOD17A2H/2024_01_09")

	assert.Equal(t, "0", expr.Result)
	require.Contains(t, expr.Values, "0")
	require.Contains(t, expr.Values, "1")

	root := expr.Values["0"].FunctionInvocationValue
	require.NotNil(t, root)
	assert.Equal(t, "Image.reduceRegions", root.FunctionName)
	assert.Equal(t, "1", root.Arguments["collection"].ValueReference)
	assert.JSONEq(t, "500", string(root.Arguments["scale"].ConstantValue))
	assert.JSONEq(t, "6", string(root.Arguments["tileScale"].ConstantValue))

	scaled := root.Arguments["image"].FunctionInvocationValue
	require.NotNil(t, scaled)
	assert.Equal(t, "Image.multiply", scaled.FunctionName)
	factor := scaled.Arguments["image2"].FunctionInvocationValue
	require.NotNil(t, factor)
	assert.JSONEq(t, "0.0001", string(factor.Arguments["value"].ConstantValue))

	regions := expr.Values["1"].FunctionInvocationValue
	require.NotNil(t, regions)
	assert.Equal(t, "Collection.filter", regions.FunctionName)
	filter := regions.Arguments["filter"].FunctionInvocationValue
	require.NotNil(t, filter)
	assert.JSONEq(t, `"KEN"`, string(filter.Arguments["rightValue"].ConstantValue))

	data, err := json.Marshal(expr)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"MODIS/061/MOD17A2H/2024_01_09"`)
	assert.Contains(t, string(data), `"WM/geoLab/geoBoundaries/600/ADM2"`)
}

func TestListUnits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEarthEngineClient(ctrl)
	c := reducer.NewCatalog(reducer.Config{}, client)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	client.EXPECT().
		ListImages(gomock.Any(), earthengine.ListImagesRequest{
			Collection: domain.DEFAULT_IMAGE_COLLECTION,
			Start:      from,
			End:        to,
			Region:     reducer.KenyaBoundingBox,
		}).
		Return([]earthengine.Image{
			{ID: "MODIS/061/MOD17A2H/2024_01_17", StartTime: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)},
			{Name: "projects/earthengine-public/assets/MODIS/061/MOD17A2H/2024_01_01", StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{},
		}, nil)

	units, err := c.ListUnits(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "MODIS/061/MOD17A2H/2024_01_01", units[0].ID)
	assert.Equal(t, "MODIS/061/MOD17A2H/2024_01_17", units[1].ID)
}

func TestListUnits_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEarthEngineClient(ctrl)
	client.EXPECT().ListImages(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	_, err := reducer.NewCatalog(reducer.Config{}, client).ListUnits(context.Background(), time.Time{}, time.Time{})
	assert.ErrorContains(t, err, "boom")
}

func TestSortUnits(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	units := []domain.SourceUnit{
		{ID: "b", AcquiredAt: day},
		{ID: "c", AcquiredAt: day.AddDate(0, 0, -8)},
		{ID: "a", AcquiredAt: day},
	}

	reducer.SortUnits(units)

	assert.Equal(t, []string{"c", "a", "b"}, []string{units[0].ID, units[1].ID, units[2].ID})
}
