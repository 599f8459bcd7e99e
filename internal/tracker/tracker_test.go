package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/mocks"
	"github.com/feral-file/gpp-indexer/internal/store"
	"github.com/feral-file/gpp-indexer/internal/tracker"
)

var testNow = time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*mocks.MockStore, *mocks.MockClock, tracker.Tracker) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	return st, clock, tracker.NewTracker(tracker.Config{}, st, clock)
}

func TestLoad_FreshStart(t *testing.T) {
	st, clock, tr := setup(t)

	st.EXPECT().GetRunState(gomock.Any()).Return(nil, nil)
	clock.EXPECT().Now().Return(testNow)

	watermark, processed, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(-8*24*time.Hour), watermark)
	assert.Equal(t, 0, processed.Len())
}

func TestLoad_CorruptStateStartsFresh(t *testing.T) {
	st, clock, tr := setup(t)

	st.EXPECT().GetRunState(gomock.Any()).Return(nil, fmt.Errorf("%w: unexpected end of JSON input", store.ErrCorruptState))
	clock.EXPECT().Now().Return(testNow)

	watermark, processed, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, -8), watermark)
	assert.NotNil(t, processed)
	assert.Equal(t, 0, processed.Len())
}

func TestLoad_BackendErrorFails(t *testing.T) {
	st, _, tr := setup(t)

	st.EXPECT().GetRunState(gomock.Any()).Return(nil, errors.New("connection refused"))

	_, _, err := tr.Load(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestLoad_PersistedState(t *testing.T) {
	st, _, tr := setup(t)

	watermark := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	st.EXPECT().GetRunState(gomock.Any()).Return(&domain.RunState{
		Watermark: watermark,
		Processed: domain.NewProcessedIDSet("2024_03_05"),
	}, nil)

	got, processed, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, watermark, got)
	assert.True(t, processed.Contains("2024_03_05"))
}

func TestLoad_NilProcessedSet(t *testing.T) {
	st, _, tr := setup(t)

	st.EXPECT().GetRunState(gomock.Any()).Return(&domain.RunState{Watermark: testNow}, nil)

	_, processed, err := tr.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, processed)
	assert.Equal(t, 0, processed.Len())
}

func TestLoad_ZeroWatermarkKeepsProcessedSet(t *testing.T) {
	st, clock, tr := setup(t)

	st.EXPECT().GetRunState(gomock.Any()).Return(&domain.RunState{
		Processed: domain.NewProcessedIDSet("2024_01_01", "2024_01_09"),
	}, nil)
	clock.EXPECT().Now().Return(testNow)

	watermark, processed, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, -8), watermark)
	assert.Equal(t, 2, processed.Len())
	assert.True(t, processed.Contains("2024_01_01"))
	assert.True(t, processed.Contains("2024_01_09"))
}

func TestLoad_CustomLookback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	tr := tracker.NewTracker(tracker.Config{Lookback: 30 * 24 * time.Hour}, st, clock)

	st.EXPECT().GetRunState(gomock.Any()).Return(nil, nil)
	clock.EXPECT().Now().Return(testNow)

	watermark, _, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, -30), watermark)
}

func TestSave(t *testing.T) {
	st, clock, tr := setup(t)

	watermark := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	table := &domain.WideTable{}
	clock.EXPECT().Now().Return(testNow)
	st.EXPECT().Commit(gomock.Any(), table, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.WideTable, state domain.RunState) error {
			assert.Equal(t, watermark, state.Watermark)
			assert.Equal(t, testNow, state.UpdatedAt)
			assert.Equal(t, []string{"a", "b"}, state.Processed.Sorted())
			return nil
		})

	require.NoError(t, tr.Save(context.Background(), watermark, domain.NewProcessedIDSet("b", "a"), table))
}

func TestSave_CommitError(t *testing.T) {
	st, clock, tr := setup(t)

	clock.EXPECT().Now().Return(testNow)
	st.EXPECT().Commit(gomock.Any(), gomock.Nil(), gomock.Any()).Return(errors.New("disk full"))

	err := tr.Save(context.Background(), testNow, nil, nil)
	assert.ErrorContains(t, err, "disk full")
}
