package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// StoreTestSuite runs the same contract against different implementations
type StoreTestSuite struct {
	// InitDB should be called before each test to get an empty store
	InitDB func(t *testing.T) Store
	// CleanupDB should be called after each test to clean up the backend
	CleanupDB func(t *testing.T)
}

// =============================================================================
// Test Data Builders
// =============================================================================

func BuildTestState(watermark time.Time, ids ...string) domain.RunState {
	processed := domain.NewProcessedIDSet()
	for _, id := range ids {
		processed.Add(id)
	}
	return domain.RunState{
		Watermark: watermark,
		Processed: processed,
		UpdatedAt: watermark.Add(time.Hour),
	}
}

func BuildTestTable() *domain.WideTable {
	jan := domain.Period{Year: 2024, Month: time.January}
	feb := domain.Period{Year: 2024, Month: time.February}
	return &domain.WideTable{
		Columns: []domain.Period{feb, jan},
		Rows: []domain.WideRow{
			{
				Key:   "b-turkana",
				Name:  "Turkana Central Sub County",
				Cells: map[domain.Period]domain.Cell{jan: {Value: 0.0421, Count: 3}},
			},
			{
				Key:  "a-kibra",
				Name: "Kibra Sub County",
				Cells: map[domain.Period]domain.Cell{
					jan: {Value: 0.0125, Count: 1},
					feb: {Value: 0.0133, Count: 2},
				},
			},
			{
				Key:   "c-lamu",
				Name:  "Lamu West Sub County",
				Cells: map[domain.Period]domain.Cell{},
			},
		},
	}
}

// RunStoreTests runs the store contract
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	suite := &StoreTestSuite{InitDB: initDB, CleanupDB: cleanupDB}

	t.Run("RunState", suite.testRunState)
	t.Run("WideTable", suite.testWideTable)
	t.Run("CommitWithoutTable", suite.testCommitWithoutTable)
	t.Run("CommitReplacesTable", suite.testCommitReplacesTable)
}

func (s *StoreTestSuite) testRunState(t *testing.T) {
	t.Run("absent state returns nil", func(t *testing.T) {
		store := s.InitDB(t)
		defer s.CleanupDB(t)

		state, err := store.GetRunState(context.Background())
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("round trip", func(t *testing.T) {
		store := s.InitDB(t)
		defer s.CleanupDB(t)
		ctx := context.Background()

		watermark := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Commit(ctx, nil, BuildTestState(watermark, "2024_03_05", "2024_02_26")))

		state, err := store.GetRunState(ctx)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.True(t, state.Watermark.Equal(watermark))
		assert.Equal(t, []string{"2024_02_26", "2024_03_05"}, state.Processed.Sorted())
	})

	t.Run("nil processed set is saved empty", func(t *testing.T) {
		store := s.InitDB(t)
		defer s.CleanupDB(t)
		ctx := context.Background()

		watermark := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Commit(ctx, nil, domain.RunState{Watermark: watermark}))

		state, err := store.GetRunState(ctx)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, 0, state.Processed.Len())
	})
}

func (s *StoreTestSuite) testWideTable(t *testing.T) {
	t.Run("absent table returns nil", func(t *testing.T) {
		store := s.InitDB(t)
		defer s.CleanupDB(t)

		table, err := store.GetWideTable(context.Background())
		require.NoError(t, err)
		assert.Nil(t, table)
	})

	t.Run("round trip is normalized", func(t *testing.T) {
		store := s.InitDB(t)
		defer s.CleanupDB(t)
		ctx := context.Background()

		input := BuildTestTable()
		require.NoError(t, store.Commit(ctx, input, BuildTestState(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))))

		table, err := store.GetWideTable(ctx)
		require.NoError(t, err)
		require.NotNil(t, table)

		jan := domain.Period{Year: 2024, Month: time.January}
		feb := domain.Period{Year: 2024, Month: time.February}
		assert.Equal(t, []domain.Period{jan, feb}, table.Columns)
		require.Len(t, table.Rows, 3)
		assert.Equal(t, domain.RegionKey("a-kibra"), table.Rows[0].Key)
		assert.Equal(t, domain.RegionKey("b-turkana"), table.Rows[1].Key)
		assert.Equal(t, domain.RegionKey("c-lamu"), table.Rows[2].Key)

		v, ok := table.Value("a-kibra", feb)
		assert.True(t, ok)
		assert.InDelta(t, 0.0133, v, 1e-12)
		assert.Equal(t, 2, table.Rows[0].Cells[feb].Count)

		_, ok = table.Value("b-turkana", feb)
		assert.False(t, ok)
		assert.Empty(t, table.Rows[2].Cells)
		assert.Equal(t, "Lamu West Sub County", table.Rows[2].Name)

		// the caller's table is not reordered
		assert.Equal(t, feb, input.Columns[0])
	})
}

func (s *StoreTestSuite) testCommitWithoutTable(t *testing.T) {
	store := s.InitDB(t)
	defer s.CleanupDB(t)
	ctx := context.Background()

	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Commit(ctx, BuildTestTable(), BuildTestState(first, "a")))

	second := first.AddDate(0, 0, 8)
	require.NoError(t, store.Commit(ctx, nil, BuildTestState(second, "a", "b")))

	table, err := store.GetWideTable(ctx)
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Len(t, table.Rows, 3)

	state, err := store.GetRunState(ctx)
	require.NoError(t, err)
	assert.True(t, state.Watermark.Equal(second))
	assert.True(t, state.Processed.Contains("b"))
}

func (s *StoreTestSuite) testCommitReplacesTable(t *testing.T) {
	store := s.InitDB(t)
	defer s.CleanupDB(t)
	ctx := context.Background()

	watermark := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Commit(ctx, BuildTestTable(), BuildTestState(watermark)))

	mar := domain.Period{Year: 2024, Month: time.March}
	replacement := &domain.WideTable{
		Columns: []domain.Period{mar},
		Rows: []domain.WideRow{
			{Key: "d-mvita", Name: "Mvita Sub County", Cells: map[domain.Period]domain.Cell{mar: {Value: 0.01, Count: 1}}},
		},
	}
	require.NoError(t, store.Commit(ctx, replacement, BuildTestState(watermark)))

	table, err := store.GetWideTable(ctx)
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Equal(t, []domain.Period{mar}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, domain.RegionKey("d-mvita"), table.Rows[0].Key)
}
