package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

var (
	jan = domain.Period{Year: 2024, Month: time.January}
	feb = domain.Period{Year: 2024, Month: time.February}
	mar = domain.Period{Year: 2024, Month: time.March}
)

func row(key, name string, cells map[domain.Period]domain.Cell) domain.WideRow {
	return domain.WideRow{Key: domain.RegionKey(key), Name: name, Cells: cells}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		old      domain.Cell
		new      domain.Cell
		policy   domain.MergePolicy
		expected domain.Cell
	}{
		{
			name:     "average ignores counts",
			old:      domain.Cell{Value: 4, Count: 3},
			new:      domain.Cell{Value: 8, Count: 1},
			policy:   domain.MergePolicyAverage,
			expected: domain.Cell{Value: 6, Count: 4},
		},
		{
			name:     "weighted uses counts",
			old:      domain.Cell{Value: 4, Count: 3},
			new:      domain.Cell{Value: 8, Count: 1},
			policy:   domain.MergePolicyWeighted,
			expected: domain.Cell{Value: 5, Count: 4},
		},
		{
			name:     "weighted without counts falls back to average",
			old:      domain.Cell{Value: 2},
			new:      domain.Cell{Value: 4, Count: 2},
			policy:   domain.MergePolicyWeighted,
			expected: domain.Cell{Value: 3, Count: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine(tt.old, tt.new, tt.policy)
			assert.InDelta(t, tt.expected.Value, got.Value, 1e-12)
			assert.Equal(t, tt.expected.Count, got.Count)
		})
	}
}

func TestMerge_NilPersisted(t *testing.T) {
	fragment := &domain.WideTable{
		Columns: []domain.Period{feb, jan},
		Rows: []domain.WideRow{
			row("b", "Kibra Sub County", map[domain.Period]domain.Cell{jan: {Value: 1, Count: 1}}),
			row("a", "Turkana Central Sub County", map[domain.Period]domain.Cell{feb: {Value: 2, Count: 1}}),
		},
	}

	out, stats := Merge(nil, fragment, domain.MergePolicyAverage)

	assert.Equal(t, []domain.Period{jan, feb}, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, domain.RegionKey("a"), out.Rows[0].Key)
	assert.Equal(t, Stats{NewRows: 2, NewColumns: 2, NewCells: 2}, stats)

	// the fragment itself is not reordered
	assert.Equal(t, domain.RegionKey("b"), fragment.Rows[0].Key)
}

func TestMerge_NilFragment(t *testing.T) {
	persisted := &domain.WideTable{
		Columns: []domain.Period{jan},
		Rows:    []domain.WideRow{row("a", "A", map[domain.Period]domain.Cell{jan: {Value: 1, Count: 1}})},
	}

	out, stats := Merge(persisted, nil, domain.MergePolicyAverage)
	assert.Equal(t, persisted, out)
	assert.NotSame(t, persisted, out)
	assert.Equal(t, Stats{}, stats)

	empty, _ := Merge(nil, nil, domain.MergePolicyAverage)
	assert.Empty(t, empty.Rows)
	assert.Empty(t, empty.Columns)
}

func TestMerge_OuterJoin(t *testing.T) {
	persisted := &domain.WideTable{
		Columns: []domain.Period{jan, feb},
		Rows: []domain.WideRow{
			row("a", "A Sub County", map[domain.Period]domain.Cell{
				jan: {Value: 1, Count: 1},
				feb: {Value: 2, Count: 1},
			}),
			row("b", "B Sub County", map[domain.Period]domain.Cell{
				jan: {Value: 3, Count: 1},
			}),
		},
	}
	fragment := &domain.WideTable{
		Columns: []domain.Period{feb, mar},
		Rows: []domain.WideRow{
			row("a", "A Sub County", map[domain.Period]domain.Cell{
				feb: {Value: 4, Count: 1},
				mar: {Value: 5, Count: 1},
			}),
			row("c", "C Sub County", map[domain.Period]domain.Cell{
				mar: {Value: 6, Count: 1},
			}),
		},
	}

	out, stats := Merge(persisted, fragment, domain.MergePolicyAverage)

	assert.Equal(t, []domain.Period{jan, feb, mar}, out.Columns)
	require.Len(t, out.Rows, 3)

	v, ok := out.Value("a", jan)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = out.Value("a", feb)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = out.Value("a", mar)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = out.Value("b", mar)
	assert.False(t, ok)

	v, ok = out.Value("c", mar)
	assert.True(t, ok)
	assert.Equal(t, 6.0, v)
	_, ok = out.Value("c", jan)
	assert.False(t, ok)

	assert.Equal(t, Stats{NewRows: 1, NewColumns: 1, NewCells: 2, Combined: 1}, stats)

	// inputs are untouched
	assert.Len(t, persisted.Rows, 2)
	assert.Len(t, persisted.Columns, 2)
	assert.Equal(t, 2.0, persisted.Rows[0].Cells[feb].Value)
}

func TestMerge_RenamesRow(t *testing.T) {
	persisted := &domain.WideTable{
		Columns: []domain.Period{jan},
		Rows:    []domain.WideRow{row("a", "Old Name", map[domain.Period]domain.Cell{jan: {Value: 1, Count: 1}})},
	}
	fragment := &domain.WideTable{
		Rows: []domain.WideRow{row("a", "New Name", nil)},
	}

	out, _ := Merge(persisted, fragment, domain.MergePolicyAverage)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "New Name", out.Rows[0].Name)
	assert.Equal(t, 1.0, out.Rows[0].Cells[jan].Value)
}

func TestMerge_RepeatedAverageDrifts(t *testing.T) {
	// averaging with the persisted value gives recent fragments more weight
	table := &domain.WideTable{}
	for _, v := range []float64{2, 4, 6} {
		fragment := &domain.WideTable{
			Rows: []domain.WideRow{row("a", "A", map[domain.Period]domain.Cell{jan: {Value: v, Count: 1}})},
		}
		table, _ = Merge(table, fragment, domain.MergePolicyAverage)
	}

	v, _ := table.Value("a", jan)
	assert.Equal(t, 4.5, v)
	assert.Equal(t, 3, table.Rows[0].Cells[jan].Count)
}

func TestMerge_RepeatedWeightedIsExactMean(t *testing.T) {
	table := &domain.WideTable{}
	for _, v := range []float64{2, 4, 6} {
		fragment := &domain.WideTable{
			Rows: []domain.WideRow{row("a", "A", map[domain.Period]domain.Cell{jan: {Value: v, Count: 1}})},
		}
		table, _ = Merge(table, fragment, domain.MergePolicyWeighted)
	}

	v, _ := table.Value("a", jan)
	assert.InDelta(t, 4.0, v, 1e-12)
}
