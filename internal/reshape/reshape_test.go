package reshape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

func value(v float64) *float64 {
	return &v
}

func regionRow(key, name string, date time.Time, v *float64) domain.RegionRow {
	return domain.RegionRow{
		Region: domain.Region{Key: domain.RegionKey(key), Name: name},
		UnitID: date.Format("2006_01_02"),
		Date:   date,
		Value:  v,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPivot_MonthlyMean(t *testing.T) {
	rows := []domain.RegionRow{
		regionRow("turkana", "Turkana Central", day(2024, 1, 1), value(2)),
		regionRow("turkana", "Turkana Central", day(2024, 1, 9), value(4)),
		regionRow("turkana", "Turkana Central", day(2024, 1, 17), value(6)),
		regionRow("kibra", "Kibra", day(2024, 1, 1), value(0.5)),
	}

	table := Pivot(rows, DefaultOptions())

	jan := domain.Period{Year: 2024, Month: time.January}
	assert.Equal(t, []domain.Period{jan}, table.Columns)
	require.Len(t, table.Rows, 2)

	turkana, ok := table.Row("turkana")
	require.True(t, ok)
	assert.Equal(t, "Turkana Central Sub County", turkana.Name)
	assert.Equal(t, domain.Cell{Value: 4, Count: 3}, turkana.Cells[jan])

	kibra, ok := table.Row("kibra")
	require.True(t, ok)
	assert.Equal(t, "Kibra Sub County", kibra.Name)
	assert.Equal(t, domain.Cell{Value: 0.5, Count: 1}, kibra.Cells[jan])
}

func TestPivot_SplitsMonths(t *testing.T) {
	rows := []domain.RegionRow{
		regionRow("a", "A", day(2024, 2, 26), value(1)),
		regionRow("a", "A", day(2024, 3, 5), value(3)),
	}

	table := Pivot(rows, DefaultOptions())

	feb := domain.Period{Year: 2024, Month: time.February}
	mar := domain.Period{Year: 2024, Month: time.March}
	assert.Equal(t, []domain.Period{feb, mar}, table.Columns)

	v, ok := table.Value("a", feb)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	v, ok = table.Value("a", mar)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestPivot_MissingValues(t *testing.T) {
	rows := []domain.RegionRow{
		regionRow("a", "A", day(2024, 1, 1), nil),
		regionRow("a", "A", day(2024, 1, 9), value(2)),
		regionRow("b", "B", day(2024, 1, 1), nil),
	}

	table := Pivot(rows, DefaultOptions())
	jan := domain.Period{Year: 2024, Month: time.January}

	a, ok := table.Row("a")
	require.True(t, ok)
	assert.Equal(t, domain.Cell{Value: 2, Count: 1}, a.Cells[jan])

	// a region with only missing values keeps its row but has no cell
	b, ok := table.Row("b")
	require.True(t, ok)
	assert.Empty(t, b.Cells)
	assert.Equal(t, []domain.Period{jan}, table.Columns)
}

func TestPivot_AllMissingMonthHasNoColumn(t *testing.T) {
	rows := []domain.RegionRow{
		regionRow("a", "A", day(2024, 1, 9), value(2)),
		regionRow("a", "A", day(2024, 2, 2), nil),
		regionRow("b", "B", day(2024, 2, 2), nil),
	}

	table := Pivot(rows, DefaultOptions())

	jan := domain.Period{Year: 2024, Month: time.January}
	assert.Equal(t, []domain.Period{jan}, table.Columns)
	assert.Equal(t, []string{"January 2024"}, table.Labels())
	require.Len(t, table.Rows, 2)

	b, ok := table.Row("b")
	require.True(t, ok)
	assert.Empty(t, b.Cells)
}

func TestPivot_Empty(t *testing.T) {
	table := Pivot(nil, DefaultOptions())
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Columns)
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		suffix   string
		expected string
	}{
		{name: "adds suffix", input: "Kibra", suffix: " Sub County", expected: "Kibra Sub County"},
		{name: "keeps existing suffix", input: "Kibra Sub County", suffix: " Sub County", expected: "Kibra Sub County"},
		{name: "no suffix", input: "Kibra", suffix: "", expected: "Kibra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalName(tt.input, tt.suffix))
		})
	}
}
