package reshape

import (
	"strings"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// Options controls how the fragment is presented
type Options struct {
	// NameSuffix is appended to the catalog region name, e.g. " Sub County"
	NameSuffix string
}

// DefaultOptions returns the sub-county presentation
func DefaultOptions() Options {
	return Options{NameSuffix: domain.DEFAULT_REGION_NAME_SUFFIX}
}

type groupKey struct {
	region domain.RegionKey
	period domain.Period
}

type accumulator struct {
	sum   float64
	count int
}

// Pivot converts long rows into a wide fragment with one row per region and one column per
// calendar month holding at least one value. Each cell is the mean of the region's non-missing
// values in that month. Rows with missing values add no observation but their region still gets a row.
func Pivot(rows []domain.RegionRow, opts Options) *domain.WideTable {
	names := make(map[domain.RegionKey]string)
	order := make([]domain.RegionKey, 0)
	groups := make(map[groupKey]*accumulator)
	periods := make(map[domain.Period]struct{})

	for _, row := range rows {
		key := row.Region.Key
		if _, ok := names[key]; !ok {
			names[key] = CanonicalName(row.Region.Name, opts.NameSuffix)
			order = append(order, key)
		}

		if row.Value == nil {
			continue
		}

		// a month only becomes a column once it holds a valid observation
		period := domain.PeriodOf(row.Date)
		periods[period] = struct{}{}

		gk := groupKey{region: key, period: period}
		acc, ok := groups[gk]
		if !ok {
			acc = &accumulator{}
			groups[gk] = acc
		}
		acc.sum += *row.Value
		acc.count++
	}

	table := &domain.WideTable{
		Columns: make([]domain.Period, 0, len(periods)),
		Rows:    make([]domain.WideRow, 0, len(order)),
	}
	for p := range periods {
		table.Columns = append(table.Columns, p)
	}

	for _, key := range order {
		table.Rows = append(table.Rows, domain.WideRow{
			Key:   key,
			Name:  names[key],
			Cells: make(map[domain.Period]domain.Cell),
		})
	}

	index := make(map[domain.RegionKey]int, len(table.Rows))
	for i, row := range table.Rows {
		index[row.Key] = i
	}
	for gk, acc := range groups {
		table.Rows[index[gk.region]].Cells[gk.period] = domain.Cell{
			Value: acc.sum / float64(acc.count),
			Count: acc.count,
		}
	}

	table.Normalize()
	return table
}

// CanonicalName renders a catalog region name in its wide table form
func CanonicalName(name, suffix string) string {
	if suffix == "" || strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}
