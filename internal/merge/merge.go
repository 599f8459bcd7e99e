package merge

import (
	"github.com/feral-file/gpp-indexer/internal/domain"
)

// Stats summarizes what a merge changed
type Stats struct {
	NewRows    int
	NewColumns int
	NewCells   int
	Combined   int
}

// Merge folds fragment into persisted and returns the new table, leaving both inputs untouched.
//
// Rows are matched on region key (outer join). A cell present on both sides is combined
// according to policy; a cell present on one side only is carried over. The resulting column
// set is the union of both column sets and the row set the union of both key sets.
// A nil persisted table yields a copy of fragment.
func Merge(persisted, fragment *domain.WideTable, policy domain.MergePolicy) (*domain.WideTable, Stats) {
	var stats Stats

	if fragment == nil {
		if persisted == nil {
			return &domain.WideTable{}, stats
		}
		return persisted.Clone(), stats
	}

	if persisted == nil {
		out := fragment.Clone()
		out.Normalize()
		stats.NewRows = len(out.Rows)
		stats.NewColumns = len(out.Columns)
		for _, row := range out.Rows {
			stats.NewCells += len(row.Cells)
		}
		return out, stats
	}

	out := persisted.Clone()

	for _, p := range fragment.Columns {
		if !out.HasColumn(p) {
			out.Columns = append(out.Columns, p)
			stats.NewColumns++
		}
	}

	index := make(map[domain.RegionKey]int, len(out.Rows))
	for i, row := range out.Rows {
		index[row.Key] = i
	}

	for _, frow := range fragment.Rows {
		i, ok := index[frow.Key]
		if !ok {
			cells := make(map[domain.Period]domain.Cell, len(frow.Cells))
			for p, c := range frow.Cells {
				cells[p] = c
				stats.NewCells++
			}
			out.Rows = append(out.Rows, domain.WideRow{Key: frow.Key, Name: frow.Name, Cells: cells})
			index[frow.Key] = len(out.Rows) - 1
			stats.NewRows++
			continue
		}

		row := &out.Rows[i]
		if row.Cells == nil {
			row.Cells = make(map[domain.Period]domain.Cell, len(frow.Cells))
		}
		if frow.Name != "" {
			row.Name = frow.Name
		}
		for p, newCell := range frow.Cells {
			oldCell, exists := row.Cells[p]
			if !exists {
				row.Cells[p] = newCell
				stats.NewCells++
				continue
			}
			row.Cells[p] = Combine(oldCell, newCell, policy)
			stats.Combined++
		}
	}

	out.Normalize()
	return out, stats
}

// Combine merges two observations of the same region and month.
// The average policy gives (old+new)/2 regardless of how many observations each side holds;
// the weighted policy gives the mean over all underlying observations.
func Combine(old, new domain.Cell, policy domain.MergePolicy) domain.Cell {
	count := old.Count + new.Count

	if policy == domain.MergePolicyWeighted && old.Count > 0 && new.Count > 0 {
		return domain.Cell{
			Value: (old.Value*float64(old.Count) + new.Value*float64(new.Count)) / float64(count),
			Count: count,
		}
	}

	return domain.Cell{
		Value: (old.Value + new.Value) / 2,
		Count: count,
	}
}
