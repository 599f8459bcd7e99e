package domain

import "sort"

// Cell is one region/month value of the wide table.
// Count is the number of daily observations folded into Value.
type Cell struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// WideRow is one region of the wide table. A month with no entry in Cells is a missing value.
type WideRow struct {
	Key   RegionKey       `json:"region_key"`
	Name  string          `json:"sub_county"`
	Cells map[Period]Cell `json:"cells"`
}

// WideTable is the persisted region x month table
type WideTable struct {
	Columns []Period  `json:"columns"`
	Rows    []WideRow `json:"rows"`
}

// Normalize sorts and deduplicates the columns and sorts the rows by key.
// Columns referenced by a cell but absent from Columns are added.
func (t *WideTable) Normalize() {
	seen := make(map[Period]struct{}, len(t.Columns))
	for _, p := range t.Columns {
		seen[p] = struct{}{}
	}
	for _, row := range t.Rows {
		for p := range row.Cells {
			seen[p] = struct{}{}
		}
	}

	columns := make([]Period, 0, len(seen))
	for p := range seen {
		columns = append(columns, p)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].Before(columns[j]) })
	t.Columns = columns

	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].Key < t.Rows[j].Key })
}

// Row returns the row for key
func (t *WideTable) Row(key RegionKey) (*WideRow, bool) {
	for i := range t.Rows {
		if t.Rows[i].Key == key {
			return &t.Rows[i], true
		}
	}
	return nil, false
}

// Value returns the value of a cell and whether it is present
func (t *WideTable) Value(key RegionKey, p Period) (float64, bool) {
	row, ok := t.Row(key)
	if !ok {
		return 0, false
	}
	cell, ok := row.Cells[p]
	return cell.Value, ok
}

// HasColumn reports whether p is one of the table's columns
func (t *WideTable) HasColumn(p Period) bool {
	for _, c := range t.Columns {
		if c == p {
			return true
		}
	}
	return false
}

// Labels returns the column labels in column order
func (t *WideTable) Labels() []string {
	labels := make([]string, len(t.Columns))
	for i, p := range t.Columns {
		labels[i] = p.Label()
	}
	return labels
}

// Clone returns a deep copy of the table
func (t *WideTable) Clone() *WideTable {
	if t == nil {
		return nil
	}

	c := &WideTable{
		Columns: append([]Period(nil), t.Columns...),
		Rows:    make([]WideRow, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make(map[Period]Cell, len(row.Cells))
		for p, cell := range row.Cells {
			cells[p] = cell
		}
		c.Rows[i] = WideRow{Key: row.Key, Name: row.Name, Cells: cells}
	}
	return c
}
