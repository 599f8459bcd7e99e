package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// WriteCSV writes the wide table with a region name column followed by one column per month.
// Rows are ordered by name; a missing cell is an empty field.
func WriteCSV(w io.Writer, table *domain.WideTable) error {
	cw := csv.NewWriter(w)

	var columns []domain.Period
	var rows []domain.WideRow
	if table != nil {
		normalized := table.Clone()
		normalized.Normalize()
		columns = normalized.Columns
		rows = normalized.Rows
	}

	header := make([]string, 0, len(columns)+1)
	header = append(header, domain.REGION_NAME_COLUMN)
	for _, p := range columns {
		header = append(header, p.Label())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Key < rows[j].Key
	})

	record := make([]string, len(header))
	for _, row := range rows {
		record[0] = row.Name
		for i, p := range columns {
			record[i+1] = ""
			if cell, ok := row.Cells[p]; ok {
				record[i+1] = strconv.FormatFloat(cell.Value, 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
