package store

import (
	"fmt"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
)

const (
	// STATE_DOCUMENT is the run state file or object name
	STATE_DOCUMENT = "metadata.json"
	// TABLE_DOCUMENT is the wide table file or object name
	TABLE_DOCUMENT = "kenya_gpp_data.json"
)

// documentCodec encodes the run state and wide table for the file and object backends
type documentCodec struct {
	json adapter.JSON
}

func (c documentCodec) encodeState(state domain.RunState) ([]byte, error) {
	if state.Processed == nil {
		state.Processed = domain.NewProcessedIDSet()
	}
	data, err := c.json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode run state: %w", err)
	}
	return data, nil
}

func (c documentCodec) decodeState(data []byte) (*domain.RunState, error) {
	var state domain.RunState
	if err := c.json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	return &state, nil
}

func (c documentCodec) encodeTable(table *domain.WideTable) ([]byte, error) {
	normalized := table.Clone()
	normalized.Normalize()
	// canonical bytes keep an unchanged table byte-identical across commits
	data, err := c.json.MarshalCanonical(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wide table: %w", err)
	}
	return data, nil
}

func (c documentCodec) decodeTable(data []byte) (*domain.WideTable, error) {
	var table domain.WideTable
	if err := c.json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode wide table: %w", err)
	}
	for i := range table.Rows {
		if table.Rows[i].Cells == nil {
			table.Rows[i].Cells = make(map[domain.Period]domain.Cell)
		}
	}
	table.Normalize()
	return &table, nil
}
