package rest

import (
	"time"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// StateResponse describes the persisted run state
type StateResponse struct {
	Watermark      time.Time  `json:"watermark"`
	ProcessedCount int        `json:"processed_count"`
	ProcessedIDs   []string   `json:"processed_ids"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// RegionResponse is one row of the wide table. Missing months are omitted from Values.
type RegionResponse struct {
	Key    domain.RegionKey   `json:"region_key"`
	Name   string             `json:"sub_county"`
	Values map[string]float64 `json:"values"`
}

// TableResponse is the wide table keyed by month label
type TableResponse struct {
	Columns []string         `json:"columns"`
	Rows    []RegionResponse `json:"rows"`
}

// TriggerUpdateRequest is the body of an on-demand update request
type TriggerUpdateRequest struct {
	Force bool `json:"force"`
}

// TriggerUpdateResponse identifies the started workflow
type TriggerUpdateResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

func toStateResponse(state *domain.RunState) StateResponse {
	resp := StateResponse{
		Watermark:      state.Watermark.UTC(),
		ProcessedCount: state.Processed.Len(),
		ProcessedIDs:   state.Processed.Sorted(),
	}
	if !state.UpdatedAt.IsZero() {
		updatedAt := state.UpdatedAt.UTC()
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

func toRegionResponse(row domain.WideRow) RegionResponse {
	values := make(map[string]float64, len(row.Cells))
	for p, cell := range row.Cells {
		values[p.Label()] = cell.Value
	}
	return RegionResponse{Key: row.Key, Name: row.Name, Values: values}
}

func toTableResponse(table *domain.WideTable) TableResponse {
	resp := TableResponse{Columns: []string{}, Rows: []RegionResponse{}}
	if table == nil {
		return resp
	}

	normalized := table.Clone()
	normalized.Normalize()
	resp.Columns = normalized.Labels()
	for _, row := range normalized.Rows {
		resp.Rows = append(resp.Rows, toRegionResponse(row))
	}
	return resp
}
