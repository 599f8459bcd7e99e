package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// SourceUnit is one remote raster image covering a time window
type SourceUnit struct {
	ID         string    `json:"id"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Date returns the acquisition day in UTC
func (u SourceUnit) Date() time.Time {
	return TruncateDay(u.AcquiredAt)
}

// RegionRow is the reduced statistic of one source unit over one region.
// A nil Value means the region had no valid pixels in that unit.
type RegionRow struct {
	Region Region    `json:"region"`
	UnitID string    `json:"unit_id"`
	Date   time.Time `json:"date"`
	Value  *float64  `json:"value"`
}

// ProcessedIDSet is the set of source unit IDs already folded into the wide table
type ProcessedIDSet map[string]struct{}

// NewProcessedIDSet creates a set holding the given ids
func NewProcessedIDSet(ids ...string) ProcessedIDSet {
	s := make(ProcessedIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set
func (s ProcessedIDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set
func (s ProcessedIDSet) Add(id string) {
	s[id] = struct{}{}
}

// Len returns the number of ids
func (s ProcessedIDSet) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set
func (s ProcessedIDSet) Clone() ProcessedIDSet {
	c := make(ProcessedIDSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Sorted returns the ids in lexical order
func (s ProcessedIDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalJSON encodes the set as a sorted list
func (s ProcessedIDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes the set from a list
func (s *ProcessedIDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewProcessedIDSet(ids...)
	return nil
}

// RunState is the persisted tracker state
type RunState struct {
	Watermark time.Time      `json:"last_update"`
	Processed ProcessedIDSet `json:"processed_ids"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// isoLayouts are accepted for last_update besides RFC 3339.
// Offset-less timestamps are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON decodes the state, accepting ISO-8601 timestamps without an offset
func (s *RunState) UnmarshalJSON(data []byte) error {
	var raw struct {
		Watermark string         `json:"last_update"`
		Processed ProcessedIDSet `json:"processed_ids"`
		UpdatedAt *time.Time     `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	watermark, err := parseISOTime(raw.Watermark)
	if err != nil {
		return err
	}

	s.Watermark = watermark
	s.Processed = raw.Processed
	if s.Processed == nil {
		s.Processed = NewProcessedIDSet()
	}
	s.UpdatedAt = time.Time{}
	if raw.UpdatedAt != nil {
		s.UpdatedAt = *raw.UpdatedAt
	}
	return nil
}

func parseISOTime(value string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid last_update timestamp %q", value)
}

// MergePolicy selects how a cell present in both the persisted table and a new fragment is combined
type MergePolicy string

const (
	// MergePolicyAverage replaces the cell with the arithmetic mean of the two values
	MergePolicyAverage MergePolicy = "average"
	// MergePolicyWeighted weights both values by their observation counts
	MergePolicyWeighted MergePolicy = "weighted"
)

// Valid reports whether the policy is known
func (p MergePolicy) Valid() bool {
	return p == MergePolicyAverage || p == MergePolicyWeighted
}

// RunSummary describes the outcome of one update run
type RunSummary struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	PreviousWatermark time.Time `json:"previous_watermark"`
	Watermark         time.Time `json:"watermark"`
	ProcessedUnits    int       `json:"processed_units"`
	SkippedUnits      int       `json:"skipped_units"`
	Rows              int       `json:"rows"`
	Regions           int       `json:"regions"`
	Periods           []string  `json:"periods"`
	TableChanged      bool      `json:"table_changed"`
}

// TableUpdatedEvent is published after a run committed new observations
type TableUpdatedEvent struct {
	RunID          string    `json:"run_id"`
	Watermark      time.Time `json:"watermark"`
	ProcessedUnits int       `json:"processed_units"`
	Periods        []string  `json:"periods"`
	Regions        int       `json:"regions"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TruncateDay returns midnight UTC of the day containing t
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
