package store

import (
	"context"
	"errors"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// ErrCorruptState is returned when persisted run state exists but cannot be decoded
var ErrCorruptState = errors.New("corrupt run state")

// Reader defines the read side of the persisted run state and wide table
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Reader=MockStoreReader,Store=MockStore
type Reader interface {
	// GetRunState returns the persisted run state, or nil when none has been saved
	GetRunState(ctx context.Context) (*domain.RunState, error)
	// GetWideTable returns the persisted wide table, or nil when none has been saved
	GetWideTable(ctx context.Context) (*domain.WideTable, error)
}

// Store defines the interface for run state and wide table persistence
type Store interface {
	Reader

	// Commit replaces the persisted wide table with table and saves state.
	// A nil table leaves the persisted table unchanged.
	// The run state is always written last so that a failed commit is retried from the previous state.
	Commit(ctx context.Context, table *domain.WideTable, state domain.RunState) error

	// Close releases the backend resources
	Close() error
}
