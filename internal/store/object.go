package store

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
)

type objectStore struct {
	prefix  string
	objects adapter.ObjectStorage
	codec   documentCodec
}

// NewObjectStore creates a store keeping the run state and wide table as objects under prefix
func NewObjectStore(ctx context.Context, prefix string, objects adapter.ObjectStorage, json adapter.JSON) (Store, error) {
	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return &objectStore{prefix: prefix, objects: objects, codec: documentCodec{json: json}}, nil
}

func (s *objectStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *objectStore) GetRunState(ctx context.Context) (*domain.RunState, error) {
	data, err := s.objects.GetObject(ctx, s.key(STATE_DOCUMENT))
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}

	return s.codec.decodeState(data)
}

func (s *objectStore) GetWideTable(ctx context.Context) (*domain.WideTable, error) {
	data, err := s.objects.GetObject(ctx, s.key(TABLE_DOCUMENT))
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read wide table: %w", err)
	}

	return s.codec.decodeTable(data)
}

func (s *objectStore) Commit(ctx context.Context, table *domain.WideTable, state domain.RunState) error {
	stateData, err := s.codec.encodeState(state)
	if err != nil {
		return err
	}

	if table != nil {
		tableData, err := s.codec.encodeTable(table)
		if err != nil {
			return err
		}
		if err := s.objects.PutObject(ctx, s.key(TABLE_DOCUMENT), tableData, "application/json"); err != nil {
			return fmt.Errorf("failed to write wide table: %w", err)
		}
	}

	if err := s.objects.PutObject(ctx, s.key(STATE_DOCUMENT), stateData, "application/json"); err != nil {
		return fmt.Errorf("failed to write run state: %w", err)
	}

	return nil
}

func (s *objectStore) Close() error {
	return nil
}
