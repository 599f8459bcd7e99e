package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
)

type fileStore struct {
	dir   string
	fs    adapter.FileSystem
	codec documentCodec
}

// NewFileStore creates a store keeping metadata.json and the wide table in dir
func NewFileStore(dir string, fs adapter.FileSystem, json adapter.JSON) (Store, error) {
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &fileStore{dir: dir, fs: fs, codec: documentCodec{json: json}}, nil
}

func (s *fileStore) GetRunState(ctx context.Context) (*domain.RunState, error) {
	data, err := s.fs.ReadFile(filepath.Join(s.dir, STATE_DOCUMENT))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		// an unreadable local file is treated like a corrupt one
		return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	return s.codec.decodeState(data)
}

func (s *fileStore) GetWideTable(ctx context.Context) (*domain.WideTable, error) {
	data, err := s.fs.ReadFile(filepath.Join(s.dir, TABLE_DOCUMENT))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read wide table: %w", err)
	}

	return s.codec.decodeTable(data)
}

func (s *fileStore) Commit(ctx context.Context, table *domain.WideTable, state domain.RunState) error {
	stateData, err := s.codec.encodeState(state)
	if err != nil {
		return err
	}

	if table != nil {
		tableData, err := s.codec.encodeTable(table)
		if err != nil {
			return err
		}
		if err := s.fs.WriteFileAtomic(filepath.Join(s.dir, TABLE_DOCUMENT), tableData, 0o640); err != nil {
			return fmt.Errorf("failed to write wide table: %w", err)
		}
	}

	if err := s.fs.WriteFileAtomic(filepath.Join(s.dir, STATE_DOCUMENT), stateData, 0o640); err != nil {
		return fmt.Errorf("failed to write run state: %w", err)
	}

	return nil
}

func (s *fileStore) Close() error {
	return nil
}
