package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/feral-file/gpp-indexer/internal/adapter"
)

// Backend names a storage backend
type Backend string

const (
	BackendFile     Backend = "file"
	BackendObject   Backend = "object"
	BackendPostgres Backend = "postgres"
)

// Valid reports whether b is a known backend
func (b Backend) Valid() bool {
	switch b {
	case BackendFile, BackendObject, BackendPostgres:
		return true
	}
	return false
}

// Options selects and configures the backend opened by Open.
// Only the dependencies of the selected backend are required.
type Options struct {
	Backend Backend

	// file backend
	Dir        string
	FileSystem adapter.FileSystem

	// object backend
	ObjectPrefix  string
	ObjectStorage adapter.ObjectStorage

	// postgres backend
	DB          *gorm.DB
	AutoMigrate bool

	JSON adapter.JSON
}

// Open creates the store for the selected backend
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.JSON == nil {
		opts.JSON = adapter.NewJSON()
	}

	switch opts.Backend {
	case BackendFile:
		if opts.FileSystem == nil {
			opts.FileSystem = adapter.NewFileSystem()
		}
		return NewFileStore(opts.Dir, opts.FileSystem, opts.JSON)
	case BackendObject:
		if opts.ObjectStorage == nil {
			return nil, fmt.Errorf("object storage is required for the %s backend", opts.Backend)
		}
		return NewObjectStore(ctx, opts.ObjectPrefix, opts.ObjectStorage, opts.JSON)
	case BackendPostgres:
		if opts.DB == nil {
			return nil, fmt.Errorf("database connection is required for the %s backend", opts.Backend)
		}
		if opts.AutoMigrate {
			if err := Migrate(ctx, opts.DB); err != nil {
				return nil, err
			}
		}
		return NewPGStore(opts.DB), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
