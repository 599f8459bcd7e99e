package rest

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/store"
)

func TestClassifyStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     ErrorCode
		internal bool
	}{
		{
			name:   "corrupt state",
			err:    fmt.Errorf("%w: invalid last_update timestamp", store.ErrCorruptState),
			status: http.StatusConflict,
			code:   errCodeConflict,
		},
		{
			name:   "region not found",
			err:    fmt.Errorf("lookup: %w", domain.ErrRegionNotFound),
			status: http.StatusNotFound,
			code:   errCodeNotFound,
		},
		{
			name:     "backend failure",
			err:      errors.New("dial tcp: connection refused"),
			status:   http.StatusInternalServerError,
			code:     errCodeStorageError,
			internal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, internal := classifyStoreError(tt.err, "Failed to read")
			assert.Equal(t, tt.status, e.status)
			assert.Equal(t, tt.code, e.code)
			assert.Equal(t, tt.internal, internal)
			if internal {
				assert.Empty(t, e.details)
				assert.Equal(t, "Failed to read", e.message)
			}
		})
	}
}
