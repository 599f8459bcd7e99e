package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/mocks"
	"github.com/feral-file/gpp-indexer/internal/store"
)

// memoryObjectStorage is an in-memory bucket
type memoryObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjectStorage() *memoryObjectStorage {
	return &memoryObjectStorage{objects: make(map[string][]byte)}
}

func (m *memoryObjectStorage) GetObject(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *memoryObjectStorage) PutObject(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryObjectStorage) EnsureBucket(context.Context) error {
	return nil
}

func TestObjectStore(t *testing.T) {
	store.RunStoreTests(t, func(t *testing.T) store.Store {
		st, err := store.NewObjectStore(context.Background(), "gpp/kenya", newMemoryObjectStorage(), adapter.NewJSON())
		require.NoError(t, err)
		return st
	}, func(t *testing.T) {})
}

func TestObjectStore_Keys(t *testing.T) {
	objects := newMemoryObjectStorage()
	st, err := store.NewObjectStore(context.Background(), "gpp/kenya", objects, adapter.NewJSON())
	require.NoError(t, err)

	require.NoError(t, st.Commit(context.Background(), store.BuildTestTable(), store.BuildTestState(time.Now().UTC())))

	assert.Contains(t, objects.objects, "gpp/kenya/metadata.json")
	assert.Contains(t, objects.objects, "gpp/kenya/kenya_gpp_data.json")
}

func TestObjectStore_TransportErrorIsNotCorruption(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	objects := mocks.NewMockObjectStorage(ctrl)
	objects.EXPECT().EnsureBucket(gomock.Any()).Return(nil)
	objects.EXPECT().GetObject(gomock.Any(), store.STATE_DOCUMENT).Return(nil, errors.New("connection reset"))

	st, err := store.NewObjectStore(context.Background(), "", objects, adapter.NewJSON())
	require.NoError(t, err)

	state, err := st.GetRunState(context.Background())
	assert.Nil(t, state)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrCorruptState)
}

func TestObjectStore_EnsureBucketFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	objects := mocks.NewMockObjectStorage(ctrl)
	objects.EXPECT().EnsureBucket(gomock.Any()).Return(errors.New("access denied"))

	_, err := store.NewObjectStore(context.Background(), "", objects, adapter.NewJSON())
	assert.ErrorContains(t, err, "access denied")
}
