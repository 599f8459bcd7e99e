package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/config"
	"github.com/feral-file/gpp-indexer/internal/domain"
)

func fileConfig(t *testing.T) *config.UpdaterConfig {
	return &config.UpdaterConfig{
		Storage: config.StorageConfig{Backend: "file", Dir: filepath.Join(t.TempDir(), "data")},
		EarthEngine: config.EarthEngineConfig{
			AccessToken: "token",
			Timeout:     time.Minute,
		},
		Update: config.UpdateConfig{
			Lookback:    domain.DEFAULT_LOOKBACK,
			MinInterval: domain.DEFAULT_MIN_INTERVAL,
			Concurrency: 2,
			MergePolicy: string(domain.MergePolicyAverage),
		},
		Metrics: config.MetricsConfig{Job: "gpp_indexer"},
	}
}

func TestOpenStore_File(t *testing.T) {
	st, err := OpenStore(context.Background(), StoreOptions{
		Storage: config.StorageConfig{Backend: "file", Dir: t.TempDir()},
	})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	state, err := st.GetRunState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), StoreOptions{
		Storage: config.StorageConfig{Backend: "sqlite"},
	})
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestBuildUpdater(t *testing.T) {
	c, err := BuildUpdater(context.Background(), fileConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Store)
	assert.NotNil(t, c.Updater)
	assert.NotNil(t, c.Metrics)

	// a fresh store is always due
	due, err := c.Updater.Due(context.Background())
	require.NoError(t, err)
	assert.True(t, due)
}

func TestBuildUpdater_StoreFailure(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Storage.Dir = ""

	c, err := BuildUpdater(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestComponents_CloseOrder(t *testing.T) {
	var order []int
	c := &Components{}
	c.onClose(func() { order = append(order, 1) })
	c.onClose(func() { order = append(order, 2) })

	c.Close()
	c.Close()
	assert.Equal(t, []int{2, 1}, order)
}
