package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/collector"
	"github.com/feral-file/gpp-indexer/internal/config"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/lock"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/messaging"
	"github.com/feral-file/gpp-indexer/internal/metrics"
	"github.com/feral-file/gpp-indexer/internal/providers/earthengine"
	"github.com/feral-file/gpp-indexer/internal/providers/jetstream"
	"github.com/feral-file/gpp-indexer/internal/ratelimit"
	"github.com/feral-file/gpp-indexer/internal/reducer"
	"github.com/feral-file/gpp-indexer/internal/reshape"
	"github.com/feral-file/gpp-indexer/internal/store"
	"github.com/feral-file/gpp-indexer/internal/tracker"
	"github.com/feral-file/gpp-indexer/internal/updater"
)

// Components holds the wired updater and everything that must be closed with it
type Components struct {
	Store   store.Store
	Updater updater.Updater
	Metrics *metrics.Metrics

	closers []func()
}

// Close releases every component in reverse creation order
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Components) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// StoreOptions selects the backend and its connection settings
type StoreOptions struct {
	Storage       config.StorageConfig
	Database      config.DatabaseConfig
	ObjectStorage config.ObjectStorageConfig
	// ReadOnly connects to the read replica when one is configured and never migrates
	ReadOnly bool
}

// OpenStore connects to the configured storage backend
func OpenStore(ctx context.Context, opts StoreOptions) (store.Store, error) {
	storeOpts := store.Options{
		Backend:      store.Backend(opts.Storage.Backend),
		Dir:          opts.Storage.Dir,
		FileSystem:   adapter.NewFileSystem(),
		ObjectPrefix: opts.Storage.ObjectPrefix,
		AutoMigrate:  opts.Storage.AutoMigrate && !opts.ReadOnly,
		JSON:         adapter.NewJSON(),
	}

	switch storeOpts.Backend {
	case store.BackendObject:
		objects, err := adapter.NewMinioObjectStorage(adapter.ObjectStorageConfig{
			Endpoint:  opts.ObjectStorage.Endpoint,
			AccessKey: opts.ObjectStorage.AccessKey,
			SecretKey: opts.ObjectStorage.SecretKey,
			Region:    opts.ObjectStorage.Region,
			Bucket:    opts.ObjectStorage.Bucket,
			UseSSL:    opts.ObjectStorage.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		storeOpts.ObjectStorage = objects
		logger.InfoCtx(ctx, "Using object storage backend",
			zap.String("endpoint", opts.ObjectStorage.Endpoint),
			zap.String("bucket", opts.ObjectStorage.Bucket),
			zap.String("prefix", opts.Storage.ObjectPrefix),
		)

	case store.BackendPostgres:
		dsn := opts.Database.DSN()
		if opts.ReadOnly {
			dsn = opts.Database.ReadDSN()
		}
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.ConfigureConnectionPool(db, opts.Database.MaxOpenConns, opts.Database.MaxIdleConns,
			opts.Database.ConnMaxLifetime, opts.Database.ConnMaxIdleTime); err != nil {
			return nil, err
		}
		storeOpts.DB = db
		logger.InfoCtx(ctx, "Connected to database",
			zap.String("host", opts.Database.Host),
			zap.Bool("read_only", opts.ReadOnly),
			zap.Int("max_open_conns", opts.Database.MaxOpenConns),
		)

	case store.BackendFile:
		logger.InfoCtx(ctx, "Using file backend", zap.String("dir", opts.Storage.Dir))
	}

	return store.Open(ctx, storeOpts)
}

// BuildUpdater wires the updater and its collaborators from configuration.
// The caller owns the returned components and must Close them.
func BuildUpdater(ctx context.Context, cfg *config.UpdaterConfig) (*Components, error) {
	c := &Components{}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	jsonAdapter := adapter.NewJSON()
	clock := adapter.NewClock()

	st, err := OpenStore(ctx, StoreOptions{
		Storage:       cfg.Storage,
		Database:      cfg.Database,
		ObjectStorage: cfg.ObjectStorage,
	})
	if err != nil {
		return nil, err
	}
	c.Store = st
	c.onClose(func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	})

	httpClient := adapter.NewHTTPClient(cfg.EarthEngine.Timeout, adapter.RetryConfig{
		InitialInterval: adapter.DefaultRetryConfig.InitialInterval,
		MaxInterval:     adapter.DefaultRetryConfig.MaxInterval,
		MaxElapsedTime:  cfg.EarthEngine.MaxRetryElapsed,
		MaxRetries:      cfg.EarthEngine.MaxRetries,
	})
	eeClient := earthengine.NewClient(earthengine.Config{
		BaseURL:  cfg.EarthEngine.BaseURL,
		Project:  cfg.EarthEngine.Project,
		PageSize: cfg.EarthEngine.PageSize,
	}, httpClient, earthengine.StaticToken(cfg.EarthEngine.AccessToken),
		ratelimit.NewLimiter(cfg.EarthEngine.RequestsPerSecond, cfg.EarthEngine.Burst))

	reducerCfg := reducer.Config{
		ImageCollection: cfg.EarthEngine.ImageCollection,
		Band:            cfg.EarthEngine.Band,
		RegionTable:     cfg.EarthEngine.RegionTable,
		CountryCode:     cfg.EarthEngine.CountryCode,
		ScaleFactor:     cfg.EarthEngine.ScaleFactor,
		ScaleMeters:     cfg.EarthEngine.ScaleMeters,
		TileScale:       cfg.EarthEngine.TileScale,
		ListingRegion:   reducer.KenyaBoundingBox,
	}
	coll := collector.NewCollector(collector.Config{Concurrency: cfg.Update.Concurrency},
		reducer.NewCatalog(reducerCfg, eeClient),
		reducer.NewReducer(reducerCfg, eeClient))

	var locker lock.Locker
	if cfg.Lock.Enabled {
		redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c.onClose(func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = lock.NewRedisLocker(lock.Config{Key: cfg.Lock.Key, TTL: cfg.Lock.TTL}, redisClient)
		logger.InfoCtx(ctx, "Single-writer lock enabled", zap.String("key", cfg.Lock.Key))
	}

	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
			MaxAge:         cfg.NATS.MaxAge,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			return nil, err
		}
		c.onClose(publisher.Close)
	}

	c.Metrics = metrics.New(metrics.Config{
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		Job:            cfg.Metrics.Job,
	})

	c.Updater = updater.NewUpdater(updater.Config{
		MinInterval: cfg.Update.MinInterval,
		MergePolicy: domain.MergePolicy(cfg.Update.MergePolicy),
		Reshape:     reshape.Options{NameSuffix: cfg.Update.RegionSuffix},
	}, updater.Deps{
		Tracker:   tracker.NewTracker(tracker.Config{Lookback: cfg.Update.Lookback}, st, clock),
		Collector: coll,
		Tables:    st,
		Locker:    locker,
		Publisher: publisher,
		Metrics:   c.Metrics,
		Clock:     clock,
	})

	ok = true
	return c, nil
}
