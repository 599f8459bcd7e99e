package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
)

const (
	DEFAULT_KEY = "gpp-indexer:update-lock"
	DEFAULT_TTL = 2 * time.Hour
)

// Locker guarantees that at most one update pass runs at a time
//
//go:generate mockgen -source=lock.go -destination=../mocks/lock.go -package=mocks -mock_names=Locker=MockLocker
type Locker interface {
	// Acquire takes the lock and returns the token needed to release it.
	// It returns domain.ErrRunInProgress when another holder owns the lock.
	Acquire(ctx context.Context) (string, error)

	// Release gives up the lock if token still owns it
	Release(ctx context.Context, token string) error
}

// Config holds the Redis lock configuration
type Config struct {
	Key string
	TTL time.Duration
}

type redisLocker struct {
	cfg    Config
	client adapter.RedisClient
}

// NewRedisLocker creates a lock backed by a Redis key with a TTL, so a crashed holder cannot block forever
func NewRedisLocker(cfg Config, client adapter.RedisClient) Locker {
	if cfg.Key == "" {
		cfg.Key = DEFAULT_KEY
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DEFAULT_TTL
	}
	return &redisLocker{cfg: cfg, client: client}
}

func (l *redisLocker) Acquire(ctx context.Context) (string, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.cfg.Key, token, l.cfg.TTL)
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock %s: %w", l.cfg.Key, err)
	}
	if !ok {
		return "", domain.ErrRunInProgress
	}

	logger.DebugCtx(ctx, "Acquired update lock", zap.String("key", l.cfg.Key), zap.Duration("ttl", l.cfg.TTL))
	return token, nil
}

func (l *redisLocker) Release(ctx context.Context, token string) error {
	released, err := l.client.CompareAndDelete(ctx, l.cfg.Key, token)
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.cfg.Key, err)
	}
	if !released {
		logger.WarnCtx(ctx, "Update lock expired before release", zap.String("key", l.cfg.Key))
	}
	return nil
}

type noopLocker struct{}

// NewNoopLocker returns a lock that always succeeds, for single-process deployments
func NewNoopLocker() Locker {
	return noopLocker{}
}

func (noopLocker) Acquire(context.Context) (string, error) {
	return "", nil
}

func (noopLocker) Release(context.Context, string) error {
	return nil
}
