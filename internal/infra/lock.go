package infra

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockOcupado is returned by ConLock when another replica holds the lock.
var ErrLockOcupado = errors.New("lock ocupado por otra instancia")

// Locker serializes cluster-wide jobs through Redis.
type Locker struct {
	client *redislock.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// ConLock runs fn while holding key. It does not wait: if the lock is taken
// it returns ErrLockOcupado immediately. The lock expires after ttl even if
// the process dies, so ttl must exceed fn's worst-case duration.
func (l *Locker) ConLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLockOcupado
	}
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release(context.Background()) }()

	return fn(ctx)
}
