package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	lockKeyPrefix = "recordlock:"
	lockTTL       = 30 * time.Second
	retryInterval = 50 * time.Millisecond
)

// RedisLocker implements Locker on bsm/redislock so that multiple server
// instances sharing one database still serialize mutations per record.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Acquire(ctx context.Context, ids ...uuid.UUID) (func(), error) {
	sorted := sortIDs(ids)
	held := make([]*redislock.Lock, 0, len(sorted))

	release := func() {
		// Locks are released even if the operation's context already expired.
		bg := context.Background()
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(bg); err != nil {
				log.Warn().Err(err).Msg("record lock release failed, TTL will reclaim it")
			}
		}
	}

	opts := &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryInterval),
	}
	for _, id := range sorted {
		lk, err := l.client.Obtain(ctx, lockKeyPrefix+id.String(), lockTTL, opts)
		if err != nil {
			release()
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrNotAcquired
			}
			return nil, err
		}
		held = append(held, lk)
	}
	return release, nil
}
