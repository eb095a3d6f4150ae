package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when another holder owns the day lock. The
// caller surfaces it as a retryable conflict rather than waiting.
var ErrNotAcquired = errors.New("day lock not acquired")

func NewRedisClient(addr, username, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Username:     username,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

// RedisDayLocker guards days with a per-day Redis key so the capacity check
// stays strict when several instances share one database.
type RedisDayLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDayLocker(client *redis.Client, ttl time.Duration) *RedisDayLocker {
	return &RedisDayLocker{client: client, ttl: ttl}
}

func (l *RedisDayLocker) WithDayLock(ctx context.Context, day string, fn func(ctx context.Context) error) error {
	key := "lock:day:" + day
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire day lock: %w", err)
	}
	if !ok {
		return ErrNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

// release deletes the key only while it still holds our token, so an expired
// lock taken over by another instance is never removed from under it.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisDayLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release day lock: %w", err)
	}
	return nil
}
