package booking

import (
	"context"
	"fmt"
	"time"

	"fitclub/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix = "fitclub:lock:"
	minRetryDelay = 10 * time.Millisecond
	maxRetryDelay = 200 * time.Millisecond
)

// releaseScript deletes the key only while it still carries our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLocker shares resource locks between processes. Each key is a
// SET NX PX entry holding a per-acquisition token.
type RedisLocker struct {
	client   *redis.Client
	ttl      time.Duration
	wait     time.Duration
	newToken func() string
}

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client:   client,
		ttl:      ttl,
		wait:     wait,
		newToken: uuid.NewString,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys ...ResourceKey) (func(), error) {
	deadline := time.Now().Add(l.wait)
	token := l.newToken()

	sorted := SortKeys(keys)
	held := make([]string, 0, len(sorted))
	for _, key := range sorted {
		name := lockKeyPrefix + key.String()
		if err := l.lock(ctx, name, token, deadline); err != nil {
			l.unlockAll(held, token)
			return nil, err
		}
		held = append(held, name)
	}

	return func() { l.unlockAll(held, token) }, nil
}

func (l *RedisLocker) lock(ctx context.Context, name, token string, deadline time.Time) error {
	delay := minRetryDelay
	for {
		ok, err := l.client.SetNX(ctx, name, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire %s: %w", name, err)
		}
		if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: %s", ErrLockTimeout, name)
		}
		if delay > remaining {
			delay = remaining
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func (l *RedisLocker) unlockAll(names []string, token string) {
	// Release must run even when the request context is already cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := len(names) - 1; i >= 0; i-- {
		if err := l.client.Eval(ctx, releaseScript, []string{names[i]}, token).Err(); err != nil {
			logger.Warn("failed to release resource lock", "key", names[i], "error", err)
		}
	}
}
