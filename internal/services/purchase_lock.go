package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/monitoring"
)

// Locker serializes inventory changes for one event.
type Locker interface {
	Lock(ctx context.Context, eventID string) (unlock func(), err error)
}

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock taken over by another request is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	redis   redis.Cmdable
	monitor *monitoring.Monitor
	ttl     time.Duration
	wait    time.Duration
	retry   time.Duration
	token   func() string
}

func NewRedisLocker(client redis.Cmdable, monitor *monitoring.Monitor, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		redis:   client,
		monitor: monitor,
		ttl:     ttl,
		wait:    wait,
		retry:   25 * time.Millisecond,
		token:   uuid.NewString,
	}
}

func purchaseLockKey(eventID string) string {
	return fmt.Sprintf("lock:purchase:%s", eventID)
}

func (l *RedisLocker) Lock(ctx context.Context, eventID string) (func(), error) {
	key := purchaseLockKey(eventID)
	token := l.token()
	start := time.Now()

	for {
		ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire purchase lock: %w", err)
		}
		if ok {
			l.monitor.TrackLockWait(time.Since(start))
			return func() { l.release(key, token) }, nil
		}

		if time.Since(start) >= l.wait {
			return nil, status.Rule(status.ErrLockTimeout, "Hay demasiadas compras en curso para este evento, intente nuevamente.")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	// The request context may already be gone; the lock must still be freed.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.redis, []string{key}, token).Err(); err != nil {
		slog.Error("failed to release purchase lock", "key", key, "error", err)
	}
}
