package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// Locker выполняет fn, удерживая блокировку по ключу
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// RedisLocker распределённая блокировка на SET NX с TTL
// Снятие блокировки атомарно проверяет токен владельца (Lua), чужой ключ не удаляется.
type RedisLocker struct {
	client Client
	ttl    time.Duration
	prefix string
	logger Logger
}

func NewRedisLocker(client Client, ttl time.Duration, prefix string, logger Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: logger,
	}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: WithLock - acquire %s: %v", ErrLockBackend, fullKey, err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		// контекст запроса мог быть отменён, а ключ нужно снять в любом случае
		if err := l.release(context.WithoutCancel(ctx), fullKey, token); err != nil {
			l.logger.Warn("WithLock: key %s stays until TTL %s expires: %v", fullKey, l.ttl, err)
		}
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release %s: %v", ErrLockBackend, key, err)
	}
	return nil
}

// NoopLocker используется, когда Redis выключен: защита остаётся только на уровне БД
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DateKey ключ блокировки записи на календарный день
func DateKey(date time.Time) string {
	return "date:" + date.Format(domain.DateFormat)
}
