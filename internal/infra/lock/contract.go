package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client команды Redis, которые использует блокировка (*redis.Client подходит)
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}
