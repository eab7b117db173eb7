package lock

import "errors"

var (
	// ErrLockNotAcquired ключ уже занят другим процессом
	ErrLockNotAcquired = errors.New("lock: not acquired")

	// ErrLockBackend ошибка хранилища блокировок
	ErrLockBackend = errors.New("lock: backend error")
)
