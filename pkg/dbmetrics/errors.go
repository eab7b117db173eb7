package dbmetrics

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые важны для бизнес-логики
const (
	pgSerializationFailure = "40001"
	pgExclusionViolation   = "23P01"
	pgUniqueViolation      = "23505"
)

var (
	// ErrSerializationFailure возвращается, когда сериализуемая транзакция не смогла закоммититься
	ErrSerializationFailure = errors.New("db: serialization failure")
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsSerializationFailure SQLSTATE 40001
func IsSerializationFailure(err error) bool {
	return pqCode(err) == pgSerializationFailure
}

// WrapQueryError оборачивает ошибку запроса в sentinel репозитория
// Конфликт сериализации остается ErrSerializationFailure, чтобы вызывающий отличил гонку от сбоя
func WrapQueryError(sentinel error, op string, err error) error {
	if IsSerializationFailure(err) {
		return fmt.Errorf("%w: %s: %v", ErrSerializationFailure, op, err)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, op, err)
}

// IsExclusionViolation SQLSTATE 23P01 (нарушение EXCLUDE constraint)
func IsExclusionViolation(err error) bool {
	return pqCode(err) == pgExclusionViolation
}

// IsUniqueViolation SQLSTATE 23505
func IsUniqueViolation(err error) bool {
	return pqCode(err) == pgUniqueViolation
}
