package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// Repository источник данных расписания (обычно storage/schedule.Repository)
type Repository interface {
	GetBusinessHours(ctx context.Context) ([]domain.BusinessHoursRule, error)
	UpsertBusinessHours(ctx context.Context, rule domain.BusinessHoursRule) (*domain.BusinessHoursRule, error)
	GetOverride(ctx context.Context, date time.Time) (*domain.DateOverride, error)
	ListOverrides(ctx context.Context, from, to *time.Time) ([]*domain.DateOverride, error)
	UpsertOverride(ctx context.Context, override domain.DateOverride) (*domain.DateOverride, error)
	DeleteOverride(ctx context.Context, date time.Time) error
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
}
