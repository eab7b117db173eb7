package catalog

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// ServiceRepository интерфейс репозитория каталога услуг
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.ServiceDefinition) (*domain.ServiceDefinition, error)
	GetByID(ctx context.Context, id int64) (*domain.ServiceDefinition, error)
	List(ctx context.Context, onlyActive bool) ([]*domain.ServiceDefinition, error)
	Update(ctx context.Context, id int64, update domain.ServiceUpdate) (*domain.ServiceDefinition, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.ServiceDefinition, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
