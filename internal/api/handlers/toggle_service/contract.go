package toggle_service

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/catalog/models"
)

type CatalogService interface {
	Toggle(ctx context.Context, id int64, active bool) (*models.ServiceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
