package get_business_hours

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule/models"
)

type ScheduleService interface {
	GetBusinessHours(ctx context.Context) (*models.BusinessHoursListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
