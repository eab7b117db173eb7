package get_today_appointments

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/appointments/models"
)

type AppointmentService interface {
	Today(ctx context.Context) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
