package get_upcoming_appointments

import (
	"context"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/appointments/models"
)

type AppointmentService interface {
	Upcoming(ctx context.Context, limit int) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
