package get_day_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule/models"
)

type ScheduleService interface {
	IsDayAvailable(ctx context.Context, date time.Time) (*models.DayAvailabilityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
