package upsert_override

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule/models"
)

type ScheduleService interface {
	UpsertOverride(ctx context.Context, date time.Time, req *models.OverrideRequest) (*models.OverrideResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
