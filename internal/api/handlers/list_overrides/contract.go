package list_overrides

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule/models"
)

type ScheduleService interface {
	ListOverrides(ctx context.Context, from, to *time.Time) (*models.OverrideListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
