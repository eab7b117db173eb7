package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

const (
	ChannelPublic = "public"
	ChannelAdmin  = "admin"
)

// Request модель запроса на создание записи
type Request struct {
	ServiceID     int64
	CustomerName  string
	CustomerPhone string
	VehicleType   string
	Date          time.Time        // Дата записи (без времени)
	StartTime     types.TimeString // Время начала слота, например "10:00"
	Notes         *string
	Channel       string // public или admin, только для метрик и логов
}

// Response модель ответа с созданной записью
type Response struct {
	ID            int64
	ServiceID     int64
	CustomerName  string
	CustomerPhone string
	VehicleType   string
	StartTime     time.Time
	EndTime       time.Time
	Status        string

	// Денормализованные данные
	ServiceName  string
	ServicePrice float64
	Notes        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
