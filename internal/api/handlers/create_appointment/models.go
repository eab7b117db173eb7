package create_appointment

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	createAppointment "github.com/m04kA/SMC-CarWashBooking/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

var (
	errMissingStart   = errors.New("startTime or date with time is required")
	errInvalidInstant = errors.New("startTime must be RFC3339")
	errNotOnMinute    = errors.New("startTime must not contain seconds")
	errInvalidDate    = errors.New("date must be YYYY-MM-DD")
	errInvalidTime    = errors.New("time must be HH:MM")
)

// CreateAppointmentRequest HTTP request model
// Начало записи передаётся либо моментом startTime (RFC3339), либо парой date + time в часовом поясе мойки
type CreateAppointmentRequest struct {
	ServiceID     int64   `json:"serviceId"`
	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`
	VehicleType   string  `json:"vehicleType"`
	StartTime     *string `json:"startTime,omitempty"` // "2025-10-15T10:00:00-03:00"
	Date          *string `json:"date,omitempty"`      // "2025-10-15"
	Time          *string `json:"time,omitempty"`      // "10:00"
	Notes         *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	ServiceID       int64     `json:"serviceId"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	VehicleType     string    `json:"vehicleType"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Date            string    `json:"date"`
	Display         string    `json:"display"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	ServiceName     string    `json:"serviceName"`
	ServicePrice    float64   `json:"servicePrice"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(loc *time.Location, channel string) (*createAppointment.Request, error) {
	req := &createAppointment.Request{
		ServiceID:     r.ServiceID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		VehicleType:   r.VehicleType,
		Notes:         r.Notes,
		Channel:       channel,
	}

	switch {
	case r.StartTime != nil && *r.StartTime != "":
		instant, err := time.Parse(time.RFC3339, *r.StartTime)
		if err != nil {
			return nil, errInvalidInstant
		}
		local := instant.In(loc)
		if local.Second() != 0 || local.Nanosecond() != 0 {
			return nil, errNotOnMinute
		}
		req.Date = availability.CalendarDate(local, loc)
		req.StartTime = types.NewTimeString(local)

	case r.Date != nil && r.Time != nil:
		date, err := time.Parse(domain.DateFormat, *r.Date)
		if err != nil {
			return nil, errInvalidDate
		}
		startTime, err := types.NewTimeStringFromString(*r.Time)
		if err != nil {
			return nil, errInvalidTime
		}
		req.Date = date
		req.StartTime = startTime

	default:
		return nil, errMissingStart
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response, loc *time.Location) *AppointmentResponse {
	start := resp.StartTime.In(loc)

	return &AppointmentResponse{
		ID:              resp.ID,
		ServiceID:       resp.ServiceID,
		CustomerName:    resp.CustomerName,
		CustomerPhone:   resp.CustomerPhone,
		VehicleType:     resp.VehicleType,
		StartTime:       start,
		EndTime:         resp.EndTime.In(loc),
		Date:            start.Format(domain.DateFormat),
		Display:         start.Format(domain.TimeFormat),
		DurationMinutes: int(resp.EndTime.Sub(resp.StartTime) / time.Minute),
		Status:          resp.Status,
		ServiceName:     resp.ServiceName,
		ServicePrice:    resp.ServicePrice,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt,
		UpdatedAt:       resp.UpdatedAt,
	}
}
