package models

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// Request модели

// ListRequest фильтр списка записей для администратора
// Date имеет приоритет над периодом StartDate..EndDate (обе границы включительно)
type ListRequest struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
	Status    *string
}

// UpdateRequest частичное обновление данных клиента
// Время и услуга не меняются: для переноса запись отменяют и создают заново
type UpdateRequest struct {
	CustomerName  *string `json:"customerName,omitempty"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	VehicleType   *string `json:"vehicleType,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ToDomainUpdate конвертирует запрос в domain модель
func (r *UpdateRequest) ToDomainUpdate() domain.AppointmentUpdate {
	return domain.AppointmentUpdate{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		VehicleType:   r.VehicleType,
		Notes:         r.Notes,
	}
}

// UpdateStatusRequest запрос на смену статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64     `json:"id"`
	ServiceID       int64     `json:"serviceId"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	VehicleType     string    `json:"vehicleType"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Date            string    `json:"date"`    // "2025-10-15" в часовом поясе мойки
	Display         string    `json:"display"` // "10:00"
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	Notes        *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// DashboardResponse сводка на сегодня для панели администратора
type DashboardResponse struct {
	Date       string                `json:"date"`
	TodayTotal int                   `json:"todayTotal"`
	ByStatus   map[string]int        `json:"byStatus"`
	Today      []AppointmentResponse `json:"today"`
	Upcoming   []AppointmentResponse `json:"upcoming"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO, дата и время отображаются в loc
func FromDomainAppointment(a *domain.Appointment, loc *time.Location) *AppointmentResponse {
	if a == nil {
		return nil
	}

	local := a.StartTime.In(loc)

	return &AppointmentResponse{
		ID:              a.ID,
		ServiceID:       a.ServiceID,
		CustomerName:    a.CustomerName,
		CustomerPhone:   a.CustomerPhone,
		VehicleType:     a.VehicleType,
		StartTime:       local,
		EndTime:         a.EndTime.In(loc),
		Date:            local.Format(domain.DateFormat),
		Display:         local.Format(domain.TimeFormat),
		DurationMinutes: a.DurationMinutes(),
		Status:          string(a.Status),
		ServiceName:     a.ServiceName,
		ServicePrice:    a.ServicePrice,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment, loc *time.Location) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if item := FromDomainAppointment(a, loc); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}
	resp.Total = len(resp.Appointments)

	return resp
}
