package domain

import (
	"errors"
	"fmt"
	"time"
)

// AppointmentStatus статус записи на мойку
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

var (
	// ErrUnknownStatus статус вне допустимого перечня
	ErrUnknownStatus = errors.New("unknown appointment status")

	// ErrInvalidTransition переход между статусами запрещён
	ErrInvalidTransition = errors.New("invalid appointment status transition")
)

// transitions допустимые переходы; completed и cancelled терминальные
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
}

// AllStatuses все статусы в порядке жизненного цикла
var AllStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

// UpcomingStatuses статусы, которые попадают в список ближайших записей
var UpcomingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// ParseStatus конвертирует строку в статус с валидацией
func ParseStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

func (s AppointmentStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal из терминального статуса переходов нет
func (s AppointmentStatus) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// OccupiesTime отменённые записи не занимают время на мойке
func (s AppointmentStatus) OccupiesTime() bool {
	return s != StatusCancelled
}

// CanTransitionTo проверяет допустимость перехода s -> next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition возвращает ошибку, если переход невозможен
func (s AppointmentStatus) ValidateTransition(next AppointmentStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// Appointment запись клиента на услугу
type Appointment struct {
	ID            int64
	ServiceID     int64
	CustomerName  string
	CustomerPhone string
	VehicleType   string
	StartTime     time.Time
	EndTime       time.Time // StartTime + длительность услуги на момент создания
	Status        AppointmentStatus

	// Денормализованные данные услуги для истории
	ServiceName  string
	ServicePrice float64

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesTime учитывается ли запись при проверке пересечений
func (a *Appointment) OccupiesTime() bool {
	return a.Status.OccupiesTime()
}

// DurationMinutes длительность записи
func (a *Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime) / time.Minute)
}

// CanBeCancelled запись можно отменить из любого нетерминального статуса
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.CanTransitionTo(StatusCancelled)
}

// AppointmentsFilter фильтр для выборки записей
type AppointmentsFilter struct {
	From     *time.Time          // start_time >= From
	To       *time.Time          // start_time < To
	Status   *AppointmentStatus  // конкретный статус (опционально)
	Statuses []AppointmentStatus // набор статусов (опционально, игнорируется при Status != nil)
	Limit    uint64              // 0 = без ограничения
}

// AppointmentUpdate изменяемые поля записи; nil означает "не менять"
type AppointmentUpdate struct {
	CustomerName  *string
	CustomerPhone *string
	VehicleType   *string
	Notes         *string
}

// IsEmpty нет ни одного поля для обновления
func (u AppointmentUpdate) IsEmpty() bool {
	return u.CustomerName == nil && u.CustomerPhone == nil && u.VehicleType == nil && u.Notes == nil
}
