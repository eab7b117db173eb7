package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

var (
	// ErrInvalidSchedule некорректное правило рабочего времени или исключение
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// BusinessHoursRule рабочие часы для дня недели (0 = воскресенье .. 6 = суббота)
// На каждый день недели хранится ровно одно правило (upsert по day_of_week)
type BusinessHoursRule struct {
	DayOfWeek time.Weekday
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
	UpdatedAt time.Time
}

// Validate для открытого дня openTime строго раньше closeTime
func (r *BusinessHoursRule) Validate() error {
	if r.DayOfWeek < time.Sunday || r.DayOfWeek > time.Saturday {
		return fmt.Errorf("%w: day of week must be in 0..6, got %d", ErrInvalidSchedule, r.DayOfWeek)
	}
	if !r.IsOpen {
		return nil
	}
	if err := r.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: open time: %v", ErrInvalidSchedule, err)
	}
	if err := r.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: close time: %v", ErrInvalidSchedule, err)
	}
	if !r.OpenTime.IsBefore(r.CloseTime) {
		return fmt.Errorf("%w: open time %s must be before close time %s", ErrInvalidSchedule, r.OpenTime, r.CloseTime)
	}
	return nil
}

// DateOverride исключение для конкретной даты: полная блокировка или особые часы
// На каждую дату не более одного исключения (upsert по date)
type DateOverride struct {
	Date           time.Time // только календарная дата
	IsFullyBlocked bool
	OpenTime       *types.TimeString
	CloseTime      *types.TimeString
	Reason         *string
	CreatedAt      time.Time
}

// HasExplicitHours исключение задаёт оба времени и полностью заменяет часы дня недели
func (o *DateOverride) HasExplicitHours() bool {
	return !o.IsFullyBlocked && o.OpenTime != nil && o.CloseTime != nil
}

// Validate проверяет согласованность часов исключения
func (o *DateOverride) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("%w: override date is required", ErrInvalidSchedule)
	}
	if o.IsFullyBlocked {
		return nil
	}
	if o.OpenTime != nil {
		if err := o.OpenTime.Validate(); err != nil {
			return fmt.Errorf("%w: open time: %v", ErrInvalidSchedule, err)
		}
	}
	if o.CloseTime != nil {
		if err := o.CloseTime.Validate(); err != nil {
			return fmt.Errorf("%w: close time: %v", ErrInvalidSchedule, err)
		}
	}
	if o.OpenTime != nil && o.CloseTime != nil && !o.OpenTime.IsBefore(*o.CloseTime) {
		return fmt.Errorf("%w: open time %s must be before close time %s", ErrInvalidSchedule, *o.OpenTime, *o.CloseTime)
	}
	return nil
}

// DefaultBusinessHours расписание по умолчанию: воскресенье выходной,
// будни 08:00-18:00, суббота 08:00-14:00
func DefaultBusinessHours() []BusinessHoursRule {
	weekday := func(d time.Weekday) BusinessHoursRule {
		return BusinessHoursRule{DayOfWeek: d, IsOpen: true, OpenTime: "08:00", CloseTime: "18:00"}
	}
	return []BusinessHoursRule{
		{DayOfWeek: time.Sunday, IsOpen: false, OpenTime: "08:00", CloseTime: "18:00"},
		weekday(time.Monday),
		weekday(time.Tuesday),
		weekday(time.Wednesday),
		weekday(time.Thursday),
		weekday(time.Friday),
		{DayOfWeek: time.Saturday, IsOpen: true, OpenTime: "08:00", CloseTime: "14:00"},
	}
}
