package models

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// Request модели

// BusinessHoursRequest правило рабочих часов для дня недели
// Для закрытого дня время можно не указывать
type BusinessHoursRequest struct {
	IsOpen    bool             `json:"isOpen"`
	OpenTime  types.TimeString `json:"openTime"`  // "08:00"
	CloseTime types.TimeString `json:"closeTime"` // "18:00"
}

// ToDomainRule конвертирует запрос в domain модель
func (r *BusinessHoursRequest) ToDomainRule(day time.Weekday) domain.BusinessHoursRule {
	return domain.BusinessHoursRule{
		DayOfWeek: day,
		IsOpen:    r.IsOpen,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
	}
}

// OverrideRequest исключение на дату
// IsFullyBlocked = true закрывает день целиком, часы при этом игнорируются
type OverrideRequest struct {
	IsFullyBlocked bool              `json:"isFullyBlocked"`
	OpenTime       *types.TimeString `json:"openTime,omitempty"`
	CloseTime      *types.TimeString `json:"closeTime,omitempty"`
	Reason         *string           `json:"reason,omitempty"`
}

// ToDomainOverride конвертирует запрос в domain модель
func (r *OverrideRequest) ToDomainOverride(date time.Time) domain.DateOverride {
	return domain.DateOverride{
		Date:           date,
		IsFullyBlocked: r.IsFullyBlocked,
		OpenTime:       r.OpenTime,
		CloseTime:      r.CloseTime,
		Reason:         r.Reason,
	}
}

// Response модели

// BusinessHoursResponse правило рабочих часов
type BusinessHoursResponse struct {
	DayOfWeek int              `json:"dayOfWeek"` // 0 = воскресенье
	DayName   string           `json:"dayName"`
	IsOpen    bool             `json:"isOpen"`
	OpenTime  types.TimeString `json:"openTime"`
	CloseTime types.TimeString `json:"closeTime"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

// BusinessHoursListResponse недельное расписание
type BusinessHoursListResponse struct {
	BusinessHours []BusinessHoursResponse `json:"businessHours"`
}

// OverrideResponse исключение на дату
type OverrideResponse struct {
	Date           string            `json:"date"` // "2025-12-25"
	IsFullyBlocked bool              `json:"isFullyBlocked"`
	OpenTime       *types.TimeString `json:"openTime,omitempty"`
	CloseTime      *types.TimeString `json:"closeTime,omitempty"`
	Reason         *string           `json:"reason,omitempty"`
	CreatedAt      *time.Time        `json:"createdAt,omitempty"`
}

// OverrideListResponse список исключений
type OverrideListResponse struct {
	Overrides []OverrideResponse `json:"overrides"`
}

// DayAvailabilityResponse открыта ли мойка в указанную дату
type DayAvailabilityResponse struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r domain.BusinessHoursRule) BusinessHoursResponse {
	resp := BusinessHoursResponse{
		DayOfWeek: int(r.DayOfWeek),
		DayName:   r.DayOfWeek.String(),
		IsOpen:    r.IsOpen,
		OpenTime:  r.OpenTime,
		CloseTime: r.CloseTime,
	}
	if !r.UpdatedAt.IsZero() {
		updatedAt := r.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// FromDomainRuleList конвертирует недельное расписание в DTO
func FromDomainRuleList(rules []domain.BusinessHoursRule) *BusinessHoursListResponse {
	resp := &BusinessHoursListResponse{
		BusinessHours: make([]BusinessHoursResponse, 0, len(rules)),
	}
	for _, r := range rules {
		resp.BusinessHours = append(resp.BusinessHours, FromDomainRule(r))
	}
	return resp
}

// FromDomainOverride конвертирует domain модель в DTO
func FromDomainOverride(o *domain.DateOverride) *OverrideResponse {
	if o == nil {
		return nil
	}

	resp := &OverrideResponse{
		Date:           o.Date.Format(domain.DateFormat),
		IsFullyBlocked: o.IsFullyBlocked,
		OpenTime:       o.OpenTime,
		CloseTime:      o.CloseTime,
		Reason:         o.Reason,
	}
	if !o.CreatedAt.IsZero() {
		createdAt := o.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

// FromDomainOverrideList конвертирует список исключений в DTO
func FromDomainOverrideList(overrides []*domain.DateOverride) *OverrideListResponse {
	resp := &OverrideListResponse{
		Overrides: make([]OverrideResponse, 0, len(overrides)),
	}
	for _, o := range overrides {
		if item := FromDomainOverride(o); item != nil {
			resp.Overrides = append(resp.Overrides, *item)
		}
	}
	return resp
}
