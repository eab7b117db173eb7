package domain

import "time"

// ServiceDefinition услуга мойки из каталога
// Удаление услуги мягкое: Active = false
type ServiceDefinition struct {
	ID              int64
	Name            string
	Description     *string
	Price           float64
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsBookable записаться можно только на активную услугу с положительной длительностью
func (s *ServiceDefinition) IsBookable() bool {
	return s.Active && s.DurationMinutes >= MinServiceDurationMinutes
}

// ServiceUpdate частичное обновление услуги; nil означает "не менять"
type ServiceUpdate struct {
	Name            *string
	Description     *string
	Price           *float64
	DurationMinutes *int
	Active          *bool
}
