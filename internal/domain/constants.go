package domain

// Значения по умолчанию для расчёта доступности
const (
	DefaultSlotGranularityMinutes = 30
	DefaultLeadTimeMinutes        = 60 // 1 час до начала записи на сегодня
	DefaultServiceDurationMinutes = 90
	DefaultMaxAdvanceDays         = 0 // 0 = без ограничения
	DefaultUpcomingLimit          = 10
	DashboardUpcomingLimit        = 5
)

// Ограничения бизнес-валидации
const (
	MinServiceDurationMinutes = 1
	MaxNotesLength            = 500
	MaxCustomerNameLength     = 120
	MaxCustomerPhoneLength    = 30
	MaxVehicleTypeLength      = 60
	MaxServiceNameLength      = 120
	MaxUpcomingLimit          = 100
)

// Форматы дат и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
