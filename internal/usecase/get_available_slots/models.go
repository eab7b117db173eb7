package get_available_slots

import (
	"time"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Date            time.Time // Дата для получения слотов (используются только год/месяц/день)
	ServiceID       *int64    // Услуга, длительность берётся из каталога
	DurationMinutes *int      // Явная длительность, если услуга не указана
	Diagnostics     bool      // Вернуть всю сетку с флагом Available
}

// Response модель ответа со списком слотов
type Response struct {
	Date            time.Time
	ServiceID       *int64
	DurationMinutes int
	Slots           []Slot
}

// Slot модель временного слота
type Slot struct {
	Start     time.Time // Момент начала в часовом поясе мойки
	Display   string    // "HH:MM"
	Available bool
}
