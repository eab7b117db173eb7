// Package availability рассчитывает свободные слоты для записи.
//
// Движок не хранит состояния и не выполняет I/O: все данные (правила рабочего
// времени, исключение на дату, записи за день, текущее время) передаются снимком.
// Результат проверки пересечений носит рекомендательный характер: окончательную
// защиту от двойной записи обеспечивает exclusion constraint в БД.
package availability

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

// Options параметры движка
type Options struct {
	Granularity time.Duration  // шаг между началами слотов
	LeadTime    time.Duration  // минимальный запас до начала слота на сегодня
	Location    *time.Location // часовой пояс мойки, в нём считаются день недели и часы
}

// DefaultOptions шаг 30 минут, запас 1 час, UTC
func DefaultOptions() Options {
	return Options{
		Granularity: domain.DefaultSlotGranularityMinutes * time.Minute,
		LeadTime:    domain.DefaultLeadTimeMinutes * time.Minute,
		Location:    time.UTC,
	}
}

// Input снимок данных для одного расчёта
type Input struct {
	Date            time.Time // календарная дата, используются только год/месяц/день
	DurationMinutes int
	BusinessHours   []domain.BusinessHoursRule
	Override        *domain.DateOverride
	Appointments    []*domain.Appointment // все записи, начинающиеся в этот день, любого статуса
	Now             time.Time
}

// Engine движок расчёта доступности
type Engine struct {
	opts Options
}

// NewEngine создает движок; нулевые поля опций заменяются значениями по умолчанию
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Granularity <= 0 {
		opts.Granularity = def.Granularity
	}
	if opts.LeadTime < 0 {
		opts.LeadTime = def.LeadTime
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	return &Engine{opts: opts}
}

// Options текущие параметры движка
func (e *Engine) Options() Options {
	return e.opts
}

// Location часовой пояс, в котором работает движок
func (e *Engine) Location() *time.Location {
	return e.opts.Location
}

// ComputeAvailableSlots возвращает упорядоченный список слотов, доступных для записи.
// Пустой список - нормальный результат, а не ошибка.
func (e *Engine) ComputeAvailableSlots(in Input) []domain.TimeSlot {
	grid := e.ComputeSlotGrid(in)

	available := make([]domain.TimeSlot, 0, len(grid))
	for _, slot := range grid {
		if slot.Available {
			available = append(available, slot)
		}
	}
	return available
}

// ComputeSlotGrid возвращает всех кандидатов в пределах рабочих часов с флагом Available.
// Кандидат недоступен, если пересекается с активной записью или попадает в запас времени на сегодня.
func (e *Engine) ComputeSlotGrid(in Input) []domain.TimeSlot {
	if in.DurationMinutes <= 0 {
		return []domain.TimeSlot{}
	}

	loc := e.opts.Location
	day := CalendarDate(in.Date, loc)

	openTime, closeTime, ok := ResolveHours(day.Weekday(), in.BusinessHours, in.Override)
	if !ok {
		return []domain.TimeSlot{}
	}

	openAt := openTime.On(day, loc)
	closeAt := closeTime.On(day, loc)
	duration := time.Duration(in.DurationMinutes) * time.Minute

	isToday := IsSameDate(day, in.Now.In(loc))
	minStart := in.Now.Add(e.opts.LeadTime)

	grid := make([]domain.TimeSlot, 0)
	for start := openAt; start.Before(closeAt); start = start.Add(e.opts.Granularity) {
		end := start.Add(duration)
		// Конец ровно во время закрытия допустим
		if end.After(closeAt) {
			break
		}

		available := true
		if isToday && start.Before(minStart) {
			available = false
		}
		if available && conflictsWithAny(start, end, in.Appointments) {
			available = false
		}

		grid = append(grid, domain.TimeSlot{
			Start:     start,
			End:       end,
			Display:   start.Format(domain.TimeFormat),
			Available: available,
		})
	}

	return grid
}

// FindSlot ищет кандидата сетки, начинающегося ровно в start
func (e *Engine) FindSlot(in Input, start time.Time) (domain.TimeSlot, bool) {
	for _, slot := range e.ComputeSlotGrid(in) {
		if slot.Start.Equal(start) {
			return slot, true
		}
	}
	return domain.TimeSlot{}, false
}

// IsWithinLeadTime начинается ли слот раньше, чем now + запас (только для сегодняшней даты)
func (e *Engine) IsWithinLeadTime(start, now time.Time) bool {
	loc := e.opts.Location
	if !IsSameDate(start.In(loc), now.In(loc)) {
		return false
	}
	return start.Before(now.Add(e.opts.LeadTime))
}

// ResolveHours определяет часы работы на дату.
// Исключение с обоими временами заменяет правило дня недели целиком. Иначе день
// должен быть открыт по правилу, а отдельные поля исключения перекрывают соответствующие поля правила.
// ok = false, если день закрыт, заблокирован или конфигурация некорректна.
func ResolveHours(weekday time.Weekday, rules []domain.BusinessHoursRule, override *domain.DateOverride) (openTime, closeTime types.TimeString, ok bool) {
	if override != nil && override.IsFullyBlocked {
		return "", "", false
	}

	if override != nil && override.HasExplicitHours() {
		openTime, closeTime = *override.OpenTime, *override.CloseTime
	} else {
		rule, found := ruleForWeekday(rules, weekday)
		if !found || !rule.IsOpen {
			return "", "", false
		}
		openTime, closeTime = rule.OpenTime, rule.CloseTime
		if override != nil && override.OpenTime != nil {
			openTime = *override.OpenTime
		}
		if override != nil && override.CloseTime != nil {
			closeTime = *override.CloseTime
		}
	}

	if openTime.Validate() != nil || closeTime.Validate() != nil || !openTime.IsBefore(closeTime) {
		return "", "", false
	}
	return openTime, closeTime, true
}

// Overlaps пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd)
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CalendarDate полночь календарной даты date в часовом поясе loc
func CalendarDate(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// IsSameDate совпадают ли календарные даты
func IsSameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDateInPast дата раньше сегодняшней (в часовом поясе loc)
func IsDateInPast(date, now time.Time, loc *time.Location) bool {
	return CalendarDate(date, loc).Before(CalendarDate(now.In(loc), loc))
}

func ruleForWeekday(rules []domain.BusinessHoursRule, weekday time.Weekday) (domain.BusinessHoursRule, bool) {
	for _, r := range rules {
		if r.DayOfWeek == weekday {
			return r, true
		}
	}
	return domain.BusinessHoursRule{}, false
}

func conflictsWithAny(start, end time.Time, appointments []*domain.Appointment) bool {
	for _, a := range appointments {
		if a == nil || !a.OccupiesTime() {
			continue
		}
		if Overlaps(start, end, a.StartTime, a.EndTime) {
			return true
		}
	}
	return false
}
