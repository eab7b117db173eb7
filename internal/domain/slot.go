package domain

import "time"

// TimeSlot кандидат на запись, вычисляется на каждый запрос и не сохраняется
type TimeSlot struct {
	Start     time.Time // момент начала в часовом поясе мойки
	End       time.Time
	Display   string // "HH:MM"
	Available bool
}

// ISOTime момент начала в формате ISO-8601
func (s TimeSlot) ISOTime() string {
	return s.Start.Format(time.RFC3339)
}
