package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-CarWashBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	ServiceID       *int64          `json:"serviceId,omitempty"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AvailableSlot `json:"slots"`
	Total           int             `json:"total"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Time      time.Time `json:"time"`    // момент начала, RFC3339 со смещением мойки
	Display   string    `json:"display"` // "HH:MM"
	Available *bool     `json:"available,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
// Флаг available отдаётся только в режиме диагностики
func FromUseCaseResponse(resp *getAvailableSlots.Response, diagnostics bool) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Time:    slot.Start,
			Display: slot.Display,
		}
		if diagnostics {
			available := slot.Available
			slots[i].Available = &available
		}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
		Total:           len(slots),
	}
}
