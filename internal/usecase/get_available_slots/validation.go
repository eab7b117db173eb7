package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.ServiceID != nil && *req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом и не дальше maxAdvanceDays (0 - без ограничений)
func validateDate(requestDate, now time.Time, loc *time.Location, maxAdvanceDays int) error {
	if availability.IsDateInPast(requestDate, now, loc) {
		return ErrDateInPast
	}

	if maxAdvanceDays == 0 {
		return nil
	}

	maxDate := availability.CalendarDate(now.In(loc), loc).AddDate(0, 0, maxAdvanceDays)
	if availability.CalendarDate(requestDate, loc).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}

	return nil
}
