package create_appointment

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if err := requiredString("customerName", req.CustomerName, domain.MaxCustomerNameLength); err != nil {
		return err
	}
	if err := requiredString("customerPhone", req.CustomerPhone, domain.MaxCustomerPhoneLength); err != nil {
		return err
	}
	if err := requiredString("vehicleType", req.VehicleType, domain.MaxVehicleTypeLength); err != nil {
		return err
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	return nil
}

func requiredString(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, maxLen)
	}
	return nil
}

// validateDate проверяет, что дата не в прошлом и не дальше maxAdvanceDays (0 - без ограничений)
func validateDate(date, now time.Time, loc *time.Location, maxAdvanceDays int) error {
	if availability.IsDateInPast(date, now, loc) {
		return ErrDateInPast
	}

	if maxAdvanceDays == 0 {
		return nil
	}

	maxDate := availability.CalendarDate(now.In(loc), loc).AddDate(0, 0, maxAdvanceDays)
	if availability.CalendarDate(date, loc).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}

	return nil
}
