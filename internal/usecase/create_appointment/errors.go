package create_appointment

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrServiceInactive возвращается, когда услуга выключена
	ErrServiceInactive = errors.New("create_appointment: service is not active")

	// ErrDateInPast возвращается, когда дата записи раньше сегодняшней
	ErrDateInPast = errors.New("create_appointment: date is in the past")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение maxAdvanceDays
	ErrDateTooFarInFuture = errors.New("create_appointment: date is too far in the future")

	// ErrInvalidTimeSlot возвращается, когда время не совпадает ни с одним слотом (вне рабочих часов или не на границе шага)
	ErrInvalidTimeSlot = errors.New("create_appointment: invalid time slot")

	// ErrTooLateToBook возвращается, когда слот начинается раньше, чем через lead time
	ErrTooLateToBook = errors.New("create_appointment: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда слот пересекается с существующей записью
	ErrSlotNotAvailable = errors.New("create_appointment: slot is not available")

	// ErrSlotTaken возвращается, когда слот занят параллельной записью в момент сохранения
	ErrSlotTaken = errors.New("create_appointment: slot was just taken")

	// ErrSlotBusy возвращается, когда на этот день уже оформляется другая запись
	ErrSlotBusy = errors.New("create_appointment: another booking for this date is in progress")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
