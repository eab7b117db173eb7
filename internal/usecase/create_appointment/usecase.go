package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
)

// Стадии, на которых обнаружен конфликт (метка метрики)
const (
	conflictStageLock     = "lock"
	conflictStageAdvisory = "advisory"
	conflictStageStore    = "store"
)

// Options параметры use case из конфигурации
type Options struct {
	MaxAdvanceDays int // 0 - без ограничений
}

// UseCase use case для создания записи на мойку
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	catalogRepo     CatalogRepository
	engine          *availability.Engine
	locker          Locker
	txManager       TransactionManager
	opts            Options
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	engine *availability.Engine,
	locker Locker,
	txManager TransactionManager,
	opts Options,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		catalogRepo:     catalogRepo,
		engine:          engine,
		locker:          locker,
		txManager:       txManager,
		opts:            opts,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
//
// Защита от двойной записи двухуровневая:
//  1. под блокировкой дня в Redis и в сериализуемой транзакции слот проверяется движком доступности;
//  2. при вставке пересечение отсекает EXCLUDE constraint в БД.
//
// Конфликт на втором уровне возвращается как ErrSlotTaken: клиент должен заново запросить слоты.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: channel=%s, service=%d, date=%s, time=%s",
		req.Channel, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	loc := uc.engine.Location()
	day := availability.CalendarDate(req.Date, loc)
	start := req.StartTime.On(day, loc)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(loc)

	// 3. Валидация даты
	if err := validateDate(day, now, loc, uc.opts.MaxAdvanceDays); err != nil {
		uc.logger.Warn("CreateAppointment: date %s rejected: %v", day.Format(domain.DateFormat), err)
		return nil, err
	}

	// 4. Получаем услугу
	service, err := uc.catalogRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsBookable() {
		uc.logger.Warn("CreateAppointment: service id=%d is not active", service.ID)
		return nil, ErrServiceInactive
	}

	var result *domain.Appointment

	book := func(ctx context.Context) error {
		return uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			// 5.1. Проверяем слот движком на снимке, прочитанном в транзакции
			if err := uc.checkSlot(txCtx, day, start, service.DurationMinutes, now); err != nil {
				return err
			}

			// 5.2. Создаем запись с денормализацией данных услуги
			appointment := &domain.Appointment{
				ServiceID:     service.ID,
				CustomerName:  strings.TrimSpace(req.CustomerName),
				CustomerPhone: strings.TrimSpace(req.CustomerPhone),
				VehicleType:   strings.TrimSpace(req.VehicleType),
				StartTime:     start,
				EndTime:       start.Add(time.Duration(service.DurationMinutes) * time.Minute),
				Status:        domain.StatusPending,
				ServiceName:   service.Name,
				ServicePrice:  service.Price,
				Notes:         req.Notes,
			}

			created, err := uc.appointmentRepo.Create(txCtx, appointment)
			if err != nil {
				if errors.Is(err, appointmentRepo.ErrSlotTaken) {
					return ErrSlotTaken
				}
				return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
			}

			result = created
			return nil
		})
	}

	// 5. Блокировка дня и сериализуемая транзакция
	err = uc.locker.WithLock(ctx, lock.DateKey(day), book)
	if errors.Is(err, lock.ErrLockBackend) {
		// Redis недоступен: fn не вызывалась, остаётся защита на уровне БД
		uc.logger.Warn("CreateAppointment: lock backend unavailable, booking without lock: %v", err)
		err = book(ctx)
	}

	if err != nil {
		return nil, uc.mapError(err, day, start)
	}

	uc.metrics.IncAppointmentsCreated(req.Channel)
	uc.logger.Info("CreateAppointment: successfully created appointment id=%d at %s", result.ID, result.StartTime.Format(domain.TimeFormat))

	return &Response{
		ID:            result.ID,
		ServiceID:     result.ServiceID,
		CustomerName:  result.CustomerName,
		CustomerPhone: result.CustomerPhone,
		VehicleType:   result.VehicleType,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		Status:        string(result.Status),
		ServiceName:   result.ServiceName,
		ServicePrice:  result.ServicePrice,
		Notes:         result.Notes,
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}, nil
}

// checkSlot загружает снимок дня и проверяет, что start - свободный кандидат сетки
func (uc *UseCase) checkSlot(ctx context.Context, day, start time.Time, duration int, now time.Time) error {
	businessHours, err := uc.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		return storeError("failed to get business hours", err)
	}

	override, err := uc.scheduleRepo.GetOverride(ctx, day)
	if err != nil && !errors.Is(err, scheduleRepo.ErrOverrideNotFound) {
		return storeError("failed to get date override", err)
	}

	// В транзакции записи читаются с FOR UPDATE
	appointments, err := uc.appointmentRepo.GetByDay(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return storeError("failed to get appointments", err)
	}

	input := availability.Input{
		Date:            day,
		DurationMinutes: duration,
		BusinessHours:   businessHours,
		Override:        override,
		Appointments:    appointments,
		Now:             now,
	}

	slot, found := uc.engine.FindSlot(input, start)
	if !found {
		return fmt.Errorf("%w: %s is outside business hours or off the %s grid",
			ErrInvalidTimeSlot, start.Format(domain.TimeFormat), uc.engine.Options().Granularity)
	}

	if uc.engine.IsWithinLeadTime(start, now) {
		return fmt.Errorf("%w: must book at least %s in advance", ErrTooLateToBook, uc.engine.Options().LeadTime)
	}

	if !slot.Available {
		return ErrSlotNotAvailable
	}

	return nil
}

// storeError оставляет конфликт сериализации различимым для mapError, прочие ошибки чтения внутренние
func storeError(msg string, err error) error {
	if errors.Is(err, dbmetrics.ErrSerializationFailure) {
		return fmt.Errorf("%w: %s: %v", dbmetrics.ErrSerializationFailure, msg, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, msg, err)
}

// mapError приводит ошибки блокировки и хранилища к ошибкам use case и считает конфликты
func (uc *UseCase) mapError(err error, day, start time.Time) error {
	date := day.Format(domain.DateFormat)

	switch {
	case errors.Is(err, lock.ErrLockNotAcquired):
		uc.metrics.IncBookingConflict(conflictStageLock)
		uc.logger.Warn("CreateAppointment: date %s is locked by another booking", date)
		return ErrSlotBusy

	case errors.Is(err, ErrSlotNotAvailable):
		uc.metrics.IncBookingConflict(conflictStageAdvisory)
		uc.logger.Warn("CreateAppointment: slot %s %s is not available", date, start.Format(domain.TimeFormat))
		return err

	case errors.Is(err, ErrSlotTaken), errors.Is(err, dbmetrics.ErrSerializationFailure):
		uc.metrics.IncBookingConflict(conflictStageStore)
		uc.logger.Warn("CreateAppointment: slot %s %s was taken concurrently", date, start.Format(domain.TimeFormat))
		return ErrSlotTaken

	case errors.Is(err, ErrInvalidTimeSlot), errors.Is(err, ErrTooLateToBook):
		uc.logger.Warn("CreateAppointment: %v", err)
		return err

	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateAppointment: %v", err)
		return err
	}

	uc.logger.Error("CreateAppointment: transaction failed: %v", err)
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
