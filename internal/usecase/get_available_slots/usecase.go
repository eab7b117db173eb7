package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
)

const (
	modeAvailable   = "available"
	modeDiagnostics = "diagnostics"
)

// Options параметры use case из конфигурации
type Options struct {
	DefaultDurationMinutes int
	MaxAdvanceDays         int // 0 - без ограничений
}

// UseCase use case для получения доступных слотов для записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	scheduleRepo    ScheduleRepository
	catalogRepo     CatalogRepository
	engine          *availability.Engine
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
	opts Options,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if opts.DefaultDurationMinutes <= 0 {
		opts.DefaultDurationMinutes = domain.DefaultServiceDurationMinutes
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		catalogRepo:     catalogRepo,
		engine:          engine,
		opts:            opts,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	loc := uc.engine.Location()
	day := availability.CalendarDate(req.Date, loc)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now().In(loc)

	// 3. Валидация даты
	if err := validateDate(day, now, loc, uc.opts.MaxAdvanceDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date %s rejected: %v", day.Format(domain.DateFormat), err)
		return nil, err
	}

	// 4. Определяем длительность
	duration, err := uc.resolveDuration(ctx, req)
	if err != nil {
		return nil, err
	}

	// 5. Рабочие часы и исключение на дату
	businessHours, err := uc.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get business hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get business hours: %v", ErrInternal, err)
	}

	override, err := uc.scheduleRepo.GetOverride(ctx, day)
	if err != nil && !errors.Is(err, scheduleRepo.ErrOverrideNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get override for %s: %v", day.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to get date override: %v", ErrInternal, err)
	}

	// 6. Записи на этот день (все статусы, отменённые отфильтрует движок)
	appointments, err := uc.appointmentRepo.GetByDay(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 7. Расчёт слотов
	input := availability.Input{
		Date:            day,
		DurationMinutes: duration,
		BusinessHours:   businessHours,
		Override:        override,
		Appointments:    appointments,
		Now:             now,
	}

	var computed []domain.TimeSlot
	mode := modeAvailable
	if req.Diagnostics {
		computed = uc.engine.ComputeSlotGrid(input)
		mode = modeDiagnostics
	} else {
		computed = uc.engine.ComputeAvailableSlots(input)
	}

	slots := make([]Slot, len(computed))
	for i, s := range computed {
		slots[i] = Slot{
			Start:     s.Start,
			Display:   s.Display,
			Available: s.Available,
		}
	}

	uc.metrics.ObserveSlots(mode, len(slots))
	uc.logger.Info("GetAvailableSlots: %d slots (%s) for date=%s, duration=%d",
		len(slots), mode, day.Format(domain.DateFormat), duration)

	return &Response{
		Date:            day,
		ServiceID:       req.ServiceID,
		DurationMinutes: duration,
		Slots:           slots,
	}, nil
}

// resolveDuration длительность из услуги, из запроса или значение по умолчанию
func (uc *UseCase) resolveDuration(ctx context.Context, req *Request) (int, error) {
	if req.ServiceID == nil {
		if req.DurationMinutes != nil {
			return *req.DurationMinutes, nil
		}
		return uc.opts.DefaultDurationMinutes, nil
	}

	service, err := uc.catalogRepo.GetByID(ctx, *req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", *req.ServiceID)
			return 0, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", *req.ServiceID, err)
		return 0, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsBookable() {
		uc.logger.Warn("GetAvailableSlots: service id=%d is not active", service.ID)
		return 0, ErrServiceInactive
	}

	return service.DurationMinutes, nil
}
