package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/appointments/models"
)

// Service сервис для работы с записями в панели администратора
type Service struct {
	appointmentRepo AppointmentRepository
	txManager       TransactionManager
	loc             *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
// loc - часовой пояс мойки, в нём считаются "сегодня" и границы дат фильтров
func NewService(
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	loc *time.Location,
	logger Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		appointmentRepo: appointmentRepo,
		txManager:       txManager,
		loc:             loc,
		timeProvider:    realTimeProvider{},
		logger:          logger,
	}
}

// List получает записи с фильтрацией по дате, периоду и статусу
//
// Примеры использования:
// - Записи на дату: Date
// - Записи за период: StartDate и/или EndDate
// - Только подтверждённые: Status = "confirmed"
func (s *Service) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	filter, err := s.toDomainFilter(req)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, err
	}

	appointments, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d appointments", len(appointments))
	return models.FromDomainAppointmentList(appointments, s.loc), nil
}

// Today получает все записи на сегодня, включая отменённые
func (s *Service) Today(ctx context.Context) (*models.AppointmentListResponse, error) {
	appointments, err := s.today(ctx)
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointmentList(appointments, s.loc), nil
}

// Upcoming получает ближайшие записи в статусах pending и confirmed, начиная с текущего момента
func (s *Service) Upcoming(ctx context.Context, limit int) (*models.AppointmentListResponse, error) {
	if limit <= 0 {
		limit = domain.DefaultUpcomingLimit
	}
	if limit > domain.MaxUpcomingLimit {
		limit = domain.MaxUpcomingLimit
	}

	appointments, err := s.upcoming(ctx, limit)
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointmentList(appointments, s.loc), nil
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appointment, s.loc), nil
}

// Update обновляет данные клиента и заметки
// Поддерживает частичное обновление - обновляются только указанные поля
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Update: updating appointment id=%d", id)

	update, err := normalizeUpdate(req)
	if err != nil {
		s.logger.Warn("Update: validation failed for appointment id=%d: %v", id, err)
		return nil, err
	}

	appointment, err := s.appointmentRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Update: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Update: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated appointment id=%d", id)
	return models.FromDomainAppointment(appointment, s.loc), nil
}

// UpdateStatus переводит запись в новый статус согласно жизненному циклу
// pending -> confirmed -> in_progress -> completed, отмена возможна из любого нетерминального статуса
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s", id, req.Status)

	newStatus, err := domain.ParseStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%q for appointment id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	var result *domain.Appointment

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		// Блокируем строку записи до конца транзакции
		appointment, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := appointment.Status.ValidateTransition(newStatus); err != nil {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appointment.Status, newStatus)
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, id, newStatus); err != nil {
			return err
		}

		appointment.Status = newStatus
		result = appointment
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("UpdateStatus: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		case errors.Is(err, ErrInvalidTransition):
			s.logger.Warn("UpdateStatus: appointment id=%d: %v", id, err)
			return nil, err
		case errors.Is(err, appointmentRepo.ErrSlotTaken):
			s.logger.Warn("UpdateStatus: appointment id=%d conflicts with another appointment", id)
			return nil, ErrSlotTaken
		}
		s.logger.Error("UpdateStatus: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated appointment id=%d to status=%s", id, newStatus)
	return models.FromDomainAppointment(result, s.loc), nil
}

// Cancel отменяет запись. Отмена - это смена статуса, запись не удаляется
func (s *Service) Cancel(ctx context.Context, id int64) (*models.AppointmentResponse, error) {
	return s.UpdateStatus(ctx, id, &models.UpdateStatusRequest{Status: string(domain.StatusCancelled)})
}

// Dashboard сводка на сегодня: количество по статусам, список дня и ближайшие записи
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardResponse, error) {
	today, err := s.today(ctx)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.upcoming(ctx, domain.DashboardUpcomingLimit)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		byStatus[string(status)] = 0
	}
	for _, a := range today {
		byStatus[string(a.Status)]++
	}

	todayList := models.FromDomainAppointmentList(today, s.loc)
	upcomingList := models.FromDomainAppointmentList(upcoming, s.loc)

	return &models.DashboardResponse{
		Date:       s.timeProvider.Now().In(s.loc).Format(domain.DateFormat),
		TodayTotal: todayList.Total,
		ByStatus:   byStatus,
		Today:      todayList.Appointments,
		Upcoming:   upcomingList.Appointments,
	}, nil
}

// Вспомогательные методы

func (s *Service) today(ctx context.Context) ([]*domain.Appointment, error) {
	day := availability.CalendarDate(s.timeProvider.Now().In(s.loc), s.loc)
	nextDay := day.AddDate(0, 0, 1)

	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentsFilter{From: &day, To: &nextDay})
	if err != nil {
		s.logger.Error("Today: repository error: %v", err)
		return nil, fmt.Errorf("%w: Today - repository error: %v", ErrInternal, err)
	}
	return appointments, nil
}

func (s *Service) upcoming(ctx context.Context, limit int) ([]*domain.Appointment, error) {
	now := s.timeProvider.Now()

	appointments, err := s.appointmentRepo.List(ctx, domain.AppointmentsFilter{
		From:     &now,
		Statuses: domain.UpcomingStatuses,
		Limit:    uint64(limit),
	})
	if err != nil {
		s.logger.Error("Upcoming: repository error: %v", err)
		return nil, fmt.Errorf("%w: Upcoming - repository error: %v", ErrInternal, err)
	}
	return appointments, nil
}

// toDomainFilter конвертирует запрос в фильтр; границы дат считаются в часовом поясе мойки
func (s *Service) toDomainFilter(req *models.ListRequest) (domain.AppointmentsFilter, error) {
	var filter domain.AppointmentsFilter

	if req.Date != nil {
		from := availability.CalendarDate(*req.Date, s.loc)
		to := from.AddDate(0, 0, 1)
		filter.From, filter.To = &from, &to
	} else {
		if req.StartDate != nil {
			from := availability.CalendarDate(*req.StartDate, s.loc)
			filter.From = &from
		}
		if req.EndDate != nil {
			// EndDate включительно
			to := availability.CalendarDate(*req.EndDate, s.loc).AddDate(0, 0, 1)
			filter.To = &to
		}
		if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
			return filter, fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidInput)
		}
	}

	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			return filter, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
		filter.Status = &status
	}

	return filter, nil
}

// normalizeUpdate обрезает пробелы и проверяет длины; пустые заметки очищают поле
func normalizeUpdate(req *models.UpdateRequest) (domain.AppointmentUpdate, error) {
	update := req.ToDomainUpdate()
	if update.IsEmpty() {
		return update, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	fields := []struct {
		name   string
		value  **string
		maxLen int
	}{
		{"customerName", &update.CustomerName, domain.MaxCustomerNameLength},
		{"customerPhone", &update.CustomerPhone, domain.MaxCustomerPhoneLength},
		{"vehicleType", &update.VehicleType, domain.MaxVehicleTypeLength},
	}

	for _, f := range fields {
		if *f.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(**f.value)
		if trimmed == "" {
			return update, fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, f.name)
		}
		if utf8.RuneCountInString(trimmed) > f.maxLen {
			return update, fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, f.name, f.maxLen)
		}
		*f.value = &trimmed
	}

	if update.Notes != nil {
		notes := strings.TrimSpace(*update.Notes)
		if utf8.RuneCountInString(notes) > domain.MaxNotesLength {
			return update, fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
		}
		update.Notes = &notes
	}

	return update, nil
}
