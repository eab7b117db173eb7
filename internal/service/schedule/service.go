package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule/models"
)

// Service сервис для управления рабочим временем и исключениями
type Service struct {
	scheduleRepo ScheduleRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(scheduleRepo ScheduleRepository, logger Logger) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

// GetBusinessHours получает недельное расписание, упорядоченное с воскресенья
func (s *Service) GetBusinessHours(ctx context.Context) (*models.BusinessHoursListResponse, error) {
	rules, err := s.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		s.logger.Error("GetBusinessHours: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetBusinessHours - repository error: %v", ErrInternal, err)
	}

	sorted := make([]domain.BusinessHoursRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DayOfWeek < sorted[j].DayOfWeek })

	return models.FromDomainRuleList(sorted), nil
}

// UpdateBusinessHours заменяет правило для дня недели (0 = воскресенье .. 6 = суббота)
func (s *Service) UpdateBusinessHours(ctx context.Context, day int, req *models.BusinessHoursRequest) (*models.BusinessHoursResponse, error) {
	s.logger.Info("UpdateBusinessHours: day=%d, isOpen=%t, %s-%s", day, req.IsOpen, req.OpenTime, req.CloseTime)

	if day < int(time.Sunday) || day > int(time.Saturday) {
		s.logger.Warn("UpdateBusinessHours: invalid day=%d", day)
		return nil, fmt.Errorf("%w: day of week must be in 0..6", ErrInvalidInput)
	}

	rule := req.ToDomainRule(time.Weekday(day))
	if err := rule.Validate(); err != nil {
		s.logger.Warn("UpdateBusinessHours: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// У закрытого дня время может быть любым, но в БД не пишем мусор
	if !rule.IsOpen {
		if rule.OpenTime.Validate() != nil || rule.CloseTime.Validate() != nil {
			rule.OpenTime, rule.CloseTime = "", ""
		}
	}

	saved, err := s.scheduleRepo.UpsertBusinessHours(ctx, rule)
	if err != nil {
		s.logger.Error("UpdateBusinessHours: repository error for day=%d: %v", day, err)
		return nil, fmt.Errorf("%w: UpdateBusinessHours - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateBusinessHours: successfully updated day=%s", saved.DayOfWeek)
	resp := models.FromDomainRule(*saved)
	return &resp, nil
}

// ListOverrides получает исключения в периоде [from, to], границы опциональны
func (s *Service) ListOverrides(ctx context.Context, from, to *time.Time) (*models.OverrideListResponse, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: startDate must not be after endDate", ErrInvalidInput)
	}

	overrides, err := s.scheduleRepo.ListOverrides(ctx, from, to)
	if err != nil {
		s.logger.Error("ListOverrides: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListOverrides - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOverrideList(overrides), nil
}

// UpsertOverride создает или заменяет исключение на дату
// Полная блокировка дня сбрасывает часы исключения
func (s *Service) UpsertOverride(ctx context.Context, date time.Time, req *models.OverrideRequest) (*models.OverrideResponse, error) {
	s.logger.Info("UpsertOverride: date=%s, blocked=%t", date.Format(domain.DateFormat), req.IsFullyBlocked)

	override := req.ToDomainOverride(date)
	if override.IsFullyBlocked {
		override.OpenTime, override.CloseTime = nil, nil
	}
	if override.Reason != nil {
		reason := strings.TrimSpace(*override.Reason)
		if reason == "" {
			override.Reason = nil
		} else {
			override.Reason = &reason
		}
	}

	if err := override.Validate(); err != nil {
		s.logger.Warn("UpsertOverride: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	saved, err := s.scheduleRepo.UpsertOverride(ctx, override)
	if err != nil {
		s.logger.Error("UpsertOverride: repository error for date=%s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: UpsertOverride - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOverride(saved), nil
}

// DeleteOverride удаляет исключение; день возвращается к обычному расписанию
func (s *Service) DeleteOverride(ctx context.Context, date time.Time) error {
	if err := s.scheduleRepo.DeleteOverride(ctx, date); err != nil {
		if errors.Is(err, scheduleRepo.ErrOverrideNotFound) {
			s.logger.Warn("DeleteOverride: no override for date=%s", date.Format(domain.DateFormat))
			return ErrOverrideNotFound
		}
		s.logger.Error("DeleteOverride: repository error for date=%s: %v", date.Format(domain.DateFormat), err)
		return fmt.Errorf("%w: DeleteOverride - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteOverride: removed override for date=%s", date.Format(domain.DateFormat))
	return nil
}

// IsDayAvailable открыта ли мойка в дату: день не заблокирован и часы определены
// исключением или правилом дня недели. Занятость слотов не учитывается
func (s *Service) IsDayAvailable(ctx context.Context, date time.Time) (*models.DayAvailabilityResponse, error) {
	rules, err := s.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		s.logger.Error("IsDayAvailable: failed to get business hours: %v", err)
		return nil, fmt.Errorf("%w: IsDayAvailable - repository error: %v", ErrInternal, err)
	}

	override, err := s.scheduleRepo.GetOverride(ctx, date)
	if err != nil && !errors.Is(err, scheduleRepo.ErrOverrideNotFound) {
		s.logger.Error("IsDayAvailable: failed to get override: %v", err)
		return nil, fmt.Errorf("%w: IsDayAvailable - repository error: %v", ErrInternal, err)
	}

	_, _, open := availability.ResolveHours(date.Weekday(), rules, override)

	return &models.DayAvailabilityResponse{
		Date:      date.Format(domain.DateFormat),
		Available: open,
	}, nil
}
