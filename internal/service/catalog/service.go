package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	catalogRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/catalog/models"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
)

// Service сервис для работы с каталогом услуг
type Service struct {
	serviceRepo ServiceRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(serviceRepo ServiceRepository, logger Logger) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// List получает услуги; onlyActive используется для публичной витрины
func (s *Service) List(ctx context.Context, onlyActive bool) (*models.ServiceListResponse, error) {
	services, err := s.serviceRepo.List(ctx, onlyActive)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d services (onlyActive=%t)", len(services), onlyActive)
	return models.FromDomainServiceList(services), nil
}

// GetByID получает услугу по ID, включая выключенные
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("GetByID", id, err)
	}
	return models.FromDomainService(service), nil
}

// Create создает услугу
// Название обязательно, цена не отрицательная, длительность по умолчанию 90 минут
func (s *Service) Create(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Create: creating service name=%q", req.Name)

	// 1. Валидация и значения по умолчанию
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	if err := validatePrice(req.Price); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	duration := domain.DefaultServiceDurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	if err := validateDuration(duration); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	// 2. Создаем услугу
	created, err := s.serviceRepo.Create(ctx, &domain.ServiceDefinition{
		Name:            name,
		Description:     trimOptional(req.Description),
		Price:           req.Price,
		DurationMinutes: duration,
		Active:          active,
	})
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created service id=%d", created.ID)
	return models.FromDomainService(created), nil
}

// Update частично обновляет услугу
// Изменение длительности не затрагивает уже созданные записи: их время окончания зафиксировано
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("Update: updating service id=%d", id)

	update := domain.ServiceUpdate{
		Description:     trimOptional(req.Description),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Active:          req.Active,
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			s.logger.Warn("Update: validation failed for service id=%d: %v", id, err)
			return nil, err
		}
		update.Name = &name
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			s.logger.Warn("Update: validation failed for service id=%d: %v", id, err)
			return nil, err
		}
	}
	if req.DurationMinutes != nil {
		if err := validateDuration(*req.DurationMinutes); err != nil {
			s.logger.Warn("Update: validation failed for service id=%d: %v", id, err)
			return nil, err
		}
	}

	updated, err := s.serviceRepo.Update(ctx, id, update)
	if err != nil {
		return nil, s.mapRepoError("Update", id, err)
	}

	s.logger.Info("Update: successfully updated service id=%d", id)
	return models.FromDomainService(updated), nil
}

// Toggle включает или выключает услугу
func (s *Service) Toggle(ctx context.Context, id int64, active bool) (*models.ServiceResponse, error) {
	updated, err := s.serviceRepo.SetActive(ctx, id, active)
	if err != nil {
		return nil, s.mapRepoError("Toggle", id, err)
	}

	s.logger.Info("Toggle: service id=%d active=%t", id, active)
	return models.FromDomainService(updated), nil
}

// Delete мягко удаляет услугу: она пропадает с витрины, но остаётся в истории записей
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.serviceRepo.SetActive(ctx, id, false); err != nil {
		return s.mapRepoError("Delete", id, err)
	}

	s.logger.Info("Delete: service id=%d deactivated", id)
	return nil
}

func (s *Service) mapRepoError(op string, id int64, err error) error {
	if errors.Is(err, catalogRepo.ErrServiceNotFound) {
		s.logger.Warn("%s: service id=%d not found", op, id)
		return ErrServiceNotFound
	}
	s.logger.Error("%s: repository error for service id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxServiceNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, domain.MaxServiceNameLength)
	}
	return nil
}

func validatePrice(price float64) error {
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

func validateDuration(minutes int) error {
	if minutes < domain.MinServiceDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}
	return nil
}

// trimOptional обрезает пробелы, nil остаётся nil
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return ptr.Ptr(strings.TrimSpace(*s))
}
