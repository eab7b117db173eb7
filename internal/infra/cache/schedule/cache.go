package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
)

const businessHoursKey = "business_hours"

// CachedRepository кэширует чтение расписания в LRU с TTL
// Любая запись сбрасывает соответствующий ключ. Отсутствие исключения на дату тоже кэшируется.
type CachedRepository struct {
	repo          Repository
	businessHours *expirable.LRU[string, []domain.BusinessHoursRule]
	overrides     *expirable.LRU[string, *domain.DateOverride]
	logger        Logger
}

func NewCachedRepository(repo Repository, size int, ttl time.Duration, logger Logger) *CachedRepository {
	return &CachedRepository{
		repo:          repo,
		businessHours: expirable.NewLRU[string, []domain.BusinessHoursRule](1, nil, ttl),
		overrides:     expirable.NewLRU[string, *domain.DateOverride](size, nil, ttl),
		logger:        logger,
	}
}

func (c *CachedRepository) GetBusinessHours(ctx context.Context) ([]domain.BusinessHoursRule, error) {
	if rules, ok := c.businessHours.Get(businessHoursKey); ok {
		return copyRules(rules), nil
	}

	rules, err := c.repo.GetBusinessHours(ctx)
	if err != nil {
		return nil, err
	}

	c.businessHours.Add(businessHoursKey, copyRules(rules))
	c.logger.Debug("schedule cache: business hours loaded (%d rules)", len(rules))
	return rules, nil
}

func (c *CachedRepository) UpsertBusinessHours(ctx context.Context, rule domain.BusinessHoursRule) (*domain.BusinessHoursRule, error) {
	saved, err := c.repo.UpsertBusinessHours(ctx, rule)
	c.businessHours.Remove(businessHoursKey)
	return saved, err
}

func (c *CachedRepository) GetOverride(ctx context.Context, date time.Time) (*domain.DateOverride, error) {
	key := date.Format(domain.DateFormat)

	if override, ok := c.overrides.Get(key); ok {
		if override == nil {
			return nil, scheduleRepo.ErrOverrideNotFound
		}
		copied := *override
		return &copied, nil
	}

	override, err := c.repo.GetOverride(ctx, date)
	if errors.Is(err, scheduleRepo.ErrOverrideNotFound) {
		c.overrides.Add(key, nil)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	copied := *override
	c.overrides.Add(key, &copied)
	return override, nil
}

// ListOverrides не кэшируется: используется только в админке
func (c *CachedRepository) ListOverrides(ctx context.Context, from, to *time.Time) ([]*domain.DateOverride, error) {
	return c.repo.ListOverrides(ctx, from, to)
}

func (c *CachedRepository) UpsertOverride(ctx context.Context, override domain.DateOverride) (*domain.DateOverride, error) {
	saved, err := c.repo.UpsertOverride(ctx, override)
	c.overrides.Remove(override.Date.Format(domain.DateFormat))
	return saved, err
}

func (c *CachedRepository) DeleteOverride(ctx context.Context, date time.Time) error {
	err := c.repo.DeleteOverride(ctx, date)
	c.overrides.Remove(date.Format(domain.DateFormat))
	return err
}

func copyRules(rules []domain.BusinessHoursRule) []domain.BusinessHoursRule {
	out := make([]domain.BusinessHoursRule, len(rules))
	copy(out, rules)
	return out
}
