package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
)

type fakeRepo struct {
	rules     []domain.BusinessHoursRule
	overrides map[string]domain.DateOverride

	hoursCalls    int
	overrideCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rules:     domain.DefaultBusinessHours(),
		overrides: map[string]domain.DateOverride{},
	}
}

func (f *fakeRepo) GetBusinessHours(ctx context.Context) ([]domain.BusinessHoursRule, error) {
	f.hoursCalls++
	return copyRules(f.rules), nil
}

func (f *fakeRepo) UpsertBusinessHours(ctx context.Context, rule domain.BusinessHoursRule) (*domain.BusinessHoursRule, error) {
	f.rules[rule.DayOfWeek] = rule
	return &rule, nil
}

func (f *fakeRepo) GetOverride(ctx context.Context, date time.Time) (*domain.DateOverride, error) {
	f.overrideCalls++
	o, ok := f.overrides[date.Format(domain.DateFormat)]
	if !ok {
		return nil, scheduleRepo.ErrOverrideNotFound
	}
	return &o, nil
}

func (f *fakeRepo) ListOverrides(ctx context.Context, from, to *time.Time) ([]*domain.DateOverride, error) {
	return nil, nil
}

func (f *fakeRepo) UpsertOverride(ctx context.Context, override domain.DateOverride) (*domain.DateOverride, error) {
	f.overrides[override.Date.Format(domain.DateFormat)] = override
	return &override, nil
}

func (f *fakeRepo) DeleteOverride(ctx context.Context, date time.Time) error {
	key := date.Format(domain.DateFormat)
	if _, ok := f.overrides[key]; !ok {
		return scheduleRepo.ErrOverrideNotFound
	}
	delete(f.overrides, key)
	return nil
}

func TestCachedRepository_BusinessHours(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	cache := NewCachedRepository(repo, 16, time.Minute, logger.NewNop())

	first, err := cache.GetBusinessHours(ctx)
	require.NoError(t, err)
	_, err = cache.GetBusinessHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.hoursCalls)

	// изменение результата не портит кэш
	first[time.Monday].IsOpen = false
	cached, err := cache.GetBusinessHours(ctx)
	require.NoError(t, err)
	assert.True(t, cached[time.Monday].IsOpen)

	_, err = cache.UpsertBusinessHours(ctx, domain.BusinessHoursRule{DayOfWeek: time.Sunday, IsOpen: true, OpenTime: "09:00", CloseTime: "13:00"})
	require.NoError(t, err)

	rules, err := cache.GetBusinessHours(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.hoursCalls)
	assert.True(t, rules[time.Sunday].IsOpen)
}

func TestCachedRepository_Overrides(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	cache := NewCachedRepository(repo, 16, time.Minute, logger.NewNop())
	date := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)

	_, err := cache.GetOverride(ctx, date)
	assert.ErrorIs(t, err, scheduleRepo.ErrOverrideNotFound)
	_, err = cache.GetOverride(ctx, date)
	assert.ErrorIs(t, err, scheduleRepo.ErrOverrideNotFound)
	assert.Equal(t, 1, repo.overrideCalls)

	_, err = cache.UpsertOverride(ctx, domain.DateOverride{Date: date, IsFullyBlocked: true})
	require.NoError(t, err)

	override, err := cache.GetOverride(ctx, date)
	require.NoError(t, err)
	assert.True(t, override.IsFullyBlocked)
	assert.Equal(t, 2, repo.overrideCalls)

	require.NoError(t, cache.DeleteOverride(ctx, date))
	_, err = cache.GetOverride(ctx, date)
	assert.ErrorIs(t, err, scheduleRepo.ErrOverrideNotFound)
	assert.Equal(t, 3, repo.overrideCalls)
}

func TestCachedRepository_Expiration(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	cache := NewCachedRepository(repo, 16, 20*time.Millisecond, logger.NewNop())

	_, err := cache.GetBusinessHours(ctx)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, _ = cache.GetBusinessHours(ctx)
		return repo.hoursCalls >= 2
	}, time.Second, 10*time.Millisecond)
}
