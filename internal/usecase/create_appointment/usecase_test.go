package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
	"github.com/m04kA/SMC-CarWashBooking/pkg/types"
)

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	args := m.Called(ctx, appointment)
	if v := args.Get(0); v != nil {
		return v.(*domain.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentRepo) GetByDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Appointment, error) {
	args := m.Called(ctx, dayStart, dayEnd)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockScheduleRepo struct{ mock.Mock }

func (m *mockScheduleRepo) GetBusinessHours(ctx context.Context) ([]domain.BusinessHoursRule, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.BusinessHoursRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockScheduleRepo) GetOverride(ctx context.Context, date time.Time) (*domain.DateOverride, error) {
	args := m.Called(ctx, date)
	if v := args.Get(0); v != nil {
		return v.(*domain.DateOverride), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) GetByID(ctx context.Context, id int64) (*domain.ServiceDefinition, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.ServiceDefinition), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeTxManager выполняет fn без транзакции; err подменяет результат коммита
type fakeTxManager struct {
	commitErr error
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return m.commitErr
}

type fakeLocker struct {
	err  error
	keys []string
}

func (l *fakeLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return l.err
	}
	return fn(ctx)
}

type recordingMetrics struct {
	created   []string
	conflicts []string
}

func (m *recordingMetrics) IncAppointmentsCreated(channel string) {
	m.created = append(m.created, channel)
}

func (m *recordingMetrics) IncBookingConflict(stage string) {
	m.conflicts = append(m.conflicts, stage)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

var brt = time.FixedZone("BRT", -3*60*60)

// понедельник 10 марта 2025, 14:32 по BRT
var now = time.Date(2025, 3, 10, 14, 32, 0, 0, brt)

var tuesday = time.Date(2025, 3, 11, 0, 0, 0, 0, brt)

var washService = &domain.ServiceDefinition{
	ID:              7,
	Name:            "Lavagem completa",
	Price:           80,
	DurationMinutes: 60,
	Active:          true,
}

type fixture struct {
	appointments *mockAppointmentRepo
	schedule     *mockScheduleRepo
	catalog      *mockCatalogRepo
	locker       *fakeLocker
	tx           *fakeTxManager
	metrics      *recordingMetrics
	uc           *UseCase
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		appointments: &mockAppointmentRepo{},
		schedule:     &mockScheduleRepo{},
		catalog:      &mockCatalogRepo{},
		locker:       &fakeLocker{},
		tx:           &fakeTxManager{},
		metrics:      &recordingMetrics{},
	}
	engine := availability.NewEngine(availability.Options{
		Granularity: 30 * time.Minute,
		LeadTime:    time.Hour,
		Location:    brt,
	})
	f.uc = NewUseCase(f.appointments, f.schedule, f.catalog, engine, f.locker, f.tx, opts, f.metrics, logger.NewNop())
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func (f *fixture) expectService(service *domain.ServiceDefinition) {
	f.catalog.On("GetByID", mock.Anything, service.ID).Return(service, nil)
}

func (f *fixture) expectDay(day time.Time, appointments []*domain.Appointment) {
	f.schedule.On("GetBusinessHours", mock.Anything).Return(domain.DefaultBusinessHours(), nil)
	f.schedule.On("GetOverride", mock.Anything, day).Return(nil, scheduleRepo.ErrOverrideNotFound)
	f.appointments.On("GetByDay", mock.Anything, day, day.AddDate(0, 0, 1)).Return(appointments, nil)
}

func validRequest(date time.Time, startTime string) *Request {
	return &Request{
		ServiceID:     washService.ID,
		CustomerName:  " Maria Silva ",
		CustomerPhone: "+55 11 99999-0000",
		VehicleType:   "SUV",
		Date:          date,
		StartTime:     types.TimeString(startTime),
		Notes:         ptr.Ptr("portão lateral"),
		Channel:       ChannelPublic,
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(Options{})
	f.expectService(washService)
	f.expectDay(tuesday, []*domain.Appointment{{
		StartTime: time.Date(2025, 3, 11, 8, 0, 0, 0, brt),
		EndTime:   time.Date(2025, 3, 11, 9, 0, 0, 0, brt),
		Status:    domain.StatusConfirmed,
	}})

	start := time.Date(2025, 3, 11, 10, 0, 0, 0, brt)
	createdAt := time.Date(2025, 3, 10, 14, 32, 1, 0, time.UTC)

	f.appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.StartTime.Equal(start) &&
			a.EndTime.Equal(start.Add(time.Hour)) &&
			a.Status == domain.StatusPending &&
			a.CustomerName == "Maria Silva" &&
			a.ServiceName == washService.Name &&
			a.ServicePrice == washService.Price
	})).Return(&domain.Appointment{
		ID:           42,
		ServiceID:    washService.ID,
		CustomerName: "Maria Silva",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		Status:       domain.StatusPending,
		ServiceName:  washService.Name,
		ServicePrice: washService.Price,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil)

	resp, err := f.uc.Execute(context.Background(), validRequest(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), "10:00"))

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.True(t, resp.EndTime.Equal(start.Add(time.Hour)))
	assert.Equal(t, "Lavagem completa", resp.ServiceName)
	assert.Equal(t, []string{"date:2025-03-11"}, f.locker.keys)
	assert.Equal(t, []string{ChannelPublic}, f.metrics.created)
	assert.Empty(t, f.metrics.conflicts)
	f.appointments.AssertExpectations(t)
}

func TestExecute_SlotRejected(t *testing.T) {
	existing := []*domain.Appointment{{
		StartTime: time.Date(2025, 3, 11, 10, 0, 0, 0, brt),
		EndTime:   time.Date(2025, 3, 11, 11, 30, 0, 0, brt),
		Status:    domain.StatusPending,
	}}

	tests := []struct {
		name          string
		date          time.Time
		startTime     string
		appointments  []*domain.Appointment
		wantErr       error
		wantConflicts []string
	}{
		{name: "off grid", date: tuesday, startTime: "10:15", wantErr: ErrInvalidTimeSlot},
		{name: "ends after close", date: tuesday, startTime: "17:30", wantErr: ErrInvalidTimeSlot},
		{name: "before open", date: tuesday, startTime: "07:30", wantErr: ErrInvalidTimeSlot},
		{name: "inside lead time", date: now, startTime: "15:00", wantErr: ErrTooLateToBook},
		{name: "overlaps existing", date: tuesday, startTime: "09:30", appointments: existing, wantErr: ErrSlotNotAvailable, wantConflicts: []string{"advisory"}},
		{name: "same start as existing", date: tuesday, startTime: "10:00", appointments: existing, wantErr: ErrSlotNotAvailable, wantConflicts: []string{"advisory"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Options{})
			f.expectService(washService)
			f.expectDay(availability.CalendarDate(tt.date, brt), tt.appointments)

			_, err := f.uc.Execute(context.Background(), validRequest(tt.date, tt.startTime))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantConflicts, f.metrics.conflicts)
			assert.Empty(t, f.metrics.created)
			f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_AdjacentToExisting(t *testing.T) {
	f := newFixture(Options{})
	f.expectService(washService)
	f.expectDay(tuesday, []*domain.Appointment{{
		StartTime: time.Date(2025, 3, 11, 9, 0, 0, 0, brt),
		EndTime:   time.Date(2025, 3, 11, 10, 0, 0, 0, brt),
		Status:    domain.StatusConfirmed,
	}})
	f.appointments.On("Create", mock.Anything, mock.Anything).Return(&domain.Appointment{ID: 1, Status: domain.StatusPending}, nil)

	_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))
	assert.NoError(t, err)
}

func TestExecute_StoreConflicts(t *testing.T) {
	t.Run("exclusion constraint", func(t *testing.T) {
		f := newFixture(Options{})
		f.expectService(washService)
		f.expectDay(tuesday, nil)
		f.appointments.On("Create", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: Create - insert", appointmentRepo.ErrSlotTaken))

		_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.Equal(t, []string{"store"}, f.metrics.conflicts)
	})

	t.Run("serialization failure on commit", func(t *testing.T) {
		f := newFixture(Options{})
		f.tx.commitErr = fmt.Errorf("%w: commit: pq: could not serialize access", dbmetrics.ErrSerializationFailure)
		f.expectService(washService)
		f.expectDay(tuesday, nil)
		f.appointments.On("Create", mock.Anything, mock.Anything).Return(&domain.Appointment{ID: 1}, nil)

		_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.Equal(t, []string{"store"}, f.metrics.conflicts)
		assert.Empty(t, f.metrics.created)
	})

	t.Run("serialization failure while reading the day", func(t *testing.T) {
		f := newFixture(Options{})
		f.expectService(washService)
		f.schedule.On("GetBusinessHours", mock.Anything).Return(domain.DefaultBusinessHours(), nil)
		f.schedule.On("GetOverride", mock.Anything, tuesday).Return(nil, scheduleRepo.ErrOverrideNotFound)
		f.appointments.On("GetByDay", mock.Anything, tuesday, tuesday.AddDate(0, 0, 1)).
			Return(nil, fmt.Errorf("%w: GetByDay - execute query: pq: could not serialize access", dbmetrics.ErrSerializationFailure))

		_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.NotErrorIs(t, err, ErrInternal)
		assert.Equal(t, []string{"store"}, f.metrics.conflicts)
		f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("serialization failure while reading business hours", func(t *testing.T) {
		f := newFixture(Options{})
		f.expectService(washService)
		f.schedule.On("GetBusinessHours", mock.Anything).
			Return(nil, fmt.Errorf("%w: GetBusinessHours - execute query", dbmetrics.ErrSerializationFailure))

		_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.Equal(t, []string{"store"}, f.metrics.conflicts)
	})

	t.Run("read failure stays internal", func(t *testing.T) {
		f := newFixture(Options{})
		f.expectService(washService)
		f.schedule.On("GetBusinessHours", mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, f.metrics.conflicts)
	})

	t.Run("other store error", func(t *testing.T) {
		f := newFixture(Options{})
		f.expectService(washService)
		f.expectDay(tuesday, nil)
		f.appointments.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, f.metrics.conflicts)
	})
}

func TestExecute_Lock(t *testing.T) {
	t.Run("held by another request", func(t *testing.T) {
		f := newFixture(Options{})
		f.locker.err = lock.ErrLockNotAcquired
		f.expectService(washService)

		_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		assert.ErrorIs(t, err, ErrSlotBusy)
		assert.Equal(t, []string{"lock"}, f.metrics.conflicts)
		f.appointments.AssertNotCalled(t, "GetByDay", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backend unavailable", func(t *testing.T) {
		f := newFixture(Options{})
		f.locker.err = fmt.Errorf("%w: dial tcp: connection refused", lock.ErrLockBackend)
		f.expectService(washService)
		f.expectDay(tuesday, nil)
		f.appointments.On("Create", mock.Anything, mock.Anything).Return(&domain.Appointment{ID: 5, Status: domain.StatusPending}, nil)

		resp, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))

		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.ID)
	})
}

func TestExecute_Service(t *testing.T) {
	f := newFixture(Options{})
	f.catalog.On("GetByID", mock.Anything, washService.ID).Return(nil, catalogRepo.ErrServiceNotFound)
	_, err := f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))
	assert.ErrorIs(t, err, ErrServiceNotFound)

	inactive := *washService
	inactive.Active = false
	f = newFixture(Options{})
	f.expectService(&inactive)
	_, err = f.uc.Execute(context.Background(), validRequest(tuesday, "10:00"))
	assert.ErrorIs(t, err, ErrServiceInactive)
	assert.Empty(t, f.locker.keys)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		modify  func(r *Request)
		wantErr error
	}{
		{name: "no service", modify: func(r *Request) { r.ServiceID = 0 }, wantErr: ErrInvalidInput},
		{name: "blank name", modify: func(r *Request) { r.CustomerName = "   " }, wantErr: ErrInvalidInput},
		{name: "no phone", modify: func(r *Request) { r.CustomerPhone = "" }, wantErr: ErrInvalidInput},
		{name: "no vehicle", modify: func(r *Request) { r.VehicleType = "" }, wantErr: ErrInvalidInput},
		{name: "long name", modify: func(r *Request) { r.CustomerName = strings.Repeat("a", domain.MaxCustomerNameLength+1) }, wantErr: ErrInvalidInput},
		{name: "long notes", modify: func(r *Request) { r.Notes = ptr.Ptr(strings.Repeat("n", domain.MaxNotesLength+1)) }, wantErr: ErrInvalidInput},
		{name: "no date", modify: func(r *Request) { r.Date = time.Time{} }, wantErr: ErrInvalidInput},
		{name: "no time", modify: func(r *Request) { r.StartTime = "" }, wantErr: ErrInvalidInput},
		{name: "bad time", modify: func(r *Request) { r.StartTime = "25:00" }, wantErr: ErrInvalidInput},
		{name: "yesterday", modify: func(r *Request) { r.Date = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) }, wantErr: ErrDateInPast},
		{name: "beyond max advance", opts: Options{MaxAdvanceDays: 7}, modify: func(r *Request) { r.Date = time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC) }, wantErr: ErrDateTooFarInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.opts)
			req := validRequest(tuesday, "10:00")
			tt.modify(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			f.catalog.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}
