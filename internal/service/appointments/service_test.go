package appointments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]*domain.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, id int64, update domain.AppointmentUpdate) (*domain.Appointment, error) {
	args := m.Called(ctx, id, update)
	if v := args.Get(0); v != nil {
		return v.(*domain.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

var brt = time.FixedZone("BRT", -3*60*60)

var now = time.Date(2025, 3, 10, 14, 32, 0, 0, brt)

func newService(repo *mockRepo) *Service {
	s := NewService(repo, inlineTx{}, brt, logger.NewNop())
	s.timeProvider = fixedTime{now: now}
	return s
}

func appointmentAt(id int64, hour int, status domain.AppointmentStatus) *domain.Appointment {
	start := time.Date(2025, 3, 10, hour, 0, 0, 0, brt)
	return &domain.Appointment{
		ID:           id,
		ServiceID:    1,
		CustomerName: "Cliente",
		StartTime:    start.UTC(),
		EndTime:      start.Add(90 * time.Minute).UTC(),
		Status:       status,
		ServiceName:  "Lavagem simples",
		ServicePrice: 40,
	}
}

func TestService_List_Filters(t *testing.T) {
	day := time.Date(2025, 3, 12, 0, 0, 0, 0, brt)
	nextDay := day.AddDate(0, 0, 1)
	confirmed := domain.StatusConfirmed

	tests := []struct {
		name string
		req  *models.ListRequest
		want domain.AppointmentsFilter
	}{
		{
			name: "no filter",
			req:  &models.ListRequest{},
			want: domain.AppointmentsFilter{},
		},
		{
			name: "date wins over period",
			req: &models.ListRequest{
				Date:      ptr.Ptr(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)),
				StartDate: ptr.Ptr(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
			},
			want: domain.AppointmentsFilter{From: &day, To: &nextDay},
		},
		{
			name: "inclusive period with status",
			req: &models.ListRequest{
				StartDate: ptr.Ptr(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)),
				EndDate:   ptr.Ptr(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)),
				Status:    ptr.Ptr("confirmed"),
			},
			want: domain.AppointmentsFilter{From: &day, To: &nextDay, Status: &confirmed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			repo.On("List", mock.Anything, tt.want).Return([]*domain.Appointment{appointmentAt(1, 9, domain.StatusConfirmed)}, nil)

			resp, err := newService(repo).List(context.Background(), tt.req)

			require.NoError(t, err)
			assert.Equal(t, 1, resp.Total)
			assert.Equal(t, "09:00", resp.Appointments[0].Display)
			assert.Equal(t, "2025-03-10", resp.Appointments[0].Date)
			assert.Equal(t, 90, resp.Appointments[0].DurationMinutes)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List_Invalid(t *testing.T) {
	repo := &mockRepo{}
	s := newService(repo)

	_, err := s.List(context.Background(), &models.ListRequest{Status: ptr.Ptr("no_show")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.List(context.Background(), &models.ListRequest{
		StartDate: ptr.Ptr(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)),
		EndDate:   ptr.Ptr(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestService_Upcoming(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.AppointmentsFilter) bool {
		return f.From != nil && f.From.Equal(now) && f.To == nil &&
			f.Limit == domain.MaxUpcomingLimit &&
			assert.ObjectsAreEqual(domain.UpcomingStatuses, f.Statuses)
	})).Return([]*domain.Appointment{}, nil)

	resp, err := newService(repo).Upcoming(context.Background(), 1000)

	require.NoError(t, err)
	assert.NotNil(t, resp.Appointments)
	assert.Zero(t, resp.Total)
	repo.AssertExpectations(t)
}

func TestService_Upcoming_DefaultLimit(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.AppointmentsFilter) bool {
		return f.Limit == domain.DefaultUpcomingLimit
	})).Return([]*domain.Appointment{}, nil)

	_, err := newService(repo).Upcoming(context.Background(), 0)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Dashboard(t *testing.T) {
	repo := &mockRepo{}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, brt)
	nextDay := day.AddDate(0, 0, 1)

	today := []*domain.Appointment{
		appointmentAt(1, 8, domain.StatusCompleted),
		appointmentAt(2, 10, domain.StatusInProgress),
		appointmentAt(3, 12, domain.StatusCancelled),
		appointmentAt(4, 16, domain.StatusPending),
	}
	repo.On("List", mock.Anything, domain.AppointmentsFilter{From: &day, To: &nextDay}).Return(today, nil)
	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.AppointmentsFilter) bool {
		return f.Limit == domain.DashboardUpcomingLimit
	})).Return([]*domain.Appointment{today[3]}, nil)

	resp, err := newService(repo).Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Equal(t, 4, resp.TodayTotal)
	assert.Equal(t, map[string]int{
		"pending":     1,
		"confirmed":   0,
		"in_progress": 1,
		"completed":   1,
		"cancelled":   1,
	}, resp.ByStatus)
	require.Len(t, resp.Upcoming, 1)
	assert.Equal(t, int64(4), resp.Upcoming[0].ID)
}

func TestService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		current domain.AppointmentStatus
		next    string
		wantErr error
	}{
		{name: "confirm pending", current: domain.StatusPending, next: "confirmed"},
		{name: "start confirmed", current: domain.StatusConfirmed, next: "in_progress"},
		{name: "complete in progress", current: domain.StatusInProgress, next: "completed"},
		{name: "cancel in progress", current: domain.StatusInProgress, next: "cancelled"},
		{name: "skip confirmation", current: domain.StatusPending, next: "in_progress", wantErr: ErrInvalidTransition},
		{name: "reopen completed", current: domain.StatusCompleted, next: "pending", wantErr: ErrInvalidTransition},
		{name: "revive cancelled", current: domain.StatusCancelled, next: "confirmed", wantErr: ErrInvalidTransition},
		{name: "unknown status", current: domain.StatusPending, next: "done", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			repo.On("GetByID", mock.Anything, int64(7)).Return(appointmentAt(7, 10, tt.current), nil)
			repo.On("UpdateStatus", mock.Anything, int64(7), domain.AppointmentStatus(tt.next)).Return(nil)

			resp, err := newService(repo).UpdateStatus(context.Background(), 7, &models.UpdateStatusRequest{Status: tt.next})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, resp.Status)
		})
	}
}

func TestService_Cancel(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(appointmentAt(1, 10, domain.StatusConfirmed), nil)
	repo.On("UpdateStatus", mock.Anything, int64(1), domain.StatusCancelled).Return(nil)
	repo.On("GetByID", mock.Anything, int64(2)).Return(nil, appointmentRepo.ErrAppointmentNotFound)

	s := newService(repo)

	resp, err := s.Cancel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)

	_, err = s.Cancel(context.Background(), 2)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestService_Update(t *testing.T) {
	repo := &mockRepo{}
	s := newService(repo)

	repo.On("Update", mock.Anything, int64(3), domain.AppointmentUpdate{
		CustomerName: ptr.Ptr("João"),
		Notes:        ptr.Ptr(""),
	}).Return(appointmentAt(3, 11, domain.StatusPending), nil)

	_, err := s.Update(context.Background(), 3, &models.UpdateRequest{
		CustomerName: ptr.Ptr("  João "),
		Notes:        ptr.Ptr("   "),
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)

	_, err = s.Update(context.Background(), 3, &models.UpdateRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Update(context.Background(), 3, &models.UpdateRequest{CustomerPhone: ptr.Ptr(" ")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Update(context.Background(), 3, &models.UpdateRequest{VehicleType: ptr.Ptr(strings.Repeat("v", domain.MaxVehicleTypeLength+1))})
	assert.ErrorIs(t, err, ErrInvalidInput)

	repo.On("Update", mock.Anything, int64(4), mock.Anything).Return(nil, appointmentRepo.ErrAppointmentNotFound)
	_, err = s.Update(context.Background(), 4, &models.UpdateRequest{VehicleType: ptr.Ptr("Sedan")})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestService_RepositoryFailure(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	repo.On("GetByID", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	s := newService(repo)

	_, err := s.Today(context.Background())
	assert.ErrorIs(t, err, ErrInternal)

	_, err = s.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInternal)

	_, err = s.Dashboard(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}
