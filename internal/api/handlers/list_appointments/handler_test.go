package list_appointments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CarWashBooking/internal/service/appointments"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/appointments/models"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
)

type fakeService struct {
	got *models.ListRequest
	err error
}

func (f *fakeService) List(ctx context.Context, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{}}, nil
}

func TestHandle_Filters(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, logger.NewNop())
	rec := httptest.NewRecorder()

	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments?startDate=2025-03-01&endDate=2025-03-31&status=confirmed", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.got.Date)
	require.NotNil(t, svc.got.StartDate)
	assert.Equal(t, "2025-03-01", svc.got.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-03-31", svc.got.EndDate.Format("2006-01-02"))
	assert.Equal(t, "confirmed", *svc.got.Status)
	assert.JSONEq(t, `{"appointments":[],"total":0}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		err   error
		want  int
	}{
		{name: "bad date", query: "date=10-03-2025", want: http.StatusBadRequest},
		{name: "unknown status", query: "status=archived", err: appointments.ErrInvalidStatus, want: http.StatusBadRequest},
		{name: "reversed period", query: "startDate=2025-03-31&endDate=2025-03-01", err: appointments.ErrInvalidInput, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, logger.NewNop())
			rec := httptest.NewRecorder()

			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
