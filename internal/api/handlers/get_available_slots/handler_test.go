package get_available_slots

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/SMC-CarWashBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
)

type fakeUseCase struct {
	got  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (f *fakeUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.got = req
	return f.resp, f.err
}

func brt() *time.Location {
	return time.FixedZone("BRT", -3*60*60)
}

func slotsResponse() *getAvailableSlots.Response {
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, brt())
	return &getAvailableSlots.Response{
		Date:            day,
		DurationMinutes: 90,
		Slots: []getAvailableSlots.Slot{
			{Start: day.Add(8 * time.Hour), Display: "08:00", Available: true},
			{Start: day.Add(8*time.Hour + 30*time.Minute), Display: "08:30", Available: false},
		},
	}
}

func TestHandle_Success(t *testing.T) {
	uc := &fakeUseCase{resp: slotsResponse()}
	h := NewHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/availability?date=2025-03-11&service_duration=90", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.got.DurationMinutes)
	assert.Equal(t, 90, *uc.got.DurationMinutes)
	assert.Nil(t, uc.got.ServiceID)
	assert.False(t, uc.got.Diagnostics)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-03-11", body["date"])
	assert.EqualValues(t, 2, body["total"])

	slots := body["slots"].([]interface{})
	first := slots[0].(map[string]interface{})
	assert.Equal(t, "2025-03-11T08:00:00-03:00", first["time"])
	assert.Equal(t, "08:00", first["display"])
	_, hasAvailable := first["available"]
	assert.False(t, hasAvailable)
}

func TestHandle_Diagnostics(t *testing.T) {
	uc := &fakeUseCase{resp: slotsResponse()}
	h := NewHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/?date=2025-03-11&serviceId=3&diagnostics=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, uc.got.ServiceID)
	assert.Equal(t, int64(3), *uc.got.ServiceID)
	assert.True(t, uc.got.Diagnostics)

	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Slots, 2)
	require.NotNil(t, body.Slots[1].Available)
	assert.False(t, *body.Slots[1].Available)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		err   error
		want  int
	}{
		{name: "missing date", query: "", want: http.StatusBadRequest},
		{name: "bad date", query: "date=11/03/2025", want: http.StatusBadRequest},
		{name: "bad service id", query: "date=2025-03-11&serviceId=x", want: http.StatusBadRequest},
		{name: "bad duration", query: "date=2025-03-11&duration=abc", want: http.StatusBadRequest},
		{name: "service and duration together", query: "date=2025-03-11&serviceId=3&duration=60", want: http.StatusBadRequest},
		{name: "service and legacy duration together", query: "date=2025-03-11&serviceId=3&service_duration=60", want: http.StatusBadRequest},
		{name: "non-positive duration", query: "date=2025-03-11&duration=0", err: getAvailableSlots.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "service not found", query: "date=2025-03-11&serviceId=9", err: getAvailableSlots.ErrServiceNotFound, want: http.StatusNotFound},
		{name: "service inactive", query: "date=2025-03-11&serviceId=9", err: getAvailableSlots.ErrServiceInactive, want: http.StatusBadRequest},
		{name: "past date", query: "date=2025-03-01", err: getAvailableSlots.ErrDateInPast, want: http.StatusBadRequest},
		{name: "too far", query: "date=2026-03-01", err: getAvailableSlots.ErrDateTooFarInFuture, want: http.StatusBadRequest},
		{name: "internal", query: "date=2025-03-11", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, logger.NewNop())
			rec := httptest.NewRecorder()

			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandle_ServiceAndDurationRejected(t *testing.T) {
	uc := &fakeUseCase{resp: slotsResponse()}
	h := NewHandler(uc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/?date=2025-03-11&serviceId=3&duration=60", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
	assert.Contains(t, rec.Body.String(), msgServiceAndDuration)
}
