package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
)

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("connection refused") }

func TestLive(t *testing.T) {
	h := NewHandler(map[string]Check{"postgres": fail}, logger.NewNop())
	rec := httptest.NewRecorder()

	h.Live(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   int
		body   string
	}{
		{
			name:   "all up",
			checks: map[string]Check{"postgres": ok, "redis": ok},
			want:   http.StatusOK,
			body:   `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:   "redis down",
			checks: map[string]Check{"postgres": ok, "redis": fail},
			want:   http.StatusServiceUnavailable,
			body:   `{"status":"unavailable","checks":{"postgres":"ok","redis":"unavailable"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.checks, logger.NewNop())
			rec := httptest.NewRecorder()

			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

			assert.Equal(t, tt.want, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
