package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathInt64(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		want    int64
		wantErr error
	}{
		{name: "valid", vars: map[string]string{"id": "42"}, want: 42},
		{name: "missing", vars: map[string]string{}, wantErr: ErrMissingParam},
		{name: "not a number", vars: map[string]string{"id": "abc"}, wantErr: ErrInvalidParam},
		{name: "zero", vars: map[string]string{"id": "0"}, wantErr: ErrInvalidParam},
		{name: "negative", vars: map[string]string{"id": "-3"}, wantErr: ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), tt.vars)

			got, err := PathInt64(r, "id")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?date=2025-03-10&limit=5&diagnostics=true&bad=2025-13-01", nil)

	date, err := QueryDate(r, "date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *date)

	missing, err := QueryDate(r, "startDate")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = QueryDate(r, "bad")
	assert.ErrorIs(t, err, ErrInvalidParam)

	limit, err := QueryInt(r, "limit")
	require.NoError(t, err)
	assert.Equal(t, 5, *limit)

	flag, err := QueryBool(r, "diagnostics")
	require.NoError(t, err)
	assert.True(t, *flag)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	var p payload
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, DecodeJSON(r, &p))
	assert.Equal(t, "Ana", p.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana","extra":1}`))
	assert.Error(t, DecodeJSON(r, &p))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}{"name":"Bia"}`))
	assert.Error(t, DecodeJSON(r, &p))
}

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondConflict(rec, "занято")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"занято"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondJSON(rec, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
