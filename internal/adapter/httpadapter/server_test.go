package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/metar-flight-category/internal/adapter/history"
	"github.com/couchcryptid/metar-flight-category/internal/adapter/httpadapter"
	"github.com/couchcryptid/metar-flight-category/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type staticLatest []domain.StationCategory

func (s staticLatest) Latest() []domain.StationCategory { return s }

type mockHistory struct {
	station string
	limit   int
	records []history.Record
	err     error
}

func (m *mockHistory) History(_ context.Context, station string, limit int) ([]history.Record, error) {
	m.station, m.limit = station, limit
	return m.records, m.err
}

func newTestServer(readyErr error, hist httpadapter.HistoryReader) *httpadapter.Server {
	latest := staticLatest{
		{Station: "KSFO", Index: 0, Flight: domain.FlightCategory{Category: domain.Normal}},
		{Station: "KJAC", Index: 1, Flight: domain.FlightCategory{Category: domain.LowInstrument}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, latest, hist, logger)
}

func get(srv http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("not ready yet"), nil), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCategoriesEndpoint(t *testing.T) {
	rec := get(newTestServer(nil, nil), "/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body []domain.StationCategory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "KJAC", body[1].Station)
	assert.Equal(t, domain.LowInstrument, body[1].Flight.Category)
	assert.Contains(t, rec.Body.String(), `"category":"LIFR"`)
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &mockHistory{records: []history.Record{{
		RowID:           "01J0000000000000000000000",
		StationCategory: domain.StationCategory{Station: "KRNO", Flight: domain.FlightCategory{Category: domain.Marginal}},
	}}}
	rec := get(newTestServer(nil, hist), "/stations/krno/history?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "KRNO", hist.station)
	assert.Equal(t, 5, hist.limit)

	var body []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, domain.Marginal, body[0].Flight.Category)
}

func TestHistoryEndpoint_DefaultLimitAndEmpty(t *testing.T) {
	hist := &mockHistory{}
	rec := get(newTestServer(nil, hist), "/stations/KRNO/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, hist.limit)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHistoryEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name   string
		hist   httpadapter.HistoryReader
		path   string
		status int
	}{
		{"disabled", nil, "/stations/KRNO/history", http.StatusNotFound},
		{"bad limit", &mockHistory{}, "/stations/KRNO/history?limit=abc", http.StatusBadRequest},
		{"zero limit", &mockHistory{}, "/stations/KRNO/history?limit=0", http.StatusBadRequest},
		{"store failure", &mockHistory{err: errors.New("disk full")}, "/stations/KRNO/history", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestServer(nil, tt.hist), tt.path)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
