package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"customer-service/internal/models"
	"customer-service/internal/storage"
	"customer-service/internal/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingPingStorage wraps a working storage but fails every health ping.
type failingPingStorage struct {
	storage.Storage
}

func (f *failingPingStorage) Ping(_ context.Context) error {
	return errors.New("connection refused")
}

func TestHandlers_Healthz(t *testing.T) {
	h := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	h.Healthz(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","service":"customer-service"}`, rr.Body.String())
}

func TestHandlers_Healthz_CustomServiceName(t *testing.T) {
	store, err := storage.NewMemoryStorage(storage.Config{})
	require.NoError(t, err)
	h := NewHandlers(nil, WithStorage(store), WithServiceName("customer-service-staging"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	h.Healthz(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "customer-service-staging", resp.Service)
}

func TestHandlers_Readyz(t *testing.T) {
	tests := []struct {
		name            string
		storageFails    bool
		expectedStatus  int
		expectedOverall string
		expectedStorage string
	}{
		{
			name:            "storage reachable",
			storageFails:    false,
			expectedStatus:  http.StatusOK,
			expectedOverall: models.StatusHealthy,
			expectedStorage: models.StatusHealthy,
		},
		{
			name:            "storage unreachable",
			storageFails:    true,
			expectedStatus:  http.StatusServiceUnavailable,
			expectedOverall: models.StatusUnhealthy,
			expectedStorage: models.StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := storage.NewMemoryStorage(storage.Config{})
			require.NoError(t, err)

			var probed storage.Storage = store
			if tt.storageFails {
				probed = &failingPingStorage{Storage: store}
			}

			h := NewHandlers(nil,
				WithStorage(probed),
				WithVersion(version.Info{Version: "1.2.3"}))

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rr := httptest.NewRecorder()

			h.Readyz(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)

			var resp models.ReadinessResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedOverall, resp.Status)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.NotEmpty(t, resp.Uptime)

			require.Contains(t, resp.Components, "storage")
			assert.Equal(t, tt.expectedStorage, resp.Components["storage"].Status)
			require.Contains(t, resp.Components, "api")
			assert.Equal(t, models.StatusHealthy, resp.Components["api"].Status)

			if tt.storageFails {
				// The raw driver error must not reach the wire.
				assert.NotContains(t, rr.Body.String(), "connection refused")
			}
		})
	}
}

func TestHandlers_Readyz_WithoutStorage(t *testing.T) {
	h := NewHandlers(nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rr := httptest.NewRecorder()

	h.Readyz(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.ReadinessResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, models.StatusDegraded, resp.Status)
	assert.Equal(t, models.StatusDegraded, resp.Components["storage"].Status)
}
