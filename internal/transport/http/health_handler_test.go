package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"healthstats/internal/services"
)

type stubHealthService struct {
	ready services.ReadinessStatus
}

func (s stubHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok", Version: "test"}
}

func (s stubHealthService) ReadinessCheck(ctx context.Context) services.ReadinessStatus {
	return s.ready
}

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		ready          services.ReadinessStatus
		handle         func(h *HealthHandler) http.HandlerFunc
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "health",
			handle:         func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck },
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ok"`,
		},
		{
			name:           "ready",
			ready:          services.ReadinessStatus{Ready: true, Status: "ready"},
			handle:         func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			expectedStatus: http.StatusOK,
			expectedBody:   `"ready":true`,
		},
		{
			name:           "not ready",
			ready:          services.ReadinessStatus{Status: "not_ready", Message: "no pipeline run recorded"},
			handle:         func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `no pipeline run recorded`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(stubHealthService{ready: tt.ready}, logger)
			rec := httptest.NewRecorder()

			tt.handle(handler)(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}
