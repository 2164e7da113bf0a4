package errors

import (
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
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppError(ErrTypeConfig, "bad rate", nil),
			expected: "[CONFIG] bad rate",
		},
		{
			name:     "with cause",
			err:      NewParsingError("read table", fmt.Errorf("boom")),
			expected: "[PARSING] read table: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSentinelsMatchThroughWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		errType  ErrorType
	}{
		{"unknown breakdown", NewUnknownBreakdownError("both sexes", "Population, both sexes"), ErrUnknownBreakdown, ErrTypeValidation},
		{"unknown series", NewUnknownSeriesError("GDP (current US$)"), ErrUnknownSeries, ErrTypeValidation},
		{"year not available", NewYearNotAvailableError("life expectancy by year", 2023), ErrYearNotAvailable, ErrTypeNotFound},
		{"missing column", NewMissingColumnError("covid", "Day"), ErrMissingColumn, ErrTypeValidation},
		{"not found", NewNotFoundError("datasets/gdp.csv"), ErrFileNotFound, ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("step failed: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.True(t, IsType(wrapped, tt.errType))
		})
	}
}

func TestAppError_WithContext(t *testing.T) {
	err := NewYearNotAvailableError("healthcare", 2001)
	assert.Equal(t, 2001, err.Context["year"])
	assert.Equal(t, "healthcare", err.Context["dataset"])

	bare := &AppError{Type: ErrTypeStorage, Message: "x"}
	bare.WithContext("path", "a.csv")
	assert.Equal(t, "a.csv", bare.Context["path"])
}

func TestErrorHandler_HandleError(t *testing.T) {
	handler := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"dataset missing", DatasetNotFoundError("healthcare-2030"), http.StatusNotFound, TypeDataNotFound},
		{"bad parameter", ErrValidation("year", "must be a number"), http.StatusBadRequest, TypeValidation},
		{"app not found", NewYearNotAvailableError("gdp-healthcare", 1999), http.StatusNotFound, TypeDataNotFound},
		{"app parsing", NewParsingError("bad csv", nil), http.StatusInternalServerError, TypeDataCorrupted},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil)
			rec := httptest.NewRecorder()

			handler.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/v1/x", body["instance"])
		})
	}
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "abc", body["trace_id"])
	assert.NotContains(t, body, "detail")
	assert.Equal(t, float64(404), body["status"])
}

func TestMiddlewareErrorsMapToProblemTypes(t *testing.T) {
	tests := []struct {
		err      *APIError
		status   int
		wantType string
	}{
		{ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{ErrInternalServer, http.StatusInternalServerError, TypeInternal},
		{ErrRequestTimeout, http.StatusGatewayTimeout, TypeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.err.ErrorCode, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.wantType, ProblemType(tt.err.ErrorCode))
		})
	}
	assert.Equal(t, TypeDataNotFound, ProblemType(DatasetNotFoundError("covid").ErrorCode))
	assert.Equal(t, TypeInternal, ProblemType("SOMETHING_ELSE"))
}
