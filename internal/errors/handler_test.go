package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler(includeStack bool) *ErrorHandler {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewErrorHandler(logger, includeStack)
}

func TestErrorToProblem(t *testing.T) {
	h := testHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/api/datasets/ds_abc", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"dataset not found", ErrDatasetNotFound, http.StatusNotFound, TypeDatasetNotFound},
		{"wrapped dataset not found", fmt.Errorf("get dataset: %w", ErrDatasetNotFound), http.StatusNotFound, TypeDatasetNotFound},
		{"contact not found", ErrContactNotFound, http.StatusNotFound, TypeNotFound},
		{"session expired", ErrSessionExpired, http.StatusUnauthorized, TypeSessionExpired},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, TypeUnauthorized},
		{"malformed upload", fmt.Errorf("%w: no header row", ErrMalformedUpload), http.StatusBadRequest, TypeMalformedUpload},
		{"llm unavailable", ErrLLMUnavailable, http.StatusBadGateway, TypeLLMUnavailable},
		{"email delivery", ErrEmailDelivery, http.StatusBadGateway, TypeEmailDelivery},
		{"context deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"unknown error", fmt.Errorf("disk on fire"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/datasets/ds_abc", problem.Instance)
		})
	}
}

func TestErrorToProblemAPIError(t *testing.T) {
	h := testHandler(false)
	req := httptest.NewRequest(http.MethodPost, "/api/contacts", nil)

	apiErr := ErrValidation("email", "must be a valid email address")
	problem := h.ErrorToProblem(apiErr, req)

	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Equal(t, TypeValidation, problem.Type)
	assert.Equal(t, "VALIDATION_FAILED", problem.Extensions["error_code"])
	require.NotNil(t, problem.Extensions["details"])
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := testHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/api/updates/up_missing", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, ErrUpdateNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "Resource Not Found", body["title"])
	assert.Contains(t, body, "trace_id")
}

func TestHandlePanic(t *testing.T) {
	h := testHandler(true)
	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()

	h.HandlePanic(rec, req, "boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "boom", body["panic"])
	assert.Contains(t, body, "stack")
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusConflict, TypeConflict, "Conflict", "duplicate tag", "/api/contacts/tags").
		WithExtension("tag", "investor")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, float64(http.StatusConflict), out["status"])
	assert.Equal(t, "duplicate tag", out["detail"])
	assert.Equal(t, "investor", out["tag"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := testHandler(false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/auth/me", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
