package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorWithDetails(rec, http.StatusConflict, ErrConflict, "overlap", map[string]string{"user": "Bob"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "conflict", body.Error)
	assert.Equal(t, "overlap", body.Message)
	assert.Equal(t, "Bob", body.Details["user"])
}

func TestWriteError_OmitsDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, ErrNotFound, "missing")

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotContains(t, body, "details")
}

func TestErrorRecovery(t *testing.T) {
	h := Logging(ErrorRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrInternalError)
}

func TestLogging_CapturesStatus(t *testing.T) {
	var captured *responseWriter
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		captured = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, captured)
	assert.Equal(t, http.StatusTeapot, captured.status)
	assert.Equal(t, len("short and stout"), captured.size)
}
