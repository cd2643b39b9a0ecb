package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cradle/pkg/domainerrors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteErrorCodedError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.New(dErrors.CodeNotFound, "child record not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not_found", body["code"])
	assert.Equal(t, "child record not found", body["error"])
}

func TestWriteErrorHidesRawErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("dial tcp 10.0.0.3:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "internal error", body["error"])
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "id": 12})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(12), body["id"])
}
