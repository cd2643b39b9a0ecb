// Package httputil centralizes the JSON envelopes every handler writes so
// error translation stays consistent across the transport layer.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "cradle/pkg/domainerrors"
)

// WriteJSON writes v with the given status under the standard success envelope.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a coded domain error into the JSON error envelope.
// Unknown errors surface as a generic internal failure; internal messages are
// never leaked to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    string(code),
		"error":   dErrors.MessageFor(err),
	})
}
