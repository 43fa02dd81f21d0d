// Package respond writes JSON responses and maps classified errors to
// HTTP status codes.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/todokeeper/internal/apperr"
)

// ErrorBody is the body of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// Err reports err with the status matching its kind. Internal details are
// never sent to the client.
func Err(w http.ResponseWriter, err error) {
	Error(w, Status(apperr.KindOf(err)), apperr.MessageOf(err))
}

// Status maps an error kind to an HTTP status code.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation, apperr.Conflict, apperr.Auth:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.MissingCredential:
		return http.StatusUnauthorized
	case apperr.InvalidCredential:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
