// Package shared holds response helpers used by every HTTP handler.
package shared

import (
	"encoding/json"
	"net/http"
	"time"

	dErrors "firstaccess/pkg/domain-errors"
)

// ErrorResponse is the uniform error body. Message is always the coded
// error's caller-safe text; internals never appear here.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

// statusByCode fixes the HTTP status for each failure kind. Integration
// failures intentionally stay 500: the caller cannot fix them and retries
// the whole flow.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeInvalidInput:        http.StatusBadRequest,
	dErrors.CodeUserNotFound:        http.StatusNotFound,
	dErrors.CodeBirthDateMismatch:   http.StatusUnprocessableEntity,
	dErrors.CodeIdentityUnavailable: http.StatusInternalServerError,
	dErrors.CodeDispatchFailed:      http.StatusInternalServerError,
	dErrors.CodePersistenceFailed:   http.StatusInternalServerError,
	dErrors.CodeCorruptState:        http.StatusInternalServerError,
	dErrors.CodeInternal:            http.StatusInternalServerError,
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a coded error onto its fixed HTTP status. Uncoded errors
// fall back to a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     string(code),
		Message:   dErrors.MessageOf(err),
	})
}
