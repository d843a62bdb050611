package dto

import "net/http"

// Error codes returned by the API
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeSyncInProgress = "SYNC_IN_PROGRESS"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// statusByCode maps error codes to HTTP status codes
var statusByCode = map[string]int{
	ErrCodeBadRequest:     http.StatusBadRequest,
	"INVALID_INPUT":       http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeConflict:       http.StatusConflict,
	"ALREADY_EXISTS":      http.StatusConflict,
	ErrCodeSyncInProgress: http.StatusConflict,
	"INVALID_STATE":       http.StatusUnprocessableEntity,
	ErrCodeInternal:       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code,
// defaulting to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
