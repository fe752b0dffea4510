package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/rs/zerolog/hlog"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	}
	WriteJSON(w, r, statusCode, response)
}

// WriteDomainError maps reminder and notify errors to HTTP status codes.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case reminder.IsValidationError(err), errors.Is(err, notify.ErrUnknownChannel):
		WriteError(w, r, http.StatusBadRequest, err.Error())
	case reminder.IsNotFound(err):
		WriteError(w, r, http.StatusNotFound, err.Error())
	default:
		hlog.FromRequest(r).Error().Stack().Err(err).Msg("request failed")
		WriteError(w, r, http.StatusInternalServerError, err.Error())
	}
}
