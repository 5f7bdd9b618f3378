package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lingoflow-ai/lingoflow/internal/provider"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeMissingKey      = "MISSING_API_KEY"
	ErrCodeUnknownProvider = "UNKNOWN_PROVIDER"
	ErrCodeProviderError   = "PROVIDER_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// writeSuccess writes a success response.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// errorCode classifies a translation error for API clients.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, provider.ErrMissingCredential):
		return http.StatusBadRequest, ErrCodeMissingKey
	case errors.Is(err, provider.ErrUnknownProvider):
		return http.StatusBadRequest, ErrCodeUnknownProvider
	default:
		return http.StatusBadGateway, ErrCodeProviderError
	}
}
