package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/helixml/numrange/application/service"
	"github.com/helixml/numrange/infrastructure/provider"
)

// APIError is an error carrying the HTTP status it should be reported with.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	var apiErr *APIError
	var providerErr *provider.ProviderError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code()
	case errors.Is(err, service.ErrCapabilityNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidArguments):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAgentUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrToolRoundsExceeded), errors.As(err, &providerErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a JSON error response and logs it.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := StatusFor(err)
	message := err.Error()

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message()
	}

	correlationID := GetCorrelationID(r.Context())

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			"correlation_id", correlationID,
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: message, CorrelationID: correlationID})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
