package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

// Logger is the minimal logging surface the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// HTTPHandler normalizes errors and writes them as JSON responses with the
// appropriate status code.
type HTTPHandler struct {
	logger Logger
}

func NewHTTPHandler(logger Logger) *HTTPHandler {
	return &HTTPHandler{logger: logger}
}

// statusFor maps error codes to HTTP status codes. Authorization failures are
// always 403 regardless of the underlying cause.
func statusFor(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized:
		return http.StatusForbidden
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeIDExhausted, ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError normalizes err to a StandardError, logs it, and writes the JSON
// body. Details and metadata stay in the logs; the response carries only the
// code and message.
func (h *HTTPHandler) WriteError(w http.ResponseWriter, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"code":      stdErr.Code,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
		"metadata":  stdErr.Metadata,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(stdErr.Code))
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   stdErr.Message,
		"code":    stdErr.Code,
		"success": false,
	})
}

// normalizeError ensures we always have a StandardError.
func (h *HTTPHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	switch {
	case Is(err, ErrUnauthorized):
		return NewUnauthorizedError(err.Error())
	case Is(err, ErrIDExhausted):
		return NewIDExhaustedError(0)
	case Is(err, ErrStoreUnavailable):
		return NewStoreUnavailableError(err)
	case Is(err, ErrNotFound):
		return NewNotFoundError(err.Error())
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
