// Package errors provides the standardized error taxonomy for the intake core.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeIDExhausted      ErrorCode = "ID_EXHAUSTED"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeRenderFailed     ErrorCode = "ARTIFACT_RENDER_FAILED"
	ErrCodeNotifyFailed     ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Sentinel errors for callers that branch with errors.Is. All four
// authorization failure causes collapse to ErrUnauthorized so the outward
// behavior never reveals which one occurred.
var (
	ErrUnauthorized     = errors.New("UNAUTHORIZED")
	ErrIDExhausted      = errors.New("ID_EXHAUSTED")
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE")
	ErrNotFound         = errors.New("NOT_FOUND")
)

// Is re-exports errors.Is so callers inside this package's import graph can
// branch on sentinels without a second errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewUnauthorizedError creates the uniform authorization failure. Details are
// for logs only and must never be surfaced to the caller.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Unauthorized",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable payload validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Submission payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIDExhaustedError creates a retryable identifier exhaustion error.
// Collision at full retry depth signals a near-full ID space or a store
// outage, not a caller mistake.
func NewIDExhaustedError(attempts int) *StandardError {
	return &StandardError{
		Code:      ErrCodeIDExhausted,
		Message:   "Application identifier space exhausted",
		Details:   fmt.Sprintf("attempts: %d", attempts),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable store connectivity error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Credential store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError creates an error for a post-persistence artifact
// rendering failure. The application record is already durable.
func NewRenderFailedError(applicationID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "PDF artifact rendering failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"applicationId": applicationID},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotifyFailedError creates an error for a post-persistence notification
// dispatch failure.
func NewNotifyFailedError(applicationID string, recipients []string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotifyFailed,
		Message:   "Notification dispatch failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata: map[string]interface{}{
			"applicationId": applicationID,
			"recipients":    recipients,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a non-retryable uniqueness violation error.
func NewConflictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflict,
		Message:   "Record conflicts with existing data",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable missing record error.
func NewNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Record not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
