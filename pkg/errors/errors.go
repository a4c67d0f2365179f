package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeAuthentication  ErrorType = "authentication"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeTeamFull        ErrorType = "team_full"
	ErrorTypeDuplicateMember ErrorType = "duplicate_member"
	ErrorTypeInternal        ErrorType = "internal"
	ErrorTypeExternal        ErrorType = "external"
	ErrorTypeTimeout         ErrorType = "timeout"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Retryable  bool                   `json:"retryable,omitempty"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithDetail returns the error with an extra detail entry
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewTeamFullError is returned when a team already holds its maximum number of members
func NewTeamFullError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeTeamFull,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewDuplicateMemberError is returned when a user is already on the team
func NewDuplicateMemberError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicateMember,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewTimeoutError creates an error for an external call that ran out of time.
// Timeouts are always retryable.
func NewTimeoutError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Retryable:  true,
		Internal:   internal,
	}
}

// FromProviderFailure classifies a failed outbound call (transport error or
// non-2xx status) into a timeout or external error.
func FromProviderFailure(provider string, statusCode int, body string, err error) *AppError {
	if err != nil && IsTimeout(err) {
		return NewTimeoutError(fmt.Sprintf("%s request timed out", provider), err)
	}

	if err == nil {
		err = fmt.Errorf("%s returned status %d", provider, statusCode)
	}
	appErr := NewExternalError(fmt.Sprintf("%s request failed", provider), err)
	appErr.Retryable = statusCode == 0 || statusCode >= http.StatusInternalServerError || statusCode == http.StatusTooManyRequests
	if statusCode != 0 {
		appErr.WithDetail("provider_status", statusCode)
	}
	if body != "" {
		appErr.WithDetail("provider_response", body)
	}
	return appErr
}

// IsTimeout reports whether err is a deadline or network timeout
func IsTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// From converts any error into an AppError, defaulting to internal
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if IsTimeout(err) {
		return NewTimeoutError("operation timed out", err)
	}
	return NewInternalError("internal server error", err)
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == t
}

// ErrorResponse represents the JSON error response
type ErrorResponse struct {
	Error struct {
		Type      ErrorType              `json:"type"`
		Message   string                 `json:"message"`
		Retryable bool                   `json:"retryable,omitempty"`
		Details   map[string]interface{} `json:"details,omitempty"`
		RequestID string                 `json:"request_id,omitempty"`
		Timestamp string                 `json:"timestamp"`
	} `json:"error"`
}
