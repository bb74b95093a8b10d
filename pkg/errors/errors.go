package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/b2b-platform/procurement-service/internal/domain"
)

// Standard error codes
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeItemConstraint     = "ITEM_CONSTRAINT"
	CodeSerializationError = "SERIALIZATION_ERROR"
	CodeDispatchFailed     = "DISPATCH_FAILED"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError represents an application error with HTTP status and error code
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap wraps an existing error
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// NewAppError creates a new AppError
func NewAppError(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrInvalidTransition creates an invalid status transition error
func ErrInvalidTransition(message string) *AppError {
	return NewAppError(CodeInvalidTransition, message, http.StatusConflict)
}

// ErrItemConstraint creates an item constraint violation error
func ErrItemConstraint(message string) *AppError {
	return NewAppError(CodeItemConstraint, message, http.StatusUnprocessableEntity)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrNotFoundWithID creates a not found error with ID
func ErrNotFoundWithID(resource, id string) *AppError {
	return ErrNotFound(resource).WithDetail("id", id)
}

// ErrConflict creates a conflict error
func ErrConflict(message string) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict)
}

// ErrInternal creates an internal error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	return NewAppError(CodeInternalError, message, http.StatusInternalServerError)
}

// ErrBadRequest creates a bad request error
func ErrBadRequest(message string) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest)
}

// ErrServiceUnavailable creates a service unavailable error
func ErrServiceUnavailable(service string) *AppError {
	return NewAppError(CodeServiceUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// MapDomainError maps the typed domain errors to AppErrors for the API edge
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, domain.ErrNotFound) {
		return NewAppError(CodeNotFound, "resource not found", http.StatusNotFound).Wrap(err)
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		appErr := ErrValidation(validationErr.Message).Wrap(err)
		if validationErr.Field != "" {
			appErr.WithDetail("field", validationErr.Field)
		}
		return appErr
	}

	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return ErrInvalidTransition(transitionErr.Error()).
			WithDetail("from", transitionErr.From).
			WithDetail("to", transitionErr.To).
			Wrap(err)
	}

	var itemErr *domain.ItemConstraintError
	if errors.As(err, &itemErr) {
		appErr := ErrItemConstraint(itemErr.Message).Wrap(err)
		if itemErr.ProductID != "" {
			appErr.WithDetail("productId", itemErr.ProductID)
		}
		return appErr
	}

	var serializationErr *domain.SerializationError
	if errors.As(err, &serializationErr) {
		return NewAppError(CodeSerializationError, serializationErr.Error(), http.StatusInternalServerError).Wrap(err)
	}

	return ErrInternal("").Wrap(err)
}
