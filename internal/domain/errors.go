package domain

import "fmt"

// ValidationError is returned when constructor input is malformed. The object
// is never partially constructed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError for a named field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError is returned when a status change is requested that
// the transition table forbids. The aggregate is left unchanged.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

// ItemConstraintError is returned when an item mutation would violate an
// order invariant (duplicate product, empty order, out-of-bounds values).
type ItemConstraintError struct {
	ProductID string
	Message   string
}

func (e *ItemConstraintError) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("item constraint violated for product %s: %s", e.ProductID, e.Message)
	}
	return fmt.Sprintf("item constraint violated: %s", e.Message)
}

// SerializationError is returned when an event payload cannot be
// reconstructed from its serialized form.
type SerializationError struct {
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("event serialization failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("event serialization failed: %s", e.Reason)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
