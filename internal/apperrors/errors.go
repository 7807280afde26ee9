// Package apperrors defines the error taxonomy shared by repositories, services and
// handlers. Callers classify failures with errors.Is against the sentinels below.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrAuthorization marks an action the caller is not allowed to perform.
	ErrAuthorization = errors.New("not authorized")
	// ErrNotFound marks a dereference of a missing id.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart is returned when checking out an absent or empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition is returned for an order status change outside the state machine.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrNotPurchased is returned when reviewing a product the user never ordered.
	ErrNotPurchased = fmt.Errorf("%w: product has not been purchased", ErrAuthorization)
)

// Validation wraps ErrValidation with a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Conflict wraps ErrConflict with a formatted reason.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Authorization wraps ErrAuthorization with a formatted reason.
func Authorization(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// NotFound reports that the entity of the given kind and id does not exist.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s with ID %s %w", kind, id, ErrNotFound)
}

// InvalidTransition reports a rejected order status change.
func InvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
