// Package apperr holds the error taxonomy shared by every layer of the service.
// Lower layers wrap one of the sentinels; the HTTP boundary maps them to status codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrAuthentication = errors.New("authentication required")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation failed")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNotFound       = errors.New("not found")
	ErrPersistence    = errors.New("persistence failure")
	ErrUnavailable    = errors.New("service unavailable")

	// ErrConflict is a ValidationError for unique-key clashes (duplicate email, sku).
	ErrConflict = fmt.Errorf("already exists: %w", ErrValidation)
)

// Wrap prefixes err with op, keeping it matchable with errors.Is.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Invalid builds a ValidationError with a client-facing message.
func Invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Store classifies a downstream store failure. Deadline and cancellation errors become
// ErrUnavailable, anything else ErrPersistence. Errors already classified pass through.
func Store(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidation),
		errors.Is(err, ErrPersistence), errors.Is(err, ErrUnavailable):
		return Wrap(op, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
}
