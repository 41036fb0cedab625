// Package errors provides common domain error types for the mscribe CLI.
//
// This package defines sentinel errors for common domain conditions like a
// meeting record missing its required fields, or the captions API being
// unreachable. Using typed errors enables consistent error handling patterns
// with errors.Is() checks.
//
// Usage:
//
//	import mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
//
//	// Return a domain error
//	return nil, mserrors.ErrNotFound
//
//	// Check for domain errors
//	if mserrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import "errors"

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrMissingData indicates a meeting record lacks the caption sequence
	// or speaker directory required to produce any transcript output.
	ErrMissingData = errors.New("missing required meeting data")

	// ErrNotFound indicates the requested meeting was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input, such as a location with no
	// extractable meeting identifier.
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized indicates the request lacks valid authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeout indicates a fetch exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrUnavailable indicates the captions API could not be reached.
	ErrUnavailable = errors.New("service unavailable")

	// ErrDelivery indicates the transcript could not be placed on the
	// clipboard.
	ErrDelivery = errors.New("delivery failed")
)

// IsMissingData reports whether any error in err's chain is ErrMissingData.
func IsMissingData(err error) bool {
	return errors.Is(err, ErrMissingData)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnauthorized reports whether any error in err's chain is ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsTimeout reports whether any error in err's chain is ErrTimeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsUnavailable reports whether any error in err's chain is ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsDelivery reports whether any error in err's chain is ErrDelivery.
func IsDelivery(err error) bool {
	return errors.Is(err, ErrDelivery)
}
