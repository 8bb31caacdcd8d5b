// Package common defines the error taxonomy shared by services, middleware
// and handlers. Callers match values with errors.Is and translate them to
// HTTP responses with HTTPStatus and PublicMessage.
package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks malformed or missing input. Concrete failures are
	// reported as *ValidationError, which unwraps to this value.
	ErrValidation = errors.New("validation error")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrForbidden    = errors.New("access denied: admin role required")

	ErrDuplicateEmail = errors.New("email is already registered")
	ErrDuplicateCode  = errors.New("a product with that code already exists")

	ErrNotFound = errors.New("product not found")

	// ErrStorage wraps unexpected persistence failures. Its public message
	// never includes the underlying driver error.
	ErrStorage = errors.New("internal server error")
)

// ValidationError carries a human-readable reason for rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a *ValidationError from a format string.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps err so that it matches ErrStorage while keeping the cause
// available for logging.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// HTTPStatus maps an error from the taxonomy to its status code. Unknown
// errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrDuplicateCode):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that may be shown to API clients.
func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Msg
	}
	for _, known := range []error{
		ErrInvalidCredentials,
		ErrMissingToken,
		ErrInvalidToken,
		ErrForbidden,
		ErrDuplicateEmail,
		ErrDuplicateCode,
		ErrNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if errors.Is(err, ErrValidation) {
		return ErrValidation.Error()
	}
	return ErrStorage.Error()
}
