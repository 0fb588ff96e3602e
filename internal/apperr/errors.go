// Package apperr defines the two error kinds the application distinguishes:
// validation failures at the HTTP boundary and upstream fetch failures.
package apperr

import "errors"

// ValidationError reports a missing or malformed required input. The HTTP
// layer converts it to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a ValidationError with the given message.
func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// FetchError reports any failure between the boundary and the upstream API:
// network error, timeout, non-2xx status, or a malformed body. All of them
// surface the same way and the HTTP layer converts them to a 500 response.
type FetchError struct {
	// Message is the human-readable description shown to the caller,
	// identifying the operation and the target id if applicable.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetch creates a FetchError wrapping err.
func NewFetch(message string, err error) *FetchError {
	return &FetchError{Message: message, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFetch reports whether err is a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
