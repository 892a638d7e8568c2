// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	// ErrBackendUnavailable means the text generation backend could not be reached.
	ErrBackendUnavailable = errors.New("text generation backend unavailable")
	// ErrMissingConfig means a required setting is absent.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrInvalidConfig means a setting failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs an underlying error with the message a command prints.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message meant for people rather than logs.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// UserMessage returns the friendliest text for err: the message of the
// outermost wrapped UserError, or err's own text.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
