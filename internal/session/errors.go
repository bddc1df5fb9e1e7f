package session

import (
	"context"
	"errors"
)

var (
	// ErrTimeout marks an operation abandoned after Options.OpTimeout.
	ErrTimeout = errors.New("session: operation timed out")
	// ErrAlreadyInitialized is returned by a second Init call.
	ErrAlreadyInitialized = errors.New("session: store already initialized")
)

// AuthError is a failed login, signup or logout. Message is shown to the user as-is.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the operation was abandoned on its deadline.
func (e *AuthError) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}

func newAuthError(op string, err error) *AuthError {
	var existing *AuthError
	if errors.As(err, &existing) {
		return &AuthError{Op: op, Message: existing.Message, Err: existing.Err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return &AuthError{Op: op, Message: "request timed out", Err: ErrTimeout}
	}
	return &AuthError{Op: op, Message: err.Error(), Err: err}
}
