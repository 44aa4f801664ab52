package domain

import (
	"errors"
	"fmt"
)

// ErrNoActions is returned when the source and target already agree.
// It marks a successful run, not a failure.
var ErrNoActions = errors.New("no actions to perform")

// AuthError indicates the DNS service login or token extraction failed.
type AuthError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	msg := "authentication failed: " + e.Reason
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError indicates one of the two record sources could not be read.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Source, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExecutionError indicates a transport failure while applying an action.
type ExecutionError struct {
	Action Action
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsNoActions returns true if the error is ErrNoActions.
func IsNoActions(err error) bool {
	return errors.Is(err, ErrNoActions)
}

// IsAuthError returns true if err wraps an *AuthError.
func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsFetchError returns true if err wraps a *FetchError.
func IsFetchError(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// IsExecutionError returns true if err wraps an *ExecutionError.
func IsExecutionError(err error) bool {
	var target *ExecutionError
	return errors.As(err, &target)
}
