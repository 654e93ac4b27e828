package response

import (
	"errors"
)

// Error is a failure that carries the HTTP status it should surface with.
// Message is what the user sees; Err is what gets logged.
type Error struct {
	Code    int
	Err     error
	Message string
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

// UserMessage returns the text shown to the caller, falling back to the
// internal error text when no user message was set.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{Code: code, Err: errors.New(err)}
}

func NewUserError(code int, err string, message string) error {
	return &Error{Code: code, Err: errors.New(err), Message: message}
}
