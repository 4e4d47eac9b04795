package errors

import (
	"errors"
	"fmt"
)

// Error is a domain error carrying a machine-readable code.
type Error struct {
	Code    Code
	Message string
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from any error.
// It returns CodeUnknown if the error is not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error carries the specified code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
