package errors

import (
	"errors"
	"fmt"
	"io"
)

// RuntimeError is an error that occurred while running a command. It can
// carry a hint that tells the user how to fix the problem.
type RuntimeError struct {
	*StructuredError
	hint string
}

// NewRuntimeError creates a new RuntimeError with an optional cause, hint and
// metadata fields.
func NewRuntimeError(msg string, cause error, hint string, fields ...any) *RuntimeError {
	return &RuntimeError{
		StructuredError: NewWithCause(msg, cause, fields...),
		hint:            hint,
	}
}

// Hint returns the hint for resolving the error, if any.
func (e *RuntimeError) Hint() string {
	return e.hint
}

// Unwrap returns the underlying StructuredError.
func (e *RuntimeError) Unwrap() error {
	return e.StructuredError
}

// Errorf logs err with the default logger, and writes its hint to w if it
// has one.
func Errorf(w io.Writer, err error) {
	Log(err)

	var rerr *RuntimeError
	if errors.As(err, &rerr) && rerr.hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", rerr.hint)
	}
}
