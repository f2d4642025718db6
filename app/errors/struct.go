// Package errors provides errors that carry structured metadata, which is
// rendered as log attributes, and runtime errors with hints for the user.
package errors

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
)

// StructuredError is an error with an optional cause and metadata fields.
type StructuredError struct {
	err      error
	metadata map[string]any
	cause    error
}

// Error implements the error interface. The cause isn't included.
func (e StructuredError) Error() string {
	return e.err.Error()
}

// Unwrap returns both the error and its cause, so that errors.Is and
// errors.As match either of them.
func (e StructuredError) Unwrap() []error {
	var errs []error
	if e.err != nil {
		errs = append(errs, e.err)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Cause returns the error that caused this one, if any.
func (e StructuredError) Cause() error {
	return e.cause
}

// Metadata returns a copy of the metadata fields.
func (e StructuredError) Metadata() map[string]any {
	if e.metadata == nil {
		return nil
	}
	return maps.Clone(e.metadata)
}

// NewWith creates a StructuredError with msg and key/value fields.
func NewWith(msg string, fields ...any) *StructuredError {
	return With(errors.New(msg), fields...)
}

// NewWithCause creates a StructuredError with msg, a cause and key/value
// fields.
func NewWithCause(msg string, cause error, fields ...any) *StructuredError {
	return WithCause(errors.New(msg), cause, fields...)
}

// With adds key/value fields to err. The fields of an existing
// StructuredError are merged, with the new ones taking precedence.
func With(err error, fields ...any) *StructuredError {
	var cause error
	if se, ok := err.(*StructuredError); ok {
		cause = se.cause
	}
	return WithCause(err, cause, fields...)
}

// WithCause is like With, but also sets the cause of the error.
func WithCause(err, cause error, fields ...any) *StructuredError {
	metadata := fieldsMap(fields)
	if se, ok := err.(*StructuredError); ok {
		merged := maps.Clone(se.metadata)
		if merged == nil {
			merged = make(map[string]any, len(metadata))
		}
		maps.Copy(merged, metadata)
		return &StructuredError{err: se.err, metadata: merged, cause: cause}
	}

	return &StructuredError{err: err, metadata: metadata, cause: cause}
}

func fieldsMap(fields []any) map[string]any {
	if len(fields)%2 != 0 {
		panic("an even number of fields is required")
	}

	m := make(map[string]any, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			panic("keys must be strings")
		}
		m[key] = fields[i+1]
	}

	return m
}

// Log logs err at the error level with the default logger. The cause and
// metadata of a StructuredError are added as attributes, sorted by key.
func Log(err error) {
	var se *StructuredError
	if !errors.As(err, &se) {
		slog.Error(err.Error())
		return
	}

	args := make([]any, 0, len(se.metadata)*2+2)
	if se.cause != nil {
		args = append(args, "cause", se.cause)
	}
	for _, k := range slices.Sorted(maps.Keys(se.metadata)) {
		args = append(args, k, se.metadata[k])
	}

	slog.Error(se.Error(), args...)
}
