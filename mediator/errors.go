package mediator

import (
	"fmt"
	"maps"
	"slices"
)

// UnauthorizedError is returned when a request requires an authenticated user
// and there is none.
type UnauthorizedError struct{}

// Error returns a string representation of the error.
func (e UnauthorizedError) Error() string {
	return "unauthorized: authentication is required"
}

// ForbiddenError is returned when the current user lacks the roles or
// policies a request requires.
type ForbiddenError struct {
	Msg string
}

// Error returns a string representation of the error.
func (e ForbiddenError) Error() string {
	if e.Msg == "" {
		return "forbidden"
	}
	return fmt.Sprintf("forbidden: %s", e.Msg)
}

// NotFoundError is returned when the entity a request refers to doesn't exist.
type NotFoundError struct {
	Entity string
	Key    any
}

// Error returns a string representation of the error.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("entity %q (%v) was not found", e.Entity, e.Key)
}

// ArgumentError is returned when a required argument is missing or outside of
// its valid range.
type ArgumentError struct {
	Name string
	Msg  string
}

// Error returns a string representation of the error.
func (e ArgumentError) Error() string {
	if e.Name == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid argument '%s': %s", e.Name, e.Msg)
}

// ValidationFailure is a single failed rule for a request field.
type ValidationFailure struct {
	Field   string
	Message string
}

// ValidationError aggregates one or more validation failures by field.
type ValidationError struct {
	fields []string
	errors map[string][]string
}

// NewValidationError groups failures by field. Messages for the same field
// keep their order. It fails if failures is empty.
func NewValidationError(failures []ValidationFailure) (*ValidationError, error) {
	if len(failures) == 0 {
		return nil, ArgumentError{
			Name: "failures", Msg: "at least one validation failure is required",
		}
	}

	e := &ValidationError{errors: make(map[string][]string)}
	for _, f := range failures {
		if _, ok := e.errors[f.Field]; !ok {
			e.fields = append(e.fields, f.Field)
		}
		e.errors[f.Field] = append(e.errors[f.Field], f.Message)
	}

	return e, nil
}

// Error returns a string representation of the error.
func (e *ValidationError) Error() string {
	return "one or more validation failures have occurred"
}

// Fields returns the failed field names in the order they were first seen.
func (e *ValidationError) Fields() []string {
	return slices.Clone(e.fields)
}

// Errors returns a copy of the failure messages keyed by field name.
func (e *ValidationError) Errors() map[string][]string {
	errs := maps.Clone(e.errors)
	for k, v := range errs {
		errs[k] = slices.Clone(v)
	}
	return errs
}
