package types

import (
	"errors"
	"fmt"

	"github.com/glebarez/go-sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NoResultError is returned when a record looked up by ID or name doesn't
// exist.
type NoResultError struct {
	ModelName string
	ID        string
}

func (e NoResultError) Error() string {
	return fmt.Sprintf("%s with %s doesn't exist", e.ModelName, e.ID)
}

// DuplicateError is returned when a record violates a uniqueness constraint.
type DuplicateError struct {
	ModelName string
	ID        string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s already exists", e.ModelName, e.ID)
}

// ConcurrencyError is returned when an update matches no rows, because the
// record was changed or removed after it was loaded.
type ConcurrencyError struct {
	ModelName string
	ID        string
}

func (e ConcurrencyError) Error() string {
	return fmt.Sprintf("%s with %s was changed or removed concurrently", e.ModelName, e.ID)
}

// ReferenceError is returned when a record references a missing record.
type ReferenceError struct {
	Msg string
	Err error
}

func (e ReferenceError) Error() string { return e.Msg }

func (e ReferenceError) Unwrap() error { return e.Err }

// IntegrityError is returned when a statement affects an unexpected number of
// rows.
type IntegrityError struct {
	Msg string
}

func (e IntegrityError) Error() string {
	return "integrity error: " + e.Msg
}

// InvalidInputError is returned when a model is missing the fields needed for
// a query.
type InvalidInputError struct {
	Msg string
}

func (e InvalidInputError) Error() string { return e.Msg }

// LoadError wraps a failed query of model data.
type LoadError struct {
	ModelName string
	Msg       string
	Err       error
}

func (e LoadError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("failed loading %s: %s", e.ModelName, msg)
}

func (e LoadError) Unwrap() error { return e.Err }

// ScanError wraps a failure to scan a result row into a model.
type ScanError struct {
	ModelName string
	Err       error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("failed scanning %s data: %s", e.ModelName, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

// Err maps SQLite constraint violations to DuplicateError or ReferenceError.
// Other errors are returned as is.
func Err(modelName, id string, err error) error {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}

	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return DuplicateError{ModelName: modelName, ID: id}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ReferenceError{
			Msg: fmt.Sprintf("%s with %s references a missing record", modelName, id),
			Err: err,
		}
	default:
		return err
	}
}
