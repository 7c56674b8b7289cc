package db

import (
	"errors"
	"fmt"
)

var (
	ErrFatal         = errors.New("fatal error")
	ErrColumnType    = errors.New("value does not match column type")
	ErrOutOfRange    = errors.New("index out of range")
	ErrColumnsFrozen = errors.New("cannot add columns once rows exist")
	ErrDuplicate     = errors.New("column already present")
)

// FatalError aborts a statement whose query was valid but could not be
// carried out against the stored data: a missing data file, a malformed
// record, or a catalog lookup that failed after analysis.
type FatalError struct {
	Msg string
	Err error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return "fatal: " + e.Msg
	}
	return fmt.Sprintf("fatal: %s: %v", e.Msg, e.Err)
}

func (e *FatalError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFatal}
	}
	return []error{ErrFatal, e.Err}
}

func fatalError(err error, format string, args ...any) *FatalError {
	return &FatalError{Msg: fmt.Sprintf(format, args...), Err: err}
}
