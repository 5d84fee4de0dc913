package storage

import (
	"errors"
	"fmt"
)

// ErrReportNotFound is returned when no report row exists for an id
var ErrReportNotFound = errors.New("report not found")

// PersistenceError names the table an operation failed on
type PersistenceError struct {
	Table string
	Op    string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(table, op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Table: table, Op: op, Err: err}
}
