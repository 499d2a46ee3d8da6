package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrStore marks every load or commit failure of a Store.
	ErrStore = errors.New("store: operation failed")
	// ErrUnknownBackend is returned for an unsupported STORE_BACKEND.
	ErrUnknownBackend = errors.New("store: unknown backend")
)

// StoreError wraps the cause of a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

// Wrap builds a StoreError for op, or returns nil when err is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}
