package utils

import (
	"errors"
	"fmt"
	"time"
)

var ErrorRecordNotFound = errors.New("record not found")

// TransientStoreError wraps a failed read or write against the document store or the
// balance cache. Callers never retry inline; the next rebuild or reconcile pass recomputes.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

func NewTransientStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var tse *TransientStoreError
	if errors.As(err, &tse) {
		return err
	}
	return &TransientStoreError{Op: op, Err: err}
}

// AlreadyRunningError is returned by a manual rebuild trigger that collided with a run in flight.
type AlreadyRunningError struct {
	StartedAt time.Time
}

func (e *AlreadyRunningError) Error() string {
	if e.StartedAt.IsZero() {
		return "balance rebuild already running"
	}
	return fmt.Sprintf("balance rebuild already running (started %s)", e.StartedAt.UTC().Format(time.RFC3339))
}

func IsAlreadyRunning(err error) bool {
	var are *AlreadyRunningError
	return errors.As(err, &are)
}

// CheckError means one document could not be evaluated (malformed data).
type CheckError struct {
	DocumentKind string
	DocumentId   int
	Reason       string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.DocumentKind, e.DocumentId, e.Reason)
}

// FatalEnumerationError aborts a whole run: the parties or documents could not be listed at all.
type FatalEnumerationError struct {
	What string
	Err  error
}

func (e *FatalEnumerationError) Error() string {
	return fmt.Sprintf("cannot enumerate %s: %v", e.What, e.Err)
}

func (e *FatalEnumerationError) Unwrap() error { return e.Err }
