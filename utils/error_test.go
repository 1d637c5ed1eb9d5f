package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewTransientStoreError(t *testing.T) {
	if NewTransientStoreError("read", nil) != nil {
		t.Fatalf("nil cause must stay nil")
	}
	cause := errors.New("timeout")
	err := NewTransientStoreError("read sales", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	again := NewTransientStoreError("outer", err)
	if again != err {
		t.Fatalf("must not double wrap, got %v", again)
	}
}

func TestIsAlreadyRunning(t *testing.T) {
	err := fmt.Errorf("trigger: %w", &AlreadyRunningError{StartedAt: time.Unix(0, 0)})
	if !IsAlreadyRunning(err) {
		t.Fatalf("expected wrapped AlreadyRunningError to be detected")
	}
	if IsAlreadyRunning(errors.New("other")) {
		t.Fatalf("unexpected match")
	}
	if (&AlreadyRunningError{}).Error() != "balance rebuild already running" {
		t.Fatalf("unexpected message for unknown start time")
	}
}

func TestFatalEnumerationErrorUnwraps(t *testing.T) {
	cause := errors.New("db down")
	err := &FatalEnumerationError{What: "customers", Err: cause}
	if !errors.Is(err, cause) || err.Error() != "cannot enumerate customers: db down" {
		t.Fatalf("unexpected %v", err)
	}
}
