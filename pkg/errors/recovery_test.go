package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()

	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "TestOperation" {
		t.Errorf("Expected operation 'TestOperation', got '%s'", panicErr.Operation)
	}

	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}

	expectedMsg := "panic in TestOperation: test panic message"
	if panicErr.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, panicErr.Error())
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_WithExistingError keeps the original error reachable
func TestRecover_WithExistingError(t *testing.T) {
	original := fmt.Errorf("original")
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = original
		panic("late panic")
	}

	err := testFunc()

	if !errors.Is(err, original) {
		t.Error("original error should remain in the chain")
	}
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Error("panic should be recorded as PanicError")
	}
	if !strings.Contains(err.Error(), "late panic") {
		t.Errorf("message should mention the panic value, got %q", err.Error())
	}
}

func TestSafeExecute(t *testing.T) {
	err := SafeExecute("index", func() error {
		var s []int
		_ = s[3]
		return nil
	})
	if err == nil {
		t.Fatal("expected error from out of range panic")
	}

	want := fmt.Errorf("plain")
	if got := SafeExecute("plain", func() error { return want }); got != want {
		t.Errorf("SafeExecute should pass through fn errors, got %v", got)
	}
}
