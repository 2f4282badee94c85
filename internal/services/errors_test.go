package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrValidation, "minimax", "submit video", "prompt required", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	want := "validation error: minimax: submit video: prompt required"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrTransient, "minimax", "poll status", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
	if !IsRetryable(err) {
		t.Fatal("transient error should be retryable")
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to transient: %v", err)
	}
}

func TestFailureMessageStripsMarker(t *testing.T) {
	err := Wrap(ErrExternalTool, "provider", "video job", "content policy violation", nil)
	got := FailureMessage(err)
	want := "provider: video job: content policy violation"
	if got != want {
		t.Fatalf("FailureMessage = %q, want %q", got, want)
	}
	if FailureMessage(nil) != "" {
		t.Fatal("nil error should produce empty message")
	}
}
