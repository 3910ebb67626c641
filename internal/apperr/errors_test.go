package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsIdentity(t *testing.T) {
	cause := errors.New("deepgram down")
	err := ErrTranscriptionFailure.Wrap(cause)

	if !errors.Is(err, ErrTranscriptionFailure) {
		t.Fatal("wrapped error should match its sentinel")
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should expose its cause")
	}
	if errors.Is(err, ErrEvaluationFailure) {
		t.Fatal("wrapped error must not match a different sentinel")
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(ErrInsufficientCredits); got != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", got)
	}
	wrapped := fmt.Errorf("start: %w", ErrDuplicateEmail)
	if got := StatusOf(wrapped); got != http.StatusConflict {
		t.Fatalf("expected 409 through fmt wrapping, got %d", got)
	}
	if got := StatusOf(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unknown errors, got %d", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := Upstream("Failed to create order", errors.New("timeout"))
	if err.Error() != "Failed to create order: timeout" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if Validation("bad").WithMessage("worse").Message != "worse" {
		t.Fatal("WithMessage should replace the message")
	}
}
