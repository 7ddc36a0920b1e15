package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	apperrors "github.com/konutdata/hpi-processor/internal/errors"
)

type storeTimeout struct{}

func (storeTimeout) Error() string { return "store timed out" }

func TestClassifyNil(t *testing.T) {
	t.Parallel()

	if got := Classify(nil); got != "" {
		t.Fatalf("Classify(nil) = %q, want empty", got)
	}
}

func TestClassifyPlainError(t *testing.T) {
	t.Parallel()

	if got := Classify(goerrors.New("boom")); got != "errors_errorstring" {
		t.Fatalf("Classify = %q", got)
	}
}

func TestClassifyUnwrapsToInnermost(t *testing.T) {
	t.Parallel()

	inner := storeTimeout{}
	wrapped := fmt.Errorf("mark completed: %w", fmt.Errorf("redis call: %w", inner))

	if got := Classify(wrapped); got != "errors_storetimeout" {
		t.Fatalf("Classify = %q", got)
	}
}

func TestClassifyPointerError(t *testing.T) {
	t.Parallel()

	if got := Classify(&storeTimeout{}); got != "errors_storetimeout" {
		t.Fatalf("Classify = %q", got)
	}
}

func TestClassifyAppErrorUsesCode(t *testing.T) {
	t.Parallel()

	conflict := apperrors.Conflict("duplicate natural key")
	if got := Classify(conflict); got != "conflict" {
		t.Fatalf("Classify = %q, want conflict", got)
	}

	// The code wins even when the AppError is buried in wrapping and
	// carries a deeper cause of its own.
	wrapped := fmt.Errorf("insert audit record: %w",
		apperrors.Wrap(storeTimeout{}, apperrors.ErrCodeTimeout, "query timed out"))
	if got := Classify(wrapped); got != "timeout" {
		t.Fatalf("Classify = %q, want timeout", got)
	}
}
