package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestStandardErrorFormatting(t *testing.T) {
	err := ReadFailed("src/a.ts", fs.ErrNotExist)
	msg := err.Error()
	if !strings.HasPrefix(msg, "[IO:READ_FAILED] failed to read src/a.ts") {
		t.Fatalf("unexpected message %q", msg)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("expected cause to be reachable through errors.Is")
	}
	if !strings.Contains(err.Caller, "ReadFailed") {
		t.Fatalf("expected caller to be recorded, got %q", err.Caller)
	}
}

func TestStandardErrorIsByCategory(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", InvalidConfig("concurrency", "must be positive"))

	if !errors.Is(wrapped, ErrConfig) {
		t.Fatal("expected config category match")
	}
	if errors.Is(wrapped, ErrIO) {
		t.Fatal("did not expect IO category match")
	}
	if got := CategoryOf(wrapped); got != CategoryConfig {
		t.Fatalf("expected CONFIG, got %q", got)
	}
	if got := CategoryOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty category, got %q", got)
	}
}
