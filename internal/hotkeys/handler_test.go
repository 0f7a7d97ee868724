package hotkeys

import (
	"strings"
	"testing"
)

func TestHandler_WithoutX11(t *testing.T) {
	h := NewHandler(struct{}{})

	err := h.Register("Mod4-Shift-b", func() {})
	if err == nil || !strings.Contains(err.Error(), "X11") {
		t.Fatalf("expected X11 error, got %v", err)
	}
	if got := h.Bound(); len(got) != 0 {
		t.Fatalf("expected nothing bound, got %v", got)
	}

	// Must not panic without a connection.
	h.UnregisterAll()
}

func TestHandler_EmptySequence(t *testing.T) {
	h := NewHandler(nil)
	if err := h.Register("  ", func() {}); err == nil {
		t.Fatalf("expected error for empty sequence")
	}
}
