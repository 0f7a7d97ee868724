package platform

import (
	"os"
	"testing"
)

func TestNameCache_RememberedNamesWin(t *testing.T) {
	c := NewNameCache()
	c.processNames = func() []string { return []string{"firefox"} }

	c.Remember("firefox", "Firefox Web Browser")
	if name, ok := c.DisplayName("firefox"); !ok || name != "Firefox Web Browser" {
		t.Fatalf("expected remembered name, got %q,%v", name, ok)
	}
}

func TestNameCache_FallsBackToProcessTable(t *testing.T) {
	scans := 0
	c := NewNameCache()
	c.processNames = func() []string {
		scans++
		return []string{"bash", "Alacritty", "gnome-terminal-server"}
	}

	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"alacritty", "Alacritty", true},
		{"org.example.bash", "bash", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		name, ok := c.DisplayName(tt.id)
		if ok != tt.wantOK || name != tt.want {
			t.Fatalf("DisplayName(%q) = %q,%v want %q,%v", tt.id, name, ok, tt.want, tt.wantOK)
		}
	}

	// Matches are cached.
	before := scans
	c.DisplayName("alacritty")
	if scans != before {
		t.Fatalf("expected cached lookup, got %d extra scans", scans-before)
	}
}

func TestNameCache_IgnoresEmpty(t *testing.T) {
	c := NewNameCache()
	c.processNames = nil
	c.Remember("", "x")
	c.Remember("id", " ")
	if _, ok := c.DisplayName("id"); ok {
		t.Fatalf("expected no name for blank remember")
	}
}

func TestProcessName_Self(t *testing.T) {
	if ProcessName(0) != "" {
		t.Fatalf("expected empty name for pid 0")
	}
	if name := ProcessName(os.Getpid()); name == "" {
		t.Skip("process table not readable in this environment")
	}
}
