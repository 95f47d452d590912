package id

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	got, err := NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	if len(got) != 26 {
		t.Fatalf("expected 26 character id, got %d: %q", len(got), got)
	}
	if got != strings.ToLower(got) {
		t.Fatalf("expected lowercase id, got %q", got)
	}
	if strings.Contains(got, "=") {
		t.Fatalf("expected no padding, got %q", got)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if seen[got] {
			t.Fatalf("duplicate id generated: %q", got)
		}
		seen[got] = true
	}
}
