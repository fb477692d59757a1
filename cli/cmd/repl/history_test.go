package repl

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	if err := h.Load(); err != nil {
		t.Fatalf("loading a missing file: %v", err)
	}

	for _, e := range []Entry{
		{Line: "/p{a}", Mode: modeEval},
		{Line: "help", Mode: modeCtrl},
		{Line: "  ", Mode: modeEval},
		{Line: "/p{b}", Mode: modeEval},
		{Line: "/p{b}", Mode: modeEval},
		{Line: "/p{a}", Mode: modeEval},
	} {
		if err := h.Add(e); err != nil {
			t.Fatalf("add %q: %v", e.Line, err)
		}
	}

	want := []Entry{
		{Line: "help", Mode: modeCtrl},
		{Line: "/p{b}", Mode: modeEval},
		{Line: "/p{a}", Mode: modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("expected %v after reload, got %v", want, got)
	}

	if _, err := reloaded.Entry(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected out of bounds, got %v", err)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want Entry
	}{
		{line: "E:/p{x}", want: Entry{Line: "/p{x}", Mode: modeEval}},
		{line: "C:vars", want: Entry{Line: "vars", Mode: modeCtrl}},
		{line: "/p{x}", want: Entry{Line: "/p{x}", Mode: modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
