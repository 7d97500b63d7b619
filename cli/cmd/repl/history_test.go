package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_AddAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{"x := 1", modeEval},
		{"list", modeCtrl},
		{"x + 1", modeEval},
		{"x + 1", modeEval},
		{"  ", modeEval},
		{"x := 1", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"x + 1", modeEval},
		{"x := 1", modeEval},
	}

	check := func(t *testing.T, h *History) {
		t.Helper()

		if h.Len() != len(want) {
			t.Fatalf("Len = %d, want %d", h.Len(), len(want))
		}

		for i, w := range want {
			if e, err := h.Entry(i); err != nil || e != w {
				t.Errorf("Entry(%d) = %v, %v, want %v", i, e, err, w)
			}
		}
	}

	check(t, h)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "C:list\nE:x + 1\nE:x := 1\n" {
		t.Errorf("file = %q", data)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	check(t, loaded)
}

func TestHistory_Lines(t *testing.T) {
	h := NewHistory("")

	_ = h.Add("a", modeEval)
	_ = h.Add("help", modeCtrl)
	_ = h.Add("b", modeEval)

	if got := h.Lines(modeEval); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Lines(eval) = %q", got)
	}

	if got := h.Lines(modeCtrl); !slices.Equal(got, []string{"help"}) {
		t.Errorf("Lines(ctrl) = %q", got)
	}
}

func TestHistory_Bounds(t *testing.T) {
	h := NewHistory("")

	for _, i := range []int{-1, 0, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) err = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistory_LoadMissingAndUntagged(t *testing.T) {
	dir := t.TempDir()

	if err := NewHistory(filepath.Join(dir, "none")).Load(); err != nil {
		t.Errorf("Load(missing) = %v", err)
	}

	path := filepath.Join(dir, baseHistory)
	if err := os.WriteFile(path, []byte("plain\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if e, _ := h.Entry(0); e != (HistoryEntry{"plain", modeEval}) {
		t.Errorf("untagged entry = %v", e)
	}

	if e, _ := h.Entry(1); e != (HistoryEntry{"quit", modeCtrl}) {
		t.Errorf("tagged entry = %v", e)
	}
}
