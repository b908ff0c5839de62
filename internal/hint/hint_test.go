package hint

import (
	"testing"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/google/go-cmp/cmp"
)

func noop(*command.Input) ([]command.Message, error) { return nil, nil }

func foobar(*command.Input) []string { return []string{"foobar"} }

func newTable(t *testing.T) *command.Table {
	t.Helper()
	table := command.NewTable()
	err := table.Register(
		command.Definition{Name: "!", Pattern: `^\s*!.*`, Handler: noop, Complete: foobar},
		command.Definition{Name: "buffers", Pattern: `^\s*(buffers|ls)\s*$`, Handler: noop},
		command.Definition{Name: "buffer", Pattern: `^\s*(buffer|b)\s*$`, Handler: noop},
		command.Definition{Name: "bar", Pattern: `^\s*bar\s+.*$`, Handler: noop, Complete: foobar},
		command.Definition{Name: "quit", Pattern: `^\s*(quit|q)\s*$`, Handler: noop},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return table
}

func TestMountInput(t *testing.T) {
	tests := map[string]string{
		"  !   foo": "  !   foobar",
		"!foo":      "!foobar",
		"!":         "!foobar",
		"bar o":     "bar foobar",
	}
	for text, want := range tests {
		e := New(newTable(t))
		if !e.Hint(text) {
			t.Fatalf("expected hinting for %q", text)
		}
		e.Cycle(1)
		if got := e.MountInput(); got != want {
			t.Errorf("MountInput(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestNameCandidates(t *testing.T) {
	e := New(newTable(t))
	if !e.Hint("buf") {
		t.Fatalf("expected hinting for buf")
	}
	if diff := cmp.Diff([]string{"buffer", "buffers"}, e.Candidates()); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	e.Cycle(1)
	if got := e.MountInput(); got != "buffer" {
		t.Fatalf("expected buffer, got %q", got)
	}
	e.Cycle(1)
	if got := e.MountInput(); got != "buffers" {
		t.Fatalf("expected buffers, got %q", got)
	}
	e.Cycle(1)
	if e.Index() != 0 {
		t.Fatalf("expected wrap to 0, got %d", e.Index())
	}
}

func TestCycleBackwardsFromIdleSelectsLast(t *testing.T) {
	e := New(newTable(t))
	e.Hint("  b")
	e.Cycle(-1)
	if got := e.MountInput(); got != "  buffers" {
		t.Fatalf("expected leading space preserved, got %q", got)
	}
}

func TestNoCompleterStaysIdle(t *testing.T) {
	e := New(newTable(t))
	if e.Hint("quit now") {
		t.Fatalf("expected idle for command without completer")
	}
	if e.Hinting() {
		t.Fatalf("expected no candidates")
	}
	e.Cycle(1)
	if e.Index() != -1 {
		t.Fatalf("cycle must be a no-op while idle")
	}
}

func TestNameCompletionIsCaseSensitive(t *testing.T) {
	e := New(newTable(t))
	if e.Hint("BUF") {
		t.Fatalf("expected no candidates for BUF, got %v", e.Candidates())
	}
}

func TestAutoHintAndClear(t *testing.T) {
	e := New(newTable(t))
	e.Hint("q")
	if !e.ShouldAutoHint() {
		t.Fatalf("expected auto hint with a single candidate")
	}
	e.Clear()
	if e.Hinting() || e.ShouldAutoHint() || e.MountInput() != "" {
		t.Fatalf("expected idle state after clear")
	}
}

func TestIndexedFormDoesNotBorrowNamedCompleter(t *testing.T) {
	table := command.NewTable()
	err := table.Register(
		command.Definition{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s*([0-9]+\s*)+$`, Handler: noop},
		command.Definition{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s+\w+.*$`, Handler: noop, Complete: foobar},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	e := New(table)

	for _, text := range []string{"bd 2", "bdelete 2 3"} {
		if e.Hint(text) {
			t.Fatalf("expected no hinting for %q, got %v", text, e.Candidates())
		}
	}
	for _, text := range []string{"bd f", "bdelete fo"} {
		if !e.Hint(text) {
			t.Fatalf("expected hinting for %q", text)
		}
	}
}
