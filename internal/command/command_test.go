package command

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func noop(*Input) ([]Message, error) { return nil, nil }

func named(name string) Handler {
	return func(*Input) ([]Message, error) {
		return []Message{Infof("%s", name)}, nil
	}
}

func bufferTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable()
	err := table.Register(
		Definition{Name: "buffers", Pattern: `^\s*(buffers|ls)\s*$`, Handler: named("buffers")},
		Definition{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s*([0-9]+\s*)+$`, Handler: named("bdelete-indexed")},
		Definition{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s*$`, Handler: named("bdelete-current")},
		Definition{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s+\w+\s*$`, Handler: named("bdelete-named")},
		Definition{Name: "buffer", Pattern: `^\s*(buffer|b)\s*$`, Handler: named("buffer")},
		Definition{Name: "quit", Pattern: `^\s*(quit|q)\s*$`, Keys: []string{"q"}, Handler: named("quit")},
		Definition{Keys: []string{"Mod4-j"}, Handler: named("focus-down")},
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return table
}

func run(t *testing.T, c *Command) string {
	t.Helper()
	msgs, err := c.Handler(&Input{})
	if err != nil || len(msgs) != 1 {
		t.Fatalf("unexpected handler result %v %v", msgs, err)
	}
	return msgs[0].Text
}

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want Input
	}{
		{"buffer", Input{Text: "buffer", Name: "buffer"}},
		{"  b  term", Input{Text: "  b  term", Leading: "  ", Name: "b", Spacer: "  ", Parameter: "term"}},
		{"!ls -la", Input{Text: "!ls -la", Name: "!", Parameter: "ls -la"}},
		{"  !   foo", Input{Text: "  !   foo", Leading: "  ", Name: "!", Spacer: "   ", Parameter: "foo"}},
		{"bd 2 3", Input{Text: "bd 2 3", Name: "bd", Spacer: " ", Parameter: "2 3"}},
		{"   ", Input{Text: "   ", Leading: "   "}},
	}
	for _, tt := range tests {
		got := Parse(tt.text)
		if diff := cmp.Diff(&tt.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestCompletingName(t *testing.T) {
	if !Parse("buf").CompletingName() {
		t.Fatalf("expected name completion for partial name")
	}
	if Parse("buffer ").CompletingName() {
		t.Fatalf("expected parameter completion after spacer")
	}
	if Parse("!").CompletingName() {
		t.Fatalf("bang never completes names")
	}
}

func TestMatchFollowsRegistrationOrder(t *testing.T) {
	table := bufferTable(t)

	tests := map[string]string{
		"bd 2 3":    "bdelete-indexed",
		"bd":        "bdelete-current",
		"bd term":   "bdelete-named",
		"  ls ":     "buffers",
		"b":         "buffer",
		"q":         "quit",
		"bdelete 4": "bdelete-indexed",
	}
	for text, want := range tests {
		c := table.Match(text)
		if c == nil {
			t.Fatalf("Match(%q) returned nil", text)
		}
		if got := run(t, c); got != want {
			t.Errorf("Match(%q) = %s, want %s", text, got, want)
		}
	}
	if table.Match("frobnicate") != nil {
		t.Fatalf("expected no match")
	}
}

func TestMatchKey(t *testing.T) {
	table := bufferTable(t)
	if c := table.MatchKey("Mod4-j"); c == nil || run(t, c) != "focus-down" {
		t.Fatalf("expected focus-down for Mod4-j")
	}
	if c := table.MatchKey("q"); c == nil || c.Name != "quit" {
		t.Fatalf("expected quit for q")
	}
	if table.MatchKey("Mod4-x") != nil {
		t.Fatalf("expected no command for unbound key")
	}
}

func TestRegisterRejectsDuplicateKey(t *testing.T) {
	table := NewTable()
	err := table.Register(
		Definition{Keys: []string{"Mod4-j"}, Handler: noop},
		Definition{Keys: []string{"Mod4-j"}, Handler: noop},
	)
	if err == nil {
		t.Fatalf("expected error for duplicate key")
	}
}

func TestRegisterRejectsBadPattern(t *testing.T) {
	if err := NewTable().Register(Definition{Name: "x", Pattern: `(`, Handler: noop}); err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
}

func TestHintNames(t *testing.T) {
	table := bufferTable(t)
	got := table.HintNames("  b")
	want := []string{"bdelete", "buffer", "buffers"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	got = table.HintNames("buf")
	if diff := cmp.Diff([]string{"buffer", "buffers"}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestHasMultiple(t *testing.T) {
	tests := map[string]bool{
		"ls | b 2":    true,
		"ls|b":        true,
		`!echo a\|b`:  false,
		"buffer term": false,
		"|":           false,
	}
	for text, want := range tests {
		if got := HasMultiple(text); got != want {
			t.Errorf("HasMultiple(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	table := bufferTable(t)

	tests := []struct {
		text string
		kind ErrorKind
		msg  string
	}{
		{"ls | b", UnsupportedMultiCommand, "Multiple commands are not implemented: ls | b"},
		{"   ", ParseError, "Not an editor command:    "},
		{"frob", NoSuchCommand, "Not an editor command: frob"},
	}
	for _, tt := range tests {
		_, _, err := table.Resolve(tt.text)
		var cmdErr *Error
		if !errors.As(err, &cmdErr) {
			t.Fatalf("Resolve(%q): expected *Error, got %v", tt.text, err)
		}
		if cmdErr.Kind != tt.kind {
			t.Errorf("Resolve(%q) kind = %v, want %v", tt.text, cmdErr.Kind, tt.kind)
		}
		if err.Error() != tt.msg {
			t.Errorf("Resolve(%q) message = %q, want %q", tt.text, err.Error(), tt.msg)
		}
	}

	c, in, err := table.Resolve("bd 2")
	if err != nil || c == nil || in.Parameter != "2" {
		t.Fatalf("unexpected resolve result %v %+v %v", c, in, err)
	}
}

func TestHandlerErrorMessage(t *testing.T) {
	err := &Error{Kind: HandlerError, Input: "gap inner x", Err: errors.New("invalid gap")}
	if got := err.Error(); got != "ERROR (invalid gap) executing: gap inner x" {
		t.Fatalf("unexpected message %q", got)
	}
}
