// Package hint implements cyclable command-line completion.
package hint

import "github.com/1broseidon/tilevim/internal/command"

// Engine holds the completion state of a single command line. The zero
// index is -1, meaning no candidate is highlighted yet.
type Engine struct {
	table      *command.Table
	input      *command.Input
	candidates []string
	index      int
}

// New creates an idle engine completing against table.
func New(table *command.Table) *Engine {
	return &Engine{table: table, index: -1}
}

// Hint computes candidates for text and reports whether the engine is now
// hinting. Command names are completed while no parameter has been typed;
// afterwards the command's own completer is consulted.
func (e *Engine) Hint(text string) bool {
	e.Clear()
	in := command.Parse(text)

	var candidates []string
	if in.CompletingName() {
		candidates = e.table.HintNames(in.Name)
	} else if c := e.completing(in); c != nil && c.Complete != nil {
		candidates = c.Complete(in)
	}
	if len(candidates) == 0 {
		return false
	}

	e.input = in
	e.candidates = candidates
	return true
}

// completing returns the command whose pattern matches the typed line, so
// an indexed form never borrows the completer of a named form. A line no
// pattern accepts yet falls back to the command's name.
func (e *Engine) completing(in *command.Input) *command.Command {
	if c := e.table.Match(in.Text); c != nil {
		return c
	}
	return e.table.Lookup(in.Name)
}

// Cycle moves the highlight by dir, wrapping at both ends.
func (e *Engine) Cycle(dir int) {
	n := len(e.candidates)
	if n == 0 {
		return
	}
	if e.index < 0 {
		if dir < 0 {
			e.index = n - 1
		} else {
			e.index = 0
		}
		return
	}
	e.index = ((e.index+dir)%n + n) % n
}

// MountInput rebuilds the command line with the highlighted candidate in
// the region being completed. Without a highlight the original text is
// returned.
func (e *Engine) MountInput() string {
	if e.input == nil {
		return ""
	}
	if e.index < 0 {
		return e.input.Text
	}
	candidate := e.candidates[e.index]
	if e.input.CompletingName() {
		return e.input.Leading + candidate
	}
	return e.input.Leading + e.input.Name + e.input.Spacer + candidate
}

// Clear returns the engine to idle.
func (e *Engine) Clear() {
	e.input = nil
	e.candidates = nil
	e.index = -1
}

// Hinting reports whether candidates are available.
func (e *Engine) Hinting() bool {
	return len(e.candidates) > 0
}

// ShouldAutoHint reports whether the single remaining candidate can be
// taken without cycling.
func (e *Engine) ShouldAutoHint() bool {
	return len(e.candidates) == 1
}

// Candidates returns a copy of the current candidates.
func (e *Engine) Candidates() []string {
	return append([]string(nil), e.candidates...)
}

// Index returns the highlighted position, or -1.
func (e *Engine) Index() int {
	return e.index
}
