// Package history keeps the command-line history and its prefix-filtered
// navigation session.
package history

import (
	"slices"
	"strings"
)

// History is an append-only list of unique command lines.
type History struct {
	entries []string

	// navigation session; active while filtered != nil
	prefix   string
	filtered []string
	pointer  int
}

// New creates a history seeded with entries, dropping duplicates.
func New(entries ...string) *History {
	h := &History{}
	for _, e := range entries {
		h.Append(e)
	}
	return h
}

// Append adds cmd unless an identical entry exists. Blank lines are ignored.
func (h *History) Append(cmd string) {
	if strings.TrimSpace(cmd) == "" || slices.Contains(h.entries, cmd) {
		return
	}
	h.entries = append(h.entries, cmd)
}

// Navigate moves through the entries starting with the input present when
// the session began. Negative direction goes to older entries.
func (h *History) Navigate(direction int, input string) string {
	if h.filtered == nil {
		h.prefix = input
		h.filtered = []string{}
		for _, e := range h.entries {
			if strings.HasPrefix(e, input) {
				h.filtered = append(h.filtered, e)
			}
		}
		h.pointer = len(h.filtered)
	}
	h.pointer = min(max(h.pointer+direction, 0), len(h.filtered))
	return h.Current()
}

// Current returns the selected entry, or the session prefix when the
// pointer is past the last entry.
func (h *History) Current() string {
	if h.pointer >= len(h.filtered) {
		return h.prefix
	}
	return h.filtered[h.pointer]
}

// Navigating reports whether a navigation session is active.
func (h *History) Navigating() bool {
	return h.filtered != nil
}

// Reset ends the navigation session.
func (h *History) Reset() {
	h.prefix = ""
	h.filtered = nil
	h.pointer = 0
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []string {
	return slices.Clone(h.entries)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}
