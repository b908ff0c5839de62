// Package registry keeps the snapshot of windows read from the window system
// and the ordered list of buffers (windows a user can list and select).
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/sahilm/fuzzy"
)

// ErrStaleReference is returned for a window id that is not in the latest
// snapshot. Callers treat it as "the window is gone".
var ErrStaleReference = errors.New("stale window reference")

// Registry is rebuilt wholesale by Read; it is never patched in place.
type Registry struct {
	selfPID int

	byID    map[platform.WindowID]platform.Window
	stack   []platform.WindowID
	buffers []platform.WindowID
	active  platform.WindowID
	staging bool
}

// New creates an empty registry. Windows owned by selfPID are never buffers.
func New(selfPID int) *Registry {
	return &Registry{
		selfPID: selfPID,
		byID:    make(map[platform.WindowID]platform.Window),
	}
}

// Read replaces the snapshot. windows must be in stacking order, bottom-most
// first. The active window is kept only when it is a buffer.
func (r *Registry) Read(windows []platform.Window, active platform.WindowID) {
	r.byID = make(map[platform.WindowID]platform.Window, len(windows))
	r.stack = r.stack[:0]
	r.buffers = r.buffers[:0]
	r.active = 0

	for _, w := range windows {
		r.byID[w.ID] = w
		r.stack = append(r.stack, w.ID)
		if r.IsBuffer(w) {
			r.buffers = append(r.buffers, w.ID)
		}
	}

	if w, ok := r.byID[active]; ok && r.IsBuffer(w) {
		r.active = active
	}
}

// IsBuffer reports whether w is listable: not one of our own windows and not
// skip-listed.
func (r *Registry) IsBuffer(w platform.Window) bool {
	if r.selfPID != 0 && w.PID == r.selfPID {
		return false
	}
	return !w.SkipTaskbar
}

// Window returns the snapshot of id.
func (r *Registry) Window(id platform.WindowID) (platform.Window, error) {
	w, ok := r.byID[id]
	if !ok {
		return platform.Window{}, fmt.Errorf("%w: 0x%x", ErrStaleReference, uint32(id))
	}
	return w, nil
}

// Has reports whether id is in the snapshot.
func (r *Registry) Has(id platform.WindowID) bool {
	_, ok := r.byID[id]
	return ok
}

// Len returns the number of windows in the snapshot.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Buffers returns buffer ids in stacking order.
func (r *Registry) Buffers() []platform.WindowID {
	out := make([]platform.WindowID, len(r.buffers))
	copy(out, r.buffers)
	return out
}

// BufferWindows returns the buffer snapshots in stacking order.
func (r *Registry) BufferWindows() []platform.Window {
	out := make([]platform.Window, 0, len(r.buffers))
	for _, id := range r.buffers {
		out = append(out, r.byID[id])
	}
	return out
}

// Stacked returns every window, bottom-most first.
func (r *Registry) Stacked() []platform.Window {
	out := make([]platform.Window, 0, len(r.stack))
	for _, id := range r.stack {
		out = append(out, r.byID[id])
	}
	return out
}

// Visible returns buffers shown on workspace ws, top-most first.
func (r *Registry) Visible(ws int) []platform.Window {
	var out []platform.Window
	for i := len(r.stack) - 1; i >= 0; i-- {
		w := r.byID[r.stack[i]]
		if r.IsBuffer(w) && !w.Minimized && w.OnWorkspace(ws) {
			out = append(out, w)
		}
	}
	return out
}

// FindByName returns the first buffer whose title contains text, ignoring
// case and surrounding whitespace.
func (r *Registry) FindByName(text string) (platform.WindowID, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	for _, id := range r.buffers {
		if strings.Contains(strings.ToLower(r.byID[id].Title), needle) {
			return id, true
		}
	}
	return 0, false
}

// CompleteNames returns buffer titles containing text. When no title
// contains it, titles are ranked by fuzzy match instead.
func (r *Registry) CompleteNames(text string) []string {
	needle := strings.ToLower(strings.TrimSpace(text))
	titles := make([]string, 0, len(r.buffers))
	var matches []string
	for _, id := range r.buffers {
		title := strings.TrimSpace(r.byID[id].Title)
		titles = append(titles, title)
		if strings.Contains(strings.ToLower(title), needle) {
			matches = append(matches, title)
		}
	}
	if len(matches) > 0 || needle == "" {
		return matches
	}
	for _, m := range fuzzy.Find(needle, titles) {
		matches = append(matches, m.Str)
	}
	return matches
}

// Active returns the focused buffer, or 0.
func (r *Registry) Active() platform.WindowID {
	return r.active
}

// SetActive records the focused buffer without staging a change.
func (r *Registry) SetActive(id platform.WindowID) {
	r.active = id
}

// ChangeActive moves focus to id and stages the change when it differs.
func (r *Registry) ChangeActive(id platform.WindowID) {
	if r.active != id {
		r.active = id
		r.staging = true
	}
}

// MarkStaged flags a pending environment mutation.
func (r *Registry) MarkStaged() {
	r.staging = true
}

// ClearStaged drops the pending flag.
func (r *Registry) ClearStaged() {
	r.staging = false
}

// Staged reports whether a mutation is pending.
func (r *Registry) Staged() bool {
	return r.staging
}
