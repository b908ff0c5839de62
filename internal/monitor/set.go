package monitor

import (
	"encoding/json"
	"slices"

	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/tiling"
	"github.com/rs/zerolog"
)

// Gaps are the pixel gaps between windows (Inner) and around the work
// area (Outer).
type Gaps struct {
	Inner int `json:"inner"`
	Outer int `json:"outer"`
}

// Defaults seed newly created primary monitors.
type Defaults struct {
	Layout  tiling.LayoutKey
	NMaster int
	MFact   float64
}

// DefaultDefaults returns the built-in monitor defaults.
func DefaultDefaults() Defaults {
	return Defaults{Layout: tiling.Tile, NMaster: 1, MFact: 0.5}
}

// Windows is the window snapshot SyncClients reads.
type Windows interface {
	Has(id platform.WindowID) bool
	Window(id platform.WindowID) (platform.Window, error)
	Stacked() []platform.Window
	IsBuffer(w platform.Window) bool
}

// Set owns the primary monitor of every workspace.
type Set struct {
	primaries map[int]*Monitor

	physical        int
	workspaces      int
	activeWorkspace int
	warnedPhysical  int

	gaps     Gaps
	defaults Defaults
	logger   zerolog.Logger

	// Secondary state loaded before the secondary monitor existed.
	pending map[int]json.RawMessage
}

// NewSet creates an empty monitor set.
func NewSet(defaults Defaults, gaps Gaps, logger zerolog.Logger) *Set {
	return &Set{
		primaries: make(map[int]*Monitor),
		pending:   make(map[int]json.RawMessage),
		gaps:      gaps,
		defaults:  defaults,
		logger:    logger,
	}
}

// Primary returns the primary monitor of workspace ws, creating it on first
// access.
func (s *Set) Primary(ws int) *Monitor {
	if m, ok := s.primaries[ws]; ok {
		return m
	}
	m := &Monitor{
		Primary:   true,
		Layout:    s.defaults.Layout,
		NMaster:   s.defaults.NMaster,
		MFact:     s.defaults.MFact,
		set:       s,
		workspace: ws,
	}
	s.primaries[ws] = m
	return m
}

func (s *Set) newSecondary(ws int) *Monitor {
	m := &Monitor{
		Layout:    s.defaults.Layout,
		NMaster:   0,
		MFact:     s.defaults.MFact,
		set:       s,
		workspace: ws,
	}
	if raw, ok := s.pending[ws]; ok {
		delete(s.pending, ws)
		if err := m.FromJSON(raw); err != nil {
			s.logger.Warn().Err(err).Int("workspace", ws).Msg("ignoring malformed secondary monitor state")
		}
	}
	return m
}

// Workspaces returns the sorted indexes of workspaces with a monitor.
func (s *Set) Workspaces() []int {
	out := make([]int, 0, len(s.primaries))
	for ws := range s.primaries {
		out = append(out, ws)
	}
	slices.Sort(out)
	return out
}

// ActiveWorkspace returns the workspace shown by the last Read.
func (s *Set) ActiveWorkspace() int {
	return s.activeWorkspace
}

// WorkspaceCount returns the workspace count of the last Read.
func (s *Set) WorkspaceCount() int {
	return s.workspaces
}

// Physical returns the number of connected displays.
func (s *Set) Physical() int {
	return s.physical
}

// Gaps returns the current gaps.
func (s *Set) Gaps() Gaps {
	return s.gaps
}

// SetGaps changes the gaps and recomputes every work area.
func (s *Set) SetGaps(g Gaps) {
	s.gaps = g
	for _, primary := range s.primaries {
		for _, m := range primary.Chain() {
			m.UpdateWorkArea()
		}
	}
}

// SetDefaults changes the seed for monitors created from now on.
func (s *Set) SetDefaults(d Defaults) {
	s.defaults = d
}

// Read updates the topology and the rectangles of every monitor. With more
// than two displays only the primary one is managed.
func (s *Set) Read(displays []platform.Display, workspaceCount, activeWorkspace int) {
	s.physical = len(displays)
	s.workspaces = max(workspaceCount, activeWorkspace+1, 1)
	s.activeWorkspace = activeWorkspace

	if s.physical > 2 {
		if s.warnedPhysical != s.physical {
			s.logger.Warn().Int("monitors", s.physical).Msg("unsupported monitor configuration, only the primary monitor is tiled")
			s.warnedPhysical = s.physical
		}
	} else {
		s.warnedPhysical = 0
	}

	for ws := 0; ws < s.workspaces; ws++ {
		primary := s.Primary(ws)
		for _, d := range displays {
			m := primary
			if !d.Primary {
				m = primary.Next()
			}
			if m != nil {
				m.SetRectangle(d.Usable)
			}
		}
	}
}

// Active returns the monitor holding w, or the active workspace's primary
// monitor when w is nil.
func (s *Set) Active(w *platform.Window) *Monitor {
	if w == nil {
		return s.Primary(s.activeWorkspace)
	}
	ws := w.Workspace
	if ws == platform.StickyWorkspace {
		ws = s.activeWorkspace
	}
	primary := s.Primary(ws)
	if next := primary.Next(); next != nil && !primary.Contains(*w) && next.Contains(*w) {
		return next
	}
	return primary
}

// Holding returns the monitor of workspace ws whose clients include id.
func (s *Set) Holding(ws int, id platform.WindowID) *Monitor {
	for _, m := range s.Primary(ws).Chain() {
		if m.Index(id) >= 0 {
			return m
		}
	}
	return nil
}

// SyncClients reconciles client lists with the snapshot: gone or no longer
// visible windows are dropped, then newly visible buffers are appended
// top-most first. A window ends up in at most one monitor per workspace.
// It reports whether any list changed.
func (s *Set) SyncClients(windows Windows) bool {
	changed := false
	stacked := windows.Stacked()

	for ws := 0; ws < s.workspaces; ws++ {
		chain := s.Primary(ws).Chain()

		for _, m := range chain {
			kept := m.Clients[:0]
			for _, id := range m.Clients {
				w, err := windows.Window(id)
				if err != nil || !s.visibleOn(windows, w, m) {
					changed = true
					continue
				}
				kept = append(kept, id)
			}
			m.Clients = kept
		}

		for _, m := range chain {
			for i := len(stacked) - 1; i >= 0; i-- {
				w := stacked[i]
				if !s.visibleOn(windows, w, m) || s.heldInChain(chain, w.ID) {
					continue
				}
				m.Clients = append(m.Clients, w.ID)
				changed = true
			}
		}
	}
	return changed
}

func (s *Set) visibleOn(windows Windows, w platform.Window, m *Monitor) bool {
	if !windows.IsBuffer(w) || w.Minimized || !w.OnWorkspace(m.workspace) {
		return false
	}
	if m.Primary && s.physical <= 1 {
		return true
	}
	return m.Contains(w)
}

func (s *Set) heldInChain(chain []*Monitor, id platform.WindowID) bool {
	for _, m := range chain {
		if m.Index(id) >= 0 {
			return true
		}
	}
	return false
}
