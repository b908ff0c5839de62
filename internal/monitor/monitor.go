// Package monitor models the per-workspace monitor chain: a primary monitor
// and, with exactly two physical displays, a lazily created secondary one.
package monitor

import (
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/tiling"
)

// Bounds for the master area fraction.
const (
	MinMFact = 0.1
	MaxMFact = 0.9
)

// Strut is a reserved space (left, top, right, bottom). Left and top are the
// smallest coordinates the visible area may start at; right and bottom are
// removed from the far edges.
type Strut [4]int

// Stage receives the window mutations a layout produces.
type Stage interface {
	Unmaximize(id platform.WindowID)
	Place(p tiling.Placement)
}

// Monitor holds the layout state of one display on one workspace.
type Monitor struct {
	Primary bool
	Layout  tiling.LayoutKey
	NMaster int
	MFact   float64
	Strut   Strut

	VisibleArea geometry.Rect
	WorkArea    geometry.Rect

	// Clients is ordered: Clients[0] is the master.
	Clients []platform.WindowID

	set       *Set
	workspace int
	secondary *Monitor
}

// Workspace returns the workspace index the monitor belongs to.
func (m *Monitor) Workspace() int {
	return m.workspace
}

// Next returns the secondary monitor of a primary one. It exists only while
// exactly two physical displays are connected.
func (m *Monitor) Next() *Monitor {
	if m == nil || !m.Primary || m.set == nil || m.set.physical != 2 {
		return nil
	}
	if m.secondary == nil {
		m.secondary = m.set.newSecondary(m.workspace)
	}
	return m.secondary
}

// Chain returns the monitor followed by its secondary, if any.
func (m *Monitor) Chain() []*Monitor {
	var out []*Monitor
	for cur := m; cur != nil; cur = cur.Next() {
		out = append(out, cur)
	}
	return out
}

// SetRectangle stores the display rectangle clipped to the strut and
// recomputes the work area.
func (m *Monitor) SetRectangle(r geometry.Rect) {
	visible := geometry.Rect{
		X:      max(r.X, m.Strut[0]),
		Y:      max(r.Y, m.Strut[1]),
		Width:  r.Width,
		Height: r.Height,
	}
	if r.X < m.Strut[0] {
		visible.Width -= m.Strut[0] - r.X
	}
	if r.Y < m.Strut[1] {
		visible.Height -= m.Strut[1] - r.Y
	}
	visible.Width = max(visible.Width-m.Strut[2], 0)
	visible.Height = max(visible.Height-m.Strut[3], 0)

	m.VisibleArea = visible
	m.UpdateWorkArea()
}

// UpdateWorkArea applies the outer gap to the visible area.
func (m *Monitor) UpdateWorkArea() {
	gap := 0
	if m.set != nil {
		gap = m.set.gaps.Outer
	}
	v := m.VisibleArea
	m.WorkArea = geometry.Rect{
		X:      max(v.X, m.Strut[0]) + gap,
		Y:      max(v.Y, m.Strut[1]) + gap,
		Width:  max(v.Width-2*gap, 0),
		Height: max(v.Height-2*gap, 0),
	}
}

// IncreaseMasterArea moves mfact by delta within [MinMFact, MaxMFact].
func (m *Monitor) IncreaseMasterArea(delta float64) {
	m.MFact = min(max(m.MFact+delta, MinMFact), MaxMFact)
}

// IncrementMaster moves nmaster by delta within [0, len(Clients)].
func (m *Monitor) IncrementMaster(delta int) {
	m.NMaster = min(max(m.NMaster+delta, 0), len(m.Clients))
}

// Contains reports whether the center of w lies in the visible area.
func (m *Monitor) Contains(w platform.Window) bool {
	cx, cy := w.Bounds.Center()
	return m.VisibleArea.Contains(cx, cy)
}

// Index returns the position of id in Clients, or -1.
func (m *Monitor) Index(id platform.WindowID) int {
	for i, c := range m.Clients {
		if c == id {
			return i
		}
	}
	return -1
}

// Remove drops id from Clients.
func (m *Monitor) Remove(id platform.WindowID) bool {
	i := m.Index(id)
	if i < 0 {
		return false
	}
	m.Clients = append(m.Clients[:i], m.Clients[i+1:]...)
	return true
}

// Move relocates the client at index from to index to.
func (m *Monitor) Move(from, to int) {
	if from == to || from < 0 || from >= len(m.Clients) {
		return
	}
	id := m.Clients[from]
	m.Clients = append(m.Clients[:from], m.Clients[from+1:]...)
	to = min(max(to, 0), len(m.Clients))
	m.Clients = append(m.Clients[:to], append([]platform.WindowID{id}, m.Clients[to:]...)...)
}

// Arrange computes the placements of the current layout.
func (m *Monitor) Arrange() ([]tiling.Placement, error) {
	inner := 0
	if m.set != nil {
		inner = m.set.gaps.Inner
	}
	return tiling.Arrange(m.Layout, m.Clients, tiling.Params{
		Area:    m.WorkArea,
		NMaster: m.NMaster,
		MFact:   m.MFact,
		Gap:     inner,
	})
}

// Apply stages the layout placements. A monitor without layout is left
// floating.
func (m *Monitor) Apply(stage Stage, unmaximize bool) error {
	if m.Layout == tiling.None {
		return nil
	}
	if unmaximize {
		for _, id := range m.Clients {
			stage.Unmaximize(id)
		}
	}
	placements, err := m.Arrange()
	if err != nil {
		return err
	}
	for _, p := range placements {
		stage.Place(p)
	}
	return nil
}
