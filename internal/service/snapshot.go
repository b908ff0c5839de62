package service

import (
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/platform"
)

// MonitorState is the published state of one monitor.
type MonitorState struct {
	Workspace int     `json:"workspace"`
	Layout    string  `json:"layout"`
	Function  string  `json:"function"`
	NMaster   int     `json:"nmaster"`
	MFact     float64 `json:"mfact"`
	Clients   int     `json:"clients"`
}

// Buffer is a listed window.
type Buffer struct {
	Number    int               `json:"number"`
	ID        platform.WindowID `json:"id"`
	Title     string            `json:"title"`
	AppID     string            `json:"app_id"`
	Workspace int               `json:"workspace"`
	Active    bool              `json:"active"`
	Minimized bool              `json:"minimized"`
}

// Snapshot is an immutable copy of committed state, safe to share across
// goroutines.
type Snapshot struct {
	Primary   MonitorState  `json:"primary"`
	Secondary *MonitorState `json:"secondary,omitempty"`
	Buffers   []Buffer      `json:"buffers"`
	Gaps      monitor.Gaps  `json:"gaps"`
	Monitors  int           `json:"monitors"`
	AutoHint  bool          `json:"auto_hint"`
}

// Snapshot returns the last committed snapshot. It may be called from any
// goroutine.
func (s *Service) Snapshot() Snapshot {
	return *s.snapshot.Load()
}

func monitorState(m *monitor.Monitor) MonitorState {
	return MonitorState{
		Workspace: m.Workspace(),
		Layout:    string(m.Layout),
		Function:  m.Layout.Name(),
		NMaster:   m.NMaster,
		MFact:     m.MFact,
		Clients:   len(m.Clients),
	}
}

func (s *Service) buildSnapshot() *Snapshot {
	primary := s.monitors.Primary(s.monitors.ActiveWorkspace())
	snap := &Snapshot{
		Primary:  monitorState(primary),
		Gaps:     s.monitors.Gaps(),
		Monitors: s.monitors.Physical(),
		AutoHint: s.settings.AutoHint,
	}
	if next := primary.Next(); next != nil {
		state := monitorState(next)
		snap.Secondary = &state
	}

	active := s.registry.Active()
	for i, w := range s.registry.BufferWindows() {
		snap.Buffers = append(snap.Buffers, Buffer{
			Number:    i + 1,
			ID:        w.ID,
			Title:     w.Title,
			AppID:     w.AppID,
			Workspace: w.Workspace,
			Active:    w.ID == active,
			Minimized: w.Minimized,
		})
	}
	return snap
}

func (s *Service) publishSnapshot() {
	snap := s.buildSnapshot()
	s.snapshot.Store(snap)
	if s.publish != nil {
		s.publish(*snap)
	}
}
