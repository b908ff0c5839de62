package service

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/geometry"
)

func (s *Service) report(in *command.Input) ([]command.Message, error) {
	return []command.Message{command.Infof("%s", s.Report())}, nil
}

// Report describes buffers, gaps and monitors for troubleshooting. It reads
// the model as of the last read.
func (s *Service) Report() string {
	var b strings.Builder

	for _, w := range s.registry.BufferWindows() {
		d := w.Decoration
		fmt.Fprintf(&b, "[%8d] - %s\n", w.ID, w.Title)
		fmt.Fprintf(&b, "\tgeometry: %s\tworkspace: %d\tminimized: %t\tmaximized: %t\n",
			w.Bounds, w.Workspace, w.Minimized, w.Maximized)
		fmt.Fprintf(&b, "\tdecorated: %-5t\tflags: %s\toffset: %d %d\n",
			d.Decorated, d.Flags, d.OffsetX, d.OffsetY)
		delta := geometry.Compensate(d)
		fmt.Fprintf(&b, "\tdecoration delta: %3d %3d %3d %3d\tclient drawn: %t\n",
			delta.X, delta.Y, delta.Width, delta.Height, d.ClientDrawn())
	}

	gaps := s.monitors.Gaps()
	fmt.Fprintf(&b, "[gap] inner: %d outer: %d\n", gaps.Inner, gaps.Outer)

	for _, ws := range s.monitors.Workspaces() {
		fmt.Fprintf(&b, "Workspace %d\n", ws)
		for _, m := range s.monitors.Primary(ws).Chain() {
			fmt.Fprintf(&b, "\tMonitor\tLayout: %s\tPrimary: %t\tnmaster: %d\tmfact: %.2f\n",
				m.Layout.Name(), m.Primary, m.NMaster, m.MFact)
			fmt.Fprintf(&b, "\t\tVisible: %s\tWork area: %s\n", m.VisibleArea, m.WorkArea)
			b.WriteString("\t\tStack: (")
			for _, id := range m.Clients {
				fmt.Fprintf(&b, "%10d ", id)
			}
			b.WriteString(")\n")
		}
	}
	return b.String()
}
