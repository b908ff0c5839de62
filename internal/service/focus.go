package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/platform"
)

// Direction is a focus or snap direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

var directionNames = []string{"left", "right", "up", "down"}

func parseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range directionNames {
		if s == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

func (d Direction) horizontal() bool {
	return d == Left || d == Right
}

func (d Direction) step() int {
	if d == Left || d == Up {
		return -1
	}
	return 1
}

// axisPosition returns the coordinate along the axis of d and the one
// across it.
func axisPosition(w platform.Window, horizontal bool) (along, across int) {
	if horizontal {
		return w.Bounds.X, w.Bounds.Y
	}
	return w.Bounds.Y, w.Bounds.X
}

// nextInDirection orders windows along the axis of dir, penalizing the
// distance across it, and returns the window reached by stepping from
// active. Windows aligned with active on the axis are skipped.
func nextInDirection(windows []platform.Window, active platform.Window, dir Direction) (platform.Window, bool) {
	horizontal := dir.horizontal()
	activeAlong, activeAcross := axisPosition(active, horizontal)

	key := func(w platform.Window) int {
		along, across := axisPosition(w, horizontal)
		distance := abs(across - activeAcross)
		if along < activeAlong {
			distance = -distance
		}
		return along + distance
	}

	sorted := append([]platform.Window(nil), windows...)
	sort.SliceStable(sorted, func(i, j int) bool { return key(sorted[i]) < key(sorted[j]) })

	index := -1
	for i, w := range sorted {
		if w.ID == active.ID {
			index = i
			break
		}
	}
	if index < 0 {
		return platform.Window{}, false
	}

	step := dir.step()
	if next := index + step; next >= 0 && next < len(sorted) {
		index = next
		for next = index + step; next >= 0 && next < len(sorted); next += step {
			if along, _ := axisPosition(sorted[index], horizontal); along != activeAlong {
				break
			}
			index = next
		}
	}
	return sorted[index], true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// focus moves focus to the nearest visible buffer in direction dir.
func (s *Service) focus(dir Direction) {
	active, ok := s.activeWindow()
	if !ok {
		return
	}
	target, ok := nextInDirection(s.registry.Visible(s.monitors.ActiveWorkspace()), active, dir)
	if !ok {
		return
	}
	s.registry.SetActive(target.ID)
	s.registry.MarkStaged()
}

// snap moves the active window to a half of its monitor's work area.
func (s *Service) snap(dir Direction) {
	switch dir {
	case Left:
		s.resizeActive(0, 0, 0.5, 1)
	case Right:
		s.resizeActive(0.5, 0, 0.5, 1)
	case Up:
		s.resizeActive(0, 0, 1, 0.5)
	case Down:
		s.resizeActive(0, 0.5, 1, 0.5)
	}
}

// resizeActive places the active window at fractions of its monitor's
// work area: l and t from the left and top edges, w and h of its size.
func (s *Service) resizeActive(l, t, w, h float64) {
	win, ok := s.activeWindow()
	if !ok {
		return
	}
	area := s.monitors.Active(&win).WorkArea
	s.place(win.ID, geometry.Rect{
		X:      area.X + int(float64(area.Width)*l),
		Y:      area.Y + int(float64(area.Height)*t),
		Width:  int(float64(area.Width) * w),
		Height: int(float64(area.Height) * h),
	})
}
