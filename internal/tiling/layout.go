// Package tiling maps an ordered client list and a monitor work area to
// window placements. Nothing here talks to the window system.
package tiling

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/platform"
)

// LayoutKey identifies a layout function. The empty key disables tiling.
type LayoutKey string

const (
	Tile    LayoutKey = "T"
	Monocle LayoutKey = "M"
	None    LayoutKey = ""
)

// Placement is a target rectangle for one window.
type Placement struct {
	Window platform.WindowID
	Rect   geometry.Rect
}

// Params carries the monitor state a layout needs.
type Params struct {
	Area    geometry.Rect
	NMaster int
	MFact   float64
	Gap     int
}

// Func computes placements for clients, in client order.
type Func func(clients []platform.WindowID, p Params) []Placement

// Layout is an entry of the layout table.
type Layout struct {
	Key  LayoutKey
	Name string
	Func Func
}

var layouts = map[LayoutKey]Layout{
	Tile:    {Key: Tile, Name: "tile", Func: TileLayout},
	Monocle: {Key: Monocle, Name: "monocle", Func: MonocleLayout},
	None:    {Key: None, Name: "none", Func: NoLayout},
}

// Lookup returns the layout registered under key.
func Lookup(key LayoutKey) (Layout, bool) {
	l, ok := layouts[key]
	return l, ok
}

// Keys returns every layout key, the "none" key last.
func Keys() []LayoutKey {
	keys := make([]LayoutKey, 0, len(layouts))
	for k := range layouts {
		if k != None {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	return append(keys, None)
}

// Name returns the human name of the layout ("none" for the empty key).
func (k LayoutKey) Name() string {
	if l, ok := layouts[k]; ok {
		return l.Name
	}
	return string(k)
}

// ParseLayoutKey accepts a key ("T", "M") or a layout name ("tile",
// "monocle", "none").
func ParseLayoutKey(s string) (LayoutKey, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return None, nil
	}
	for _, l := range layouts {
		if l.Key != None && (string(l.Key) == s || strings.EqualFold(l.Name, s)) {
			return l.Key, nil
		}
	}
	return None, fmt.Errorf("unknown layout %q", s)
}

// Arrange runs the layout registered under key.
func Arrange(key LayoutKey, clients []platform.WindowID, p Params) ([]Placement, error) {
	l, ok := layouts[key]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q", string(key))
	}
	return l.Func(clients, p), nil
}

// TileLayout is the master-stack layout: the first NMaster clients share the
// left MFact of the area, the rest share the remainder.
func TileLayout(clients []platform.WindowID, p Params) []Placement {
	n := len(clients)
	if n == 0 {
		return nil
	}

	m := min(max(p.NMaster, 0), n)
	area := p.Area

	var master, stack geometry.Rect
	switch {
	case m == 0:
		stack = area
	case m == n:
		master = area
	default:
		masterWidth := int(float64(area.Width) * p.MFact)
		master = geometry.Rect{X: area.X, Y: area.Y, Width: masterWidth, Height: area.Height}
		stack = geometry.Rect{X: area.X + masterWidth, Y: area.Y, Width: area.Width - masterWidth, Height: area.Height}
	}

	placements := make([]Placement, 0, n)
	placements = appendColumn(placements, clients[:m], master, p.Gap)
	placements = appendColumn(placements, clients[m:], stack, p.Gap)
	return placements
}

// appendColumn splits region into equal-height rows, giving the remainder
// pixels to the last one.
func appendColumn(out []Placement, clients []platform.WindowID, region geometry.Rect, gap int) []Placement {
	k := len(clients)
	if k == 0 {
		return out
	}
	h := region.Height / k
	for i, id := range clients {
		height := h
		if i == k-1 {
			height = region.Height - i*h
		}
		r := geometry.Rect{X: region.X, Y: region.Y + i*h, Width: region.Width, Height: height}
		if gap > 0 {
			r = r.Inset(gap / 2)
		}
		out = append(out, Placement{Window: id, Rect: r})
	}
	return out
}

// MonocleLayout gives every client the whole area.
func MonocleLayout(clients []platform.WindowID, p Params) []Placement {
	placements := make([]Placement, 0, len(clients))
	for _, id := range clients {
		placements = append(placements, Placement{Window: id, Rect: p.Area})
	}
	return placements
}

// NoLayout leaves windows floating.
func NoLayout([]platform.WindowID, Params) []Placement {
	return nil
}
