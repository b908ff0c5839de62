// Package geometry holds rectangles and the decoration compensation applied
// before a placement is sent to the window system.
package geometry

import (
	"fmt"
	"sort"
	"strings"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Inset shrinks the rectangle by n pixels on every side. Width and height
// never go below 1.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}

// Add returns the rectangle shifted and resized by d.
func (r Rect) Add(d Delta) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width + d.Width, Height: r.Height + d.Height}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Delta is an adjustment added to a logical rectangle.
type Delta struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsZero reports whether the delta changes nothing.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Flag is a bitmask of window decorations, numbered like the motif hints.
type Flag uint

const (
	FlagAll      Flag = 1 << 0
	FlagBorder   Flag = 1 << 1
	FlagResizeH  Flag = 1 << 2
	FlagTitle    Flag = 1 << 3
	FlagMenu     Flag = 1 << 4
	FlagMinimize Flag = 1 << 5
	FlagMaximize Flag = 1 << 6

	FlagNone Flag = 0
)

var flagNames = map[string]Flag{
	"ALL":      FlagAll,
	"BORDER":   FlagBorder,
	"MAXIMIZE": FlagMaximize,
	"MENU":     FlagMenu,
	"MINIMIZE": FlagMinimize,
	"RESIZEH":  FlagResizeH,
	"TITLE":    FlagTitle,
	"NONE":     FlagNone,
}

// FlagByName resolves a decoration name such as "TITLE". Matching is case
// insensitive.
func FlagByName(name string) (Flag, bool) {
	f, ok := flagNames[strings.ToUpper(strings.TrimSpace(name))]
	return f, ok
}

// FlagNames returns every decoration name, sorted.
func FlagNames() []string {
	names := make([]string, 0, len(flagNames))
	for name := range flagNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f Flag) String() string {
	if f == FlagNone {
		return "NONE"
	}
	var parts []string
	for _, name := range FlagNames() {
		bit := flagNames[name]
		if bit != FlagNone && f&bit != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Decoration describes how a window is framed.
//
// Decorated is true when the window manager draws a frame. Flags are the
// decoration hints the client advertises. OffsetX and OffsetY are the
// distance between the outer frame and the client area; they are negative
// when the client draws its own shadow outside its logical bounds.
type Decoration struct {
	Decorated bool
	Flags     Flag
	OffsetX   int
	OffsetY   int
}

// BorderCompensation is the inward correction applied to windows that draw
// their own decorations.
const BorderCompensation = 1

// ClientDrawn reports whether the client draws its own decorations.
func (d Decoration) ClientDrawn() bool {
	return !d.Decorated && d.Flags != FlagNone && d.OffsetX < 0 && d.OffsetY < 0
}

// HasTitle reports whether a title bar is expected on the window.
func (d Decoration) HasTitle() bool {
	if d.Flags&(FlagTitle|FlagAll) != 0 {
		return true
	}
	return d.Decorated
}

// Compensate returns the delta to add to a logical placement so the visible
// bounds of the window match it.
func Compensate(d Decoration) Delta {
	if d.ClientDrawn() {
		return Delta{
			X:      BorderCompensation,
			Y:      BorderCompensation,
			Width:  -2 * BorderCompensation,
			Height: -2 * BorderCompensation,
		}
	}
	if !d.Decorated && d.Flags == FlagNone && d.OffsetX >= 0 && d.OffsetY >= 0 {
		return Delta{X: d.OffsetX, Y: d.OffsetY}
	}
	return Delta{}
}
