package service

import (
	"testing"

	"github.com/1broseidon/tilevim/internal/platform"
)

func grid() []platform.Window {
	return []platform.Window{
		window(1, "top-left", platform.Rect{X: 0, Y: 0, Width: 960, Height: 540}),
		window(2, "top-right", platform.Rect{X: 960, Y: 0, Width: 960, Height: 540}),
		window(3, "bottom-left", platform.Rect{X: 0, Y: 540, Width: 960, Height: 540}),
		window(4, "bottom-right", platform.Rect{X: 960, Y: 540, Width: 960, Height: 540}),
	}
}

func TestNextInDirection(t *testing.T) {
	windows := grid()
	tests := []struct {
		from platform.WindowID
		dir  Direction
		want platform.WindowID
	}{
		{1, Right, 2},
		{1, Down, 3},
		{4, Left, 3},
		{4, Up, 2},
		{1, Left, 1},
		{1, Up, 1},
	}
	for _, tt := range tests {
		got, ok := nextInDirection(windows, windows[tt.from-1], tt.dir)
		if !ok {
			t.Fatalf("from %d %s: active window not found", tt.from, tt.dir)
		}
		if got.ID != tt.want {
			t.Errorf("from %d %s: expected %d, got %d", tt.from, tt.dir, tt.want, got.ID)
		}
	}
}

func TestNextInDirectionUnknownActive(t *testing.T) {
	stranger := window(9, "stranger", platform.Rect{Width: 10, Height: 10})
	if _, ok := nextInDirection(grid(), stranger, Right); ok {
		t.Fatalf("expected no result for a window outside the list")
	}
}

func TestFocusKeys(t *testing.T) {
	f := newFixture(t, DefaultSettings(), grid()...)
	f.backend.active = 1

	f.svc.DispatchKey("Mod4-Right", 0)
	if f.backend.active != 2 {
		t.Fatalf("expected top-right focused, got %d", f.backend.active)
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := parseDirection(" Down "); err != nil || d != Down {
		t.Fatalf("expected down, got %v %v", d, err)
	}
	if _, err := parseDirection("sideways"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}
