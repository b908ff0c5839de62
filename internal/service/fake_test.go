package service

import (
	"fmt"
	"slices"
	"testing"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/rs/zerolog"
)

const selfPID = 999

var fullHD = platform.Display{
	ID:      0,
	Name:    "DP-1",
	Primary: true,
	Bounds:  platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
	Usable:  platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
}

type fakeBackend struct {
	displays  []platform.Display
	windows   []platform.Window
	active    platform.WindowID
	workspace int
	count     int

	moves       map[platform.WindowID]geometry.Rect
	decorations map[platform.WindowID]geometry.Flag
	moveErr     map[platform.WindowID]error
	closed      []platform.WindowID
	minimized   []platform.WindowID
	maximized   []platform.WindowID
	unmaximized []platform.WindowID
	activated   []platform.WindowID
}

func newFakeBackend(windows ...platform.Window) *fakeBackend {
	return &fakeBackend{
		displays:    []platform.Display{fullHD},
		windows:     windows,
		count:       1,
		moves:       make(map[platform.WindowID]geometry.Rect),
		decorations: make(map[platform.WindowID]geometry.Flag),
		moveErr:     make(map[platform.WindowID]error),
	}
}

func (f *fakeBackend) find(id platform.WindowID) int {
	return slices.IndexFunc(f.windows, func(w platform.Window) bool { return w.ID == id })
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	return slices.Clone(f.displays), nil
}

func (f *fakeBackend) Windows() ([]platform.Window, error) {
	return slices.Clone(f.windows), nil
}

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	return f.active, nil
}

func (f *fakeBackend) CurrentWorkspace() (int, error) {
	return f.workspace, nil
}

func (f *fakeBackend) WorkspaceCount() (int, error) {
	return f.count, nil
}

func (f *fakeBackend) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	if err := f.moveErr[id]; err != nil {
		return err
	}
	i := f.find(id)
	if i < 0 {
		return platform.ErrWindowGone
	}
	f.windows[i].Bounds = bounds
	f.moves[id] = bounds
	return nil
}

func (f *fakeBackend) Unmaximize(id platform.WindowID) error {
	if i := f.find(id); i >= 0 {
		f.windows[i].Maximized = false
	}
	f.unmaximized = append(f.unmaximized, id)
	return nil
}

func (f *fakeBackend) SetDecoration(id platform.WindowID, flags geometry.Flag) error {
	f.decorations[id] = flags
	return nil
}

func (f *fakeBackend) Minimize(id platform.WindowID, _ uint32) error {
	if i := f.find(id); i >= 0 {
		f.windows[i].Minimized = true
	}
	f.minimized = append(f.minimized, id)
	return nil
}

func (f *fakeBackend) Maximize(id platform.WindowID, _ uint32) error {
	f.maximized = append(f.maximized, id)
	return nil
}

func (f *fakeBackend) Close(id platform.WindowID, _ uint32) error {
	i := f.find(id)
	if i < 0 {
		return platform.ErrWindowGone
	}
	f.windows = slices.Delete(f.windows, i, i+1)
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeBackend) Activate(id platform.WindowID, _ uint32) error {
	f.active = id
	f.activated = append(f.activated, id)
	return nil
}

type fakeStore struct {
	state       []byte
	saved       []monitor.Blob
	decorations map[platform.WindowID]geometry.Flag
}

func (s *fakeStore) LoadMonitors() ([]byte, error) {
	return s.state, nil
}

func (s *fakeStore) SaveMonitors(blob monitor.Blob) error {
	s.saved = append(s.saved, blob)
	return nil
}

func (s *fakeStore) LoadDecorations() (map[platform.WindowID]geometry.Flag, error) {
	return s.decorations, nil
}

func (s *fakeStore) SaveDecorations(original map[platform.WindowID]geometry.Flag) error {
	s.decorations = make(map[platform.WindowID]geometry.Flag, len(original))
	for id, f := range original {
		s.decorations[id] = f
	}
	return nil
}

type fakeLauncher struct {
	launched []string
	shell    []string
	panics   bool
}

func (l *fakeLauncher) Launch(name string) error {
	if l.panics {
		panic("launcher exploded")
	}
	l.launched = append(l.launched, name)
	return nil
}

func (l *fakeLauncher) Shell(cmdline string) error {
	l.shell = append(l.shell, cmdline)
	return nil
}

func (l *fakeLauncher) Applications(prefix string) []string {
	return []string{prefix + "fox"}
}

func (l *fakeLauncher) Executables(prefix string) []string {
	return []string{prefix + "bar"}
}

func window(id platform.WindowID, title string, bounds platform.Rect) platform.Window {
	return platform.Window{
		ID:     id,
		PID:    100 + int(id),
		Title:  title,
		Bounds: bounds,
	}
}

// threeWindows stacks A, B and C (C on top) inside the primary display.
func threeWindows() []platform.Window {
	return []platform.Window{
		window(1, "Alpha", platform.Rect{X: 10, Y: 10, Width: 400, Height: 300}),
		window(2, "Bravo", platform.Rect{X: 20, Y: 20, Width: 400, Height: 300}),
		window(3, "Charlie", platform.Rect{X: 30, Y: 30, Width: 400, Height: 300}),
	}
}

type fixture struct {
	svc      *Service
	backend  *fakeBackend
	store    *fakeStore
	launcher *fakeLauncher
}

func newFixture(t *testing.T, settings Settings, windows ...platform.Window) *fixture {
	t.Helper()
	f := &fixture{
		backend:  newFakeBackend(windows...),
		store:    &fakeStore{},
		launcher: &fakeLauncher{},
	}
	svc, err := New(Options{
		Backend:  f.backend,
		Store:    f.store,
		Launcher: f.launcher,
		Logger:   zerolog.Nop(),
		SelfPID:  selfPID,
		Settings: settings,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	if err := f.svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func (f *fixture) expectMove(t *testing.T, id platform.WindowID, want geometry.Rect) {
	t.Helper()
	got, ok := f.backend.moves[id]
	if !ok {
		t.Fatalf("expected window %d to be moved", id)
	}
	if got != want {
		t.Fatalf("expected window %d at %s, got %s", id, want, got)
	}
}

func texts(msgs []command.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func describe(msgs []command.Message) string {
	return fmt.Sprintf("%q", texts(msgs))
}
