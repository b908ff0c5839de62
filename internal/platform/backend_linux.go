//go:build linux

package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays, the primary one flagged.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, Wrap("displays", 0, err)
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// Windows lists normal windows in stacking order, bottom-most first.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.GetStackingOrder()
	if err != nil {
		return nil, Wrap("windows", 0, err)
	}

	windows := make([]Window, 0, len(clients))
	for stacking, windowID := range clients {
		if !conn.IsNormalWindow(windowID) {
			continue
		}

		x, y, w, h, err := conn.GetGeometry(windowID)
		if err != nil {
			// Closed while we were reading.
			continue
		}

		workspace, err := conn.GetWindowDesktop(windowID)
		if err != nil {
			workspace = StickyWorkspace
		}

		state := conn.GetWindowState(windowID)
		windows = append(windows, Window{
			ID:          WindowID(windowID),
			PID:         conn.GetWindowPID(windowID),
			AppID:       conn.GetWindowClass(windowID),
			Title:       conn.GetWindowTitle(windowID),
			Bounds:      Rect{X: x, Y: y, Width: w, Height: h},
			Workspace:   workspace,
			Stacking:    stacking,
			Minimized:   state.Hidden,
			Maximized:   state.Maximized(),
			SkipTaskbar: state.SkipTaskbar,
			Decoration:  b.decoration(windowID),
		})
	}
	return windows, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, Wrap("active window", 0, err)
	}
	return WindowID(wid), nil
}

// CurrentWorkspace returns the index of the visible workspace.
func (b *LinuxBackend) CurrentWorkspace() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	ws, err := conn.GetCurrentDesktop()
	return ws, Wrap("current workspace", 0, err)
}

// WorkspaceCount returns the number of workspaces.
func (b *LinuxBackend) WorkspaceCount() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	n, err := conn.GetDesktopCount()
	return n, Wrap("workspace count", 0, err)
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return wrapX("move", windowID, conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	))
}

// Unmaximize clears the maximized state of a window.
func (b *LinuxBackend) Unmaximize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return wrapX("unmaximize", windowID, conn.UnmaximizeWindow(xproto.Window(windowID)))
}

// SetDecoration replaces the motif decoration flags of a window.
func (b *LinuxBackend) SetDecoration(windowID WindowID, flags geometry.Flag) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return wrapX("decorate", windowID, conn.SetDecorations(xproto.Window(windowID), uint(flags)))
}

// Minimize iconifies a window.
func (b *LinuxBackend) Minimize(windowID WindowID, _ uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return wrapX("minimize", windowID, conn.MinimizeWindow(xproto.Window(windowID)))
}

// Maximize maximizes a window on both axes.
func (b *LinuxBackend) Maximize(windowID WindowID, _ uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return wrapX("maximize", windowID, conn.MaximizeWindow(xproto.Window(windowID)))
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(windowID WindowID, timestamp uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return wrapX("close", windowID, conn.CloseWindow(xproto.Window(windowID), timestamp))
}

// Activate focuses and raises a window.
func (b *LinuxBackend) Activate(windowID WindowID, timestamp uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return wrapX("activate", windowID, conn.ActivateWindow(xproto.Window(windowID), timestamp))
}

func (b *LinuxBackend) decoration(windowID xproto.Window) geometry.Decoration {
	extents := b.conn.GetFrameExtents(windowID)
	d := geometry.Decoration{
		Decorated: !extents.ClientSide && extents.Top > 0,
		Flags:     geometry.FlagAll,
		OffsetX:   extents.Left,
		OffsetY:   extents.Top,
	}
	if mask, ok := b.conn.Decorations(windowID); ok {
		d.Flags = geometry.Flag(mask)
	}
	return d
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func wrapX(op string, windowID WindowID, err error) error {
	if errors.Is(err, x11.ErrBadWindow) {
		err = fmt.Errorf("%w: %v", ErrWindowGone, err)
	}
	return Wrap(op, windowID, err)
}

func displayFromMonitor(m x11.Monitor) Display {
	bounds := Rect{
		X:      m.X,
		Y:      m.Y,
		Width:  m.Width,
		Height: m.Height,
	}
	usable := Rect{
		X:      m.X + m.StrutLeft,
		Y:      m.Y + m.StrutTop,
		Width:  max(1, m.Width-m.StrutLeft-m.StrutRight),
		Height: max(1, m.Height-m.StrutTop-m.StrutBottom),
	}
	return Display{
		ID:      m.ID,
		Name:    m.Name,
		Primary: m.Primary,
		Bounds:  bounds,
		Usable:  usable,
	}
}
