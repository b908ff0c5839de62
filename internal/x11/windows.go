package x11

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowState summarizes the _NET_WM_STATE atoms tilevim cares about.
type WindowState struct {
	Hidden      bool
	MaximizedH  bool
	MaximizedV  bool
	Fullscreen  bool
	SkipTaskbar bool
}

// Maximized reports whether the window is maximized on either axis.
func (s WindowState) Maximized() bool {
	return s.MaximizedH || s.MaximizedV
}

// GetWindowState reads _NET_WM_STATE. A missing property yields the zero state.
func (c *Connection) GetWindowState(windowID xproto.Window) WindowState {
	var st WindowState
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return st
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_HIDDEN":
			st.Hidden = true
		case "_NET_WM_STATE_MAXIMIZED_HORZ":
			st.MaximizedH = true
		case "_NET_WM_STATE_MAXIMIZED_VERT":
			st.MaximizedV = true
		case "_NET_WM_STATE_FULLSCREEN":
			st.Fullscreen = true
		case "_NET_WM_STATE_SKIP_TASKBAR":
			st.SkipTaskbar = true
		}
	}
	return st
}

// GetStackingOrder returns managed windows bottom-most first.
func (c *Connection) GetStackingOrder() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err == nil {
		return clients, nil
	}
	// Some window managers only publish the mapping-order list.
	clients, err = ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// GetGeometry returns the root-relative geometry of the client window.
func (c *Connection) GetGeometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, classify(err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, classify(err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// FrameExtents is the space between a window's outer frame and its client
// area. Client-side shadows (_GTK_FRAME_EXTENTS) are reported as negative
// extents.
type FrameExtents struct {
	Left, Right, Top, Bottom int
	ClientSide               bool
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) FrameExtents {
	if raw, err := xprop.PropValNums(xprop.GetProperty(c.XUtil, windowID, "_GTK_FRAME_EXTENTS")); err == nil && len(raw) == 4 {
		return FrameExtents{
			Left:       -int(raw[0]),
			Right:      -int(raw[1]),
			Top:        -int(raw[2]),
			Bottom:     -int(raw[3]),
			ClientSide: true,
		}
	}

	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return FrameExtents{}
	}
	return FrameExtents{Left: extents.Left, Right: extents.Right, Top: extents.Top, Bottom: extents.Bottom}
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	return len(types) == 0
}

// GetWindowPID returns _NET_WM_PID, or 0 when unset.
func (c *Connection) GetWindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// GetWindowClass returns the WM_CLASS class name.
func (c *Connection) GetWindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// GetWindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) GetWindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if _, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply(); err != nil {
		return classify(err)
	}

	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// UnmaximizeWindow removes both maximized states from a window.
func (c *Connection) UnmaximizeWindow(windowID xproto.Window) error {
	st := c.GetWindowState(windowID)
	if st.MaximizedH {
		if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, "_NET_WM_STATE_MAXIMIZED_HORZ"); err != nil {
			return err
		}
	}
	if st.MaximizedV {
		if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, "_NET_WM_STATE_MAXIMIZED_VERT"); err != nil {
			return err
		}
	}
	return nil
}

// MaximizeWindow adds both maximized states to a window.
func (c *Connection) MaximizeWindow(windowID xproto.Window) error {
	return ewmh.WmStateReqExtra(c.XUtil, windowID, ewmh.StateAdd,
		"_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT", 2)
}

// MinimizeWindow iconifies a window via WM_CHANGE_STATE.
func (c *Connection) MinimizeWindow(windowID xproto.Window) error {
	const iconicState = 3
	return c.sendRootMessage("WM_CHANGE_STATE", windowID, iconicState)
}

// CloseWindow requests graceful window close via WM_DELETE_WINDOW.
func (c *Connection) CloseWindow(windowID xproto.Window, timestamp uint32) error {
	deleteAtom, err := c.atom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), timestamp, 0, 0, 0}),
	}

	err = xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
	return classify(err)
}

// ActivateWindow activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) ActivateWindow(windowID xproto.Window, timestamp uint32) error {
	const sourceIndication = 2 // pager/direct action
	return classify(c.sendRootMessage("_NET_ACTIVE_WINDOW", windowID, sourceIndication, timestamp))
}

// ErrBadWindow is returned when the X server no longer knows a window.
var ErrBadWindow = errors.New("bad window")

func classify(err error) error {
	if err == nil {
		return nil
	}
	var badWindow xproto.WindowError
	if errors.As(err, &badWindow) {
		return fmt.Errorf("%w: %v", ErrBadWindow, err)
	}
	var badDrawable xproto.DrawableError
	if errors.As(err, &badDrawable) {
		return fmt.Errorf("%w: %v", ErrBadWindow, err)
	}
	return err
}
