package platform

import (
	"errors"
	"fmt"

	"github.com/1broseidon/tilevim/internal/geometry"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = geometry.Rect

// Display describes a physical display and its usable work area.
type Display struct {
	ID      int
	Name    string
	Primary bool
	Bounds  Rect
	Usable  Rect
}

// Strut returns the reserved insets (left, top, right, bottom) between the
// display bounds and its usable area.
func (d Display) Strut() [4]int {
	return [4]int{
		d.Usable.X - d.Bounds.X,
		d.Usable.Y - d.Bounds.Y,
		(d.Bounds.X + d.Bounds.Width) - (d.Usable.X + d.Usable.Width),
		(d.Bounds.Y + d.Bounds.Height) - (d.Usable.Y + d.Usable.Height),
	}
}

// StickyWorkspace marks a window visible on every workspace.
const StickyWorkspace = -1

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID          WindowID
	PID         int
	AppID       string
	Title       string
	Bounds      Rect
	Workspace   int
	Stacking    int
	Minimized   bool
	Maximized   bool
	SkipTaskbar bool
	Decoration  geometry.Decoration
}

// OnWorkspace reports whether the window is shown on the given workspace.
func (w Window) OnWorkspace(ws int) bool {
	return w.Workspace == StickyWorkspace || w.Workspace == ws
}

// Backend abstracts window-system operations across platforms.
//
// Windows returns managed windows in stacking order, bottom-most first.
// Timestamps are the event times of the key press or command that caused
// the request; 0 means "current time".
type Backend interface {
	Displays() ([]Display, error)
	Windows() ([]Window, error)
	ActiveWindow() (WindowID, error)
	CurrentWorkspace() (int, error)
	WorkspaceCount() (int, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Unmaximize(windowID WindowID) error
	SetDecoration(windowID WindowID, flags geometry.Flag) error
	Minimize(windowID WindowID, timestamp uint32) error
	Maximize(windowID WindowID, timestamp uint32) error
	Close(windowID WindowID, timestamp uint32) error
	Activate(windowID WindowID, timestamp uint32) error
}

// ErrWindowGone is returned when a window disappeared before an operation
// reached it.
var ErrWindowGone = errors.New("window no longer exists")

// EnvironmentError reports a failed window-system request.
type EnvironmentError struct {
	Op     string
	Window WindowID
	Err    error
}

func (e *EnvironmentError) Error() string {
	if e.Window == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s 0x%x: %v", e.Op, uint32(e.Window), e.Err)
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// Wrap annotates err with the operation and window. It returns nil for a nil
// error.
func Wrap(op string, windowID WindowID, err error) error {
	if err == nil {
		return nil
	}
	var envErr *EnvironmentError
	if errors.As(err, &envErr) {
		return err
	}
	return &EnvironmentError{Op: op, Window: windowID, Err: err}
}
