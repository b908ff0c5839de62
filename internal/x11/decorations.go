package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/motif"
)

// Decorations reads the _MOTIF_WM_HINTS decoration mask. ok is false when the
// client does not advertise decoration hints.
func (c *Connection) Decorations(windowID xproto.Window) (mask uint, ok bool) {
	hints, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil || hints.Flags&motif.HintDecorations == 0 {
		return 0, false
	}
	return hints.Decoration, true
}

// SetDecorations replaces the decoration mask, keeping the other hints.
func (c *Connection) SetDecorations(windowID xproto.Window, mask uint) error {
	hints, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil {
		hints = &motif.Hints{}
	}
	hints.Flags |= motif.HintDecorations
	hints.Decoration = mask
	return classify(motif.WmHintsSet(c.XUtil, windowID, hints))
}
