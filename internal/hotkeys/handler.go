// Package hotkeys grabs global key chords on the X root window and hands
// each press to a dispatch function.
package hotkeys

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"

	"github.com/1broseidon/tilevim/internal/platform"
)

// Dispatch receives a pressed chord, as it was bound, and the X event time.
// It runs on the X event loop goroutine and must not block.
type Dispatch func(chord string, timestamp uint32)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger zerolog.Logger

	mu    sync.Mutex
	bound []string
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. Backends without X11 access get
// a handler whose Bind reports an error.
func NewHandler(backend platform.Backend, logger zerolog.Logger) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:     xu,
		root:   root,
		logger: logger.With().Str("component", "hotkeys").Logger(),
	}
}

// Bind replaces every grabbed chord with chords. A chord that cannot be
// grabbed (unknown key, taken by another client) is skipped and reported;
// the others stay bound.
func (h *Handler) Bind(chords []string, dispatch Dispatch) error {
	if h.xu == nil {
		return fmt.Errorf("global key chords need an X11 backend")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)
	h.bound = h.bound[:0]

	var errs []error
	for _, chord := range chords {
		if err := h.register(chord, dispatch); err != nil {
			errs = append(errs, fmt.Errorf("bind %s: %w", chord, err))
			continue
		}
		h.bound = append(h.bound, chord)
	}
	h.logger.Info().Strs("keys", h.bound).Msg("key chords bound")
	return errors.Join(errs...)
}

// Bound returns the chords currently grabbed.
func (h *Handler) Bound() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bound...)
}

// Unbind releases every grabbed chord.
func (h *Handler) Unbind() {
	if h.xu == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	keybind.Detach(h.xu, h.root)
	h.bound = nil
}

func (h *Handler) register(chord string, dispatch Dispatch) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		dispatch(chord, uint32(ev.Time))
	}).Connect(h.xu, h.root, chord, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
