package service

import (
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/tiling"
)

type opKind int

const (
	opPlace opKind = iota
	opUnmaximize
	opMinimize
	opMaximize
	opClose
	opDecorate
)

type op struct {
	kind   opKind
	window platform.WindowID
	rect   geometry.Rect
	flags  geometry.Flag
}

// pending collects the window-system requests of one command, in order.
// It implements monitor.Stage.
type pending struct {
	list []op
}

func newPending() *pending {
	return &pending{}
}

func (p *pending) Unmaximize(id platform.WindowID) {
	p.list = append(p.list, op{kind: opUnmaximize, window: id})
}

func (p *pending) Place(pl tiling.Placement) {
	p.list = append(p.list, op{kind: opPlace, window: pl.Window, rect: pl.Rect})
}

func (p *pending) add(kind opKind, id platform.WindowID) {
	p.list = append(p.list, op{kind: kind, window: id})
}

func (p *pending) decorate(id platform.WindowID, flags geometry.Flag) {
	p.list = append(p.list, op{kind: opDecorate, window: id, flags: flags})
}

func (p *pending) closes(id platform.WindowID) bool {
	for _, o := range p.list {
		if o.kind == opClose && o.window == id {
			return true
		}
	}
	return false
}

// stage queues a request for window id and marks the registry staged.
func (s *Service) stage(kind opKind, id platform.WindowID) {
	s.ops.add(kind, id)
	s.registry.MarkStaged()
}

// place unmaximizes id and queues a move to r.
func (s *Service) place(id platform.WindowID, r geometry.Rect) {
	s.ops.Unmaximize(id)
	s.ops.Place(tiling.Placement{Window: id, Rect: r})
	s.registry.MarkStaged()
}
