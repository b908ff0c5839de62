package service

import (
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/tiling"
)

// applyDecorationPolicy strips titles from tiled clients and gives them
// back to floating ones when decorations are removed; otherwise every buffer
// gets its original decorations back.
func (s *Service) applyDecorationPolicy() {
	if !s.settings.RemoveDecorations {
		s.restoreDecorations(s.registry.Buffers())
		return
	}
	var tiled, floating []platform.WindowID
	for _, ws := range s.monitors.Workspaces() {
		for _, m := range s.monitors.Primary(ws).Chain() {
			if m.Layout == tiling.None {
				floating = append(floating, m.Clients...)
			} else {
				tiled = append(tiled, m.Clients...)
			}
		}
	}
	s.removeDecorations(tiled)
	s.restoreDecorations(floating)
}

func (s *Service) removeDecorations(ids []platform.WindowID) {
	for _, id := range ids {
		if _, done := s.decorations[id]; done {
			continue
		}
		w, err := s.registry.Window(id)
		if err != nil {
			continue
		}
		original := w.Decoration.Flags
		if original == geometry.FlagNone {
			original = geometry.FlagAll
		}
		s.decorations[id] = original
		s.decorationsDirty = true
		s.ops.decorate(id, geometry.FlagBorder)
		s.registry.MarkStaged()
	}
}

func (s *Service) restoreDecorations(ids []platform.WindowID) {
	for _, id := range ids {
		original, ok := s.decorations[id]
		if !ok {
			continue
		}
		delete(s.decorations, id)
		s.decorationsDirty = true
		if !s.registry.Has(id) {
			continue
		}
		s.ops.decorate(id, original)
		s.registry.MarkStaged()
	}
}

// pruneDecorations forgets windows that no longer exist.
func (s *Service) pruneDecorations() {
	for id := range s.decorations {
		if !s.registry.Has(id) {
			delete(s.decorations, id)
			s.decorationsDirty = true
		}
	}
}
