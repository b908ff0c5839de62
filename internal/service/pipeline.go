package service

import (
	"errors"
	"fmt"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/registry"
)

type outcome struct {
	messages []command.Message
	err      error
}

// Dispatch runs a command line and returns the messages for the user. It is
// the only place command errors and panics are turned into messages.
func (s *Service) Dispatch(text string, timestamp uint32) []command.Message {
	return s.boundary(text, func() outcome {
		c, in, err := s.commands.Resolve(text)
		if err != nil {
			return outcome{err: err}
		}
		in.Time = timestamp
		return s.execute(in, c.Handler)
	})
}

// DispatchKey runs the command bound to a key chord.
func (s *Service) DispatchKey(key string, timestamp uint32) []command.Message {
	return s.boundary(key, func() outcome {
		c := s.commands.MatchKey(key)
		if c == nil {
			return outcome{err: &command.Error{Kind: command.NoSuchCommand, Input: key}}
		}
		return s.execute(&command.Input{Key: key, Time: timestamp}, c.Handler)
	})
}

func (s *Service) boundary(label string, run func() outcome) (msgs []command.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.rollback()
			s.logger.Error().Str("command", label).Interface("panic", r).Msg("command panicked")
			msgs = append(msgs, userError(label, fmt.Errorf("panic: %v", r)))
		}
	}()

	out := run()
	msgs = out.messages
	if out.err != nil {
		s.logger.Warn().Err(out.err).Str("command", label).Msg("command failed")
		msgs = append(msgs, userError(label, out.err))
	}
	return msgs
}

func userError(label string, err error) command.Message {
	var cmdErr *command.Error
	if !errors.As(err, &cmdErr) {
		cmdErr = &command.Error{Kind: command.HandlerError, Input: label, Err: err}
	}
	return command.Message{Level: command.LevelError, Text: cmdErr.Error()}
}

// execute is the command pipeline: read the environment, run the handler,
// then commit staged mutations or roll them back on failure. Model changes
// made by a failing handler are kept.
func (s *Service) execute(in *command.Input, h command.Handler) outcome {
	if err := s.read(); err != nil {
		s.rollback()
		return outcome{err: err}
	}

	msgs, err := h(in)
	if err != nil {
		s.rollback()
		if vanished(err) {
			s.logger.Debug().Err(err).Msg("command target vanished")
			return outcome{messages: msgs}
		}
		return outcome{messages: msgs, err: err}
	}

	err = s.commit(in.Time)
	s.post()
	return outcome{messages: msgs, err: err}
}

func (s *Service) read() error {
	if err := s.readWindows(); err != nil {
		return err
	}
	displays, err := s.backend.Displays()
	if err != nil {
		return platform.Wrap("list displays", 0, err)
	}
	current, err := s.backend.CurrentWorkspace()
	if err != nil {
		return platform.Wrap("current workspace", 0, err)
	}
	count, err := s.backend.WorkspaceCount()
	if err != nil {
		return platform.Wrap("workspace count", 0, err)
	}

	s.pruneDecorations()
	s.monitors.Read(displays, count, current)
	if s.monitors.SyncClients(s.registry) {
		return s.apply(false, s.monitors.Primary(current).Chain()...)
	}
	return nil
}

// readWindows refreshes only the window registry. Monitors and placements
// are left alone.
func (s *Service) readWindows() error {
	windows, err := s.backend.Windows()
	if err != nil {
		return platform.Wrap("list windows", 0, err)
	}
	active, err := s.backend.ActiveWindow()
	if err != nil {
		s.logger.Debug().Err(err).Msg("no active window")
		active = 0
	}
	s.registry.Read(windows, active)
	return nil
}

// commit realizes staged operations, then focuses the active window.
// Vanished windows are skipped; other failures are joined.
func (s *Service) commit(timestamp uint32) error {
	ops := s.ops
	s.ops = newPending()
	if !s.registry.Staged() {
		return nil
	}
	defer s.registry.ClearStaged()

	var errs []error
	for _, o := range ops.list {
		errs = s.collect(errs, s.realize(o, timestamp))
	}
	if id := s.registry.Active(); id != 0 && s.registry.Has(id) && !ops.closes(id) {
		errs = s.collect(errs, platform.Wrap("activate", id, s.backend.Activate(id, timestamp)))
	}
	return errors.Join(errs...)
}

func (s *Service) realize(o op, timestamp uint32) error {
	w, err := s.registry.Window(o.window)
	if err != nil {
		return err
	}
	switch o.kind {
	case opPlace:
		bounds := o.rect.Add(geometry.Compensate(w.Decoration))
		return platform.Wrap("move", o.window, s.backend.MoveResize(o.window, bounds))
	case opUnmaximize:
		if !w.Maximized {
			return nil
		}
		return platform.Wrap("unmaximize", o.window, s.backend.Unmaximize(o.window))
	case opMinimize:
		return platform.Wrap("minimize", o.window, s.backend.Minimize(o.window, timestamp))
	case opMaximize:
		return platform.Wrap("maximize", o.window, s.backend.Maximize(o.window, timestamp))
	case opClose:
		return platform.Wrap("close", o.window, s.backend.Close(o.window, timestamp))
	case opDecorate:
		return platform.Wrap("decorate", o.window, s.backend.SetDecoration(o.window, o.flags))
	}
	return fmt.Errorf("unknown operation %d", o.kind)
}

func (s *Service) collect(errs []error, err error) []error {
	if err == nil {
		return errs
	}
	if vanished(err) {
		s.logger.Debug().Err(err).Msg("skipping vanished window")
		return errs
	}
	s.logger.Error().Err(err).Msg("commit failed")
	return append(errs, err)
}

func vanished(err error) bool {
	return errors.Is(err, platform.ErrWindowGone) || errors.Is(err, registry.ErrStaleReference)
}

func (s *Service) rollback() {
	s.ops = newPending()
	s.registry.ClearStaged()
}

// post persists changed state and publishes the committed snapshot.
func (s *Service) post() {
	if s.dirty {
		s.persistMonitors()
		s.dirty = false
	}
	if s.decorationsDirty {
		s.persistDecorations()
		s.decorationsDirty = false
	}
	s.publishSnapshot()
}

func (s *Service) persistMonitors() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveMonitors(s.monitors.ToJSON(s.nameOf)); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist workspace state")
	}
}

func (s *Service) persistDecorations() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveDecorations(s.decorations); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist decorations")
	}
}
