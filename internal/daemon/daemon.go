// Package daemon runs the service on a single event queue and feeds it key
// chords, IPC requests, periodic refreshes and configuration reloads.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/config"
	"github.com/1broseidon/tilevim/internal/hotkeys"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/service"
)

// KeyBinder grabs global key chords.
type KeyBinder interface {
	Bind(chords []string, dispatch hotkeys.Dispatch) error
	Unbind()
}

// Options wires a Daemon. Config and Backend are required.
type Options struct {
	// ConfigPath is reloaded on request; empty means the standard location.
	ConfigPath string
	Config     *config.Config
	Backend    platform.Backend
	Store      service.Store
	Launcher   service.Launcher
	Keys       KeyBinder
	Logger     zerolog.Logger
	SelfPID    int
	QueueDepth int

	// Publish receives every committed snapshot on the event loop; it must
	// not block.
	Publish    func(service.Snapshot)
	OpenPrompt func() error
}

// Daemon owns the event loop and the service running on it.
type Daemon struct {
	loop   *Loop
	svc    *service.Service
	keys   KeyBinder
	logger zerolog.Logger

	configPath string
	cfg        *config.Config // event loop only
}

// New builds the service from the configuration.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("daemon: config is required")
	}
	settings, err := SettingsFromConfig(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("invalid key bindings: %w", err)
	}

	d := &Daemon{
		loop:       NewLoop(opts.QueueDepth),
		keys:       opts.Keys,
		logger:     opts.Logger,
		configPath: opts.ConfigPath,
		cfg:        opts.Config,
	}
	svc, err := service.New(service.Options{
		Backend:     opts.Backend,
		Store:       opts.Store,
		Launcher:    opts.Launcher,
		Logger:      opts.Logger,
		SelfPID:     opts.SelfPID,
		Settings:    settings,
		Publish:     opts.Publish,
		OpenPrompt:  opts.OpenPrompt,
		Reload:      d.reloadConfig,
		GapsChanged: d.saveGaps,
	})
	if err != nil {
		return nil, err
	}
	d.svc = svc
	return d, nil
}

// Run starts the service and processes the event queue until ctx is
// cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		d.loop.Run(ctx)
	}()

	var startErr error
	if err := d.loop.Do(ctx, func() {
		startErr = d.svc.Start()
		d.bindKeys()
	}); err != nil {
		<-loopDone
		return err
	}
	if startErr != nil {
		d.logger.Warn().Err(startErr).Msg("initial layout incomplete")
	}

	if interval := d.cfg.RefreshInterval; interval > 0 {
		refresher := NewRefresher(RefresherConfig{Interval: interval, Logger: d.logger}, func() error {
			return d.Refresh(ctx)
		})
		go refresher.Run(ctx)
	}

	d.logger.Info().Msg("event loop running")
	<-loopDone
	if d.keys != nil {
		d.keys.Unbind()
	}
	return nil
}

// Refresh re-reads the environment on the event queue.
func (d *Daemon) Refresh(ctx context.Context) error {
	var err error
	if qerr := d.loop.Do(ctx, func() { err = d.svc.Refresh() }); qerr != nil {
		return qerr
	}
	return err
}

// PressKey queues the command bound to chord. It never blocks, so it is
// safe to call from the X event loop.
func (d *Daemon) PressKey(chord string, timestamp uint32) {
	queued := d.loop.Post(func() {
		d.logMessages(chord, d.svc.DispatchKey(chord, timestamp))
	})
	if !queued {
		d.logger.Warn().Str("key", chord).Msg("event queue full, key press dropped")
	}
}

// Execute runs a command line.
func (d *Daemon) Execute(text string) []command.Message {
	var msgs []command.Message
	if err := d.do(func() { msgs = d.svc.Dispatch(text, 0) }); err != nil {
		return []command.Message{command.Errorf("%s: %v", text, err)}
	}
	return msgs
}

// Key runs the command bound to a key chord.
func (d *Daemon) Key(key string) []command.Message {
	var msgs []command.Message
	if err := d.do(func() { msgs = d.svc.DispatchKey(key, 0) }); err != nil {
		return []command.Message{command.Errorf("%s: %v", key, err)}
	}
	return msgs
}

// Submit runs a command line typed in the prompt and records it in history.
func (d *Daemon) Submit(text string) []command.Message {
	var msgs []command.Message
	if err := d.do(func() { msgs = d.svc.Submit(text, 0) }); err != nil {
		return []command.Message{command.Errorf("%s: %v", text, err)}
	}
	return msgs
}

// Hint starts completion of text.
func (d *Daemon) Hint(text string) service.HintState {
	st := service.HintState{Index: -1, Input: text}
	d.do(func() { st = d.svc.Hint(text) })
	return st
}

// Cycle moves the completion highlight.
func (d *Daemon) Cycle(text string, dir int) service.HintState {
	st := service.HintState{Index: -1, Input: text}
	d.do(func() { st = d.svc.Cycle(text, dir) })
	return st
}

// ClearHint drops completion state.
func (d *Daemon) ClearHint() {
	d.do(d.svc.ClearHint)
}

// History navigates the command history.
func (d *Daemon) History(dir int, text string) string {
	result := text
	d.do(func() { result = d.svc.NavigateHistory(dir, text) })
	return result
}

// Status returns the last committed snapshot.
func (d *Daemon) Status() service.Snapshot {
	return d.svc.Snapshot()
}

// Report returns the diagnostic report.
func (d *Daemon) Report() string {
	var text string
	if err := d.do(func() { text = d.svc.Report() }); err != nil {
		return err.Error()
	}
	return text
}

// Reload re-reads the configuration and re-applies layouts, like the
// reload command.
func (d *Daemon) Reload() error {
	var msgs []command.Message
	if err := d.do(func() { msgs = d.svc.Dispatch("reload", 0) }); err != nil {
		return err
	}
	var errs []error
	for _, m := range msgs {
		if m.Level == command.LevelError {
			errs = append(errs, errors.New(m.Text))
		}
	}
	return errors.Join(errs...)
}

func (d *Daemon) do(fn func()) error {
	return d.loop.Do(context.Background(), fn)
}

// reloadConfig runs on the event loop through the reload command.
func (d *Daemon) reloadConfig() error {
	res, err := config.LoadWithSources(d.configPath)
	if err != nil {
		return err
	}
	settings, err := SettingsFromConfig(res.Config)
	if err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}
	if err := d.svc.ApplySettings(settings); err != nil {
		return err
	}
	if res.Config.RefreshInterval != d.cfg.RefreshInterval || res.Config.Pipes != d.cfg.Pipes {
		d.logger.Info().Msg("refresh_interval and pipes changes take effect after restart")
	}
	d.cfg = res.Config
	d.bindKeys()
	d.logger.Info().Str("path", res.Path).Int("files", len(res.Files)).Msg("config reloaded")
	return nil
}

// saveGaps writes gaps changed by the gap command back to the config file.
func (d *Daemon) saveGaps(g monitor.Gaps) {
	cfg := *d.cfg
	cfg.InnerGap = g.Inner
	cfg.OuterGap = g.Outer
	if err := cfg.Save(d.configPath); err != nil {
		d.logger.Warn().Err(err).Msg("failed to save gaps")
		return
	}
	d.cfg = &cfg
	d.logger.Info().Int("inner", g.Inner).Int("outer", g.Outer).Msg("gaps saved")
}

func (d *Daemon) bindKeys() {
	if d.keys == nil {
		return
	}
	if err := d.keys.Bind(d.svc.Keys(), d.PressKey); err != nil {
		d.logger.Warn().Err(err).Msg("some key chords could not be bound")
	}
}

func (d *Daemon) logMessages(key string, msgs []command.Message) {
	for _, m := range msgs {
		if m.Level == command.LevelError {
			d.logger.Warn().Str("key", key).Msg(m.Text)
			continue
		}
		d.logger.Debug().Str("key", key).Msg(strings.TrimSpace(m.Text))
	}
}
