// Package service is the application context: it owns the window registry,
// the monitor set, the command table, history and completion state, and runs
// every command through the read, handle, commit pipeline.
//
// A Service is not safe for concurrent use. Callers on other goroutines hand
// work to the goroutine that owns it; only Snapshot may be called from
// anywhere.
package service

import (
	"fmt"
	"sync/atomic"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/hint"
	"github.com/1broseidon/tilevim/internal/history"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/registry"
	"github.com/1broseidon/tilevim/internal/tiling"
	"github.com/rs/zerolog"
)

// Store persists the monitor set and the decorations removed by the
// decoration policy.
type Store interface {
	LoadMonitors() ([]byte, error)
	SaveMonitors(blob monitor.Blob) error
	LoadDecorations() (map[platform.WindowID]geometry.Flag, error)
	SaveDecorations(original map[platform.WindowID]geometry.Flag) error
}

// Launcher starts processes for the edit and bang commands.
type Launcher interface {
	Launch(name string) error
	Shell(cmdline string) error
	Applications(prefix string) []string
	Executables(prefix string) []string
}

// Settings are the user-tunable parts of the service.
type Settings struct {
	Gaps              monitor.Gaps
	Defaults          monitor.Defaults
	RemoveDecorations bool
	AutoHint          bool
	Bindings          []Binding
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Defaults: monitor.DefaultDefaults(),
		AutoHint: true,
		Bindings: DefaultBindings(),
	}
}

// Options wires a Service to its collaborators. Backend is required; the
// rest may be nil.
type Options struct {
	Backend  platform.Backend
	Store    Store
	Launcher Launcher
	Logger   zerolog.Logger
	SelfPID  int
	Settings Settings

	// Publish receives every committed snapshot.
	Publish func(Snapshot)
	// OpenPrompt shows the command line.
	OpenPrompt func() error
	// Reload re-reads configuration; it is expected to call ApplySettings.
	Reload func() error
	// GapsChanged is called after the gap command changed the gaps.
	GapsChanged func(monitor.Gaps)
}

// Service is the application context.
type Service struct {
	backend  platform.Backend
	store    Store
	launcher Launcher
	logger   zerolog.Logger

	publish     func(Snapshot)
	openPrompt  func() error
	reload      func() error
	gapsChanged func(monitor.Gaps)

	settings Settings
	registry *registry.Registry
	monitors *monitor.Set
	commands *command.Table
	history  *history.History
	hints    *hint.Engine

	ops        *pending
	dirty      bool
	lastLayout tiling.LayoutKey

	// decorations removed by the policy, by window
	decorations      map[platform.WindowID]geometry.Flag
	decorationsDirty bool

	snapshot atomic.Pointer[Snapshot]
}

// New creates a service. Invalid key bindings are reported as errors.
func New(opts Options) (*Service, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("service: backend is required")
	}
	if opts.Settings.Defaults == (monitor.Defaults{}) {
		opts.Settings.Defaults = monitor.DefaultDefaults()
	}
	s := &Service{
		backend:     opts.Backend,
		store:       opts.Store,
		launcher:    opts.Launcher,
		logger:      opts.Logger,
		publish:     opts.Publish,
		openPrompt:  opts.OpenPrompt,
		reload:      opts.Reload,
		gapsChanged: opts.GapsChanged,
		settings:    opts.Settings,
		registry:    registry.New(opts.SelfPID),
		monitors:    monitor.NewSet(opts.Settings.Defaults, opts.Settings.Gaps, opts.Logger),
		history:     history.New(),
		ops:         newPending(),
		decorations: make(map[platform.WindowID]geometry.Flag),
	}
	if err := s.buildTable(); err != nil {
		return nil, err
	}
	s.snapshot.Store(&Snapshot{})
	return s, nil
}

// ApplySettings replaces settings and rebuilds the command table. Existing
// monitors keep their layout state; gaps apply immediately.
func (s *Service) ApplySettings(settings Settings) error {
	previous := s.settings
	s.settings = settings
	if err := s.buildTable(); err != nil {
		s.settings = previous
		return err
	}
	s.monitors.SetDefaults(settings.Defaults)
	s.monitors.SetGaps(settings.Gaps)
	return nil
}

// Settings returns the active settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// Keys returns every bound key chord.
func (s *Service) Keys() []string {
	return s.commands.Keys()
}

// Start loads persisted state, reads the environment and lays out the
// active workspace.
func (s *Service) Start() error {
	s.load()
	return s.execute(&command.Input{Text: "start"}, func(*command.Input) ([]command.Message, error) {
		for _, m := range s.monitors.Primary(s.monitors.ActiveWorkspace()).Chain() {
			if err := s.apply(true, m); err != nil {
				return nil, err
			}
		}
		s.applyDecorationPolicy()
		return nil, nil
	}).err
}

// Refresh re-reads the environment and re-tiles the active workspace when
// its windows changed.
func (s *Service) Refresh() error {
	return s.execute(&command.Input{Text: "refresh"}, func(*command.Input) ([]command.Message, error) {
		return nil, nil
	}).err
}

func (s *Service) load() {
	if s.store == nil {
		return
	}
	data, err := s.store.LoadMonitors()
	if err != nil {
		s.logger.Warn().Err(err).Msg("unable to read workspace state, using defaults")
	} else if len(data) > 0 {
		if err := s.monitors.FromJSON(data); err != nil {
			s.logger.Warn().Err(err).Msg("malformed workspace state, using defaults where needed")
		}
	}

	original, err := s.store.LoadDecorations()
	if err != nil {
		s.logger.Warn().Err(err).Msg("unable to read decoration state")
		return
	}
	for id, flags := range original {
		s.decorations[id] = flags
	}
}

func (s *Service) activeWindow() (platform.Window, bool) {
	id := s.registry.Active()
	if id == 0 {
		return platform.Window{}, false
	}
	w, err := s.registry.Window(id)
	if err != nil {
		return platform.Window{}, false
	}
	return w, true
}

func (s *Service) activeMonitor() *monitor.Monitor {
	if w, ok := s.activeWindow(); ok {
		return s.monitors.Active(&w)
	}
	return s.monitors.Active(nil)
}

// apply stages the layouts of monitors.
func (s *Service) apply(unmaximize bool, monitors ...*monitor.Monitor) error {
	for _, m := range monitors {
		if m == nil {
			continue
		}
		if err := m.Apply(s.ops, unmaximize); err != nil {
			return err
		}
	}
	s.registry.MarkStaged()
	s.dirty = true
	return nil
}

func (s *Service) nameOf(id platform.WindowID) string {
	if w, err := s.registry.Window(id); err == nil {
		return w.Title
	}
	return ""
}
