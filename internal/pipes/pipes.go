// Package pipes streams committed layout state into named pipes that
// status bars read.
package pipes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/1broseidon/tilevim/internal/runtimepath"
	"github.com/1broseidon/tilevim/internal/service"
)

// property is one pipe and the snapshot value written to it.
type property struct {
	name  string
	value func(service.Snapshot) string
}

var properties = []property{
	{"primary-workspace", func(s service.Snapshot) string { return strconv.Itoa(s.Primary.Workspace) }},
	{"primary-layout", func(s service.Snapshot) string { return s.Primary.Function }},
	{"primary-nmaster", func(s service.Snapshot) string { return strconv.Itoa(s.Primary.NMaster) }},
	{"secondary-workspace", secondary(func(m service.MonitorState) string { return strconv.Itoa(m.Workspace) })},
	{"secondary-layout", secondary(func(m service.MonitorState) string { return m.Function })},
	{"secondary-nmaster", secondary(func(m service.MonitorState) string { return strconv.Itoa(m.NMaster) })},
}

// secondary yields an empty value on single-monitor setups.
func secondary(get func(service.MonitorState) string) func(service.Snapshot) string {
	return func(s service.Snapshot) string {
		if s.Secondary == nil {
			return ""
		}
		return get(*s.Secondary)
	}
}

// Writer owns the pipes. Publish may be called from any goroutine; only the
// latest snapshot is written.
type Writer struct {
	dir    string
	logger zerolog.Logger
	latest chan service.Snapshot
}

// NewWriter creates a writer for pipes in dir, or the runtime dir when dir
// is empty.
func NewWriter(dir string, logger zerolog.Logger) *Writer {
	return &Writer{
		dir:    dir,
		logger: logger.With().Str("component", "pipes").Logger(),
		latest: make(chan service.Snapshot, 1),
	}
}

// Paths returns the pipe paths.
func (w *Writer) Paths() ([]string, error) {
	paths := make([]string, 0, len(properties))
	for _, p := range properties {
		path, err := runtimepath.PipePath(w.dir, p.name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Create makes every missing pipe.
func (w *Writer) Create() error {
	paths, err := w.Paths()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			if info.Mode()&os.ModeNamedPipe != 0 {
				continue
			}
			return fmt.Errorf("%s exists and is not a named pipe", path)
		}
		if err := unix.Mkfifo(path, 0600); err != nil && !errors.Is(err, unix.EEXIST) {
			return fmt.Errorf("failed to create pipe %s: %w", path, err)
		}
	}
	return nil
}

// Remove deletes the pipes.
func (w *Writer) Remove() {
	paths, err := w.Paths()
	if err != nil {
		return
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			w.logger.Warn().Err(err).Str("path", path).Msg("failed to remove pipe")
		}
	}
}

// Publish hands a snapshot to the writer, replacing one not yet written.
func (w *Writer) Publish(snap service.Snapshot) {
	for {
		select {
		case w.latest <- snap:
			return
		default:
		}
		select {
		case <-w.latest:
		default:
		}
	}
}

// Run creates the pipes and writes published snapshots until ctx is
// cancelled, then removes the pipes.
func (w *Writer) Run(ctx context.Context) error {
	if err := w.Create(); err != nil {
		return err
	}
	defer w.Remove()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-w.latest:
			w.write(snap)
		}
	}
}

// write sends every value to its pipe. Pipes without a reader are
// skipped and retried with the next snapshot.
func (w *Writer) write(snap service.Snapshot) {
	for _, p := range properties {
		path, err := runtimepath.PipePath(w.dir, p.name)
		if err != nil {
			w.logger.Error().Err(err).Msg("pipe path unavailable")
			return
		}
		if err := writePipe(path, p.value(snap)); err != nil {
			if errors.Is(err, unix.ENXIO) {
				continue
			}
			w.logger.Warn().Err(err).Str("pipe", p.name).Msg("pipe write failed")
		}
	}
}

func writePipe(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value + "\n")
	return err
}
