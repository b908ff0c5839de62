// Package workspace persists the monitor set and the decorations the
// decoration policy removed, so both survive a daemon restart.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/1broseidon/tilevim/internal/config"
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/platform"
)

const (
	monitorsFile    = "workspace.json"
	decorationsFile = "decorations.json"
)

// Store keeps state files in one directory. Reads accept JSON with
// comments and trailing commas so hand-edited files still load.
type Store struct {
	mu  sync.Mutex
	dir string
}

// DefaultDir returns the configuration directory, where state lives next
// to config.yaml.
func DefaultDir() (string, error) {
	return config.Dir()
}

// NewStore returns a store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// MonitorsPath returns the workspace state file.
func (s *Store) MonitorsPath() string {
	return filepath.Join(s.dir, monitorsFile)
}

// DecorationsPath returns the original-decorations file.
func (s *Store) DecorationsPath() string {
	return filepath.Join(s.dir, decorationsFile)
}

// LoadMonitors returns the persisted workspace blob as plain JSON, or nil
// when nothing was saved yet.
func (s *Store) LoadMonitors() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(monitorsFile)
}

// SaveMonitors writes blob.
func (s *Store) SaveMonitors(blob monitor.Blob) error {
	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workspace state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(monitorsFile, data)
}

// LoadDecorations returns the original decoration flags keyed by window.
// Entries that fail to parse are skipped and reported together with the
// ones that did.
func (s *Store) LoadDecorations() (map[platform.WindowID]geometry.Flag, error) {
	s.mu.Lock()
	data, err := s.read(decorationsFile)
	s.mu.Unlock()
	if err != nil || data == nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse decorations: %w", err)
	}

	out := make(map[platform.WindowID]geometry.Flag, len(raw))
	var errs []error
	for key, names := range raw {
		id, err := strconv.ParseUint(key, 0, 32)
		if err != nil || id == 0 {
			errs = append(errs, fmt.Errorf("decorations: invalid window %q", key))
			continue
		}
		flags, err := parseFlags(names)
		if err != nil {
			errs = append(errs, fmt.Errorf("decorations %s: %w", key, err))
			continue
		}
		out[platform.WindowID(id)] = flags
	}
	return out, errors.Join(errs...)
}

// SaveDecorations writes original. An empty map removes the file.
func (s *Store) SaveDecorations(original map[platform.WindowID]geometry.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(original) == 0 {
		err := os.Remove(filepath.Join(s.dir, decorationsFile))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove decorations: %w", err)
		}
		return nil
	}

	raw := make(map[string]string, len(original))
	for id, flags := range original {
		raw[fmt.Sprintf("0x%x", uint32(id))] = flags.String()
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode decorations: %w", err)
	}
	return s.write(decorationsFile, data)
}

func (s *Store) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return jsonc.ToJSON(data), nil
}

// write replaces name atomically via a temp file in the same directory.
func (s *Store) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// parseFlags reads the form produced by geometry.Flag.String, e.g.
// "BORDER|TITLE".
func parseFlags(s string) (geometry.Flag, error) {
	var out geometry.Flag
	for _, name := range strings.Split(s, "|") {
		f, ok := geometry.FlagByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown decoration %q", name)
		}
		out |= f
	}
	return out, nil
}
