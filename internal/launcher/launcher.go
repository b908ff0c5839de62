// Package launcher starts applications for the edit and bang commands and
// completes their names from desktop entries and PATH.
package launcher

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
)

// Application is a launchable desktop entry.
type Application struct {
	Name string
	Exec string
	File string
}

// Launcher resolves names against desktop entries scanned from the XDG
// application directories. Call Scan to (re)load them.
type Launcher struct {
	logger zerolog.Logger
	dirs   []string
	shell  string

	mu   sync.RWMutex
	apps []Application
}

// New returns a launcher over the standard application directories.
func New(logger zerolog.Logger) *Launcher {
	return NewWithDirs(logger, ApplicationDirs())
}

// NewWithDirs returns a launcher that scans dirs, earlier dirs taking
// precedence for duplicate entries.
func NewWithDirs(logger zerolog.Logger, dirs []string) *Launcher {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Launcher{logger: logger, dirs: dirs, shell: shell}
}

// ApplicationDirs returns $XDG_DATA_HOME/applications followed by the
// applications dir of each $XDG_DATA_DIRS entry.
func ApplicationDirs() []string {
	var dirs []string
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range filepath.SplitList(dataDirs) {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
	}
	return dirs
}

// Scan reloads desktop entries. Unreadable files are skipped.
func (l *Launcher) Scan() error {
	seen := make(map[string]bool)
	var apps []Application
	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				l.logger.Debug().Err(err).Str("dir", dir).Msg("skipping application dir")
			}
			continue
		}
		for _, ent := range entries {
			if ent.IsDir() || filepath.Ext(ent.Name()) != ".desktop" || seen[ent.Name()] {
				continue
			}
			seen[ent.Name()] = true

			path := filepath.Join(dir, ent.Name())
			f, err := os.Open(path)
			if err != nil {
				continue
			}
			app, ok := parseDesktopEntry(f)
			f.Close()
			if !ok {
				continue
			}
			app.File = path
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})

	l.mu.Lock()
	l.apps = apps
	l.mu.Unlock()

	l.logger.Debug().Int("applications", len(apps)).Msg("scanned desktop entries")
	return nil
}

// Applications returns application names starting with prefix, ignoring
// case.
func (l *Launcher) Applications(prefix string) []string {
	prefix = strings.ToLower(strings.TrimLeft(prefix, " \t"))

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []string
	for _, app := range l.apps {
		if strings.HasPrefix(strings.ToLower(app.Name), prefix) {
			out = append(out, app.Name)
		}
	}
	return out
}

// Executables returns executable names on PATH starting with prefix.
func (l *Launcher) Executables(prefix string) []string {
	prefix = strings.TrimLeft(prefix, " \t")
	if strings.ContainsAny(prefix, " \t/") {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, ent := range entries {
			name := ent.Name()
			if seen[name] || !strings.HasPrefix(name, prefix) {
				continue
			}
			info, err := ent.Info()
			if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Launch starts the application called name, falling back to an
// executable of that name on PATH.
func (l *Launcher) Launch(name string) error {
	name = strings.TrimSpace(name)

	l.mu.RLock()
	var app *Application
	for i := range l.apps {
		if strings.EqualFold(l.apps[i].Name, name) {
			app = &l.apps[i]
			break
		}
	}
	l.mu.RUnlock()

	if app != nil {
		argv := execArgs(app.Exec)
		if len(argv) == 0 {
			return fmt.Errorf("application %q has an empty Exec line", app.Name)
		}
		return l.start(app.Name, argv)
	}

	if path, err := exec.LookPath(name); err == nil {
		return l.start(name, []string{path})
	}
	return fmt.Errorf("no application named %q", name)
}

// Shell runs cmdline through the user's shell.
func (l *Launcher) Shell(cmdline string) error {
	return l.start(cmdline, []string{l.shell, "-c", cmdline})
}

// start runs argv detached from the daemon's session and reaps it in the
// background.
func (l *Launcher) start(label string, argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if home, err := os.UserHomeDir(); err == nil {
		cmd.Dir = home
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %q: %w", label, err)
	}
	l.logger.Info().Str("command", label).Int("pid", cmd.Process.Pid).Msg("launched")
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug().Err(err).Str("command", label).Msg("launched process exited")
		}
	}()
	return nil
}

// parseDesktopEntry reads the [Desktop Entry] group. Hidden, NoDisplay and
// non-Application entries are rejected.
func parseDesktopEntry(r io.Reader) (Application, bool) {
	var app Application
	inEntry := false
	hidden := false
	typ := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Name":
			app.Name = value
		case "Exec":
			app.Exec = value
		case "Type":
			typ = value
		case "NoDisplay", "Hidden":
			if value == "true" {
				hidden = true
			}
		}
	}
	if hidden || app.Name == "" || app.Exec == "" {
		return Application{}, false
	}
	if typ != "" && typ != "Application" {
		return Application{}, false
	}
	return app, true
}

// execArgs splits an Exec value into argv, honoring double quotes and
// dropping field codes such as %U.
func execArgs(execLine string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasArg  bool
	)
	flush := func() {
		if hasArg {
			args = append(args, cur.String())
		}
		cur.Reset()
		hasArg = false
	}

	runes := []rune(execLine)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			inQuote = !inQuote
			hasArg = true
		case r == '\\' && inQuote && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
		case (r == ' ' || r == '\t') && !inQuote:
			flush()
		case r == '%' && i+1 < len(runes):
			i++
			if runes[i] == '%' {
				cur.WriteRune('%')
				hasArg = true
			}
		default:
			cur.WriteRune(r)
			hasArg = true
		}
	}
	flush()
	return args
}
