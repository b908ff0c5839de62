// Package logging builds the zerolog logger shared by the daemon and the
// command line tools. Output goes to a size-rotated file under the state
// directory and, optionally, to a console writer on stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/tilevim/internal/runtimepath"
)

const (
	DefaultMaxSizeMB = 10
	DefaultMaxFiles  = 3
	defaultFileName  = "tilevim.log"
)

// Options configures New.
type Options struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
	Console   bool
}

// timestampHook adds the event timestamp.
type timestampHook struct{}

func (h timestampHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	e.Time("ts", time.Now())
}

// DefaultFile returns the log path used when Options.File is empty.
func DefaultFile() (string, error) {
	dir, err := runtimepath.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultFileName), nil
}

// ParseLevel converts a configuration string into a zerolog level.
// Unknown values fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger writing according to opts. The returned closer
// releases the log file and must be called on shutdown.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	zerolog.MessageFieldName = "msg"

	path := opts.File
	if path == "" {
		p, err := DefaultFile()
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		path = p
	}

	file, err := openRotating(path, opts.MaxSizeMB, opts.MaxFiles)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var out io.Writer = file
	if opts.Console {
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		out = zerolog.MultiLevelWriter(file, console)
	}

	logger := zerolog.New(out).Level(ParseLevel(opts.Level)).Hook(timestampHook{})
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// rotatingFile is an io.Writer that rolls the log over once it exceeds
// maxBytes, keeping maxFiles numbered backups (tilevim.log.1 is newest).
type rotatingFile struct {
	mu          sync.Mutex
	path        string
	file        *os.File
	maxBytes    int64
	maxFiles    int
	currentSize int64
}

func openRotating(path string, maxSizeMB, maxFiles int) (*rotatingFile, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &rotatingFile{
		path:        path,
		file:        f,
		maxBytes:    int64(maxSizeMB) * 1024 * 1024,
		maxFiles:    maxFiles,
		currentSize: stat.Size(),
	}, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.currentSize+int64(len(p)) > r.maxBytes && r.currentSize > 0 {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
		if r.file == nil {
			return 0, os.ErrClosed
		}
	}

	n, err := r.file.Write(p)
	r.currentSize += int64(n)
	return n, err
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *rotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	for i := r.maxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.path, i)
		if i == r.maxFiles {
			os.Remove(oldPath)
			continue
		}
		os.Rename(oldPath, fmt.Sprintf("%s.%d", r.path, i+1))
	}

	if err := os.Rename(r.path, r.path+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	r.file = f
	r.currentSize = 0
	return nil
}
