package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestNewWritesJSONWithTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tilevim.log")
	logger, closer, err := New(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug().Msg("hidden")
	logger.Info().Str("command", "ls").Msg("dispatched")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["msg"] != "dispatched" || entry["command"] != "ls" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if !strings.HasSuffix(lines[0], "}") || !strings.Contains(lines[0], `"ts":`) {
		t.Fatalf("expected ts field, got %s", lines[0])
	}
}

func TestRotatingFileRollsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tilevim.log")
	r, err := openRotating(path, 1, 2)
	if err != nil {
		t.Fatalf("openRotating: %v", err)
	}
	r.maxBytes = 10

	for _, chunk := range []string{"aaaaaaaa\n", "bbbbbbbb\n", "cccccccc\n", "dddddddd\n"} {
		if _, err := r.Write([]byte(chunk)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	r.Close()

	expect := map[string]string{
		path:        "dddddddd\n",
		path + ".1": "cccccccc\n",
		path + ".2": "bbbbbbbb\n",
	}
	for p, want := range expect {
		got, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if string(got) != want {
			t.Fatalf("%s: expected %q, got %q", p, want, got)
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("expected no third backup, got %v", err)
	}
}

func TestWriteAfterClose(t *testing.T) {
	r, err := openRotating(filepath.Join(t.TempDir(), "x.log"), 1, 1)
	if err != nil {
		t.Fatalf("openRotating: %v", err)
	}
	r.Close()
	if _, err := r.Write([]byte("late")); err == nil {
		t.Fatalf("expected error writing to closed log")
	}
}
