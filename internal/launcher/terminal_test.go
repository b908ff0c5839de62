package launcher

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTerminalArgs(t *testing.T) {
	cmd := []string{"/usr/bin/tilevim", "prompt"}
	tests := []struct {
		terminal string
		want     []string
	}{
		{"kitty", []string{"kitty", "/usr/bin/tilevim", "prompt"}},
		{"wezterm", []string{"wezterm", "start", "--", "/usr/bin/tilevim", "prompt"}},
		{"/usr/bin/gnome-terminal", []string{"/usr/bin/gnome-terminal", "--", "/usr/bin/tilevim", "prompt"}},
		{"alacritty", []string{"alacritty", "-e", "/usr/bin/tilevim", "prompt"}},
		{"xterm", []string{"xterm", "-e", "/usr/bin/tilevim", "prompt"}},
	}
	for _, tt := range tests {
		t.Run(tt.terminal, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, TerminalArgs(tt.terminal, cmd)); diff != "" {
				t.Fatalf("argv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()
	prev := lookPath
	t.Cleanup(func() { lookPath = prev })
	lookPath = func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestDetectTerminalPrefersEnv(t *testing.T) {
	stubLookPath(t, "foot", "xterm")
	t.Setenv("TERMINAL", "foot")
	got, err := DetectTerminal()
	if err != nil {
		t.Fatalf("DetectTerminal failed: %v", err)
	}
	if got != "foot" {
		t.Fatalf("expected foot, got %q", got)
	}
}

func TestDetectTerminalFallsBack(t *testing.T) {
	stubLookPath(t, "alacritty", "xterm")
	t.Setenv("TERMINAL", "missing-term")
	got, err := DetectTerminal()
	if err != nil {
		t.Fatalf("DetectTerminal failed: %v", err)
	}
	if got != "alacritty" {
		t.Fatalf("expected alacritty, got %q", got)
	}
}

func TestDetectTerminalNone(t *testing.T) {
	stubLookPath(t)
	t.Setenv("TERMINAL", "")
	if _, err := DetectTerminal(); err == nil {
		t.Fatalf("expected error without any terminal")
	}
}
