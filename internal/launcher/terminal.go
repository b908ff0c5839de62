package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// knownTerminals are tried in order when $TERMINAL is unset or missing.
var knownTerminals = []string{"kitty", "ghostty", "wezterm", "alacritty", "gnome-terminal", "konsole", "foot", "xterm"}

var lookPath = exec.LookPath

// DetectTerminal returns the terminal emulator used to show the prompt:
// $TERMINAL when it is on PATH, else the first known terminal found.
func DetectTerminal() (string, error) {
	if env := strings.TrimSpace(os.Getenv("TERMINAL")); env != "" {
		if _, err := lookPath(env); err == nil {
			return env, nil
		}
	}
	for _, exe := range knownTerminals {
		if _, err := lookPath(exe); err == nil {
			return exe, nil
		}
	}
	return "", fmt.Errorf("no terminal emulator found; set $TERMINAL")
}

// TerminalArgs returns the argv running command inside terminal.
func TerminalArgs(terminal string, command []string) []string {
	argv := []string{terminal}
	switch filepath.Base(terminal) {
	case "kitty":
	case "wezterm":
		argv = append(argv, "start", "--")
	case "gnome-terminal":
		argv = append(argv, "--")
	default:
		argv = append(argv, "-e")
	}
	return append(argv, command...)
}

// Terminal runs command in a new terminal window.
func (l *Launcher) Terminal(command ...string) error {
	terminal, err := DetectTerminal()
	if err != nil {
		return err
	}
	return l.start(strings.Join(command, " "), TerminalArgs(terminal, command))
}
