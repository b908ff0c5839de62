// Package prompt is the interactive command line. Completion and history
// state live in the daemon; the prompt renders what the daemon returns.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/service"
)

// Daemon is the part of the IPC client the prompt talks to.
type Daemon interface {
	Submit(text string) ([]command.Message, error)
	Hint(text string) (service.HintState, error)
	Cycle(text string, dir int) (service.HintState, error)
	ClearHint() error
	History(dir int, text string) (string, error)
}

var (
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
)

// Run shows the prompt until a command closes it.
func Run(d Daemon) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("prompt requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	_, err := tea.NewProgram(newModel(d)).Run()
	return err
}

type model struct {
	daemon   Daemon
	input    textinput.Model
	hint     service.HintState
	messages []command.Message
	width    int
}

func newModel(d Daemon) model {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.CharLimit = 512
	ti.Focus()
	return model{
		daemon: d,
		input:  ti,
		hint:   service.HintState{Index: -1},
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.daemon.ClearHint()
			return m, tea.Quit
		case "tab":
			return m.cycle(1), nil
		case "shift+tab":
			return m.cycle(-1), nil
		case "up":
			return m.history(-1), nil
		case "down":
			return m.history(1), nil
		case "enter":
			return m.submit()
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m = m.refreshHint()
	}
	return m, cmd
}

// refreshHint restarts completion for the edited text. Candidates are only
// shown while auto hinting or after the first Tab.
func (m model) refreshHint() model {
	st, err := m.daemon.Hint(m.input.Value())
	if err != nil {
		m.messages = []command.Message{command.Errorf("%v", err)}
		return m
	}
	m.hint = st
	return m
}

func (m model) cycle(dir int) model {
	st, err := m.daemon.Cycle(m.input.Value(), dir)
	if err != nil {
		m.messages = []command.Message{command.Errorf("%v", err)}
		return m
	}
	m.hint = st
	if st.Index >= 0 {
		m.input.SetValue(st.Input)
		m.input.CursorEnd()
	}
	return m
}

func (m model) history(dir int) model {
	text, err := m.daemon.History(dir, m.input.Value())
	if err != nil {
		m.messages = []command.Message{command.Errorf("%v", err)}
		return m
	}
	m.hint = service.HintState{Index: -1}
	m.input.SetValue(text)
	m.input.CursorEnd()
	return m
}

// submit runs the line. The prompt closes unless the command printed
// something.
func (m model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		m.daemon.ClearHint()
		return m, tea.Quit
	}
	msgs, err := m.daemon.Submit(text)
	if err != nil {
		msgs = []command.Message{command.Errorf("%v", err)}
	}
	if len(msgs) == 0 || isQuit(text) {
		return m, tea.Quit
	}
	m.messages = msgs
	m.hint = service.HintState{Index: -1}
	m.input.Reset()
	return m, nil
}

func isQuit(text string) bool {
	switch strings.TrimSpace(text) {
	case "q", "quit":
		return true
	}
	return false
}

// View implements tea.Model.
func (m model) View() string {
	var lines []string
	for _, msg := range m.messages {
		style := infoStyle
		if msg.Level == command.LevelError {
			style = errorStyle
		}
		lines = append(lines, style.Render(msg.Text))
	}
	if hints := m.renderHints(); hints != "" {
		lines = append(lines, hints)
	}
	lines = append(lines, m.input.View())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderHints shows the candidates once cycling started, or when a single
// candidate would be taken by Enter.
func (m model) renderHints() string {
	if len(m.hint.Candidates) == 0 {
		return ""
	}
	if m.hint.Index < 0 && !m.hint.AutoHint {
		return ""
	}
	parts := make([]string, len(m.hint.Candidates))
	for i, c := range m.hint.Candidates {
		if i == m.hint.Index {
			parts[i] = selectedStyle.Render(c)
			continue
		}
		parts[i] = hintStyle.Render(c)
	}
	line := strings.Join(parts, " ")
	if m.width > 0 && lipgloss.Width(line) > m.width {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}
