package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/tiling"
)

// ActionID names a key action.
type ActionID string

const (
	ActionZoom          ActionID = "zoom"
	ActionPushStack     ActionID = "pushstack"
	ActionPushMonitor   ActionID = "pushmonitor"
	ActionFocusStack    ActionID = "focusstack"
	ActionKillClient    ActionID = "killclient"
	ActionSetLayout     ActionID = "setlayout"
	ActionSetMFact      ActionID = "setmfact"
	ActionIncNMaster    ActionID = "incnmaster"
	ActionFocus         ActionID = "focus"
	ActionFocusPrevious ActionID = "focusprevious"
	ActionMove          ActionID = "move"
	ActionCentralize    ActionID = "centralize"
	ActionMaximize      ActionID = "maximize"
	ActionMinimize      ActionID = "minimize"
	ActionOnly          ActionID = "only"
	ActionPrompt        ActionID = "prompt"
	ActionCommand       ActionID = "command"
)

type actionFunc func(s *Service, in *command.Input) ([]command.Message, error)

// action is an entry of the action table. check validates bound arguments
// before the binding is accepted.
type action struct {
	run   actionFunc
	check func(args []string) error
}

var actions = map[ActionID]action{
	ActionZoom:          {run: (*Service).zoom, check: noArgs},
	ActionPushStack:     {run: (*Service).pushStack, check: intArg},
	ActionPushMonitor:   {run: (*Service).pushMonitor, check: intArg},
	ActionFocusStack:    {run: (*Service).focusStack, check: intArg},
	ActionKillClient:    {run: (*Service).killClient, check: noArgs},
	ActionSetLayout:     {run: (*Service).setLayoutAction, check: layoutArgs},
	ActionSetMFact:      {run: (*Service).setMFact, check: floatArg},
	ActionIncNMaster:    {run: (*Service).incNMaster, check: intArg},
	ActionFocus:         {run: (*Service).focusAction, check: directionArg},
	ActionFocusPrevious: {run: (*Service).focusPrevious, check: noArgs},
	ActionMove:          {run: (*Service).moveAction, check: directionArg},
	ActionCentralize:    {run: (*Service).centralize, check: noArgs},
	ActionMaximize:      {run: (*Service).maximize, check: noArgs},
	ActionMinimize:      {run: (*Service).minimize, check: noArgs},
	ActionOnly:          {run: (*Service).only, check: noArgs},
	ActionPrompt:        {run: (*Service).prompt, check: noArgs},
	ActionCommand:       {run: (*Service).commandAction, check: commandArgs},
}

// ParseAction resolves an action name.
func ParseAction(name string) (ActionID, error) {
	id := ActionID(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := actions[id]; !ok {
		return "", fmt.Errorf("unknown action %q", name)
	}
	return id, nil
}

// Actions returns every action name, sorted.
func Actions() []string {
	names := make([]string, 0, len(actions))
	for id := range actions {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return names
}

// Binding binds key chords to an action and its arguments.
type Binding struct {
	Keys   []string
	Action ActionID
	Args   []string
}

// Validate checks the action and its arguments.
func (b Binding) Validate() error {
	a, ok := actions[b.Action]
	if !ok {
		return fmt.Errorf("unknown action %q", b.Action)
	}
	if len(b.Keys) == 0 {
		return fmt.Errorf("action %q has no keys", b.Action)
	}
	if err := a.check(b.Args); err != nil {
		return fmt.Errorf("action %q: %w", b.Action, err)
	}
	return nil
}

func (s *Service) bindingDefinition(b Binding) (command.Definition, error) {
	if err := b.Validate(); err != nil {
		return command.Definition{}, err
	}
	run := actions[b.Action].run
	args := append([]string(nil), b.Args...)
	return command.Definition{
		Keys: b.Keys,
		Handler: func(in *command.Input) ([]command.Message, error) {
			in.Parameters = args
			return run(s, in)
		},
	}, nil
}

// DefaultBindings returns dwm-like key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		{Keys: []string{"Mod4-semicolon"}, Action: ActionPrompt},
		{Keys: []string{"Mod4-Return"}, Action: ActionZoom},
		{Keys: []string{"Mod4-j"}, Action: ActionFocusStack, Args: []string{"1"}},
		{Keys: []string{"Mod4-k"}, Action: ActionFocusStack, Args: []string{"-1"}},
		{Keys: []string{"Mod4-Shift-j"}, Action: ActionPushStack, Args: []string{"1"}},
		{Keys: []string{"Mod4-Shift-k"}, Action: ActionPushStack, Args: []string{"-1"}},
		{Keys: []string{"Mod4-h"}, Action: ActionSetMFact, Args: []string{"-0.05"}},
		{Keys: []string{"Mod4-l"}, Action: ActionSetMFact, Args: []string{"0.05"}},
		{Keys: []string{"Mod4-i"}, Action: ActionIncNMaster, Args: []string{"1"}},
		{Keys: []string{"Mod4-d"}, Action: ActionIncNMaster, Args: []string{"-1"}},
		{Keys: []string{"Mod4-Shift-c"}, Action: ActionKillClient},
		{Keys: []string{"Mod4-t"}, Action: ActionSetLayout, Args: []string{"T"}},
		{Keys: []string{"Mod4-m"}, Action: ActionSetLayout, Args: []string{"M"}},
		{Keys: []string{"Mod4-f"}, Action: ActionSetLayout, Args: []string{"none"}},
		{Keys: []string{"Mod4-space"}, Action: ActionSetLayout},
		{Keys: []string{"Mod4-comma"}, Action: ActionPushMonitor, Args: []string{"-1"}},
		{Keys: []string{"Mod4-period"}, Action: ActionPushMonitor, Args: []string{"1"}},
		{Keys: []string{"Mod4-Left"}, Action: ActionFocus, Args: []string{"left"}},
		{Keys: []string{"Mod4-Right"}, Action: ActionFocus, Args: []string{"right"}},
		{Keys: []string{"Mod4-Up"}, Action: ActionFocus, Args: []string{"up"}},
		{Keys: []string{"Mod4-Down"}, Action: ActionFocus, Args: []string{"down"}},
		{Keys: []string{"Mod4-Shift-Left"}, Action: ActionMove, Args: []string{"left"}},
		{Keys: []string{"Mod4-Shift-Right"}, Action: ActionMove, Args: []string{"right"}},
		{Keys: []string{"Mod4-Shift-Up"}, Action: ActionMove, Args: []string{"up"}},
		{Keys: []string{"Mod4-Shift-Down"}, Action: ActionMove, Args: []string{"down"}},
		{Keys: []string{"Mod4-p"}, Action: ActionFocusPrevious},
		{Keys: []string{"Mod4-o"}, Action: ActionOnly},
		{Keys: []string{"Mod4-c"}, Action: ActionCentralize},
		{Keys: []string{"Mod4-Shift-m"}, Action: ActionMaximize},
		{Keys: []string{"Mod4-n"}, Action: ActionMinimize},
	}
}

func noArgs(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("takes no arguments")
	}
	return nil
}

func intArg(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expects one integer argument")
	}
	_, err := strconv.Atoi(args[0])
	return err
}

func floatArg(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expects one number argument")
	}
	_, err := strconv.ParseFloat(args[0], 64)
	return err
}

func directionArg(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expects a direction")
	}
	_, err := parseDirection(args[0])
	return err
}

func layoutArgs(args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("expects a layout and an optional promote flag")
	}
	if len(args) > 0 {
		if _, err := tiling.ParseLayoutKey(args[0]); err != nil {
			return err
		}
	}
	if len(args) == 2 {
		if _, err := strconv.ParseBool(args[1]); err != nil {
			return err
		}
	}
	return nil
}

func commandArgs(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expects a command line")
	}
	return nil
}

func argInt(in *command.Input) int {
	n, _ := strconv.Atoi(in.Arg(0))
	return n
}

// mod returns the non-negative remainder of a divided by n.
func mod(a, n int) int {
	return ((a % n) + n) % n
}

// zoom swaps the active client with the master, or the master with the
// next client when the master is active.
func (s *Service) zoom(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	if !ok {
		return nil, nil
	}
	m := s.monitors.Active(&w)
	idx := m.Index(w.ID)
	if idx < 0 {
		return nil, nil
	}
	if len(m.Clients) >= 2 {
		if idx == 0 {
			m.Move(0, 1)
		} else {
			m.Move(idx, 0)
		}
		s.registry.SetActive(m.Clients[0])
	}
	return nil, s.apply(false, m)
}

func (s *Service) pushStack(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	if !ok {
		return nil, nil
	}
	m := s.monitors.Active(&w)
	idx := m.Index(w.ID)
	if idx < 0 {
		return nil, nil
	}
	to := mod(idx+argInt(in), len(m.Clients))
	if to == idx {
		return nil, nil
	}
	m.Move(idx, to)
	return nil, s.apply(false, m)
}

// pushMonitor moves the active client to the secondary monitor (direction
// 1) or back to the primary one.
func (s *Service) pushMonitor(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	if !ok {
		return nil, nil
	}
	origin := s.monitors.Active(&w)
	dest := s.monitors.Primary(origin.Workspace())
	if argInt(in) == 1 {
		dest = origin.Next()
	}
	if dest == nil || dest == origin || !origin.Remove(w.ID) {
		return nil, nil
	}
	dest.Clients = append(dest.Clients, w.ID)
	return nil, s.apply(false, origin, dest)
}

func (s *Service) focusStack(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	if !ok {
		return nil, nil
	}
	m := s.monitors.Active(&w)
	idx := m.Index(w.ID)
	if idx < 0 {
		return nil, nil
	}
	s.registry.ChangeActive(m.Clients[mod(idx+argInt(in), len(m.Clients))])
	return nil, nil
}

// killClient closes the active client and focuses the one taking its slot.
func (s *Service) killClient(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	if !ok {
		return nil, nil
	}
	s.stage(opClose, w.ID)

	m := s.monitors.Active(&w)
	idx := m.Index(w.ID)
	if idx < 0 || !m.Remove(w.ID) {
		return nil, nil
	}
	if len(m.Clients) > 0 {
		s.registry.SetActive(m.Clients[min(idx, len(m.Clients)-1)])
	}
	return nil, s.apply(false, m)
}

// setLayoutAction sets the layout given as first argument, or toggles back
// to the previous one. A true second argument promotes the active client
// to master first.
func (s *Service) setLayoutAction(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	m := s.monitors.Active(nil)
	if ok {
		m = s.monitors.Active(&w)
	}

	if promote, _ := strconv.ParseBool(in.Arg(1)); promote && ok {
		if idx := m.Index(w.ID); idx > 0 {
			m.Move(idx, 0)
		}
	}

	key := s.lastLayout
	if len(in.Parameters) > 0 {
		parsed, err := tiling.ParseLayoutKey(in.Arg(0))
		if err != nil {
			return nil, err
		}
		key = parsed
	}
	return nil, s.setLayout(m, key)
}

func (s *Service) setMFact(in *command.Input) ([]command.Message, error) {
	delta, err := strconv.ParseFloat(in.Arg(0), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid mfact delta %q", in.Arg(0))
	}
	m := s.activeMonitor()
	m.IncreaseMasterArea(delta)
	return nil, s.apply(false, m)
}

func (s *Service) incNMaster(in *command.Input) ([]command.Message, error) {
	m := s.activeMonitor()
	m.IncrementMaster(argInt(in))
	return nil, s.apply(false, m)
}

func (s *Service) focusAction(in *command.Input) ([]command.Message, error) {
	dir, err := parseDirection(in.Arg(0))
	if err != nil {
		return nil, err
	}
	s.focus(dir)
	return nil, nil
}

// focusPrevious focuses the buffer stacked right below the top-most one.
func (s *Service) focusPrevious(in *command.Input) ([]command.Message, error) {
	visible := s.registry.Visible(s.monitors.ActiveWorkspace())
	if len(visible) < 2 {
		return nil, nil
	}
	s.registry.SetActive(visible[1].ID)
	s.registry.MarkStaged()
	return nil, nil
}

func (s *Service) moveAction(in *command.Input) ([]command.Message, error) {
	dir, err := parseDirection(in.Arg(0))
	if err != nil {
		return nil, err
	}
	s.snap(dir)
	return nil, nil
}

func (s *Service) centralize(in *command.Input) ([]command.Message, error) {
	s.resizeActive(0.1, 0.1, 0.8, 0.8)
	return nil, nil
}

func (s *Service) maximize(in *command.Input) ([]command.Message, error) {
	if w, ok := s.activeWindow(); ok {
		s.stage(opMaximize, w.ID)
	}
	return nil, nil
}

func (s *Service) minimize(in *command.Input) ([]command.Message, error) {
	if w, ok := s.activeWindow(); ok {
		s.stage(opMinimize, w.ID)
	}
	return nil, nil
}

// only minimizes every other client of the active monitor.
func (s *Service) only(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	if !ok {
		return nil, nil
	}
	for _, id := range s.monitors.Active(&w).Clients {
		if id != w.ID {
			s.stage(opMinimize, id)
		}
	}
	return nil, nil
}

func (s *Service) prompt(in *command.Input) ([]command.Message, error) {
	if s.openPrompt == nil {
		return nil, fmt.Errorf("no prompt configured")
	}
	return nil, s.openPrompt()
}

// commandAction runs its arguments as a command line.
func (s *Service) commandAction(in *command.Input) ([]command.Message, error) {
	text := strings.Join(in.Parameters, " ")
	c, parsed, err := s.commands.Resolve(text)
	if err != nil {
		return nil, err
	}
	parsed.Time = in.Time
	parsed.Key = in.Key
	return c.Handler(parsed)
}
