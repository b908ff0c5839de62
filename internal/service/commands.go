package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/geometry"
	"github.com/1broseidon/tilevim/internal/hint"
	"github.com/1broseidon/tilevim/internal/monitor"
	"github.com/1broseidon/tilevim/internal/platform"
	"github.com/1broseidon/tilevim/internal/tiling"
)

var numberRe = regexp.MustCompile(`\d+`)

// buildTable registers the command lines followed by the key bindings.
// Registration order is match priority.
func (s *Service) buildTable() error {
	table := command.NewTable()
	if err := table.Register(s.commandDefinitions()...); err != nil {
		return err
	}
	for _, b := range s.settings.Bindings {
		def, err := s.bindingDefinition(b)
		if err != nil {
			return err
		}
		if err := table.Register(def); err != nil {
			return err
		}
	}
	s.commands = table
	s.hints = hint.New(table)
	return nil
}

func (s *Service) commandDefinitions() []command.Definition {
	return []command.Definition{
		{Name: "edit", Pattern: `^\s*(edit|e)(\s+.*)?$`, Handler: s.edit, Complete: s.completeApplications},
		{Name: "!", Pattern: `^\s*!.*$`, Handler: s.bang, Complete: s.completeExecutables},
		{Name: "buffers", Pattern: `^\s*(buffers|ls)\s*$`, Handler: s.listBuffers},
		{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s*([0-9]+\s*)+$`, Handler: s.deleteIndexed},
		{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s*$`, Handler: s.deleteCurrent},
		{Name: "bdelete", Pattern: `^\s*(bdelete|bd)\s+\w+.*$`, Handler: s.deleteNamed, Complete: s.completeBuffers},
		{Name: "buffer", Pattern: `^\s*(buffer|b)\s*$`, Handler: s.listBuffers, Complete: s.completeBuffers},
		{Name: "buffer", Pattern: `^\s*(buffer|b)\s*[0-9]+\s*$`, Handler: s.openIndexed},
		{Name: "buffer", Pattern: `^\s*(buffer|b)\s+\w+.*$`, Handler: s.openNamed, Complete: s.completeBuffers},
		{Name: "centralize", Pattern: `^\s*(centralize|ce)\s*$`, Handler: s.centralize},
		{Name: "maximize", Pattern: `^\s*(maximize|ma)\s*$`, Handler: s.maximize},
		{Name: "minimize", Pattern: `^\s*(minimize|mi)\s*$`, Handler: s.minimize},
		{Name: "reload", Pattern: `^\s*(reload)\s*$`, Handler: s.reloadCommand},
		{Name: "decorate", Pattern: `^\s*(decorate)\s+\w+.*$`, Handler: s.decorate, Complete: completeDecorations},
		{Name: "decorate", Pattern: `^\s*(decorate)\s*$`, Handler: s.decorate, Complete: completeDecorations},
		{Name: "report", Pattern: `^\s*(report)\s*$`, Handler: s.report},
		{Name: "move", Pattern: `^\s*(move)\s+\w+.*$`, Handler: s.moveCommand, Complete: completeDirections},
		{Name: "gap", Pattern: `^\s*(gap)\s+\w+.*$`, Handler: s.gap, Complete: completeGap},
		{Name: "layout", Pattern: `^\s*(layout)(\s+.*)?$`, Handler: s.layoutCommand, Complete: completeLayouts},
		{Name: "quit", Pattern: `^\s*(quit|q)\s*$`, Handler: s.quit},
		{Name: "only", Pattern: `^\s*(only|on)\s*$`, Handler: s.only},
	}
}

func (s *Service) edit(in *command.Input) ([]command.Message, error) {
	name := strings.TrimSpace(in.Parameter)
	if name == "" {
		return []command.Message{command.Errorf("Missing application name")}, nil
	}
	if s.launcher == nil {
		return nil, fmt.Errorf("no launcher configured")
	}
	return nil, s.launcher.Launch(name)
}

func (s *Service) bang(in *command.Input) ([]command.Message, error) {
	cmdline := strings.TrimSpace(in.Parameter)
	if cmdline == "" {
		return nil, nil
	}
	if s.launcher == nil {
		return nil, fmt.Errorf("no launcher configured")
	}
	return nil, s.launcher.Shell(cmdline)
}

func (s *Service) completeApplications(in *command.Input) []string {
	if s.launcher == nil {
		return nil
	}
	return s.launcher.Applications(in.Parameter)
}

func (s *Service) completeExecutables(in *command.Input) []string {
	if s.launcher == nil {
		return nil
	}
	return s.launcher.Executables(in.Parameter)
}

func (s *Service) completeBuffers(in *command.Input) []string {
	return s.registry.CompleteNames(in.Parameter)
}

func (s *Service) listBuffers(in *command.Input) ([]command.Message, error) {
	active := s.registry.Active()
	var msgs []command.Message
	for i, w := range s.registry.BufferWindows() {
		marker := " "
		if w.ID == active {
			marker = "%"
		}
		msgs = append(msgs, command.Infof("[%d]%s %s", i+1, marker, w.Title))
	}
	return msgs, nil
}

// bufferAt resolves a 1-based buffer number.
func (s *Service) bufferAt(number string) (platform.WindowID, bool) {
	n, err := strconv.Atoi(number)
	buffers := s.registry.Buffers()
	if err != nil || n < 1 || n > len(buffers) {
		return 0, false
	}
	return buffers[n-1], true
}

func (s *Service) openIndexed(in *command.Input) ([]command.Message, error) {
	number := numberRe.FindString(in.Parameter)
	id, ok := s.bufferAt(number)
	if !ok {
		return []command.Message{command.Errorf("Buffer %s does not exist", number)}, nil
	}
	s.registry.SetActive(id)
	s.registry.MarkStaged()
	return nil, nil
}

func (s *Service) openNamed(in *command.Input) ([]command.Message, error) {
	id, ok := s.registry.FindByName(in.Parameter)
	if !ok {
		return []command.Message{command.Errorf("No matching buffer for %s", in.Parameter)}, nil
	}
	s.registry.SetActive(id)
	s.registry.MarkStaged()
	return nil, nil
}

func (s *Service) deleteCurrent(in *command.Input) ([]command.Message, error) {
	w, ok := s.activeWindow()
	if !ok {
		return []command.Message{command.Errorf("There is no active window")}, nil
	}
	s.stage(opClose, w.ID)
	return nil, nil
}

// deleteIndexed closes every numbered buffer, or none when any number is
// out of range.
func (s *Service) deleteIndexed(in *command.Input) ([]command.Message, error) {
	var ids []platform.WindowID
	for _, number := range numberRe.FindAllString(in.Parameter, -1) {
		id, ok := s.bufferAt(number)
		if !ok {
			return []command.Message{command.Errorf("No buffers were deleted")}, nil
		}
		ids = append(ids, id)
	}
	for _, id := range ids {
		s.stage(opClose, id)
	}
	return nil, nil
}

func (s *Service) deleteNamed(in *command.Input) ([]command.Message, error) {
	id, ok := s.registry.FindByName(in.Parameter)
	if !ok {
		return []command.Message{command.Errorf("No matching buffer for %s", in.Parameter)}, nil
	}
	s.stage(opClose, id)
	return nil, nil
}

func (s *Service) reloadCommand(in *command.Input) ([]command.Message, error) {
	if s.reload != nil {
		if err := s.reload(); err != nil {
			return nil, err
		}
	}
	chain := s.monitors.Primary(s.monitors.ActiveWorkspace()).Chain()
	if err := s.apply(false, chain...); err != nil {
		return nil, err
	}
	s.applyDecorationPolicy()
	return nil, nil
}

func (s *Service) quit(in *command.Input) ([]command.Message, error) {
	return nil, nil
}

// decorate sets decoration flags on the active window, or re-applies the
// decoration policy without a parameter.
func (s *Service) decorate(in *command.Input) ([]command.Message, error) {
	name := strings.TrimSpace(in.Parameter)
	if name == "" {
		s.applyDecorationPolicy()
		return nil, nil
	}
	flags, ok := geometry.FlagByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown decoration %q", name)
	}
	w, ok := s.activeWindow()
	if !ok {
		return []command.Message{command.Errorf("There is no active window")}, nil
	}
	s.ops.decorate(w.ID, flags)
	s.registry.MarkStaged()
	return nil, nil
}

func completeDecorations(in *command.Input) []string {
	return filterPrefix(geometry.FlagNames(), in.Parameter)
}

func (s *Service) moveCommand(in *command.Input) ([]command.Message, error) {
	dir, err := parseDirection(in.Parameter)
	if err != nil {
		return nil, err
	}
	s.snap(dir)
	return nil, nil
}

func completeDirections(in *command.Input) []string {
	return filterPrefix(directionNames, in.Parameter)
}

// gap handles "gap inner|outer <px>".
func (s *Service) gap(in *command.Input) ([]command.Message, error) {
	fields := strings.Fields(in.Parameter)
	if len(fields) != 2 {
		return nil, fmt.Errorf("usage: gap inner|outer <pixels>")
	}
	px, err := strconv.Atoi(fields[1])
	if err != nil || px < 0 {
		return nil, fmt.Errorf("invalid gap %q", fields[1])
	}

	gaps := s.monitors.Gaps()
	switch strings.ToLower(fields[0]) {
	case "inner":
		gaps.Inner = px
	case "outer":
		gaps.Outer = px
	default:
		return nil, fmt.Errorf("unknown gap %q", fields[0])
	}
	s.monitors.SetGaps(gaps)
	s.settings.Gaps = gaps
	if s.gapsChanged != nil {
		s.gapsChanged(gaps)
	}
	return nil, s.apply(false, s.monitors.Active(nil).Chain()...)
}

// completeGap offers the gap names containing the typed text, excluding an
// exact match.
func completeGap(in *command.Input) []string {
	typed := strings.ToLower(strings.TrimSpace(in.Parameter))
	var out []string
	for _, name := range []string{"inner", "outer"} {
		if typed != name && strings.Contains(name, typed) {
			out = append(out, name)
		}
	}
	return out
}

func (s *Service) layoutCommand(in *command.Input) ([]command.Message, error) {
	param := strings.TrimSpace(in.Parameter)
	if param == "" {
		m := s.activeMonitor()
		return []command.Message{command.Infof("%s", m.Layout.Name())}, nil
	}
	key, err := tiling.ParseLayoutKey(param)
	if err != nil {
		return nil, err
	}
	return nil, s.setLayout(s.activeMonitor(), key)
}

func completeLayouts(in *command.Input) []string {
	var names []string
	for _, k := range tiling.Keys() {
		names = append(names, k.Name())
	}
	return filterPrefix(names, in.Parameter)
}

// setLayout switches the layout of m, remembering the previous one for
// toggling back.
func (s *Service) setLayout(m *monitor.Monitor, key tiling.LayoutKey) error {
	if m.Layout != key {
		s.lastLayout = m.Layout
	}
	m.Layout = key
	if err := s.apply(true, m); err != nil {
		return err
	}
	s.applyDecorationPolicy()
	return nil
}

func filterPrefix(options []string, typed string) []string {
	typed = strings.ToLower(strings.TrimSpace(typed))
	var out []string
	for _, o := range options {
		if strings.HasPrefix(strings.ToLower(o), typed) {
			out = append(out, o)
		}
	}
	return out
}
