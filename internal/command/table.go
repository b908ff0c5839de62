// Package command holds the command table: registration, parsing, pattern
// and key matching.
package command

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Level is the severity of a Message.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Message is user-facing output of a command.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Infof builds an info message.
func Infof(format string, args ...any) Message {
	return Message{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

// Errorf builds an error message.
func Errorf(format string, args ...any) Message {
	return Message{Level: LevelError, Text: fmt.Sprintf(format, args...)}
}

// Handler runs a command. Messages are shown to the user; a returned error
// is reported by the dispatcher.
type Handler func(in *Input) ([]Message, error)

// Completer returns parameter candidates for in.
type Completer func(in *Input) []string

// Definition describes a command to register. Pattern is matched against
// the whole command line; Keys are chords that trigger the command directly.
// A command needs a pattern, keys, or both.
type Definition struct {
	Name     string
	Pattern  string
	Keys     []string
	Handler  Handler
	Complete Completer
}

// Command is a registered, immutable Definition.
type Command struct {
	Name     string
	Pattern  *regexp.Regexp
	Keys     []string
	Handler  Handler
	Complete Completer
}

// Table indexes commands by registration order, name and key.
type Table struct {
	list   []*Command
	byName map[string]*Command
	byKey  map[string]*Command
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		byName: make(map[string]*Command),
		byKey:  make(map[string]*Command),
	}
}

// Register appends commands in order. Earlier registrations win both
// pattern matches and name lookups, so specific patterns go first.
func (t *Table) Register(defs ...Definition) error {
	for _, d := range defs {
		if d.Handler == nil {
			return fmt.Errorf("command %q has no handler", d.Name)
		}
		if d.Pattern == "" && len(d.Keys) == 0 {
			return fmt.Errorf("command %q has neither pattern nor keys", d.Name)
		}

		c := &Command{
			Name:     d.Name,
			Keys:     append([]string(nil), d.Keys...),
			Handler:  d.Handler,
			Complete: d.Complete,
		}
		if d.Pattern != "" {
			re, err := regexp.Compile(d.Pattern)
			if err != nil {
				return fmt.Errorf("command %q: invalid pattern: %w", d.Name, err)
			}
			c.Pattern = re
		}

		if c.Name != "" {
			if _, ok := t.byName[c.Name]; !ok {
				t.byName[c.Name] = c
			}
		}
		for _, k := range c.Keys {
			if _, ok := t.byKey[k]; ok {
				return fmt.Errorf("key %q bound twice", k)
			}
			t.byKey[k] = c
		}
		t.list = append(t.list, c)
	}
	return nil
}

// Match returns the first command, in registration order, whose pattern
// matches text.
func (t *Table) Match(text string) *Command {
	for _, c := range t.list {
		if c.Pattern != nil && c.Pattern.MatchString(text) {
			return c
		}
	}
	return nil
}

// MatchKey returns the command bound to key.
func (t *Table) MatchKey(key string) *Command {
	return t.byKey[key]
}

// Lookup returns the first command registered under name.
func (t *Table) Lookup(name string) *Command {
	return t.byName[name]
}

// Keys returns every bound key, sorted.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.byKey))
	for k := range t.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Names returns every command name, sorted.
func (t *Table) Names() []string {
	return t.HintNames("")
}

// HintNames returns the sorted names starting with prefix, ignoring leading
// whitespace of prefix.
func (t *Table) HintNames(prefix string) []string {
	prefix = strings.TrimLeft(prefix, " \t")
	var names []string
	for name := range t.byName {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

var multipleRe = regexp.MustCompile(`.*[^\\]\|.*`)

// HasMultiple reports whether text chains commands with an unescaped pipe.
func HasMultiple(text string) bool {
	return multipleRe.MatchString(text)
}

// Resolve parses text and finds its command.
func (t *Table) Resolve(text string) (*Command, *Input, error) {
	if HasMultiple(text) {
		return nil, nil, &Error{Kind: UnsupportedMultiCommand, Input: text}
	}
	in := Parse(text)
	if in.Name == "" {
		return nil, in, &Error{Kind: ParseError, Input: text}
	}
	c := t.Match(text)
	if c == nil {
		return nil, in, &Error{Kind: NoSuchCommand, Input: text}
	}
	return c, in, nil
}
