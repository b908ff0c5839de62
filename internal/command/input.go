package command

import (
	"regexp"
	"strings"
)

var nameRe = regexp.MustCompile(`^(\s*)(\w+|!)`)

// Input is a parsed request, typed on the command line or produced by a key
// binding.
type Input struct {
	// Text is the raw command line; empty for key-triggered commands.
	Text string
	// Time is the event timestamp passed to the window system.
	Time uint32
	// Key is the chord that triggered the command, if any.
	Key string
	// Parameters are the bound arguments of a key binding.
	Parameters []string

	// Leading is the whitespace before the command name.
	Leading string
	// Name is the command token: word characters or a single "!".
	Name string
	// Spacer is the whitespace between the name and the parameter.
	Spacer string
	// Parameter is the rest of the line after the spacer.
	Parameter string
}

// Parse splits raw text into its command-line regions. Text without a
// command token yields an Input whose Leading holds the whole text.
func Parse(text string) *Input {
	in := &Input{Text: text}
	loc := nameRe.FindStringSubmatchIndex(text)
	if loc == nil {
		in.Leading = leadingSpace(text)
		in.Parameter = text[len(in.Leading):]
		return in
	}
	in.Leading = text[loc[2]:loc[3]]
	in.Name = text[loc[4]:loc[5]]

	rest := text[loc[1]:]
	in.Spacer = leadingSpace(rest)
	in.Parameter = rest[len(in.Spacer):]
	return in
}

// Arg returns the i-th bound parameter, or "".
func (in *Input) Arg(i int) string {
	if i < len(in.Parameters) {
		return in.Parameters[i]
	}
	return ""
}

// Bang reports whether the command token is "!".
func (in *Input) Bang() bool {
	return in.Name == "!"
}

// CompletingName reports whether completion applies to the command name
// rather than to its parameter.
func (in *Input) CompletingName() bool {
	return !in.Bang() && in.Spacer == "" && in.Parameter == ""
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
