package command

import "fmt"

// ErrorKind classifies dispatch failures.
type ErrorKind int

const (
	// ParseError is text without a command token.
	ParseError ErrorKind = iota + 1
	// NoSuchCommand is text no registered pattern matches.
	NoSuchCommand
	// UnsupportedMultiCommand is a pipe-chained command line.
	UnsupportedMultiCommand
	// HandlerError wraps a failure raised by a handler.
	HandlerError
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case NoSuchCommand:
		return "no such command"
	case UnsupportedMultiCommand:
		return "unsupported multi-command"
	case HandlerError:
		return "handler error"
	default:
		return "unknown"
	}
}

// Error is a classified dispatch failure. Its message is meant for users.
type Error struct {
	Kind  ErrorKind
	Input string
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ParseError, NoSuchCommand:
		return "Not an editor command: " + e.Input
	case UnsupportedMultiCommand:
		return "Multiple commands are not implemented: " + e.Input
	default:
		return fmt.Sprintf("ERROR (%v) executing: %s", e.Err, e.Input)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
