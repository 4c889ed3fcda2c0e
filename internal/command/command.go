// Package command defines the wire-agnostic shape a parsed RESP request
// takes before it reaches the dispatcher: a command name plus its
// argument vector, with typed accessors mirroring rsedis's ParsedCommand
// (spec.md §4.3 names parsing→routing→validation→execution→reply as the
// Command Dispatcher's pipeline; this type is what "parsing" produces).
package command

import (
	"errors"
	"strconv"
)

// ErrSyntax is returned by an accessor when an argument can't be
// interpreted as the requested type.
var ErrSyntax = errors.New("ERR syntax error")

// ErrNotInteger mirrors redis-server's "value is not an integer or out of
// range" error text.
var ErrNotInteger = errors.New("ERR value is not an integer or out of range")

// ErrNotFloat mirrors redis-server's "value is not a valid float" error text.
var ErrNotFloat = errors.New("ERR value is not a valid float")

// Command is one parsed request: Name is upper-cased for table lookup,
// Argv holds every argument including the name itself at index 0 (so
// arity checks against len(Argv) read the same as redis-server's argc).
type Command struct {
	Name string
	Argv [][]byte
}

// New builds a Command from raw argv, upper-casing Name for dispatch but
// leaving Argv bytes untouched (case matters for values, not verbs).
func New(argv [][]byte) Command {
	var name string
	if len(argv) > 0 {
		name = upperASCII(string(argv[0]))
	}
	return Command{Name: name, Argv: argv}
}

// Arity returns len(Argv), matching redis-server's argc.
func (c Command) Arity() int { return len(c.Argv) }

// Arg returns the raw bytes of Argv[i]. Callers must range-check first
// (dispatch validates arity against the command table before any handler
// runs).
func (c Command) Arg(i int) []byte { return c.Argv[i] }

// Str returns Argv[i] as a string (no copy beyond the []byte→string
// conversion).
func (c Command) Str(i int) string { return string(c.Argv[i]) }

// Int returns Argv[i] parsed as a base-10 int64.
func (c Command) Int(i int) (int64, error) {
	n, err := strconv.ParseInt(string(c.Argv[i]), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

// Float returns Argv[i] parsed as a float64, accepting the same "inf"/
// "+inf"/"-inf" spellings INCRBYFLOAT/ZADD scores do.
func (c Command) Float(i int) (float64, error) {
	s := string(c.Argv[i])
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotFloat
	}
	return n, nil
}

// upperASCII upper-cases s without pulling in strings.ToUpper's Unicode
// tables — command names are always ASCII.
func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
