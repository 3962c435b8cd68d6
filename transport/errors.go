package transport

import "fmt"

// Error is returned for any open, bind, connect, accept, read, write or close failure.
type Error struct {
	Op   string
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	s := "transport: " + e.Op
	if e.Kind != "" {
		s += " " + string(e.Kind)
	}
	if e.Path != "" {
		s += fmt.Sprintf(" %q", e.Path)
	}
	return s + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
