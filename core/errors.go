package core

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the layer it originated from. Kinds stay
// attached to errors through every internal boundary; only the engine edge
// renders them away into display text.
type Kind string

const (
	// KindConnection covers an unreachable or never-ready store.
	KindConnection Kind = "connection"
	// KindCollection covers existence-check and creation failures as well as
	// use of a collection that is not open.
	KindCollection Kind = "collection"
	// KindDispatch covers unrecognized strategy selector pairs.
	KindDispatch Kind = "dispatch"
	// KindPersistence covers failed single-entry inserts. Batch partial
	// failure is not an error, only a flagged boolean.
	KindPersistence Kind = "persistence"
	// KindGeneration covers remote completion or generation yielding no
	// usable text.
	KindGeneration Kind = "generation"
	// KindUnknown is reported by KindOf for errors outside the taxonomy.
	KindUnknown Kind = "unknown"
)

// Error couples a failure kind with a message and an optional underlying
// cause. The kind is classification metadata for callers and tests; it is
// not printed, so fixed error strings ("collection not ready") render
// unchanged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind) + " error"
	}
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates an Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and contextual message to an existing cause.
// A nil cause yields the same result as NewError.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindUnknown when the chain carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Render flattens an error to the human-readable string handed to callers at
// the engine boundary. It is the single place where structured errors become
// display text.
func Render(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
