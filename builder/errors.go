package builder

import (
	"errors"
	"fmt"
)

// Kind classifies the failure modes a builder operation can report, per the
// error taxonomy: Invalid, OutOfMemory, NotImplemented, and TypeError (a
// flavour of Invalid).
type Kind int

const (
	// Invalid covers capacity shrink requests, negative capacities,
	// offset-overflow, fixed-binary size mismatches, and similar
	// caller-detectable misuse.
	Invalid Kind = iota
	// OutOfMemory names allocator failures. No operation in this package
	// returns it: Reserve has no error result, and Reserve, Resize and the
	// Append variants do not catch failures raised by the allocator.
	OutOfMemory
	// NotImplemented covers MakeBuilder calls for an unrecognised type tag.
	NotImplemented
	// TypeError is a flavour of Invalid. MakeBuilder returns it when a type
	// tag's ID does not match its concrete Go type; the package has no
	// AppendArray operation.
	TypeError
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case OutOfMemory:
		return "out of memory"
	case NotImplemented:
		return "not implemented"
	case TypeError:
		return "type error"
	default:
		return "unknown"
	}
}

// Error is the rich kind+message error value every mutating builder
// operation returns on failure.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("builder: %s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("builder: %s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Errorf constructs an *Error of the given kind. A trailing %w verb, if
// present, is captured for errors.Unwrap/errors.Is/errors.As.
func Errorf(kind Kind, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, msg: msg, err: errors.Unwrap(fmt.Errorf(format, args...))}
}

// Is reports whether err is a *Error of the given kind, e.g.
// builder.Is(err, builder.OutOfMemory).
func Is(err error, kind Kind) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
