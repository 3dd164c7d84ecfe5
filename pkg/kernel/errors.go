package kernel

import (
	"errors"
	"fmt"
)

// Error sentinels for the language-level error kinds named in spec.md §7.
// These travel as Go errors inside the implementation and are wrapped into
// error-sentinel Values (see replyError in behaviors.go) before being
// replied to a customer; they are never returned across the public API
// except from Boot/Run setup failures.
var (
	// ErrTypeMismatch: a selector received an argument of the wrong variant.
	ErrTypeMismatch = errors.New("kernel: type mismatch")
	// ErrUndefinedVariable: lookup reached the empty environment sentinel.
	ErrUndefinedVariable = errors.New("kernel: undefined variable")
	// ErrArityMismatch: a parameter tree did not match an argument tree.
	ErrArityMismatch = errors.New("kernel: arity/structure mismatch")
	// ErrOutOfMemory: the cell allocator is exhausted.
	ErrOutOfMemory = errors.New("kernel: out of memory")
	// ErrDoubleFree: cell_free was called twice on the same cell.
	ErrDoubleFree = errors.New("kernel: double free")
	// ErrMultipleBecome: a behavior attempted a second become in one effect.
	ErrMultipleBecome = errors.New("kernel: multiple become in one effect")
	// ErrUnknownSelector: a message's selector was not recognized by the
	// target's behavior.
	ErrUnknownSelector = errors.New("kernel: unknown selector")
	// ErrWatchdogCapacity: the watchdog manager's concurrent-arm limit
	// (spec.md §5) was reached.
	ErrWatchdogCapacity = errors.New("kernel: watchdog capacity exhausted")
)

// GCInvariantViolation is panicked — never returned as an error — when an
// invariant that indicates heap corruption is violated (spec.md §7:
// "dispatch to a freed cell" is fatal, unlike ordinary language errors).
type GCInvariantViolation struct {
	Reason string
}

func (e GCInvariantViolation) Error() string {
	return fmt.Sprintf("kernel: GC invariant violated: %s", e.Reason)
}

// errorKind classifies a Go error into one of the kind names spec.md §7
// names. replyError stores that name as the error-sentinel Value's data,
// where Runtime.ErrorKind reads it back.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrTypeMismatch):
		return "type-error"
	case errors.Is(err, ErrUndefinedVariable):
		return "undefined-variable"
	case errors.Is(err, ErrArityMismatch):
		return "arity-error"
	case errors.Is(err, ErrOutOfMemory):
		return "out-of-memory"
	case errors.Is(err, ErrMultipleBecome):
		return "multiple-become"
	case errors.Is(err, ErrUnknownSelector):
		return "unknown-selector"
	case errors.Is(err, ErrWatchdogCapacity):
		return "watchdog-capacity"
	default:
		return "error"
	}
}
