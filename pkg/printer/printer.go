// Package printer implements the external printer spec.md §6 names: "the
// core exposes accessors but does not format." Sprint/Fprint walk a tagged
// value using only pkg/kernel's public accessors (Car/Cdr/ToInt/SymbolName/
// TypeTag, the singleton getters, IsErrorValue/ErrorKind), the same accessor-only discipline the teacher's
// pkg/cpu/video.go uses to turn CPU.GraphicsBanks into pixels without the
// video package ever reaching into CPU internals directly.
package printer

import (
	"fmt"
	"io"
	"strconv"

	"gokernel/pkg/kernel"
)

// Sprint formats v as a string, per spec.md §6's print(value, sink).
func Sprint(rt *kernel.Runtime, v kernel.Value) string {
	var b []byte
	b = appendValue(rt, b, v)
	return string(b)
}

// Fprint writes v's formatted text to sink.
func Fprint(rt *kernel.Runtime, sink io.Writer, v kernel.Value) error {
	_, err := io.WriteString(sink, Sprint(rt, v))
	return err
}

func appendValue(rt *kernel.Runtime, b []byte, v kernel.Value) []byte {
	switch {
	case kernel.IsInt(v):
		n, _ := kernel.ToInt(v)
		return strconv.AppendInt(b, n, 10)
	case kernel.IsSymbol(v):
		name, ok := rt.SymbolName(v)
		if !ok {
			return append(b, "#<bad-symbol>"...)
		}
		return append(b, name...)
	case kernel.IsPair(v):
		return appendList(rt, b, v)
	case kernel.IsActor(v):
		return appendActor(rt, b, v)
	default:
		return append(b, fmt.Sprintf("#<unknown:%d>", v)...)
	}
}

// appendActor formats the fixed singletons by their canonical reader
// spelling and falls back to a type-tagged opaque marker for every other
// actor (environments, combiners, continuations — none of which have a
// literal external syntax per spec.md §6).
func appendActor(rt *kernel.Runtime, b []byte, v kernel.Value) []byte {
	switch v {
	case rt.Nil():
		return append(b, "()"...)
	case rt.True():
		return append(b, "#t"...)
	case rt.False():
		return append(b, "#f"...)
	case rt.Unit():
		return append(b, "#inert"...)
	case rt.Ignore():
		return append(b, "#ignore"...)
	}
	if kernel.IsErrorValue(rt, v) {
		return append(b, fmt.Sprintf("#<error:%s>", rt.ErrorKind(v))...)
	}
	return append(b, fmt.Sprintf("#<%s>", rt.TypeTag(v))...)
}

// appendList formats a possibly-improper list, printing `.` before a final
// non-Nil tail.
func appendList(rt *kernel.Runtime, b []byte, v kernel.Value) []byte {
	b = append(b, '(')
	first := true
	for kernel.IsPair(v) {
		if !first {
			b = append(b, ' ')
		}
		first = false
		head, err := rt.Car(v)
		if err != nil {
			return append(b, "#<read-error>)"...)
		}
		b = appendValue(rt, b, head)
		tail, err := rt.Cdr(v)
		if err != nil {
			return append(b, "#<read-error>)"...)
		}
		v = tail
	}
	if v != rt.Nil() {
		b = append(b, " . "...)
		b = appendValue(rt, b, v)
	}
	return append(b, ')')
}
