package kernel

// ProcID is a stable identifier for a built-in procedure, resolved through
// procRegistry rather than a function-pointer/address-range test. This is
// spec.md §9's design note on procedure identity, modeled directly on the
// teacher's name-keyed constructor registries
// (cpu.RegisterPeripheral/RegisterMessageDevice in pkg/cpu/peripheral.go and
// message_device.go): a package-level map populated at init time, giving
// exhaustive dispatch instead of testing whether a pointer falls in a known
// code-table address range.
type ProcID uint64

// ProcFunc is the behavior a ProcID resolves to: (self, msg) -> Effect,
// accumulated into eb.
type ProcFunc func(rt *Runtime, self, msg Value, eb *EffectBuilder)

var procRegistry = make(map[ProcID]ProcFunc)

// nextProcID is assigned by registerProc calls made during package
// initialization (init() functions and package-level vars in behaviors.go,
// collector.go, env.go, combiner.go, forkjoin.go, and ground.go) and by
// ground.go's installGround, which registers a fresh ProcID for every
// native ground combiner each time a Runtime boots. Using a monotonic counter instead of
// hand-picked numeric constants keeps registration order the only thing that
// has to stay consistent, mirroring the teacher's string-keyed registries
// (which need no numbering scheme at all).
var nextProcID ProcID

// registerProc allocates a fresh ProcID and binds fn to it. Panicking on a
// nil fn (a programming error, caught at init time) mirrors the teacher's
// registries, which would simply record a broken factory; failing fast here
// is preferable since this only runs during package initialization or Boot.
func registerProc(fn ProcFunc) ProcID {
	if fn == nil {
		panic("kernel: registerProc called with nil ProcFunc")
	}
	nextProcID++
	id := nextProcID
	procRegistry[id] = fn
	return id
}

// procKind records the type-tag name (per typeq/`*?` predicates) that an
// actor built on a given ProcID should report. Populated alongside each
// registerProc call whose actors need to answer typeq/predicate queries.
var procKind = make(map[ProcID]string)

func registerProcKind(id ProcID, kind string) ProcID {
	procKind[id] = kind
	return id
}

// actorTypeTag classifies an Actor-tagged, non-singleton value by its code
// field's registered kind, defaulting to "actor" for anything unregistered
// (e.g. a bare delegate with no kind of its own).
func (rt *Runtime) actorTypeTag(v Value) string {
	code, err := rt.heap.actorCode(v)
	if err != nil || TagOf(code) != TagInt {
		return "actor"
	}
	if kind, ok := procKind[ProcID(codeAsInt(code))]; ok {
		return kind
	}
	return "actor"
}

// singletonBehavior returns the fixed behavior for target if it is one of
// the statically-addressed singletons from spec.md §3.1.
func (rt *Runtime) singletonBehavior(target Value) (ProcFunc, bool) {
	switch target {
	case rt.singles.Undef, rt.singles.Unit, rt.singles.True, rt.singles.False,
		rt.singles.Fail, rt.singles.Ignore:
		return selfEvaluating, true
	case rt.singles.Nil:
		return nullBehavior, true
	case rt.singles.Sink:
		return sinkBehavior, true
	default:
		return nil, false
	}
}

// procValue packs a ProcID into the Int-tagged Value used as an Actor's code
// field (spec.md §3.1: "a procedure handle ... an immutable pointer into a
// fixed code table").
func procValue(id ProcID) Value {
	return MkInt(int64(id))
}

// Dispatch routes target's message to the appropriate behavior and returns
// the resulting Effect, per spec.md §4.7. It never panics except via
// GCInvariantViolation (propagated from the heap accessors), which indicates
// heap corruption rather than a language-level error.
func Dispatch(rt *Runtime, target, msg Value) Effect {
	eb := &EffectBuilder{}
	switch TagOf(target) {
	case TagInt:
		fixnumBehavior(rt, target, msg, eb)
	case TagSymbol:
		symbolBehavior(rt, target, msg, eb)
	case TagPair:
		pairBehavior(rt, target, msg, eb)
	case TagActor:
		dispatchActor(rt, target, msg, eb)
	default:
		eb.Fail(ErrTypeMismatch)
	}
	return eb.Build()
}

// dispatchActor resolves an Actor target's code field: a known singleton
// gets its fixed behavior; a ProcID-coded actor calls the registered
// procedure with self still bound to the original target (so become
// mutates the target, not a delegate); an Actor-coded actor is a delegation
// and recurses with the delegate as the new target, per spec.md §4.7 ("if it
// is another actor (delegation), recurse with the delegated target but the
// original message").
func dispatchActor(rt *Runtime, target, msg Value, eb *EffectBuilder) {
	if behavior, ok := rt.singletonBehavior(target); ok {
		behavior(rt, target, msg, eb)
		return
	}
	code, err := rt.heap.actorCode(target)
	if err != nil {
		eb.Fail(err)
		return
	}
	switch TagOf(code) {
	case TagInt:
		id := ProcID(codeAsInt(code))
		proc, ok := procRegistry[id]
		if !ok {
			eb.Fail(ErrUnknownSelector)
			return
		}
		proc(rt, target, msg, eb)
	case TagActor:
		dispatchActor(rt, code, msg, eb)
	default:
		eb.Fail(ErrTypeMismatch)
	}
}

func codeAsInt(code Value) int64 {
	n, _ := ToInt(code)
	return n
}

// msgParts decodes a message list into its customer, selector symbol, and
// remaining argument list, per spec.md §3.6.
func msgParts(rt *Runtime, msg Value) (cust, selector, rest Value, err error) {
	cust, err = rt.heap.car(msg)
	if err != nil {
		return
	}
	restAfterCust, err := rt.heap.cdr(msg)
	if err != nil {
		return
	}
	selector, err = rt.heap.car(restAfterCust)
	if err != nil {
		return
	}
	rest, err = rt.heap.cdr(restAfterCust)
	return
}

// selIs reports whether selector equals the interned selector value for
// name.
func selIs(rt *Runtime, selector Value, name string) bool {
	return selector == rt.sel(name)
}
