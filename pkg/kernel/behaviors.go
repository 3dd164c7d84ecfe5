package kernel

// This file implements C8, the core value behaviors: self-evaluating
// singletons, Pair-as-application, Symbol-as-lookup, and Null's identity
// `map`, per spec.md §4.8. Each per-variant function has the same shape as
// the teacher's opcode-switch CPU.Step: decode the request, act, produce a
// result — generalized here from "mutate CPU state" to "build an Effect".

var errSentinelProc ProcID

func init() {
	errSentinelProc = registerProc(selfEvaluating)
}

// replyError builds an error-sentinel Value tagging err's kind and sends it
// to customer. Building the reply is itself a successful effect: spec.md
// §4.7/§7 are explicit that language-level errors are ordinary replies, not
// hard effect failures.
func (rt *Runtime) replyError(eb *EffectBuilder, customer Value, err error) {
	kind := errorKind(err)
	data := MkSymbol(rt.symbols.Intern(kind))
	v, allocErr := rt.heap.actorCreate(procValue(errSentinelProc), data)
	if allocErr != nil {
		eb.Fail(allocErr)
		return
	}
	eb.Created(v)
	eb.Send(customer, v)
}

// IsErrorValue reports whether v is an error-sentinel value produced by
// replyError.
func IsErrorValue(rt *Runtime, v Value) bool {
	if !IsActor(v) {
		return false
	}
	code, err := rt.heap.actorCode(v)
	if err != nil {
		return false
	}
	return TagOf(code) == TagInt && ProcID(codeAsInt(code)) == errSentinelProc
}

// ErrorKind returns the error-kind symbol name carried by an error-sentinel
// value, or "" if v is not one.
func (rt *Runtime) ErrorKind(v Value) string {
	if !IsErrorValue(rt, v) {
		return ""
	}
	data, err := rt.heap.actorData(v)
	if err != nil {
		return ""
	}
	handle, ok := SymIndex(data)
	if !ok {
		return ""
	}
	s, _ := rt.symbols.Lookup(handle)
	return s
}

// replyOK sends v to customer as a successful reply.
func replyOK(eb *EffectBuilder, customer, v Value) {
	eb.Send(customer, v)
}

// selfEvaluating implements eval => self, typeq => structural-type
// comparison, shared by every singleton except Nil and Sink (which have
// their own behaviors) and by error-sentinel values.
func selfEvaluating(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	switch {
	case selIs(rt, selector, "eval"):
		replyOK(eb, cust, self)
	case selIs(rt, selector, "typeq"):
		rt.replyTypeq(eb, cust, self, rest)
	default:
		rt.replyError(eb, cust, ErrUnknownSelector)
	}
}

// fixnumBehavior is the built-in behavior for Int-tagged values: they are
// self-evaluating and otherwise only answer typeq (spec.md §4.7, §4.8).
func fixnumBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	selfEvaluating(rt, self, msg, eb)
}

// symbolBehavior forwards eval as a lookup request to the dynamic
// environment, per spec.md §4.8: "Symbol evaluation: forward (cust, lookup,
// self) to the environment."
func symbolBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	switch {
	case selIs(rt, selector, "eval"):
		env, tailErr := rt.heap.car(rest)
		if tailErr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		lookupMsg, lerr := rt.list(cust, rt.sel("lookup"), self)
		if lerr != nil {
			eb.Fail(lerr)
			return
		}
		eb.Send(env, lookupMsg)
	case selIs(rt, selector, "typeq"):
		rt.replyTypeq(eb, cust, self, rest)
	default:
		rt.replyError(eb, cust, ErrUnknownSelector)
	}
}

// pairBehavior implements application (spec.md §4.8): evaluate the head as
// a combiner in the given environment, then send (cust, apply, tail, env) to
// the resulting combiner, via a one-shot continuation actor created for the
// purpose.
func pairBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	switch {
	case selIs(rt, selector, "eval"):
		env, tailErr := rt.heap.car(rest)
		if tailErr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		headV, herr := rt.heap.car(self)
		tailV, terr := rt.heap.cdr(self)
		if herr != nil || terr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		kont, cerr := rt.newCombinerApplyContinuation(cust, tailV, env)
		if cerr != nil {
			eb.Fail(cerr)
			return
		}
		eb.Created(kont)
		evalMsg, merr := rt.list(kont, rt.sel("eval"), env)
		if merr != nil {
			eb.Fail(merr)
			return
		}
		eb.Send(headV, evalMsg)
	case selIs(rt, selector, "typeq"):
		rt.replyTypeq(eb, cust, self, rest)
	case selIs(rt, selector, "map"):
		rt.pairMap(cust, self, rest, eb)
	default:
		rt.replyError(eb, cust, ErrUnknownSelector)
	}
}

// replyTypeq compares self's type tag against the requested tag T (the sole
// element of rest) and replies True/False to cust.
func (rt *Runtime) replyTypeq(eb *EffectBuilder, cust, self, rest Value) {
	t, err := rt.heap.car(rest)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	want, ok := SymIndex(t)
	if !ok {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	wantName, _ := rt.symbols.Lookup(want)
	if rt.typeTag(self) == wantName {
		replyOK(eb, cust, rt.singles.True)
	} else {
		replyOK(eb, cust, rt.singles.False)
	}
}

// nullBehavior is NIL's fixed behavior: self-evaluating like any other
// singleton, and the identity element of map (mapping any operation over the
// empty list yields the empty list), per spec.md §4.8.
func nullBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	switch {
	case selIs(rt, selector, "eval"):
		replyOK(eb, cust, self)
	case selIs(rt, selector, "map"):
		replyOK(eb, cust, self)
	case selIs(rt, selector, "typeq"):
		rt.replyTypeq(eb, cust, self, rest)
	default:
		rt.replyError(eb, cust, ErrUnknownSelector)
	}
}

// sinkBehavior is SINK's fixed behavior: a black-hole customer that discards
// every message it receives (spec.md §3.1), used as the customer of replies
// nobody needs to observe. It produces an empty, successful effect.
func sinkBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
}

// pairMap implements Pair's `map` selector (spec.md §4.8, §4.12): it forks
// the request across the head (apply the operation directly) and the tail
// (recurse via map), then joins the two results back into a pair in the
// original order, regardless of which leg answers first.
//
// rest is (op env), where op is the selector to apply to the head (e.g. the
// `eval` selector, when map is driving operand evaluation) and env is
// carried along unchanged for both legs.
func (rt *Runtime) pairMap(cust, self, rest Value, eb *EffectBuilder) {
	op, err := rt.heap.car(rest)
	if err != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	envList, err := rt.heap.cdr(rest)
	if err != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	env, err := rt.heap.car(envList)
	if err != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}

	head, err := rt.heap.car(self)
	if err != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	tail, err := rt.heap.cdr(self)
	if err != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}

	mapSel := rt.sel("map")
	if ferr := rt.forkJoinPair(eb, cust,
		head, op, []Value{env},
		tail, mapSel, []Value{op, env},
	); ferr != nil {
		eb.Fail(ferr)
	}
}

// typeTag classifies v into one of the type names used by typeq and the
// `*?` ground predicates.
func (rt *Runtime) typeTag(v Value) string {
	switch TagOf(v) {
	case TagInt:
		return "fixnum"
	case TagSymbol:
		return "symbol"
	case TagPair:
		return "pair"
	case TagActor:
		switch v {
		case rt.singles.Unit:
			return "inert"
		case rt.singles.True, rt.singles.False:
			return "boolean"
		case rt.singles.Nil:
			return "null"
		case rt.singles.Ignore:
			return "ignore"
		case rt.singles.Undef:
			return "undef"
		}
		return rt.actorTypeTag(v)
	default:
		return "unknown"
	}
}
