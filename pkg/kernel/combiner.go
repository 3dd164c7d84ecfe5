package kernel

// This file implements C10, combiners: the Applicative wrapper, the
// compound operative built by $vau, and the handful of continuation actors
// that thread an otherwise-synchronous-looking call sequence through the
// asynchronous dispatch loop, per spec.md §4.10. It mirrors the teacher's
// factory-registry style (pkg/cpu/peripheral.go) for wiring new combiner
// kinds: register a ProcFunc, hand back a ProcID, wrap it in an Actor.

var (
	applicativeProc       ProcID
	compoundOperativeProc ProcID
	evalApplyContProc     ProcID
	kArgsProc             ProcID
	seqContProc           ProcID
	vauProc               ProcID
)

func init() {
	applicativeProc = registerProcKind(registerProc(applicativeBehavior), "applicative")
	compoundOperativeProc = registerProcKind(registerProc(compoundOperativeBehavior), "operative")
	evalApplyContProc = registerProcKind(registerProc(evalApplyContBehavior), "continuation")
	kArgsProc = registerProcKind(registerProc(kArgsBehavior), "continuation")
	seqContProc = registerProcKind(registerProc(seqContBehavior), "continuation")
	vauProc = registerProcKind(registerProc(vauBehavior), "operative")
}

// newCombinerApplyContinuation builds the one-shot continuation used by
// Pair's eval behavior (spec.md §4.8): it receives the evaluated head
// (a bare Value, not a (cust selector ...) message) and forwards
// (cust, apply, opnd, env) to it.
func (rt *Runtime) newCombinerApplyContinuation(cust, opnd, env Value) (Value, error) {
	envCust, err := rt.heap.cons(env, cust)
	if err != nil {
		return 0, err
	}
	data, err := rt.heap.cons(opnd, envCust)
	if err != nil {
		return 0, err
	}
	return rt.heap.actorCreate(procValue(evalApplyContProc), data)
}

func evalApplyContBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	combiner := msg
	data, err := rt.heap.actorData(self)
	if err != nil {
		eb.Fail(err)
		return
	}
	opnd, err := rt.heap.car(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	envCust, err := rt.heap.cdr(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	env, err := rt.heap.car(envCust)
	if err != nil {
		eb.Fail(err)
		return
	}
	cust, err := rt.heap.cdr(envCust)
	if err != nil {
		eb.Fail(err)
		return
	}
	if IsErrorValue(rt, combiner) {
		replyOK(eb, cust, combiner)
		return
	}
	applyMsg, merr := rt.list(cust, rt.sel("apply"), opnd, env)
	if merr != nil {
		eb.Fail(merr)
		return
	}
	eb.Send(combiner, applyMsg)
}

// --- Applicative ------------------------------------------------------

// applicativeBehavior wraps an underlying combiner (spec.md §4.10): apply
// maps eval over the operand list via fork/join (reusing Pair/Null's `map`
// selector), then forwards the evaluated argument list to the wrapped
// combiner; unwrap replies with the wrapped combiner itself.
func applicativeBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	underlying, derr := rt.heap.actorData(self)
	if derr != nil {
		eb.Fail(derr)
		return
	}
	switch {
	case selIs(rt, selector, "apply"):
		opnd, oerr := rt.heap.car(rest)
		if oerr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		envTail, terr := rt.heap.cdr(rest)
		if terr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		env, eerr := rt.heap.car(envTail)
		if eerr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		underlyingEnv, kerr0 := rt.heap.cons(underlying, env)
		if kerr0 != nil {
			eb.Fail(kerr0)
			return
		}
		kargsData, kerr := rt.heap.cons(cust, underlyingEnv)
		if kerr != nil {
			eb.Fail(kerr)
			return
		}
		kargs, aerr := rt.heap.actorCreate(procValue(kArgsProc), kargsData)
		if aerr != nil {
			eb.Fail(aerr)
			return
		}
		eb.Created(kargs)
		mapMsg, merr := rt.list(kargs, rt.sel("map"), rt.sel("eval"), env)
		if merr != nil {
			eb.Fail(merr)
			return
		}
		eb.Send(opnd, mapMsg)
	case selIs(rt, selector, "unwrap"):
		replyOK(eb, cust, underlying)
	case selIs(rt, selector, "typeq"):
		rt.replyTypeq(eb, cust, self, rest)
	default:
		rt.replyError(eb, cust, ErrUnknownSelector)
	}
}

func kArgsBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	evaluatedArgs := msg
	data, err := rt.heap.actorData(self)
	if err != nil {
		eb.Fail(err)
		return
	}
	cust, cerr := rt.heap.car(data)
	if cerr != nil {
		eb.Fail(cerr)
		return
	}
	underlyingEnv, uerr := rt.heap.cdr(data)
	if uerr != nil {
		eb.Fail(uerr)
		return
	}
	underlying, uerr2 := rt.heap.car(underlyingEnv)
	if uerr2 != nil {
		eb.Fail(uerr2)
		return
	}
	env, uerr3 := rt.heap.cdr(underlyingEnv)
	if uerr3 != nil {
		eb.Fail(uerr3)
		return
	}
	if IsErrorValue(rt, evaluatedArgs) {
		replyOK(eb, cust, evaluatedArgs)
		return
	}
	applyMsg, merr := rt.list(cust, rt.sel("apply"), evaluatedArgs, env)
	if merr != nil {
		eb.Fail(merr)
		return
	}
	eb.Send(underlying, applyMsg)
}

// wrapCombiner builds an Applicative actor wrapping combiner.
func (rt *Runtime) wrapCombiner(combiner Value) (Value, error) {
	return rt.heap.actorCreate(procValue(applicativeProc), combiner)
}

// --- Compound operative ($vau) -----------------------------------------

// compoundOperativeBehavior implements apply for a $vau-built operative
// (spec.md §4.10): extend static-env with a fresh scope, splice denv in
// under the environment-formal if present, match the parameter tree, and
// evaluate the body as a sequence in the result.
func compoundOperativeBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	switch {
	case selIs(rt, selector, "apply"):
		opnd, oerr := rt.heap.car(rest)
		if oerr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		envTail, terr := rt.heap.cdr(rest)
		if terr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		denv, eerr := rt.heap.car(envTail)
		if eerr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}

		formals, envFormal, body, staticEnv, derr := rt.decodeCompound(self)
		if derr != nil {
			eb.Fail(derr)
			return
		}

		fresh, ferr := rt.newScope(staticEnv)
		if ferr != nil {
			eb.Fail(ferr)
			return
		}

		matchDef, matchArg := formals, opnd
		if envFormal != rt.singles.Ignore {
			d, cerr := rt.heap.cons(envFormal, formals)
			if cerr != nil {
				eb.Fail(cerr)
				return
			}
			a, cerr2 := rt.heap.cons(denv, opnd)
			if cerr2 != nil {
				eb.Fail(cerr2)
				return
			}
			matchDef, matchArg = d, a
		}

		env2, merr := rt.matchParamTree(matchDef, matchArg, fresh)
		if merr != nil {
			rt.replyError(eb, cust, merr)
			return
		}
		if serr := rt.sequenceEval(eb, cust, body, env2); serr != nil {
			eb.Fail(serr)
		}
	case selIs(rt, selector, "typeq"):
		rt.replyTypeq(eb, cust, self, rest)
	default:
		rt.replyError(eb, cust, ErrUnknownSelector)
	}
}

// encodeCompound/decodeCompound pack/unpack a compound operative's captured
// state: (formals . (envFormal . (body . staticEnv))).
func (rt *Runtime) encodeCompound(formals, envFormal, body, staticEnv Value) (Value, error) {
	inner, err := rt.heap.cons(body, staticEnv)
	if err != nil {
		return 0, err
	}
	mid, err := rt.heap.cons(envFormal, inner)
	if err != nil {
		return 0, err
	}
	return rt.heap.cons(formals, mid)
}

func (rt *Runtime) decodeCompound(opv Value) (formals, envFormal, body, staticEnv Value, err error) {
	data, err := rt.heap.actorData(opv)
	if err != nil {
		return
	}
	formals, err = rt.heap.car(data)
	if err != nil {
		return
	}
	mid, err := rt.heap.cdr(data)
	if err != nil {
		return
	}
	envFormal, err = rt.heap.car(mid)
	if err != nil {
		return
	}
	inner, err := rt.heap.cdr(mid)
	if err != nil {
		return
	}
	body, err = rt.heap.car(inner)
	if err != nil {
		return
	}
	staticEnv, err = rt.heap.cdr(inner)
	return
}

// --- $sequence ------------------------------------------------------------

// sequenceEval walks exprs, evaluating each in env and discarding all but
// the last result, which is replied to cust. Empty sequence replies inert
// (spec.md §4.11).
func (rt *Runtime) sequenceEval(eb *EffectBuilder, cust, exprs, env Value) error {
	if exprs == rt.singles.Nil {
		replyOK(eb, cust, rt.singles.Unit)
		return nil
	}
	h, err := rt.heap.car(exprs)
	if err != nil {
		return err
	}
	t, err := rt.heap.cdr(exprs)
	if err != nil {
		return err
	}
	if t == rt.singles.Nil {
		evalMsg, merr := rt.list(cust, rt.sel("eval"), env)
		if merr != nil {
			return merr
		}
		eb.Send(h, evalMsg)
		return nil
	}
	envCust, err := rt.heap.cons(env, cust)
	if err != nil {
		return err
	}
	data, err := rt.heap.cons(t, envCust)
	if err != nil {
		return err
	}
	cont, err := rt.heap.actorCreate(procValue(seqContProc), data)
	if err != nil {
		return err
	}
	eb.Created(cont)
	evalMsg, merr := rt.list(cont, rt.sel("eval"), env)
	if merr != nil {
		return merr
	}
	eb.Send(h, evalMsg)
	return nil
}

func seqContBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	data, err := rt.heap.actorData(self)
	if err != nil {
		eb.Fail(err)
		return
	}
	rest, err := rt.heap.car(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	envCust, err := rt.heap.cdr(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	env, err := rt.heap.car(envCust)
	if err != nil {
		eb.Fail(err)
		return
	}
	cust, err := rt.heap.cdr(envCust)
	if err != nil {
		eb.Fail(err)
		return
	}
	if IsErrorValue(rt, msg) {
		replyOK(eb, cust, msg)
		return
	}
	if serr := rt.sequenceEval(eb, cust, rest, env); serr != nil {
		eb.Fail(serr)
	}
}

// --- $vau -------------------------------------------------------------

// vauBehavior implements the $vau special form itself: an operative that,
// applied to (formals envFormal . body) in denv, constructs a fresh
// compound operative closing over denv as its static environment (spec.md
// §4.10). $vau's own operands are unevaluated, as for any operative.
func vauBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	if !selIs(rt, selector, "apply") {
		if selIs(rt, selector, "typeq") {
			rt.replyTypeq(eb, cust, self, rest)
			return
		}
		rt.replyError(eb, cust, ErrUnknownSelector)
		return
	}
	opnd, oerr := rt.heap.car(rest)
	if oerr != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	envTail, terr := rt.heap.cdr(rest)
	if terr != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	denv, eerr := rt.heap.car(envTail)
	if eerr != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}

	formals, oerr2 := rt.heap.car(opnd)
	if oerr2 != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	opndT, oerr3 := rt.heap.cdr(opnd)
	if oerr3 != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	envFormal, oerr4 := rt.heap.car(opndT)
	if oerr4 != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	body, oerr5 := rt.heap.cdr(opndT)
	if oerr5 != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}

	data, cerr := rt.encodeCompound(formals, envFormal, body, denv)
	if cerr != nil {
		eb.Fail(cerr)
		return
	}
	opv, aerr := rt.heap.actorCreate(procValue(compoundOperativeProc), data)
	if aerr != nil {
		eb.Fail(aerr)
		return
	}
	eb.Created(opv)
	replyOK(eb, cust, opv)
}
