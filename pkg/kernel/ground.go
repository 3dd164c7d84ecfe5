package kernel

// This file implements §6's ground environment: the fixed set of bindings
// referenced by evaluated programs only by symbol, never by direct Go call.
// Each primitive is a native ProcFunc registered once and bound into
// rt.groundEnv at boot, following the same registry-driven wiring as the
// teacher's RegisterPeripheral/RegisterMessageDevice factories (see
// dispatch.go's ProcID doc comment) generalized from "named device kind" to
// "named ground binding".

// installGround builds the ground environment and stores it on rt.
func (rt *Runtime) installGround() error {
	env, err := rt.newRootEnv()
	if err != nil {
		return err
	}
	rt.groundEnv = env

	operatives := []struct {
		name string
		fn   ProcFunc
	}{
		{"$if", ifOperative},
		{"$define!", defineOperative},
		{"$sequence", sequenceOperative},
		{"$vau", vauBehavior},
		{"$lambda", lambdaOperative},
	}
	for _, o := range operatives {
		if err := rt.bindNativeOperative(o.name, o.fn); err != nil {
			return err
		}
	}

	applicatives := []struct {
		name string
		fn   ProcFunc
	}{
		{"wrap", wrapApplicative},
		{"unwrap", unwrapApplicative},
		{"cons", consApplicative},
		{"list", listApplicative},
		{"eval", evalApplicative},
		{"make-env", makeEnvApplicative},
		{"car", carApplicative},
		{"cdr", cdrApplicative},
		{"set-car!", setCarApplicative},
		{"set-cdr!", setCdrApplicative},

		{"boolean?", predicateApplicative("boolean")},
		{"symbol?", predicateApplicative("symbol")},
		{"pair?", predicateApplicative("pair")},
		{"null?", predicateApplicative("null")},
		{"number?", predicateApplicative("fixnum")},
		{"environment?", predicateApplicative("environment")},
		{"applicative?", predicateApplicative("applicative")},
		{"operative?", operativePredicateApplicative},
		{"combiner?", combinerPredicateApplicative},
		{"inert?", predicateApplicative("inert")},
		{"ignore?", predicateApplicative("ignore")},
		{"eq?", eqApplicative},
		{"equal?", equalApplicative},

		{"+", arithApplicative(func(a, b int64) int64 { return a + b }, 0)},
		{"-", subApplicative},
		{"*", arithApplicative(func(a, b int64) int64 { return a * b }, 1)},
		{"<?", compareApplicative(func(a, b int64) bool { return a < b })},
		{"<=?", compareApplicative(func(a, b int64) bool { return a <= b })},
		{">?", compareApplicative(func(a, b int64) bool { return a > b })},
		{">=?", compareApplicative(func(a, b int64) bool { return a >= b })},
		{"=?", compareApplicative(func(a, b int64) bool { return a == b })},

		{"bit-and", arithApplicative(func(a, b int64) int64 { return a & b }, -1)},
		{"bit-or", arithApplicative(func(a, b int64) int64 { return a | b }, 0)},
		{"bit-xor", arithApplicative(func(a, b int64) int64 { return a ^ b }, 0)},
		{"bit-not", bitNotApplicative},
		{"shift-left", shiftApplicative(true)},
		{"shift-right", shiftApplicative(false)},
	}
	for _, a := range applicatives {
		if err := rt.bindNativeApplicative(a.name, a.fn); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) bindNativeOperative(name string, fn ProcFunc) error {
	id := registerProc(fn)
	registerProcKind(id, "operative")
	actor, err := rt.heap.actorCreate(procValue(id), rt.singles.Nil)
	if err != nil {
		return err
	}
	sym := MkSymbol(rt.symbols.Intern(name))
	_, err = rt.bindVar(rt.groundEnv, sym, actor)
	return err
}

func (rt *Runtime) bindNativeApplicative(name string, fn ProcFunc) error {
	id := registerProc(fn)
	registerProcKind(id, "operative")
	inner, err := rt.heap.actorCreate(procValue(id), rt.singles.Nil)
	if err != nil {
		return err
	}
	wrapped, err := rt.wrapCombiner(inner)
	if err != nil {
		return err
	}
	sym := MkSymbol(rt.symbols.Intern(name))
	_, err = rt.bindVar(rt.groundEnv, sym, wrapped)
	return err
}

// operativeArgs extracts a native applicative's evaluated argument list as a
// Go slice, since natives operate on them directly rather than walking
// pairs by hand each time.
func (rt *Runtime) operativeArgs(msg Value) (cust Value, args []Value, env Value, err error) {
	var selector, rest Value
	cust, selector, rest, err = msgParts(rt, msg)
	if err != nil {
		return
	}
	_ = selector
	argList, err := rt.heap.car(rest)
	if err != nil {
		return
	}
	envTail, err := rt.heap.cdr(rest)
	if err != nil {
		return
	}
	env, err = rt.heap.car(envTail)
	if err != nil {
		return
	}
	args, _, err = rt.listToSlice(argList)
	return
}

// --- operatives (unevaluated operands) ---------------------------------

// ifOperative implements $if: (if test then else), evaluating test in env,
// then evaluating then or else in env depending on its truth value.
func ifOperative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	if !requireApply(rt, cust, selector, eb) {
		return
	}
	opnd, env, oerr := splitOpndEnv(rt, rest)
	if oerr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	parts, tail, serr := rt.listToSlice(opnd)
	if serr != nil || tail != rt.singles.Nil || len(parts) != 3 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	test, thenE, elseE := parts[0], parts[1], parts[2]

	inner, derr := rt.heap.cons(thenE, cust)
	if derr != nil {
		eb.Fail(derr)
		return
	}
	mid, derr := rt.heap.cons(elseE, inner)
	if derr != nil {
		eb.Fail(derr)
		return
	}
	data, derr := rt.heap.cons(env, mid)
	if derr != nil {
		eb.Fail(derr)
		return
	}
	cont, aerr := rt.heap.actorCreate(procValue(ifContProc), data)
	if aerr != nil {
		eb.Fail(aerr)
		return
	}
	eb.Created(cont)
	evalMsg, merr := rt.list(cont, rt.sel("eval"), env)
	if merr != nil {
		eb.Fail(merr)
		return
	}
	eb.Send(test, evalMsg)
}

var ifContProc = registerProcKind(registerProc(ifContBehavior), "continuation")

// ifContBehavior's data is (env . (elseExpr . (thenExpr . cust))).
func ifContBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	testResult := msg
	data, err := rt.heap.actorData(self)
	if err != nil {
		eb.Fail(err)
		return
	}
	env, err := rt.heap.car(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	rest, err := rt.heap.cdr(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	elseExpr, err := rt.heap.car(rest)
	if err != nil {
		eb.Fail(err)
		return
	}
	rest2, err := rt.heap.cdr(rest)
	if err != nil {
		eb.Fail(err)
		return
	}
	thenExpr, err := rt.heap.car(rest2)
	if err != nil {
		eb.Fail(err)
		return
	}
	cust, err := rt.heap.cdr(rest2)
	if err != nil {
		eb.Fail(err)
		return
	}
	if IsErrorValue(rt, testResult) {
		replyOK(eb, cust, testResult)
		return
	}
	branch := elseExpr
	if testResult == rt.singles.True {
		branch = thenExpr
	} else if testResult != rt.singles.False {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	evalMsg, merr := rt.list(cust, rt.sel("eval"), env)
	if merr != nil {
		eb.Fail(merr)
		return
	}
	eb.Send(branch, evalMsg)
}

// defineOperative implements $define!: (define! sym expr), binding sym in
// the dynamic environment to expr's value, replying inert.
func defineOperative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	if !requireApply(rt, cust, selector, eb) {
		return
	}
	opnd, env, oerr := splitOpndEnv(rt, rest)
	if oerr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	target, terr := rt.heap.car(opnd)
	if terr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	exprTail, eerr := rt.heap.cdr(opnd)
	if eerr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	expr, eerr2 := rt.heap.car(exprTail)
	if eerr2 != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}

	targetCust, derr := rt.heap.cons(target, cust)
	if derr != nil {
		eb.Fail(derr)
		return
	}
	data, derr := rt.heap.cons(env, targetCust)
	if derr != nil {
		eb.Fail(derr)
		return
	}
	cont, aerr := rt.heap.actorCreate(procValue(defineContProc), data)
	if aerr != nil {
		eb.Fail(aerr)
		return
	}
	eb.Created(cont)
	evalMsg, merr := rt.list(cont, rt.sel("eval"), env)
	if merr != nil {
		eb.Fail(merr)
		return
	}
	eb.Send(expr, evalMsg)
}

var defineContProc = registerProcKind(registerProc(defineContBehavior), "continuation")

// defineContBehavior's data is (env . (target . cust)).
func defineContBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	value := msg
	data, err := rt.heap.actorData(self)
	if err != nil {
		eb.Fail(err)
		return
	}
	env, err := rt.heap.car(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	rest, err := rt.heap.cdr(data)
	if err != nil {
		eb.Fail(err)
		return
	}
	target, err := rt.heap.car(rest)
	if err != nil {
		eb.Fail(err)
		return
	}
	cust, err := rt.heap.cdr(rest)
	if err != nil {
		eb.Fail(err)
		return
	}
	if IsErrorValue(rt, value) {
		replyOK(eb, cust, value)
		return
	}
	if _, merr := rt.matchParamTree(target, value, env); merr != nil {
		rt.replyError(eb, cust, merr)
		return
	}
	replyOK(eb, cust, rt.singles.Unit)
}

// sequenceOperative implements $sequence directly over its own (unevaluated)
// operand list.
func sequenceOperative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	if !requireApply(rt, cust, selector, eb) {
		return
	}
	opnd, env, oerr := splitOpndEnv(rt, rest)
	if oerr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	if serr := rt.sequenceEval(eb, cust, opnd, env); serr != nil {
		eb.Fail(serr)
	}
}

// lambdaOperative implements $lambda as $vau with environment-formal
// #ignore, then wrapped as an applicative (spec.md §4.10).
func lambdaOperative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	if !requireApply(rt, cust, selector, eb) {
		return
	}
	opnd, denv, oerr := splitOpndEnv(rt, rest)
	if oerr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	formals, ferr := rt.heap.car(opnd)
	if ferr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	body, berr := rt.heap.cdr(opnd)
	if berr != nil {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	data, cerr := rt.encodeCompound(formals, rt.singles.Ignore, body, denv)
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
	wrapped, werr := rt.wrapCombiner(opv)
	if werr != nil {
		eb.Fail(werr)
		return
	}
	eb.Created(wrapped)
	replyOK(eb, cust, wrapped)
}

// requireApply rejects any selector other than apply for a native
// operative, replying an unknown-selector error (typeq included). It
// returns false (having already produced a reply) when selector is not
// "apply".
func requireApply(rt *Runtime, cust, selector Value, eb *EffectBuilder) bool {
	if selIs(rt, selector, "apply") {
		return true
	}
	rt.replyError(eb, cust, ErrUnknownSelector)
	return false
}

// splitOpndEnv decodes an operative's rest-of-message into (opnd, env).
func splitOpndEnv(rt *Runtime, rest Value) (opnd, env Value, err error) {
	opnd, err = rt.heap.car(rest)
	if err != nil {
		return
	}
	envTail, err := rt.heap.cdr(rest)
	if err != nil {
		return
	}
	env, err = rt.heap.car(envTail)
	return
}

// --- applicatives (pre-evaluated operands) ------------------------------

func wrapApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 1 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	wrapped, werr := rt.wrapCombiner(args[0])
	if werr != nil {
		eb.Fail(werr)
		return
	}
	eb.Created(wrapped)
	replyOK(eb, cust, wrapped)
}

func unwrapApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 1 || !IsActor(args[0]) {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	underlying, uerr := rt.heap.actorData(args[0])
	if uerr != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	replyOK(eb, cust, underlying)
}

func consApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 2 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	v, cerr := rt.heap.cons(args[0], args[1])
	if cerr != nil {
		eb.Fail(cerr)
		return
	}
	replyOK(eb, cust, v)
}

func listApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	v, lerr := rt.list(args...)
	if lerr != nil {
		eb.Fail(lerr)
		return
	}
	replyOK(eb, cust, v)
}

func evalApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 2 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	evalMsg, merr := rt.list(cust, rt.sel("eval"), args[1])
	if merr != nil {
		eb.Fail(merr)
		return
	}
	eb.Send(args[0], evalMsg)
}

func makeEnvApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	parent := rt.groundEnv
	if len(args) >= 1 {
		parent = args[0]
	}
	scope, serr := rt.newScope(parent)
	if serr != nil {
		eb.Fail(serr)
		return
	}
	eb.Created(scope)
	replyOK(eb, cust, scope)
}

func carApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 1 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	v, cerr := rt.heap.car(args[0])
	if cerr != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	replyOK(eb, cust, v)
}

func cdrApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 1 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	v, cerr := rt.heap.cdr(args[0])
	if cerr != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	replyOK(eb, cust, v)
}

func setCarApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 2 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	if serr := rt.heap.setCar(args[0], args[1]); serr != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	replyOK(eb, cust, rt.singles.Unit)
}

func setCdrApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 2 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	if serr := rt.heap.setCdr(args[0], args[1]); serr != nil {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	replyOK(eb, cust, rt.singles.Unit)
}

func predicateApplicative(kind string) ProcFunc {
	return func(rt *Runtime, self, msg Value, eb *EffectBuilder) {
		cust, args, _, err := rt.operativeArgs(msg)
		if err != nil || len(args) != 1 {
			rt.replyError(eb, cust, ErrArityMismatch)
			return
		}
		if rt.typeTag(args[0]) == kind {
			replyOK(eb, cust, rt.singles.True)
		} else {
			replyOK(eb, cust, rt.singles.False)
		}
	}
}

func operativePredicateApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 1 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	t := rt.typeTag(args[0])
	if t == "operative" {
		replyOK(eb, cust, rt.singles.True)
	} else {
		replyOK(eb, cust, rt.singles.False)
	}
}

func combinerPredicateApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 1 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	t := rt.typeTag(args[0])
	if t == "operative" || t == "applicative" {
		replyOK(eb, cust, rt.singles.True)
	} else {
		replyOK(eb, cust, rt.singles.False)
	}
}

// eqApplicative implements eq?: identity comparison on the tagged word
// itself (spec.md §7's Open Question: numeric equality is structural, but
// eq? is the raw word comparison a tagged-value representation gives for
// free).
func eqApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 2 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	if args[0] == args[1] {
		replyOK(eb, cust, rt.singles.True)
	} else {
		replyOK(eb, cust, rt.singles.False)
	}
}

// equalApplicative implements equal?: structural equality over pairs,
// falling back to eq? for atoms.
func equalApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 2 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	eq, eerr := rt.structuralEqual(args[0], args[1])
	if eerr != nil {
		eb.Fail(eerr)
		return
	}
	if eq {
		replyOK(eb, cust, rt.singles.True)
	} else {
		replyOK(eb, cust, rt.singles.False)
	}
}

func (rt *Runtime) structuralEqual(a, b Value) (bool, error) {
	if a == b {
		return true, nil
	}
	if !IsPair(a) || !IsPair(b) {
		return false, nil
	}
	ah, err := rt.heap.car(a)
	if err != nil {
		return false, err
	}
	bh, err := rt.heap.car(b)
	if err != nil {
		return false, err
	}
	headEq, err := rt.structuralEqual(ah, bh)
	if err != nil || !headEq {
		return false, err
	}
	at, err := rt.heap.cdr(a)
	if err != nil {
		return false, err
	}
	bt, err := rt.heap.cdr(b)
	if err != nil {
		return false, err
	}
	return rt.structuralEqual(at, bt)
}

// arithApplicative folds op over all arguments starting from identity; zero
// arguments replies identity, matching the teacher's CPU arithmetic opcodes'
// habit of defining the empty/degenerate case explicitly rather than
// leaving it to a panic.
func arithApplicative(op func(a, b int64) int64, identity int64) ProcFunc {
	return func(rt *Runtime, self, msg Value, eb *EffectBuilder) {
		cust, args, _, err := rt.operativeArgs(msg)
		if err != nil {
			rt.replyError(eb, cust, ErrTypeMismatch)
			return
		}
		acc := identity
		for _, a := range args {
			n, ok := ToInt(a)
			if !ok {
				rt.replyError(eb, cust, ErrTypeMismatch)
				return
			}
			acc = op(acc, n)
		}
		replyOK(eb, cust, MkInt(acc))
	}
}

// subApplicative implements `-`: unary negation, or left-fold subtraction
// for two or more arguments.
func subApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) == 0 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	first, ok := ToInt(args[0])
	if !ok {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	if len(args) == 1 {
		replyOK(eb, cust, MkInt(-first))
		return
	}
	acc := first
	for _, a := range args[1:] {
		n, ok := ToInt(a)
		if !ok {
			rt.replyError(eb, cust, ErrTypeMismatch)
			return
		}
		acc -= n
	}
	replyOK(eb, cust, MkInt(acc))
}

func compareApplicative(cmp func(a, b int64) bool) ProcFunc {
	return func(rt *Runtime, self, msg Value, eb *EffectBuilder) {
		cust, args, _, err := rt.operativeArgs(msg)
		if err != nil || len(args) < 2 {
			rt.replyError(eb, cust, ErrArityMismatch)
			return
		}
		prev, ok := ToInt(args[0])
		if !ok {
			rt.replyError(eb, cust, ErrTypeMismatch)
			return
		}
		for _, a := range args[1:] {
			n, ok := ToInt(a)
			if !ok {
				rt.replyError(eb, cust, ErrTypeMismatch)
				return
			}
			if !cmp(prev, n) {
				replyOK(eb, cust, rt.singles.False)
				return
			}
			prev = n
		}
		replyOK(eb, cust, rt.singles.True)
	}
}

func bitNotApplicative(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, args, _, err := rt.operativeArgs(msg)
	if err != nil || len(args) != 1 {
		rt.replyError(eb, cust, ErrArityMismatch)
		return
	}
	n, ok := ToInt(args[0])
	if !ok {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}
	replyOK(eb, cust, MkInt(^n))
}

func shiftApplicative(left bool) ProcFunc {
	return func(rt *Runtime, self, msg Value, eb *EffectBuilder) {
		cust, args, _, err := rt.operativeArgs(msg)
		if err != nil || len(args) != 2 {
			rt.replyError(eb, cust, ErrArityMismatch)
			return
		}
		n, ok := ToInt(args[0])
		if !ok {
			rt.replyError(eb, cust, ErrTypeMismatch)
			return
		}
		by, ok := ToInt(args[1])
		if !ok || by < 0 {
			rt.replyError(eb, cust, ErrTypeMismatch)
			return
		}
		var result int64
		if left {
			result = n << uint(by)
		} else {
			result = n >> uint(by)
		}
		replyOK(eb, cust, MkInt(result))
	}
}
