package kernel

// This file implements C11: structural parameter-tree matching and
// sequential body evaluation, per spec.md §4.11. matchParamTree has no
// actor protocol of its own — it is called synchronously from the compound
// operative's apply path in combiner.go, the way the teacher's
// lexer/parser call each other as plain Go functions rather than exchanging
// messages for every sub-step.

// matchParamTree destructures arg against the shape of def, extending env
// with a binding for every symbol in def, and returns the (possibly further
// extended) environment. It fails with ErrArityMismatch on any structural
// mismatch (spec.md §4.11, §8's testable property).
func (rt *Runtime) matchParamTree(def, arg, env Value) (Value, error) {
	switch {
	case def == rt.singles.Ignore:
		return env, nil
	case def == rt.singles.Nil:
		if arg != rt.singles.Nil {
			return 0, ErrArityMismatch
		}
		return env, nil
	case IsSymbol(def):
		return rt.bindVar(env, def, arg)
	case IsPair(def):
		if !IsPair(arg) {
			return 0, ErrArityMismatch
		}
		defH, err := rt.heap.car(def)
		if err != nil {
			return 0, err
		}
		defT, err := rt.heap.cdr(def)
		if err != nil {
			return 0, err
		}
		argH, err := rt.heap.car(arg)
		if err != nil {
			return 0, err
		}
		argT, err := rt.heap.cdr(arg)
		if err != nil {
			return 0, err
		}
		env, err = rt.matchParamTree(defH, argH, env)
		if err != nil {
			return 0, err
		}
		return rt.matchParamTree(defT, argT, env)
	default:
		// Any other self-evaluating def (e.g. a literal fixnum used as a
		// parameter-tree leaf) requires eqv arg, per Kernel's #ignore/literal
		// parameter convention.
		if def != arg {
			return 0, ErrArityMismatch
		}
		return env, nil
	}
}

// bindVar inserts sym->val directly into env's own scope (a synchronous
// shortcut around the bind actor-message protocol, used only while building
// a fresh scope that is not yet reachable from anywhere else and so cannot
// race any other dispatch).
func (rt *Runtime) bindVar(env, sym, val Value) (Value, error) {
	parent, err := rt.scopeParent(env)
	if err != nil {
		return 0, err
	}
	root, err := rt.scopeRoot(env)
	if err != nil {
		return 0, err
	}
	newRoot, err := rt.scopeInsertOrUpdate(root, sym, val)
	if err != nil {
		return 0, err
	}
	newData, err := rt.heap.cons(parent, newRoot)
	if err != nil {
		return 0, err
	}
	if err := rt.heap.become(env, procValue(scopeProc), newData); err != nil {
		return 0, err
	}
	return env, nil
}
