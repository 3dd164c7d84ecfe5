package kernel

import "testing"

func TestScopeInsertOrUpdateThenSplaySearchFindsEachKey(t *testing.T) {
	rt := newTestRuntime(t)
	root := rt.singles.Nil
	syms := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	for i, name := range syms {
		sym := MkSymbol(rt.symbols.Intern(name))
		newRoot, err := rt.scopeInsertOrUpdate(root, sym, MkInt(int64(i)))
		if err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
		root = newRoot
	}
	for i, name := range syms {
		sym := MkSymbol(rt.symbols.Intern(name))
		newRoot, found, hit, err := rt.splaySearch(root, sym)
		if err != nil {
			t.Fatalf("search %s: %v", name, err)
		}
		if !hit {
			t.Fatalf("search %s: expected hit", name)
		}
		val, err := rt.bindingValue(found)
		if err != nil {
			t.Fatalf("bindingValue %s: %v", name, err)
		}
		n, ok := ToInt(val)
		if !ok || n != int64(i) {
			t.Errorf("value for %s = %v, want %d", name, val, i)
		}
		root = newRoot
	}
}

func TestSplaySearchMovesFoundNodeToRoot(t *testing.T) {
	rt := newTestRuntime(t)
	root := rt.singles.Nil
	for i, name := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		sym := MkSymbol(rt.symbols.Intern(name))
		newRoot, err := rt.scopeInsertOrUpdate(root, sym, MkInt(int64(i)))
		if err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
		root = newRoot
	}
	targetSym := MkSymbol(rt.symbols.Intern("alpha"))
	newRoot, found, hit, err := rt.splaySearch(root, targetSym)
	if err != nil || !hit {
		t.Fatalf("search alpha: found=%v hit=%v err=%v", found, hit, err)
	}
	if newRoot != found {
		t.Errorf("splay did not move found node to root: root=%v found=%v", newRoot, found)
	}
	rootSym, err := rt.bindingSymbol(newRoot)
	if err != nil {
		t.Fatalf("bindingSymbol: %v", err)
	}
	if rootSym != targetSym {
		t.Errorf("root symbol = %v, want %v", rootSym, targetSym)
	}
}

func TestScopeInsertOrUpdateOverwritesExistingKey(t *testing.T) {
	rt := newTestRuntime(t)
	sym := MkSymbol(rt.symbols.Intern("x"))
	root, err := rt.scopeInsertOrUpdate(rt.singles.Nil, sym, MkInt(1))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	root, err = rt.scopeInsertOrUpdate(root, sym, MkInt(2))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	_, found, hit, err := rt.splaySearch(root, sym)
	if err != nil || !hit {
		t.Fatalf("search: found=%v hit=%v err=%v", found, hit, err)
	}
	val, err := rt.bindingValue(found)
	if err != nil {
		t.Fatalf("bindingValue: %v", err)
	}
	n, ok := ToInt(val)
	if !ok || n != 2 {
		t.Errorf("value = %v, want 2 (overwritten)", val)
	}
}

func TestSplaySearchMissReturnsNilFound(t *testing.T) {
	rt := newTestRuntime(t)
	sym := MkSymbol(rt.symbols.Intern("present"))
	root, err := rt.scopeInsertOrUpdate(rt.singles.Nil, sym, MkInt(1))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	absent := MkSymbol(rt.symbols.Intern("absent"))
	_, found, hit, err := rt.splaySearch(root, absent)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if hit {
		t.Error("expected miss for absent symbol")
	}
	if found != rt.singles.Nil {
		t.Errorf("found = %v on miss, want Nil", found)
	}
}

func TestNewScopeParentChaining(t *testing.T) {
	rt := newTestRuntime(t)
	root, err := rt.newRootEnv()
	if err != nil {
		t.Fatalf("newRootEnv: %v", err)
	}
	child, err := rt.newScope(root)
	if err != nil {
		t.Fatalf("newScope: %v", err)
	}
	parent, err := rt.scopeParent(child)
	if err != nil {
		t.Fatalf("scopeParent: %v", err)
	}
	if parent != root {
		t.Errorf("scopeParent(child) = %v, want %v", parent, root)
	}
}

// TestBindingBehaviorRepliesErrorWhenReachedDirectly confirms that a Binding
// actor messaged out of band (bypassing its owning Scope's splay search,
// which is the only path that ever normally touches a Binding) replies a
// well-formed error instead of doing anything with the message.
func TestBindingBehaviorRepliesErrorWhenReachedDirectly(t *testing.T) {
	rt := newTestRuntime(t)
	sym := MkSymbol(rt.symbols.Intern("x"))
	binding, err := rt.newBinding(sym, MkInt(1))
	if err != nil {
		t.Fatalf("newBinding: %v", err)
	}
	collector, err := rt.NewCollector()
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	msg, err := rt.list(collector, rt.sel("lookup"), sym)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	effect := Dispatch(rt, binding, msg)
	if effect.Failed {
		t.Fatalf("dispatch to a Binding should reply an error, not fail the effect: %v", effect.Err)
	}
	if len(effect.Sent) != 1 || !IsErrorValue(rt, effect.Sent[0].Message) {
		t.Errorf("expected an error-sentinel reply, got %+v", effect.Sent)
	}
}

// TestScopeLookupFallsThroughToParent exercises the actor-message path (not
// just the splay internals): a child scope with no binding of its own must
// forward lookup to its parent rather than reply undefined-variable directly.
func TestScopeLookupFallsThroughToParent(t *testing.T) {
	rt := newTestRuntime(t)
	sym := MkSymbol(rt.symbols.Intern("shared"))

	root, err := rt.newRootEnv()
	if err != nil {
		t.Fatalf("newRootEnv: %v", err)
	}
	collector, err := rt.NewCollector()
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	bindMsg, err := rt.list(collector, rt.sel("bind"), sym, MkInt(99))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	rt.queue.Enqueue(Event{Target: root, Message: bindMsg})
	if err := rt.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	child, err := rt.newScope(root)
	if err != nil {
		t.Fatalf("newScope: %v", err)
	}
	lookupMsg, err := rt.list(collector, rt.sel("lookup"), sym)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	rt.queue.Enqueue(Event{Target: child, Message: lookupMsg})
	if err := rt.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	v, err := rt.CollectorValue(collector)
	if err != nil {
		t.Fatalf("CollectorValue: %v", err)
	}
	n, ok := ToInt(v)
	if !ok || n != 99 {
		t.Errorf("lookup through parent = %v, want 99", v)
	}
}
