package kernel

// This file implements C9, environment actors: a scope actor wrapping a
// splay tree of binding nodes over a parent chain, per spec.md §4.9. Binding
// nodes are themselves Actors, but they are never dispatched to directly —
// a Scope reads and rotates their fields in place via plain pair mutation,
// the way the teacher's CPU.Step mutates registers/memory directly rather
// than dispatching sub-messages for every internal step.
//
// spec.md's own prose for bind ("create a new binding whose next is a new
// empty scope with the same parent; then become that binding") describes a
// naive per-symbol linked list, with the Scope's own identity migrating one
// link into the chain on every new binding. That shape is not what this
// file builds: bind always keeps self as a Scope and inserts into a single
// splay tree addressed from the Scope's own data field, so repeated binds
// to the same Scope stay addressable at one stable actor identity instead
// of retargeting every outstanding reference to it on each new symbol. See
// DESIGN.md's C9 entry for why the per-symbol become chain was dropped in
// favor of keeping the splay tree as the sole local structure.
//
// A binding's data field is a fixed record encoded as nested pairs:
//
//	(symbol . (value . (left . right)))
//
// left/right point at other Binding actors, or at rt.singles.Nil. Only the
// inner pairs are mutated in place (ordinary set-car!/set-cdr!); the
// Binding actor's own data pointer never changes after creation, so no
// become is needed to update a node's fields, only to change which node a
// Scope currently treats as its splay root.

var (
	bindingProc ProcID
	scopeProc   ProcID
)

func init() {
	bindingProc = registerProcKind(registerProc(bindingBehavior), "binding")
	scopeProc = registerProcKind(registerProc(scopeBehavior), "environment")
}

// newRootEnv creates the terminal environment: a Scope whose parent is Nil,
// meaning there is no further frame to forward to. Lookup miss here replies
// undefined-variable directly (spec.md §4.9's "lookup is total" invariant).
func (rt *Runtime) newRootEnv() (Value, error) {
	return rt.newScope(rt.singles.Nil)
}

// newScope allocates a fresh, empty Scope actor with the given parent.
func (rt *Runtime) newScope(parent Value) (Value, error) {
	data, err := rt.heap.cons(parent, rt.singles.Nil)
	if err != nil {
		return 0, err
	}
	return rt.heap.actorCreate(procValue(scopeProc), data)
}

func (rt *Runtime) scopeParent(scope Value) (Value, error) {
	data, err := rt.heap.actorData(scope)
	if err != nil {
		return 0, err
	}
	return rt.heap.car(data)
}

func (rt *Runtime) scopeRoot(scope Value) (Value, error) {
	data, err := rt.heap.actorData(scope)
	if err != nil {
		return 0, err
	}
	return rt.heap.cdr(data)
}

// --- binding field accessors ------------------------------------------------

func (rt *Runtime) newBinding(symbol, value Value) (Value, error) {
	nilV := rt.singles.Nil
	lr, err := rt.heap.cons(nilV, nilV) // (left . right), both Nil
	if err != nil {
		return 0, err
	}
	withValue, err := rt.heap.cons(value, lr) // (value . (left . right))
	if err != nil {
		return 0, err
	}
	data, err := rt.heap.cons(symbol, withValue)
	if err != nil {
		return 0, err
	}
	return rt.heap.actorCreate(procValue(bindingProc), data)
}

func (rt *Runtime) bindingSymbol(b Value) (Value, error) {
	data, err := rt.heap.actorData(b)
	if err != nil {
		return 0, err
	}
	return rt.heap.car(data)
}

func (rt *Runtime) bindingRest1(b Value) (Value, error) {
	data, err := rt.heap.actorData(b)
	if err != nil {
		return 0, err
	}
	return rt.heap.cdr(data)
}

func (rt *Runtime) bindingValue(b Value) (Value, error) {
	rest1, err := rt.bindingRest1(b)
	if err != nil {
		return 0, err
	}
	return rt.heap.car(rest1)
}

func (rt *Runtime) setBindingValue(b, v Value) error {
	rest1, err := rt.bindingRest1(b)
	if err != nil {
		return err
	}
	return rt.heap.setCar(rest1, v)
}

func (rt *Runtime) bindingLR(b Value) (Value, error) {
	rest1, err := rt.bindingRest1(b)
	if err != nil {
		return 0, err
	}
	return rt.heap.cdr(rest1)
}

func (rt *Runtime) bindingLeft(b Value) (Value, error) {
	lr, err := rt.bindingLR(b)
	if err != nil {
		return 0, err
	}
	return rt.heap.car(lr)
}

func (rt *Runtime) setBindingLeft(b, v Value) error {
	lr, err := rt.bindingLR(b)
	if err != nil {
		return err
	}
	return rt.heap.setCar(lr, v)
}

func (rt *Runtime) bindingRight(b Value) (Value, error) {
	lr, err := rt.bindingLR(b)
	if err != nil {
		return 0, err
	}
	return rt.heap.cdr(lr)
}

func (rt *Runtime) setBindingRight(b, v Value) error {
	lr, err := rt.bindingLR(b)
	if err != nil {
		return err
	}
	return rt.heap.setCdr(lr, v)
}

func (rt *Runtime) symbolHandle(v Value) (uint64, error) {
	h, ok := SymIndex(v)
	if !ok {
		return 0, ErrTypeMismatch
	}
	return h, nil
}

// splaySearch walks root looking for sym, splaying the last node visited
// (whether a hit or the last node before falling off the tree) to the root
// via zig/zig-zig/zig-zag rotations. It returns the new root, the found
// binding (or the Nil value if not found), and whether it was a hit.
func (rt *Runtime) splaySearch(root, sym Value) (newRoot, found Value, hit bool, err error) {
	if root == rt.singles.Nil {
		return root, rt.singles.Nil, false, nil
	}
	wantH, err := rt.symbolHandle(sym)
	if err != nil {
		return 0, 0, false, err
	}

	var path []Value
	cur := root
	for cur != rt.singles.Nil {
		curSym, serr := rt.bindingSymbol(cur)
		if serr != nil {
			return 0, 0, false, serr
		}
		curH, herr := rt.symbolHandle(curSym)
		if herr != nil {
			return 0, 0, false, herr
		}
		path = append(path, cur)
		switch {
		case wantH == curH:
			if rerr := rt.splayToRoot(path); rerr != nil {
				return 0, 0, false, rerr
			}
			return path[len(path)-1], cur, true, nil
		case wantH < curH:
			next, nerr := rt.bindingLeft(cur)
			if nerr != nil {
				return 0, 0, false, nerr
			}
			cur = next
		default:
			next, nerr := rt.bindingRight(cur)
			if nerr != nil {
				return 0, 0, false, nerr
			}
			cur = next
		}
	}
	// Miss: splay the last node visited (path's tail) to the root anyway, per
	// the standard splay-tree discipline of moving the most recently touched
	// node up regardless of hit/miss.
	if rerr := rt.splayToRoot(path); rerr != nil {
		return 0, 0, false, rerr
	}
	return path[len(path)-1], rt.singles.Nil, false, nil
}

// splayToRoot rotates the last node in path to the root, in place, by
// repeated zig/zig-zig/zig-zag steps working from the bottom of the path
// upward.
func (rt *Runtime) splayToRoot(path []Value) error {
	relink := func(p, old, repl Value) error {
		if left, err := rt.isLeftChild(p, old); err != nil {
			return err
		} else if left {
			return rt.setBindingLeft(p, repl)
		}
		return rt.setBindingRight(p, repl)
	}
	for i := len(path) - 1; i > 0; i-- {
		node := path[i]
		parent := path[i-1]
		if i == 1 {
			if err := rt.rotate(parent, node); err != nil {
				return err
			}
			continue
		}
		grandparent := path[i-2]
		nodeIsLeftOfParent, err := rt.isLeftChild(parent, node)
		if err != nil {
			return err
		}
		parentIsLeftOfGrand, err := rt.isLeftChild(grandparent, parent)
		if err != nil {
			return err
		}
		if nodeIsLeftOfParent == parentIsLeftOfGrand {
			// zig-zig: rotate parent past grandparent first, then node past parent.
			if err := rt.rotate(grandparent, parent); err != nil {
				return err
			}
			if err := rt.rotate(parent, node); err != nil {
				return err
			}
		} else {
			// zig-zag: rotate node past parent twice.
			if err := rt.rotate(parent, node); err != nil {
				return err
			}
			if err := relink(grandparent, parent, node); err != nil {
				return err
			}
			if err := rt.rotate(grandparent, node); err != nil {
				return err
			}
		}
		if i >= 3 {
			if err := relink(path[i-3], grandparent, node); err != nil {
				return err
			}
		}
		path[i-2] = node
		i--
	}
	return nil
}

func (rt *Runtime) isLeftChild(parent, child Value) (bool, error) {
	left, err := rt.bindingLeft(parent)
	if err != nil {
		return false, err
	}
	return left == child, nil
}

// rotate performs a single rotation bringing child above parent, updating
// only the left/right fields involved. It does not touch whatever pointed at
// parent before the call; the caller (splayToRoot) relinks that pointer to
// child itself.
func (rt *Runtime) rotate(parent, child Value) error {
	parentLeft, err := rt.bindingLeft(parent)
	if err != nil {
		return err
	}
	if parentLeft == child {
		// Right rotation: child's right subtree becomes parent's left.
		childRight, err := rt.bindingRight(child)
		if err != nil {
			return err
		}
		if err := rt.setBindingLeft(parent, childRight); err != nil {
			return err
		}
		if err := rt.setBindingRight(child, parent); err != nil {
			return err
		}
		return nil
	}
	// Left rotation: child's left subtree becomes parent's right.
	childLeft, err := rt.bindingLeft(child)
	if err != nil {
		return err
	}
	if err := rt.setBindingRight(parent, childLeft); err != nil {
		return err
	}
	if err := rt.setBindingLeft(child, parent); err != nil {
		return err
	}
	return nil
}

// scopeInsertOrUpdate inserts sym->val as a new binding in root's splay
// tree, or updates the existing binding's value if sym is already present,
// and returns the new root (always the touched node, per splay discipline).
func (rt *Runtime) scopeInsertOrUpdate(root, sym, val Value) (newRoot Value, err error) {
	if root == rt.singles.Nil {
		return rt.newBinding(sym, val)
	}
	newRoot, found, hit, err := rt.splaySearch(root, sym)
	if err != nil {
		return 0, err
	}
	if hit {
		if err := rt.setBindingValue(found, val); err != nil {
			return 0, err
		}
		return newRoot, nil
	}
	// newRoot is the nearest node to sym; insert a fresh node as its parent,
	// stealing the appropriate subtree, and make the new node the root.
	fresh, err := rt.newBinding(sym, val)
	if err != nil {
		return 0, err
	}
	rootSym, err := rt.bindingSymbol(newRoot)
	if err != nil {
		return 0, err
	}
	rootH, err := rt.symbolHandle(rootSym)
	if err != nil {
		return 0, err
	}
	wantH, err := rt.symbolHandle(sym)
	if err != nil {
		return 0, err
	}
	if wantH < rootH {
		left, lerr := rt.bindingLeft(newRoot)
		if lerr != nil {
			return 0, lerr
		}
		if err := rt.setBindingLeft(newRoot, rt.singles.Nil); err != nil {
			return 0, err
		}
		if err := rt.setBindingLeft(fresh, left); err != nil {
			return 0, err
		}
		if err := rt.setBindingRight(fresh, newRoot); err != nil {
			return 0, err
		}
	} else {
		right, rerr := rt.bindingRight(newRoot)
		if rerr != nil {
			return 0, rerr
		}
		if err := rt.setBindingRight(newRoot, rt.singles.Nil); err != nil {
			return 0, err
		}
		if err := rt.setBindingRight(fresh, right); err != nil {
			return 0, err
		}
		if err := rt.setBindingLeft(fresh, newRoot); err != nil {
			return 0, err
		}
	}
	return fresh, nil
}

// --- actor behaviors ---------------------------------------------------

// scopeBehavior implements lookup/bind with splay acceleration and forwards
// everything else to parent, per spec.md §4.9.
func scopeBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, selector, rest, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	parent, perr := rt.scopeParent(self)
	if perr != nil {
		eb.Fail(perr)
		return
	}

	switch {
	case selIs(rt, selector, "lookup"):
		sym, serr := rt.heap.car(rest)
		if serr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		root, rerr := rt.scopeRoot(self)
		if rerr != nil {
			eb.Fail(rerr)
			return
		}
		if root == rt.singles.Nil {
			if parent == rt.singles.Nil {
				rt.replyError(eb, cust, ErrUndefinedVariable)
				return
			}
			eb.Send(parent, msg)
			return
		}
		newRoot, found, hit, serr2 := rt.splaySearch(root, sym)
		if serr2 != nil {
			eb.Fail(serr2)
			return
		}
		newData, derr := rt.heap.cons(parent, newRoot)
		if derr != nil {
			eb.Fail(derr)
			return
		}
		eb.Become(procValue(scopeProc), newData)
		if hit {
			val, verr := rt.bindingValue(found)
			if verr != nil {
				eb.Fail(verr)
				return
			}
			replyOK(eb, cust, val)
			return
		}
		if parent == rt.singles.Nil {
			rt.replyError(eb, cust, ErrUndefinedVariable)
			return
		}
		eb.Send(parent, msg)

	case selIs(rt, selector, "bind"):
		sym, serr := rt.heap.car(rest)
		if serr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		valTail, terr := rt.heap.cdr(rest)
		if terr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		val, verr := rt.heap.car(valTail)
		if verr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		root, rerr := rt.scopeRoot(self)
		if rerr != nil {
			eb.Fail(rerr)
			return
		}
		newRoot, ierr := rt.scopeInsertOrUpdate(root, sym, val)
		if ierr != nil {
			eb.Fail(ierr)
			return
		}
		newData, derr := rt.heap.cons(parent, newRoot)
		if derr != nil {
			eb.Fail(derr)
			return
		}
		eb.Become(procValue(scopeProc), newData)
		replyOK(eb, cust, rt.singles.Unit)

	case selIs(rt, selector, "typeq"):
		rt.replyTypeq(eb, cust, self, rest)

	default:
		if parent == rt.singles.Nil {
			rt.replyError(eb, cust, ErrUnknownSelector)
			return
		}
		eb.Send(parent, msg)
	}
}

// bindingBehavior is the actor code every splay-tree node carries. A Binding
// is never a message target in the normal lookup/bind path: its owning
// Scope reads and rotates symbol/value/left/right directly as plain pairs
// (see splaySearch/scopeInsertOrUpdate above). This behavior exists only so
// that a Binding value reached out of band — by construction, not reachable
// from any Scope operation — gets a well-formed error reply rather than
// hitting an unregistered-code panic.
func bindingBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	cust, _, _, err := msgParts(rt, msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	rt.replyError(eb, cust, ErrUnknownSelector)
}
