package kernel

import "testing"

func TestConsCarCdr(t *testing.T) {
	h := NewHeap(1024)
	p, err := h.cons(MkInt(1), MkInt(2))
	if err != nil {
		t.Fatalf("cons: %v", err)
	}
	head, err := h.car(p)
	if err != nil || head != MkInt(1) {
		t.Errorf("car = (%v, %v), want (1, nil)", head, err)
	}
	tail, err := h.cdr(p)
	if err != nil || tail != MkInt(2) {
		t.Errorf("cdr = (%v, %v), want (2, nil)", tail, err)
	}
}

func TestSetCarSetCdr(t *testing.T) {
	h := NewHeap(1024)
	p, _ := h.cons(MkInt(1), MkInt(2))
	if err := h.setCar(p, MkInt(10)); err != nil {
		t.Fatalf("setCar: %v", err)
	}
	if err := h.setCdr(p, MkInt(20)); err != nil {
		t.Fatalf("setCdr: %v", err)
	}
	head, _ := h.car(p)
	tail, _ := h.cdr(p)
	if head != MkInt(10) || tail != MkInt(20) {
		t.Errorf("after mutation: (%v, %v), want (10, 20)", head, tail)
	}
}

func TestBecomePreservesIdentity(t *testing.T) {
	h := NewHeap(1024)
	a, _ := h.actorCreate(MkInt(1), MkInt(2))
	if err := h.become(a, MkInt(5), MkInt(6)); err != nil {
		t.Fatalf("become: %v", err)
	}
	code, _ := h.actorCode(a)
	data, _ := h.actorData(a)
	if code != MkInt(5) || data != MkInt(6) {
		t.Errorf("after become: (%v, %v), want (5, 6)", code, data)
	}
}

func TestOutOfMemory(t *testing.T) {
	h := NewHeap(2) // sentinel + one cell
	if _, err := h.cons(MkInt(1), MkInt(2)); err != nil {
		t.Fatalf("first cons should succeed: %v", err)
	}
	if _, err := h.cons(MkInt(3), MkInt(4)); err != ErrOutOfMemory {
		t.Errorf("second cons: got %v, want ErrOutOfMemory", err)
	}
}

func TestCellFreeThenReuse(t *testing.T) {
	h := NewHeap(1024)
	p, _ := h.cons(MkInt(1), MkInt(2))
	addr, _ := ToPtr(p)
	if err := h.cellFree(addr); err != nil {
		t.Fatalf("cellFree: %v", err)
	}
	p2, _ := h.cons(MkInt(9), MkInt(9))
	addr2, _ := ToPtr(p2)
	if addr2 != addr {
		t.Errorf("cellNew did not reuse freed cell: got %d, want %d", addr2, addr)
	}
}

func TestDoubleFree(t *testing.T) {
	h := NewHeap(1024)
	p, _ := h.cons(MkInt(1), MkInt(2))
	addr, _ := ToPtr(p)
	if err := h.cellFree(addr); err != nil {
		t.Fatalf("first free: %v", err)
	}
	if err := h.cellFree(addr); err != ErrDoubleFree {
		t.Errorf("second free: got %v, want ErrDoubleFree", err)
	}
}

func TestMarkAndSweepReclaimsUnreachable(t *testing.T) {
	h := NewHeap(1024)
	reachable, _ := h.cons(MkInt(1), MkInt(2))
	garbage, _ := h.cons(MkInt(3), MkInt(4))

	h.resetMarksKeepSentinel()
	h.markValue(reachable)
	h.sweepAll()

	if _, err := h.car(reachable); err != nil {
		t.Errorf("reachable cell should survive sweep: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("unreachable cell should be reclaimed by sweep (expected a freed-cell panic)")
			}
		}()
		h.car(garbage)
	}()
}

func TestMarkValueTransitiveThroughPairs(t *testing.T) {
	h := NewHeap(1024)
	inner, _ := h.cons(MkInt(1), MkInt(1))
	outer, _ := h.cons(inner, MkInt(2))

	h.resetMarksKeepSentinel()
	h.markValue(outer)
	h.sweepAll()

	if _, err := h.car(inner); err != nil {
		t.Errorf("inner cell reachable via outer should survive sweep: %v", err)
	}
}

func TestCheckLiveDetectsFreedCellAccess(t *testing.T) {
	h := NewHeap(1024)
	p, _ := h.cons(MkInt(1), MkInt(2))
	addr, _ := ToPtr(p)
	_ = h.cellFree(addr)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic dispatching to a freed cell")
		}
		if _, ok := r.(GCInvariantViolation); !ok {
			t.Errorf("panic value = %v, want GCInvariantViolation", r)
		}
	}()
	_, _ = h.car(p)
}
