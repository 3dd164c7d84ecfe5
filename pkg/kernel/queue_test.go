package kernel

import "testing"

func TestEventQueueFIFOOrder(t *testing.T) {
	q := NewEventQueue()
	q.Enqueue(Event{Target: MkInt(1)}, Event{Target: MkInt(2)}, Event{Target: MkInt(3)})
	for _, want := range []int64{1, 2, 3} {
		ev, ok := q.Take()
		if !ok {
			t.Fatalf("Take() ran out early, expected %d", want)
		}
		n, _ := ToInt(ev.Target)
		if n != want {
			t.Errorf("Take() = %d, want %d", n, want)
		}
	}
	if _, ok := q.Take(); ok {
		t.Error("Take() on an empty queue should report ok=false")
	}
}

func TestEventQueueLenTracksPending(t *testing.T) {
	q := NewEventQueue()
	if q.Len() != 0 {
		t.Fatalf("Len() on empty queue = %d, want 0", q.Len())
	}
	q.Enqueue(Event{Target: MkInt(1)}, Event{Target: MkInt(2)})
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
	q.Take()
	if q.Len() != 1 {
		t.Errorf("Len() after one Take = %d, want 1", q.Len())
	}
}

func TestEventQueuePendingReflectsUndispatchedEvents(t *testing.T) {
	q := NewEventQueue()
	q.Enqueue(Event{Target: MkInt(1)}, Event{Target: MkInt(2)}, Event{Target: MkInt(3)})
	q.Take()
	pending := q.Pending()
	if len(pending) != 2 {
		t.Fatalf("Pending() returned %d events, want 2", len(pending))
	}
	n0, _ := ToInt(pending[0].Target)
	n1, _ := ToInt(pending[1].Target)
	if n0 != 2 || n1 != 3 {
		t.Errorf("Pending() = [%d %d], want [2 3]", n0, n1)
	}
}

func TestEventQueueInterleavedEnqueueAndTake(t *testing.T) {
	q := NewEventQueue()
	q.Enqueue(Event{Target: MkInt(1)})
	ev, _ := q.Take()
	n, _ := ToInt(ev.Target)
	if n != 1 {
		t.Fatalf("first Take = %d, want 1", n)
	}
	q.Enqueue(Event{Target: MkInt(2)})
	ev, ok := q.Take()
	if !ok {
		t.Fatal("expected a second event")
	}
	n, _ = ToInt(ev.Target)
	if n != 2 {
		t.Errorf("second Take = %d, want 2", n)
	}
}
