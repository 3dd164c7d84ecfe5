package kernel

import "golang.org/x/sync/semaphore"

// This file implements spec.md §5's watchdog: "A watchdog actor may be
// armed with a timeout; on expiry it sends an abort message to a
// registered handler." In this single-threaded cooperative scheduler there
// is no wall clock to race, so a timeout is naturally a dispatch budget:
// the watchdog fires after a given number of further events have been
// processed. A semaphore.Weighted bounds how many watchdogs may be armed
// at once, the same backpressure role the teacher's peripheral DMA byte
// budget plays for pkg/peripherals/dma_tester.go.
const maxConcurrentWatchdogs = 64

type watchdogEntry struct {
	handler   Value
	remaining int
}

// watchdogManager tracks armed watchdogs and decrements them once per
// dispatch (Runtime.Run), independent of the effect-transaction machinery:
// firing a watchdog is dispatcher housekeeping, like GC, not a behavior's
// own effect.
type watchdogManager struct {
	rt      *Runtime
	sem     *semaphore.Weighted
	entries []*watchdogEntry
}

func newWatchdogManager(rt *Runtime) *watchdogManager {
	return &watchdogManager{rt: rt, sem: semaphore.NewWeighted(maxConcurrentWatchdogs)}
}

// ArmWatchdog arms a watchdog that fires after `dispatches` further events
// are processed unless cancelled first, sending (handler, abort) at expiry.
func (w *watchdogManager) ArmWatchdog(handler Value, dispatches int) error {
	if !w.sem.TryAcquire(1) {
		return ErrWatchdogCapacity
	}
	if dispatches < 1 {
		dispatches = 1
	}
	w.entries = append(w.entries, &watchdogEntry{handler: handler, remaining: dispatches})
	return nil
}

// CancelWatchdog removes the first armed watchdog targeting handler, if
// any, releasing its capacity slot without firing.
func (w *watchdogManager) CancelWatchdog(handler Value) bool {
	for i, e := range w.entries {
		if e.handler == handler {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			w.sem.Release(1)
			return true
		}
	}
	return false
}

// tick decrements every armed watchdog by one dispatch and enqueues an
// abort message for any that reach zero.
func (w *watchdogManager) tick() {
	if len(w.entries) == 0 {
		return
	}
	rt := w.rt
	live := w.entries[:0]
	for _, e := range w.entries {
		e.remaining--
		if e.remaining > 0 {
			live = append(live, e)
			continue
		}
		abortMsg, err := rt.list(rt.singles.Sink, rt.sel("abort"))
		if err == nil {
			rt.queue.Enqueue(Event{Target: e.handler, Message: abortMsg})
		}
		w.sem.Release(1)
	}
	w.entries = live
}

// roots reports every watchdog's handler, so the GC never collects an actor
// that still has an armed watchdog pointed at it (spec.md §4.3's "small set
// of named static actors" extended to dynamically armed ones).
func (w *watchdogManager) roots() []Value {
	vs := make([]Value, 0, len(w.entries))
	for _, e := range w.entries {
		vs = append(vs, e.handler)
	}
	return vs
}
