package kernel

// This file implements C3, the mark-sweep collector, per spec.md §4.3. It is
// grounded on the teacher having no GC of its own (the CPU simply never
// frees memory), so the phase vocabulary (mark/sweep, gc_running as the
// "unsafe window" guard) is adopted from _examples/Go-zh-go.old's runtime
// GC naming rather than from any teacher source — documented in DESIGN.md.
//
// Roots are the event queue's pending (target, message) pairs, the eight
// static singletons, the ground environment, and the watchdog manager's own
// live timers (spec.md §4.3's "small set of named static actors").

// gcState drives one Runtime's collector according to its configured mode.
// In stop-the-world mode it is only ever invoked between dispatches, doing
// a full mark then a full sweep synchronously. In either concurrent mode it
// is invoked once per eligible dispatch (gated by Config.GCSkip) and
// performs exactly one phase per call, modeling "the GC is itself an actor
// that alternates two behaviors" as a two-state machine advanced by the
// dispatcher rather than as a literal heap-resident Actor value — the
// gc_running discipline it enforces on the heap is the externally
// observable behavior spec.md §4.3 actually tests for.
type gcState struct {
	rt    *Runtime
	mode  GCMode
	phase string // "mark" is next, or "sweep" is next
}

func newGCState(rt *Runtime, mode GCMode) *gcState {
	return &gcState{rt: rt, mode: mode, phase: "mark"}
}

// roots collects every Value the mutator can still reach without going
// through the heap's own Pair/Actor graph.
func (g *gcState) roots() []Value {
	rt := g.rt
	vs := []Value{
		rt.singles.Undef, rt.singles.Unit, rt.singles.True, rt.singles.False,
		rt.singles.Nil, rt.singles.Fail, rt.singles.Sink, rt.singles.Ignore,
	}
	if rt.groundEnv != 0 {
		vs = append(vs, rt.groundEnv)
	}
	for _, ev := range rt.queue.Pending() {
		vs = append(vs, ev.Target, ev.Message)
	}
	if rt.watchdogs != nil {
		vs = append(vs, rt.watchdogs.roots()...)
	}
	return vs
}

func (g *gcState) markRoots() {
	rt := g.rt
	rt.heap.resetMarksKeepSentinel()
	for _, v := range g.roots() {
		rt.heap.markValue(v)
	}
}

// stopTheWorldCollect runs a complete mark-then-sweep pass. It is called
// only when the event queue has just gone empty (Runtime.Run), so there is
// no live dispatch whose in-flight effect could race it.
func (g *gcState) stopTheWorldCollect() {
	g.markRoots()
	g.rt.heap.sweepAll()
	g.rt.logger.Debug().Msg("stop-the-world GC cycle complete")
}

// step advances the collector by exactly one phase when running in either
// concurrent mode; it is a no-op under stop-the-world (which instead runs
// via stopTheWorldCollect when the queue empties).
func (g *gcState) step() {
	rt := g.rt
	switch g.mode {
	case GCConcurrentMultiPhase:
		if g.phase == "mark" {
			rt.heap.gcRunning = true
			g.markRoots()
			g.phase = "sweep"
		} else {
			rt.heap.sweepAll()
			rt.heap.gcRunning = false
			g.phase = "mark"
		}
	case GCConcurrentSinglePass:
		rt.heap.gcRunning = true
		g.markRoots()
		rt.heap.sweepAll()
		rt.heap.gcRunning = false
	}
}
