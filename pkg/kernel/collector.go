package kernel

// A collector is a trivial actor used by a host program (cmd/gokernel, or a
// test) as the customer of a top-level EnqueueEval: it remembers the last
// message it was sent via become, so the result can be read back from Go
// once Run drains the queue. This is not part of the language itself — it
// is the same role rt.singles.Sink plays for replies nobody needs to
// observe, except a collector keeps what it receives instead of discarding
// it, mirroring the teacher's habit of giving every peripheral a plain
// getter (CPU.GetFramebufferRGBA) rather than exposing raw internal state.
var collectorProc ProcID

func init() {
	collectorProc = registerProcKind(registerProc(collectorBehavior), "collector")
}

func collectorBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	eb.Become(procValue(collectorProc), msg)
}

// NewCollector allocates a collector actor, initially holding Undef.
func (rt *Runtime) NewCollector() (Value, error) {
	return rt.heap.actorCreate(procValue(collectorProc), rt.singles.Undef)
}

// CollectorValue reads the last value sent to a collector actor.
func (rt *Runtime) CollectorValue(collector Value) (Value, error) {
	return rt.heap.actorData(collector)
}
