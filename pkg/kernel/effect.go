package kernel

// Effect is the transactional record of what one behavior invocation wishes
// to change (spec.md §4.6): a list of actors created (already allocated on
// the heap — this list is bookkeeping only), a list of events to append to
// the queue, and an optional new behavior for the invoking actor.
type Effect struct {
	Created []Value
	Sent    []Event
	Become  *behaviorChange
	Failed  bool
	Err     error
}

// behaviorChange captures a single become: the new code/data fields to
// atomically install on the invoking actor.
type behaviorChange struct {
	code Value
	data Value
}

// EffectBuilder accumulates one behavior invocation's effect. Behaviors
// receive a builder instead of constructing an Effect directly so that the
// at-most-once become rule (spec.md §4.6, §8) can be enforced at the point
// of the second call rather than discovered later.
type EffectBuilder struct {
	created []Value
	sent    []Event
	become  *behaviorChange
	failed  bool
	err     error
}

// Send queues one event to be appended to the dispatcher's queue if this
// effect is applied successfully.
func (b *EffectBuilder) Send(target, message Value) {
	b.sent = append(b.sent, Event{Target: target, Message: message})
}

// Created records a newly allocated actor as part of this effect's
// bookkeeping (it is already on the heap; recording it here is purely
// informational for callers that want to know what a dispatch produced).
func (b *EffectBuilder) Created(v Value) {
	b.created = append(b.created, v)
}

// Become requests a behavior change for the invoking actor. A second call
// within the same invocation is a programming error: it does not panic (this
// is a language-level error, not a heap-corruption one) but marks the effect
// failed with ErrMultipleBecome, per spec.md §4.6's invariant and §8's
// testable property.
func (b *EffectBuilder) Become(code, data Value) {
	if b.become != nil {
		b.Fail(ErrMultipleBecome)
		return
	}
	b.become = &behaviorChange{code: code, data: data}
}

// Fail marks the effect as failed. A failed effect discards its creations
// and sends and does not apply any become, per spec.md §4.6.
func (b *EffectBuilder) Fail(err error) {
	b.failed = true
	b.err = err
}

// Build finalizes the accumulated effect.
func (b *EffectBuilder) Build() Effect {
	if b.failed {
		return Effect{Failed: true, Err: b.err}
	}
	return Effect{Created: b.created, Sent: b.sent, Become: b.become}
}

// applyEffect applies effect atomically to self, per spec.md §4.6: on
// failure, discard creations and sends and do not update behavior; on
// success, append sent events to the queue and, if present, atomically swap
// self's code/data fields.
func (rt *Runtime) applyEffect(self Value, effect Effect) error {
	if effect.Failed {
		rt.logger.Debug().Err(effect.Err).Msg("effect discarded")
		return effect.Err
	}
	if effect.Become != nil {
		if err := rt.heap.become(self, effect.Become.code, effect.Become.data); err != nil {
			return err
		}
	}
	if len(effect.Sent) > 0 {
		rt.queue.Enqueue(effect.Sent...)
	}
	return nil
}
