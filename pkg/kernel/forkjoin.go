package kernel

// This file implements C12, fork/join: concurrent sub-evaluation of a pair's
// head and tail with tagged rendezvous so that results are paired up
// correctly regardless of which side replies first (spec.md §4.12). It is
// grounded on the teacher's message_sender.go/message_receiver.go protocol,
// where each queued message carries an explicit tag identifying which
// conversation it belongs to — generalized here from a two-party disk-backed
// queue to two in-memory tag actors and a join actor.
//
// Per spec.md §7's Open Question decision: fork/join does not cancel the
// pending sibling when the other side's reply turns out to be an error; the
// error value simply flows through to cust like any other result, and the
// two legs still have to both report in.

var (
	tagHeadProc ProcID
	tagTailProc ProcID
	joinProc    ProcID
)

func init() {
	tagHeadProc = registerProcKind(registerProc(tagHeadBehavior), "continuation")
	tagTailProc = registerProcKind(registerProc(tagTailBehavior), "continuation")
	joinProc = registerProcKind(registerProc(joinBehavior), "continuation")
}

func tagHeadBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) { tagForward(rt, self, msg, eb, true) }
func tagTailBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) { tagForward(rt, self, msg, eb, false) }

// tagForward forwards msg to self's parent join actor, tagged with which
// side this proxy stands for.
func tagForward(rt *Runtime, self, msg Value, eb *EffectBuilder, isHead bool) {
	join, err := rt.heap.actorData(self)
	if err != nil {
		eb.Fail(err)
		return
	}
	side := rt.singles.False
	if isHead {
		side = rt.singles.True
	}
	tagged, cerr := rt.heap.cons(side, msg)
	if cerr != nil {
		eb.Fail(cerr)
		return
	}
	eb.Send(join, tagged)
}

// joinBehavior's actor data is one of three shapes:
//   - cust                        (bare value, not a Pair): waiting for both legs
//   - (cust . (side . value))     (a Pair): one leg already reported in
//   - (#ignore . cust)            (a Pair): resolved; both legs already merged
//
// #ignore can never be a genuine customer (it is the formal-parameter
// "discard" marker, never an actor address a reply is sent to), so it is
// safe to use as the tag distinguishing "resolved" from "one leg pending"
// without an extra field. Once resolved, every further message — whichever
// side it claims to be, including a genuine duplicate of the side that
// resolved the join — replies an error to cust instead of re-running the
// merge, per spec.md's "unexpected tag: reply with error".
func joinBehavior(rt *Runtime, self, msg Value, eb *EffectBuilder) {
	side, err := rt.heap.car(msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	value, err := rt.heap.cdr(msg)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}

	data, err := rt.heap.actorData(self)
	if err != nil {
		eb.Fail(err)
		return
	}

	if !IsPair(data) {
		cust := data
		pending, perr := rt.heap.cons(side, value)
		if perr != nil {
			eb.Fail(perr)
			return
		}
		combined, perr2 := rt.heap.cons(cust, pending)
		if perr2 != nil {
			eb.Fail(perr2)
			return
		}
		eb.Become(procValue(joinProc), combined)
		return
	}

	tag, err := rt.heap.car(data)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	if tag == rt.singles.Ignore {
		origCust, cerr := rt.heap.cdr(data)
		if cerr != nil {
			eb.Fail(ErrTypeMismatch)
			return
		}
		rt.replyError(eb, origCust, ErrTypeMismatch)
		return
	}

	cust := tag
	pending, err := rt.heap.cdr(data)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	gotSide, err := rt.heap.car(pending)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}
	gotValue, err := rt.heap.cdr(pending)
	if err != nil {
		eb.Fail(ErrTypeMismatch)
		return
	}

	if gotSide == side {
		rt.replyError(eb, cust, ErrTypeMismatch)
		return
	}

	var headV, tailV Value
	if gotSide == rt.singles.True {
		headV, tailV = gotValue, value
	} else {
		headV, tailV = value, gotValue
	}
	result, rerr := rt.heap.cons(headV, tailV)
	if rerr != nil {
		eb.Fail(rerr)
		return
	}
	replyOK(eb, cust, result)

	resolved, rerr2 := rt.heap.cons(rt.singles.Ignore, cust)
	if rerr2 != nil {
		eb.Fail(rerr2)
		return
	}
	eb.Become(procValue(joinProc), resolved)
}

// forkJoinPair creates a join actor plus two tag proxies and dispatches
// headReq to headTarget and tailReq to tailTarget with the proxies spliced
// in as their customer, per spec.md §4.12.
func (rt *Runtime) forkJoinPair(eb *EffectBuilder, cust Value, headTarget Value, headSel Value, headArgs []Value, tailTarget Value, tailSel Value, tailArgs []Value) error {
	join, err := rt.heap.actorCreate(procValue(joinProc), cust)
	if err != nil {
		return err
	}
	eb.Created(join)

	tagH, err := rt.heap.actorCreate(procValue(tagHeadProc), join)
	if err != nil {
		return err
	}
	eb.Created(tagH)

	tagT, err := rt.heap.actorCreate(procValue(tagTailProc), join)
	if err != nil {
		return err
	}
	eb.Created(tagT)

	headReq, err := rt.list(append([]Value{tagH, headSel}, headArgs...)...)
	if err != nil {
		return err
	}
	tailReq, err := rt.list(append([]Value{tagT, tailSel}, tailArgs...)...)
	if err != nil {
		return err
	}
	eb.Send(headTarget, headReq)
	eb.Send(tailTarget, tailReq)
	return nil
}
