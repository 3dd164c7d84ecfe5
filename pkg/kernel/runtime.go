package kernel

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// GCMode selects the garbage collector's execution strategy, per spec.md §4.3
// and §6.
type GCMode string

const (
	GCStopTheWorld          GCMode = "stop-the-world"
	GCConcurrentMultiPhase  GCMode = "concurrent-multiphase"
	GCConcurrentSinglePass  GCMode = "concurrent-single-pass"
)

// Config carries the boot-time options named in spec.md §6. Callers that do
// not need to customize defaults should start from DefaultConfig(); Logger
// must be set explicitly (via DefaultConfig or NewLogger) since a zero-value
// zerolog.Logger writes to a nil writer.
type Config struct {
	HeapLimit        int    // cell count
	SymbolBufferSize int    // bytes
	GCMode           GCMode
	GCSkip           int // dispatches between concurrent GC cycles
	Logger           zerolog.Logger
}

// DefaultConfig returns sane defaults mirroring the teacher's own
// NewCPU()-style constructors (fixed, documented defaults rather than
// implicit zero values).
func DefaultConfig() Config {
	return Config{
		HeapLimit:        1 << 16,
		SymbolBufferSize: 1 << 16,
		GCMode:           GCStopTheWorld,
		GCSkip:           0,
		Logger:           zerolog.New(io.Discard),
	}
}

// singletons holds the fixed, statically-addressed core values of spec.md
// §3.1: UNDEF, UNIT, TRUE, FALSE, NIL, FAIL, SINK, and the ignore marker.
type singletons struct {
	Undef  Value
	Unit   Value
	True   Value
	False  Value
	Nil    Value
	Fail   Value
	Sink   Value
	Ignore Value
}

// Runtime is the single value owning the heap, event queue, symbol table,
// and GC state for one process, per spec.md §9's re-architecture guidance:
// "Global mutable heap and event queue become values owned by a single
// Runtime value."
type Runtime struct {
	heap    *Heap
	queue   *EventQueue
	symbols *SymbolTable
	gc      *gcState
	logger  zerolog.Logger
	config  Config

	singles    singletons
	selectors  map[string]Value
	dispatches int // dispatches run under a concurrent GC mode; paces GC steps with GCSkip

	watchdogs *watchdogManager

	groundEnv Value
}

// Boot initializes the symbol table, installs static singletons, constructs
// the ground environment, and returns a ready-to-run Runtime (spec.md §6).
func Boot(cfg Config) (*Runtime, error) {
	if cfg.HeapLimit <= 0 {
		cfg.HeapLimit = DefaultConfig().HeapLimit
	}
	if cfg.SymbolBufferSize <= 0 {
		cfg.SymbolBufferSize = DefaultConfig().SymbolBufferSize
	}
	if cfg.GCMode == "" {
		cfg.GCMode = GCStopTheWorld
	}

	rt := &Runtime{
		heap:      NewHeap(cfg.HeapLimit),
		queue:     NewEventQueue(),
		symbols:   NewSymbolTable(cfg.SymbolBufferSize),
		logger:    cfg.Logger,
		config:    cfg,
		selectors: make(map[string]Value),
	}
	rt.gc = newGCState(rt, cfg.GCMode)
	rt.watchdogs = newWatchdogManager(rt)

	if err := rt.installSelectors(); err != nil {
		return nil, err
	}
	if err := rt.installSingletons(); err != nil {
		return nil, err
	}
	if err := rt.installGround(); err != nil {
		return nil, err
	}

	rt.logger.Debug().
		Int("heap_limit", cfg.HeapLimit).
		Str("gc_mode", string(cfg.GCMode)).
		Msg("kernel runtime booted")
	return rt, nil
}

// NewLogger is a small convenience constructor mirroring the teacher's
// preference for human-readable console diagnostics (cmd/console's
// log.Fatalf/log.Print) but in zerolog's structured idiom.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Public projection API for external collaborators (spec.md §6: "the core
// consumes the value; it does not parse" / "does not format"). pkg/reader and
// pkg/printer are built entirely on these accessors, the same way the
// teacher's pkg/cpu/video.go only ever reads CPU state through accessor
// methods rather than reaching into CPU fields directly.

// Cons allocates a fresh Pair cell, for use by an external reader building
// parsed list structure.
func (rt *Runtime) Cons(head, tail Value) (Value, error) { return rt.heap.cons(head, tail) }

// Car and Cdr project a Pair's two fields, for use by an external printer
// walking parsed structure.
func (rt *Runtime) Car(v Value) (Value, error) { return rt.heap.car(v) }
func (rt *Runtime) Cdr(v Value) (Value, error) { return rt.heap.cdr(v) }

// InternSymbol returns the Symbol value for name, interning it if necessary.
func (rt *Runtime) InternSymbol(name string) Value {
	return MkSymbol(rt.symbols.Intern(name))
}

// SymbolName returns the interned text of a Symbol value, or "" if v is not
// Symbol-tagged.
func (rt *Runtime) SymbolName(v Value) (string, bool) {
	handle, ok := SymIndex(v)
	if !ok {
		return "", false
	}
	return rt.symbols.Lookup(handle)
}

// Nil, Unit, True, False, and Ignore expose the fixed singletons (spec.md
// §3.1) to external collaborators that need to build or recognize them (an
// external reader producing `()`, `#t`, `#f`, or `#ignore` literals; an
// external printer recognizing them to format their canonical spelling).
func (rt *Runtime) Nil() Value    { return rt.singles.Nil }
func (rt *Runtime) Unit() Value   { return rt.singles.Unit }
func (rt *Runtime) True() Value   { return rt.singles.True }
func (rt *Runtime) False() Value  { return rt.singles.False }
func (rt *Runtime) Ignore() Value { return rt.singles.Ignore }

// GroundEnv returns the ground environment actor installed during Boot, the
// root scope cmd/gokernel evaluates top-level forms in.
func (rt *Runtime) GroundEnv() Value { return rt.groundEnv }

// TypeTag classifies v the same way the `typeq`/`*?` ground predicates do,
// for use by an external printer choosing how to format a value.
func (rt *Runtime) TypeTag(v Value) string { return rt.typeTag(v) }

// sel returns the interned selector Value for name, installed during Boot.
func (rt *Runtime) sel(name string) Value {
	v, ok := rt.selectors[name]
	if !ok {
		panic(fmt.Sprintf("kernel: selector %q not installed", name))
	}
	return v
}

func (rt *Runtime) installSelectors() error {
	for _, name := range []string{
		"eval", "apply", "lookup", "bind", "match", "typeq", "if",
		"map", "reply", "abort", "mark", "sweep", "tag",
	} {
		rt.selectors[name] = MkSymbol(rt.symbols.Intern(name))
	}
	return nil
}

// list conses up vs into a proper list terminated by Nil.
func (rt *Runtime) list(vs ...Value) (Value, error) {
	result := rt.singles.Nil
	for i := len(vs) - 1; i >= 0; i-- {
		v, err := rt.heap.cons(vs[i], result)
		if err != nil {
			return 0, err
		}
		result = v
	}
	return result, nil
}

// listToSlice walks a proper or improper list and returns its elements and
// final tail (Nil for a proper list).
func (rt *Runtime) listToSlice(v Value) (elems []Value, tail Value, err error) {
	for IsPair(v) {
		h, err := rt.heap.car(v)
		if err != nil {
			return nil, 0, err
		}
		elems = append(elems, h)
		v, err = rt.heap.cdr(v)
		if err != nil {
			return nil, 0, err
		}
	}
	return elems, v, nil
}

// EnqueueEval enqueues an event that evaluates expr in env and replies the
// result to cust, per spec.md §6.
func (rt *Runtime) EnqueueEval(cust, expr, env Value) error {
	// Every value's eval behavior accepts (customer, 'eval, env) and replies
	// to customer with the evaluation result (spec.md §4.8).
	evalMsg, err := rt.list(cust, rt.sel("eval"), env)
	if err != nil {
		return err
	}
	rt.queue.Enqueue(Event{Target: expr, Message: evalMsg})
	return nil
}

// Run drains the event queue. Under a concurrent GC mode it runs one GC step
// every GCSkip+1 dispatches (every dispatch when GCSkip <= 0); under
// stop-the-world it collects whenever the queue empties. It returns when the
// queue is empty.
func (rt *Runtime) Run() error {
	for {
		ev, ok := rt.queue.Take()
		if !ok {
			if rt.config.GCMode == GCStopTheWorld {
				rt.gc.stopTheWorldCollect()
			}
			return nil
		}
		rt.dispatchOne(ev)
		rt.watchdogs.tick()
		if rt.config.GCMode != GCStopTheWorld {
			rt.dispatches++
			if rt.config.GCSkip <= 0 || rt.dispatches%(rt.config.GCSkip+1) == 0 {
				rt.gc.step()
			}
		}
	}
}

// ArmWatchdog arms a dispatch-budget watchdog targeting handler; see
// watchdog.go and spec.md §5.
func (rt *Runtime) ArmWatchdog(handler Value, dispatches int) error {
	return rt.watchdogs.ArmWatchdog(handler, dispatches)
}

// CancelWatchdog cancels a previously armed watchdog targeting handler.
func (rt *Runtime) CancelWatchdog(handler Value) bool {
	return rt.watchdogs.CancelWatchdog(handler)
}

// dispatchOne computes and applies the effect for one event, per spec.md
// §4.5. Failures are logged and discarded; the dispatcher continues. A
// GCInvariantViolation is never recovered here: it is fatal and propagates
// as a panic, per spec.md §7.
func (rt *Runtime) dispatchOne(ev Event) {
	effect := Dispatch(rt, ev.Target, ev.Message)
	if err := rt.applyEffect(ev.Target, effect); err != nil {
		rt.logger.Warn().Err(err).Msg("dispatch failed, event discarded")
	}
}
