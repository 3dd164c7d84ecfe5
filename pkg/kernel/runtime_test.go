package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// evalString reads a single form from src, evaluates it in a fresh ground
// environment, drains the event queue, and returns the result. This mirrors
// clarete-langlang's own parser/VM scenario tests: feed source text through
// the whole pipeline and assert on the final observable state, rather than
// poking at internals.
func evalString(t *testing.T, rt *Runtime, src string) Value {
	t.Helper()
	v, err := readOneForTest(rt, src)
	require.NoError(t, err)
	collector, err := rt.NewCollector()
	require.NoError(t, err)
	require.NoError(t, rt.EnqueueEval(collector, v, rt.groundEnv))
	require.NoError(t, rt.Run())
	result, err := rt.CollectorValue(collector)
	require.NoError(t, err)
	return result
}

// readOneForTest is a tiny inline reader for the handful of forms these
// scenario tests need, avoiding an import cycle with pkg/reader (which
// itself depends on this package). pkg/reader/reader_test.go exercises the
// real external reader against this same runtime.
func readOneForTest(rt *Runtime, src string) (Value, error) {
	forms, err := parseAllForTest(rt, src)
	if err != nil {
		return 0, err
	}
	return forms[len(forms)-1], nil
}

func parseAllForTest(rt *Runtime, src string) ([]Value, error) {
	p := &miniParser{rt: rt, src: []rune(src)}
	var out []Value
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return out, nil
		}
		v, err := p.read()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

type miniParser struct {
	rt  *Runtime
	src []rune
	pos int
}

func (p *miniParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\n' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *miniParser) read() (Value, error) {
	p.skipSpace()
	if p.src[p.pos] == '(' {
		p.pos++
		var elems []Value
		for {
			p.skipSpace()
			if p.src[p.pos] == ')' {
				p.pos++
				break
			}
			v, err := p.read()
			if err != nil {
				return 0, err
			}
			elems = append(elems, v)
		}
		result := p.rt.singles.Nil
		for i := len(elems) - 1; i >= 0; i-- {
			v, err := p.rt.heap.cons(elems[i], result)
			if err != nil {
				return 0, err
			}
			result = v
		}
		return result, nil
	}
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ' ' && p.src[p.pos] != '(' && p.src[p.pos] != ')' && p.src[p.pos] != '\n' {
		p.pos++
	}
	lexeme := string(p.src[start:p.pos])
	switch lexeme {
	case "#t":
		return p.rt.singles.True, nil
	case "#f":
		return p.rt.singles.False, nil
	case "#ignore":
		return p.rt.singles.Ignore, nil
	}
	if n, ok := parseIntForTest(lexeme); ok {
		return MkInt(n), nil
	}
	return MkSymbol(p.rt.symbols.Intern(lexeme)), nil
}

func parseIntForTest(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(s) {
		return 0, false
	}
	var n int64
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int64(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := Boot(DefaultConfig())
	require.NoError(t, err)
	return rt
}

func TestBootInstallsSingletonsAndGroundEnv(t *testing.T) {
	rt := newTestRuntime(t)
	require.NotZero(t, rt.groundEnv)
	require.NotEqual(t, rt.singles.True, rt.singles.False)
}

func TestEvalSelfEvaluatingFixnum(t *testing.T) {
	rt := newTestRuntime(t)
	result := evalString(t, rt, "42")
	n, ok := ToInt(result)
	require.True(t, ok)
	require.Equal(t, int64(42), n)
}

func TestEvalArithmetic(t *testing.T) {
	rt := newTestRuntime(t)
	result := evalString(t, rt, "(+ 1 2 3)")
	n, ok := ToInt(result)
	require.True(t, ok)
	require.Equal(t, int64(6), n)
}

func TestEvalNestedArithmetic(t *testing.T) {
	rt := newTestRuntime(t)
	result := evalString(t, rt, "(* (+ 1 2) (- 10 4))")
	n, ok := ToInt(result)
	require.True(t, ok)
	require.Equal(t, int64(18), n)
}

func TestEvalIf(t *testing.T) {
	rt := newTestRuntime(t)
	result := evalString(t, rt, "($if #t 1 2)")
	n, _ := ToInt(result)
	require.Equal(t, int64(1), n)

	result = evalString(t, rt, "($if #f 1 2)")
	n, _ = ToInt(result)
	require.Equal(t, int64(2), n)
}

func TestEvalDefineAndLookup(t *testing.T) {
	rt := newTestRuntime(t)
	evalString(t, rt, "($define! x 10)")
	result := evalString(t, rt, "x")
	n, ok := ToInt(result)
	require.True(t, ok)
	require.Equal(t, int64(10), n)
}

func TestEvalLambdaApplication(t *testing.T) {
	rt := newTestRuntime(t)
	evalString(t, rt, "($define! sq ($lambda (x) (* x x)))")
	result := evalString(t, rt, "(sq 7)")
	n, ok := ToInt(result)
	require.True(t, ok)
	require.Equal(t, int64(49), n)
}

func TestEvalVauOperativeSeesUnevaluatedOperands(t *testing.T) {
	rt := newTestRuntime(t)
	// A $vau-built operative that ignores its dynamic environment and just
	// returns the unevaluated operand list as a quote-like form.
	evalString(t, rt, "($define! my-quote ($vau (x) #ignore x))")
	result := evalString(t, rt, "(my-quote (+ 1 2))")
	require.True(t, IsPair(result), "expected the unevaluated operand list back")
	head, err := rt.heap.car(result)
	require.NoError(t, err)
	name, ok := rt.SymbolName(head)
	require.True(t, ok)
	require.Equal(t, "+", name)
}

func TestEvalSequence(t *testing.T) {
	rt := newTestRuntime(t)
	result := evalString(t, rt, "($sequence ($define! x 1) ($define! y 2) (+ x y))")
	n, ok := ToInt(result)
	require.True(t, ok)
	require.Equal(t, int64(3), n)
}

func TestEvalUndefinedVariableYieldsErrorSentinel(t *testing.T) {
	rt := newTestRuntime(t)
	result := evalString(t, rt, "totally-undefined-name")
	require.True(t, IsErrorValue(rt, result))
	require.Equal(t, "undefined-variable", rt.ErrorKind(result))
}

func TestEvalArityMismatchYieldsErrorSentinel(t *testing.T) {
	rt := newTestRuntime(t)
	evalString(t, rt, "($define! one-arg ($lambda (x) x))")
	result := evalString(t, rt, "(one-arg 1 2)")
	require.True(t, IsErrorValue(rt, result))
	require.Equal(t, "arity-error", rt.ErrorKind(result))
}

func TestEvalUnknownSelectorYieldsErrorSentinel(t *testing.T) {
	rt := newTestRuntime(t)
	// Applying a non-combiner (a fixnum) as a combiner.
	result := evalString(t, rt, "(5 1 2)")
	require.True(t, IsErrorValue(rt, result))
}

func TestEvalPredicatesAndEquality(t *testing.T) {
	rt := newTestRuntime(t)
	require.Equal(t, rt.singles.True, evalString(t, rt, "(pair? (cons 1 2))"))
	require.Equal(t, rt.singles.False, evalString(t, rt, "(pair? 5)"))
	require.Equal(t, rt.singles.True, evalString(t, rt, "(equal? (cons 1 2) (cons 1 2))"))
	require.Equal(t, rt.singles.True, evalString(t, rt, "(eq? 5 5)"))
}

func TestEvalConsCarCdr(t *testing.T) {
	rt := newTestRuntime(t)
	result := evalString(t, rt, "(car (cons 1 2))")
	n, _ := ToInt(result)
	require.Equal(t, int64(1), n)

	result = evalString(t, rt, "(cdr (cons 1 2))")
	n, _ = ToInt(result)
	require.Equal(t, int64(2), n)
}

func TestEvalListEvaluatesOperandsLeftAndRightIndependently(t *testing.T) {
	rt := newTestRuntime(t)
	// Exercises C12 fork/join: evaluating a multi-element operand list must
	// preserve left-to-right result order regardless of dispatch order.
	result := evalString(t, rt, "(list 1 2 3 4)")
	elems, tail, err := rt.listToSlice(result)
	require.NoError(t, err)
	require.Equal(t, rt.singles.Nil, tail)
	require.Len(t, elems, 4)
	for i, want := range []int64{1, 2, 3, 4} {
		n, ok := ToInt(elems[i])
		require.True(t, ok)
		require.Equal(t, want, n)
	}
}

func TestWatchdogFiresAfterDispatchBudget(t *testing.T) {
	rt := newTestRuntime(t)
	collector, err := rt.NewCollector()
	require.NoError(t, err)
	require.NoError(t, rt.ArmWatchdog(collector, 1))

	// One unrelated dispatch to burn the budget.
	require.NoError(t, rt.EnqueueEval(rt.singles.Sink, MkInt(1), rt.groundEnv))
	require.NoError(t, rt.Run())

	v, err := rt.CollectorValue(collector)
	require.NoError(t, err)
	require.NotEqual(t, rt.singles.Undef, v, "watchdog should have overwritten the collector via its abort message")
}

func TestWatchdogCancelPreventsFiring(t *testing.T) {
	rt := newTestRuntime(t)
	collector, err := rt.NewCollector()
	require.NoError(t, err)
	require.NoError(t, rt.ArmWatchdog(collector, 5))
	require.True(t, rt.CancelWatchdog(collector))

	require.NoError(t, rt.EnqueueEval(rt.singles.Sink, MkInt(1), rt.groundEnv))
	require.NoError(t, rt.Run())

	v, err := rt.CollectorValue(collector)
	require.NoError(t, err)
	require.Equal(t, rt.singles.Undef, v)
}

func TestConcurrentGCDoesNotCorruptLiveEvaluation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GCMode = GCConcurrentMultiPhase
	rt, err := Boot(cfg)
	require.NoError(t, err)
	result := evalString(t, rt, "(+ (* 2 3) (* 4 5))")
	n, ok := ToInt(result)
	require.True(t, ok)
	require.Equal(t, int64(26), n)
}
