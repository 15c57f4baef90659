package interpreter

import (
	"context"
	"io"
	"strings"
	"testing"
)

func testEval(t *testing.T, input string, opts ...Option) (Object, error) {
	t.Helper()
	opts = append([]Option{WithStdout(io.Discard)}, opts...)
	return New(opts...).Run(context.Background(), input)
}

func expectNumber(t *testing.T, input string, want float64) {
	t.Helper()
	result, err := testEval(t, input)
	if err != nil {
		t.Fatalf("eval %q failed: %v", input, err)
	}
	n, ok := result.(*Number)
	if !ok {
		t.Fatalf("eval %q: expected number, got %s (%s)", input, result.Type(), result.Inspect())
	}
	if n.Value != want {
		t.Fatalf("eval %q: expected %v, got %v", input, want, n.Value)
	}
}

func expectRuntimeError(t *testing.T, input, contains string) {
	t.Helper()
	_, err := testEval(t, input)
	if err == nil {
		t.Fatalf("eval %q: expected error", input)
	}
	if code, _ := ErrorCodeOf(err); code != ErrCodeRuntime {
		t.Fatalf("eval %q: expected %s, got %v", input, ErrCodeRuntime, err)
	}
	if contains != "" && !strings.Contains(err.Error(), contains) {
		t.Fatalf("eval %q: expected error containing %q, got %v", input, contains, err)
	}
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"5", 5},
		{"2 addethPolitelyWith 3 multiplethPolitelyWith 4", 14},
		{"(2 addethPolitelyWith 3) multiplethPolitelyWith 4", 20},
		{"10 subtractethPolitelyWith 4 subtractethPolitelyWith 3", 3},
		{"20 dividethPolitelyWith 4 dividethPolitelyWith 5", 1},
		{"7 modulethPolitelyWith 3", 1},
		{"7 dividethPolitelyWith 2", 3.5},
		{"2 multiplethPolitelyWith (3 subtractethPolitelyWith 5)", -4},
	}
	for _, tt := range tests {
		expectNumber(t, tt.input, tt.want)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	expectRuntimeError(t, "1 dividethPolitelyWith 0", "division by zero")
	expectRuntimeError(t, "1 modulethPolitelyWith 0", "modulo by zero")
}

func TestEvalStrings(t *testing.T) {
	result, err := testEval(t, `"Romeo" addethPolitelyWith " and " addethPolitelyWith "Juliet"`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if result.Inspect() != "Romeo and Juliet" {
		t.Fatalf("unexpected result %q", result.Inspect())
	}
	expectRuntimeError(t, `"a" subtractethPolitelyWith "b"`, "")
	expectRuntimeError(t, `1 addethPolitelyWith "a"`, "type mismatch")
	expectRuntimeError(t, `"a" `+"`lessThanThou`"+` "b"`, "")
}

func TestEvalNullOperands(t *testing.T) {
	expectRuntimeError(t, "asHollowAsAFoolsHead addethPolitelyWith 1", "null")
	expectRuntimeError(t, "1 `greaterThanThou` asHollowAsAFoolsHead", "null")
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3 `greaterThanThou` 2", true},
		{"3 `lessThanThou` 2", false},
		{"2 `greaterThanEquivalethToThou` 2", true},
		{"2 `lessThanEquivalethToThou` 1", false},
		{"2 `equivalethTo` 2", true},
		{"2 `notEquivalethTo` 2", false},
		{`"a" ` + "`equivalethTo`" + ` "a"`, true},
		{"1 addethPolitelyWith 2 `equivalethTo` 3", true},
		{"asHollowAsAFoolsHead `equivalethTo` asHollowAsAFoolsHead", true},
		{"asHollowAsAFoolsHead `equivalethTo` 1", false},
		{"1 `notEquivalethTo` asHollowAsAFoolsHead", true},
		{"asTrueAsTheLightOfDay `equivalethTo` asTrueAsTheLightOfDay", true},
		{"asTrueAsTheLightOfDay `andeth` asFalseAsAFlimsyFabric", false},
		{"asTrueAsTheLightOfDay `either` asFalseAsAFlimsyFabric", true},
		{"asTrueAsTheLightOfDay `andeth` 1", false},
		{"1 `either` asTrueAsTheLightOfDay", false},
		{"1 `lessThanThou` 2 `andeth` 3 `greaterThanThou` 2", true},
	}
	for _, tt := range tests {
		result, err := testEval(t, tt.input)
		if err != nil {
			t.Fatalf("eval %q failed: %v", tt.input, err)
		}
		b, ok := result.(*Boolean)
		if !ok || b.Value != tt.want {
			t.Fatalf("eval %q: expected %v, got %s", tt.input, tt.want, result.Inspect())
		}
	}
	expectRuntimeError(t, `1 `+"`equivalethTo`"+` "1"`, "compare")
}

func TestEvalDeclarationsAndConstants(t *testing.T) {
	in := New(WithStdout(io.Discard))
	ctx := context.Background()

	result, err := in.Run(ctx, "granteth yonder x equivalethTo 5 withUtmostRespect x")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.(*Number).Value != 5 {
		t.Fatalf("expected 5, got %s", result.Inspect())
	}

	result, err = in.Run(ctx, "steadFast yonder y equivalethTo x addethPolitelyWith 2 withUtmostRespect y")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.(*Number).Value != 7 {
		t.Fatalf("expected 7, got %s", result.Inspect())
	}

	_, err = in.Run(ctx, "y equivalethTo 1 withUtmostRespect")
	if err == nil || !strings.Contains(err.Error(), "constant") {
		t.Fatalf("expected constant reassignment error, got %v", err)
	}

	result, err = in.Run(ctx, "y")
	if err != nil || result.(*Number).Value != 7 {
		t.Fatalf("expected y to survive the failed input, got %v, %v", result, err)
	}
}

func TestEvalDeclarationYieldsValue(t *testing.T) {
	expectNumber(t, "granteth yonder x equivalethTo 3 withUtmostRespect", 3)
	result, err := testEval(t, "granteth yonder x withUtmostRespect x")
	if err != nil || result != NULL {
		t.Fatalf("expected null for an uninitialized declaration, got %v, %v", result, err)
	}
}

func TestEvalRedeclaration(t *testing.T) {
	expectRuntimeError(t, `
	granteth yonder a equivalethTo 1 withUtmostRespect
	granteth yonder a equivalethTo 2 withUtmostRespect`, "redeclare")
}

func TestEvalAssignment(t *testing.T) {
	expectNumber(t, `
	granteth yonder a equivalethTo 1 withUtmostRespect
	granteth yonder b equivalethTo 1 withUtmostRespect
	a equivalethTo b equivalethTo 9 withUtmostRespect
	a addethPolitelyWith b`, 18)
	expectRuntimeError(t, "undeclared equivalethTo 1 withUtmostRespect", "not declared")
	expectRuntimeError(t, "asTrueAsTheLightOfDay equivalethTo 1 withUtmostRespect", "constant")
}

func TestEvalIfScoping(t *testing.T) {
	expectNumber(t, `
	granteth yonder a equivalethTo 1 withUtmostRespect
	providethThouFindestThyConditionTrue (asTrueAsTheLightOfDay) {
		granteth yonder a equivalethTo 2 withUtmostRespect
	}
	a`, 1)
	expectNumber(t, `
	granteth yonder a equivalethTo 1 withUtmostRespect
	providethThouFindestThyConditionTrue (asTrueAsTheLightOfDay) {
		a equivalethTo 2 withUtmostRespect
	}
	a`, 2)
}

func TestEvalIfElse(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"providethThouFindestThyConditionTrue (1 `lessThanThou` 2) { 10 } elsewiseRunnethThis { 20 }", 10},
		{"providethThouFindestThyConditionTrue (1 `greaterThanThou` 2) { 10 } elsewiseRunnethThis { 20 }", 20},
		{"providethThouFindestThyConditionTrue (1) { 10 } elsewiseRunnethThis { 20 }", 20},
		{`
		granteth yonder x equivalethTo 5 withUtmostRespect
		providethThouFindestThyConditionTrue (x ` + "`lessThanThou`" + ` 3) { 1 }
		elsewiseRunnethThis providethThouFindestThyConditionTrue (x ` + "`lessThanThou`" + ` 6) { 2 }
		elsewiseRunnethThis { 3 }`, 2},
	}
	for _, tt := range tests {
		expectNumber(t, tt.input, tt.want)
	}

	result, err := testEval(t, "providethThouFindestThyConditionTrue (asFalseAsAFlimsyFabric) { 1 }")
	if err != nil || result != NULL {
		t.Fatalf("expected null when no branch runs, got %v, %v", result, err)
	}
}

func TestEvalWhile(t *testing.T) {
	expectNumber(t, `
	granteth yonder i equivalethTo 0 withUtmostRespect
	whilstThouConditionHolds (i `+"`lessThanThou`"+` 5) {
		i equivalethTo i addethPolitelyWith 1 withUtmostRespect
	}
	i`, 5)

	result, err := testEval(t, "whilstThouConditionHolds (asFalseAsAFlimsyFabric) { 1 }")
	if err != nil || result != NULL {
		t.Fatalf("expected null from while, got %v, %v", result, err)
	}
}

func TestEvalFor(t *testing.T) {
	expectNumber(t, `
	granteth yonder sum equivalethTo 0 withUtmostRespect
	forsoothCyclethThroughThyRange (granteth yonder i equivalethTo 0 withUtmostRespect i `+"`lessThanThou`"+` 4 withUtmostRespect i equivalethTo i addethPolitelyWith 1) {
		sum equivalethTo sum addethPolitelyWith i withUtmostRespect
	}
	sum`, 6)

	expectRuntimeError(t, `
	forsoothCyclethThroughThyRange (granteth yonder i equivalethTo 0 withUtmostRespect i `+"`lessThanThou`"+` 2 withUtmostRespect i equivalethTo i addethPolitelyWith 1) { }
	i`, "not declared")
}

func TestEvalLoopBodyDeclarationFailsOnSecondIteration(t *testing.T) {
	expectRuntimeError(t, `
	granteth yonder i equivalethTo 0 withUtmostRespect
	whilstThouConditionHolds (i `+"`lessThanThou`"+` 3) {
		granteth yonder t equivalethTo i withUtmostRespect
		i equivalethTo i addethPolitelyWith 1 withUtmostRespect
	}`, "redeclare")
}

func TestEvalFunctions(t *testing.T) {
	expectNumber(t, `
	proclaimethThyVerse add(a invokeThouComma b) { a addethPolitelyWith b }
	add(2 invokeThouComma 3)`, 5)

	expectNumber(t, `
	proclaimethThyVerse fact(n) {
		providethThouFindestThyConditionTrue (n `+"`lessThanEquivalethToThou`"+` 1) { 1 }
		elsewiseRunnethThis { n multiplethPolitelyWith fact(n subtractethPolitelyWith 1) }
	}
	fact(5)`, 120)

	result, err := testEval(t, "proclaimethThyVerse nothing() { } nothing()")
	if err != nil || result != NULL {
		t.Fatalf("expected null from an empty body, got %v, %v", result, err)
	}
}

func TestEvalClosures(t *testing.T) {
	expectNumber(t, `
	granteth yonder n equivalethTo 1 withUtmostRespect
	proclaimethThyVerse getN() { n }
	proclaimethThyVerse caller() {
		granteth yonder n equivalethTo 99 withUtmostRespect
		getN()
	}
	caller()`, 1)

	expectNumber(t, `
	proclaimethThyVerse makeCounter() {
		granteth yonder count equivalethTo 0 withUtmostRespect
		proclaimethThyVerse inc() {
			count equivalethTo count addethPolitelyWith 1 withUtmostRespect
			count
		}
		inc
	}
	granteth yonder c equivalethTo makeCounter() withUtmostRespect
	c()
	c()
	c()`, 3)
}

func TestEvalCallErrors(t *testing.T) {
	expectRuntimeError(t, "proclaimethThyVerse f(a) { a } f()", "expects 1 arguments")
	expectRuntimeError(t, "granteth yonder x equivalethTo 1 withUtmostRespect x()", "cannot call")
	expectRuntimeError(t, "proclaimethThyVerse f() { 1 } f equivalethTo 2 withUtmostRespect", "constant")
}

func TestEvalCallDepth(t *testing.T) {
	_, err := testEval(t, "proclaimethThyVerse f() { f() } f()", WithRuntimeConfig(RuntimeConfig{MaxCallDepth: 50}))
	if err == nil || !strings.Contains(err.Error(), "call depth") {
		t.Fatalf("expected call depth error, got %v", err)
	}
}

func TestEvalObjects(t *testing.T) {
	expectNumber(t, `
	granteth yonder p equivalethTo { name summonThyColon "Romeo" invokeThouComma age summonThyColon 16 } withUtmostRespect
	p fullethStop age equivalethTo p fullethStop age addethPolitelyWith 1 withUtmostRespect
	p fullethStop age`, 17)

	expectNumber(t, `
	granteth yonder age equivalethTo 13 withUtmostRespect
	granteth yonder p equivalethTo { age } withUtmostRespect
	p["age"]`, 13)

	expectNumber(t, `
	granteth yonder p equivalethTo { inner summonThyColon { x summonThyColon 1 } } withUtmostRespect
	granteth yonder key equivalethTo "x" withUtmostRespect
	p fullethStop inner[key] equivalethTo 42 withUtmostRespect
	p fullethStop inner fullethStop x`, 42)

	result, err := testEval(t, `
	granteth yonder p equivalethTo { a summonThyColon 1 } withUtmostRespect
	p fullethStop missing`)
	if err != nil || result != NULL {
		t.Fatalf("expected null for a missing key, got %v, %v", result, err)
	}

	result, err = testEval(t, `
	granteth yonder p equivalethTo { } withUtmostRespect
	p fullethStop added equivalethTo "yes" withUtmostRespect
	p`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if result.Inspect() != "{added: yes}" {
		t.Fatalf("unexpected object %s", result.Inspect())
	}

	expectRuntimeError(t, "granteth yonder x equivalethTo 1 withUtmostRespect x fullethStop y", "cannot access")
	expectRuntimeError(t, "granteth yonder p equivalethTo { missing } withUtmostRespect", "not declared")
}

func TestEvalArrays(t *testing.T) {
	setup := "granteth yonder arr equivalethTo [1 invokeThouComma 2 addethPolitelyWith 1 invokeThouComma 5] withUtmostRespect\n"
	expectNumber(t, setup+"arr addethPolitelyWith 1", 3)
	expectNumber(t, setup+"arr[2]", 5)
	expectNumber(t, setup+"arr[0] equivalethTo 10 withUtmostRespect arr[0]", 10)
	expectNumber(t, setup+`
	granteth yonder total equivalethTo 0 withUtmostRespect
	forsoothCyclethThroughThyRange (granteth yonder i equivalethTo 0 withUtmostRespect i `+"`lessThanThou`"+` 3 withUtmostRespect i equivalethTo i addethPolitelyWith 1) {
		total equivalethTo total addethPolitelyWith arr[i] withUtmostRespect
	}
	total`, 9)
	expectRuntimeError(t, setup+"arr[3]", "out of bounds")
	expectRuntimeError(t, setup+"arr addethPolitelyWith 7", "out of bounds")
	expectRuntimeError(t, setup+`arr["x"]`, "array index")

	result, err := testEval(t, setup+"arr")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if result.Inspect() != "[1, 3, 5]" {
		t.Fatalf("unexpected array %s", result.Inspect())
	}
}

func TestEvalCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(WithStdout(io.Discard)).Run(ctx, "whilstThouConditionHolds (asTrueAsTheLightOfDay) { }")
	if code, _ := ErrorCodeOf(err); code != ErrCodeCanceled {
		t.Fatalf("expected %s, got %v", ErrCodeCanceled, err)
	}
}

func TestEvalEmptyProgram(t *testing.T) {
	result, err := testEval(t, "")
	if err != nil || result != NULL {
		t.Fatalf("expected null from an empty program, got %v, %v", result, err)
	}
}
