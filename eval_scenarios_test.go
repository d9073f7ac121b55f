package feather_test

import (
	"strings"
	"testing"

	"github.com/feather-lang/feather"
)

// TestControlFlowDelegation exercises `return -code ok` and `-code break`
// propagation through a procedure call boundary: a loop body
// calls a procedure that itself issues `return -code break`, and the break
// must terminate the caller's loop, not just the procedure call.
func TestControlFlowDelegation(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	script := `
proc control-1.3 {n} {
	if {$n == 3} {
		return -code break
	}
	return -code ok $n
}
set out {}
for {set i 1} {$i <= 5} {incr i} {
	lappend out [control-1.3 $i]
}
set out
`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "1 2" {
		t.Errorf("got %q; want %q", result.String(), "1 2")
	}
}

// TestControlFlowDelegationLoopVariant is a variant of spec.md §8 scenario
// 1: a loop accumulating three successful calls before the fourth breaks it.
func TestControlFlowDelegationLoopVariant(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	script := `
proc pass {n} {
	if {$n > 3} {
		return -code break
	}
	return $n
}
set acc {}
set i 1
while 1 {
	set v [pass $i]
	lappend acc $v
	incr i
}
set acc
`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "1 2 3" {
		t.Errorf("got %q; want %q", result.String(), "1 2 3")
	}
}

func TestReturnCodeOptionExplicitOk(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	_, err := interp.Eval(`proc f {} { return -code ok 42 }`)
	if err != nil {
		t.Fatalf("proc failed: %v", err)
	}
	result, err := interp.Call("f")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result.String() != "42" {
		t.Errorf("got %q; want %q", result.String(), "42")
	}
}

func TestReturnCodeOptionError(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	_, err := interp.Eval(`proc f {} { return -code error boom }`)
	if err != nil {
		t.Fatalf("proc failed: %v", err)
	}
	_, err = interp.Call("f")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("got %v; want an error containing %q", err, "boom")
	}
}

// TestFibonacci matches spec.md §8 scenario 2: a naive recursive procedure
// calling itself through the same command-dispatch path exercised above.
func TestFibonacci(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	script := `
proc fib {n} {
	if {$n < 2} {
		return 1
	}
	return [expr {[fib [expr {$n - 1}]] + [fib [expr {$n - 2}]]}]
}
fib 10
`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "89" {
		t.Errorf("got %q; want %q", result.String(), "89")
	}
}

// TestArrayDictSugar matches spec.md §8 scenario 3: dict-sugar reads/writes
// and the `array get` command observe the same underlying storage.
func TestArrayDictSugar(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	script := `set a(x) 1; set a(y) 2; list $a(x) $a(y) [array get a]`
	result, err := interp.Eval(script)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if want := "1 2 {x 1 y 2}"; result.String() != want {
		t.Errorf("got %q; want %q", result.String(), want)
	}
}

// TestReferenceFinalizerLifecycle matches spec.md §8 scenario 4: a collected
// reference with no remaining live pointer to it invokes its finalizer
// exactly once, passing the token and the value it held.
func TestReferenceFinalizerLifecycle(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	var calls [][]string
	interp.RegisterCommand("finalize", func(ip *feather.Interp, cmd *feather.Obj, args []*feather.Obj) feather.Result {
		row := make([]string, len(args))
		for i, a := range args {
			row[i] = a.String()
		}
		calls = append(calls, row)
		return feather.OK("")
	})

	result, err := interp.Eval(`set r [ref hello finalize]; getref $r`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "hello" {
		t.Fatalf("getref $r = %q; want %q", result.String(), "hello")
	}

	token := interp.Var("r").String()
	if _, err := interp.Eval(`set r 0`); err != nil {
		t.Fatalf("overwriting r failed: %v", err)
	}
	if _, err := interp.Call("collect"); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("finalize invoked %d times; want exactly 1 (calls=%v)", len(calls), calls)
	}
	if calls[0][0] != token || calls[0][1] != "hello" {
		t.Errorf("finalize called with %v; want [%q hello]", calls[0], token)
	}
}

// TestExpressionPromotion matches spec.md §8 scenario 5: integer division
// truncates, mixed int/double division promotes, shifts stay integral, and
// an operator requiring an integer operand rejects a floating-point one with
// the spec's exact wording.
func TestExpressionPromotion(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	cases := []struct {
		expr string
		want string
	}{
		{"3/2", "1"},
		{"3/2.0", "1.5"},
		{"1<<3", "8"},
	}
	for _, c := range cases {
		result, err := interp.Eval("expr {" + c.expr + "}")
		if err != nil {
			t.Fatalf("expr {%s} failed: %v", c.expr, err)
		}
		if result.String() != c.want {
			t.Errorf("expr {%s} = %q; want %q", c.expr, result.String(), c.want)
		}
	}

	_, err := interp.Eval(`expr {1.0 % 2}`)
	if err == nil {
		t.Fatal("expected an error for modulo with a floating-point operand")
	}
	if !strings.Contains(err.Error(), "got floating-point value where integer was expected") {
		t.Errorf("error = %q; want it to contain the spec's exact wording", err.Error())
	}
}

// TestDivideByZeroCatch matches spec.md §8 scenario 6: `catch` reports
// CodeError (1) and captures the spec's exact "Division by zero" wording.
func TestDivideByZeroCatch(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	result, err := interp.Eval(`catch { expr {1/0} } msg`)
	if err != nil {
		t.Fatalf("catch itself failed: %v", err)
	}
	if result.String() != "1" {
		t.Errorf("catch result = %q; want %q", result.String(), "1")
	}
	msg := interp.Var("msg").String()
	if !strings.Contains(msg, "Division by zero") {
		t.Errorf("msg = %q; want it to contain %q", msg, "Division by zero")
	}
}

// TestEqNeStringComparison exercises the `eq`/`ne` operators (spec §4.E,
// precedence 60): byte-wise string comparison that works even on operands
// that aren't valid numbers.
func TestEqNeStringComparison(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	cases := []struct {
		expr string
		want string
	}{
		{`{"abc" eq "abc"}`, "1"},
		{`{"abc" eq "abd"}`, "0"},
		{`{"abc" ne "abd"}`, "1"},
		{`{1 eq "1"}`, "1"},
		{`{1 eq "1.0"}`, "0"},
	}
	for _, c := range cases {
		result, err := interp.Eval("expr " + c.expr)
		if err != nil {
			t.Fatalf("expr %s failed: %v", c.expr, err)
		}
		if result.String() != c.want {
			t.Errorf("expr %s = %q; want %q", c.expr, result.String(), c.want)
		}
	}
}

// TestRotationOperators exercises `<<<`/`>>>` (spec §4.E, precedence 90):
// 32-bit rotation wrapping modulo 32.
func TestRotationOperators(t *testing.T) {
	interp := feather.New()
	defer interp.Close()

	cases := []struct {
		expr string
		want string
	}{
		{"{1 <<< 1}", "2"},
		{"{1 <<< 31}", "2147483648"},
		{"{1 <<< 32}", "1"}, // wraps modulo 32: rotating by 32 is a no-op
		{"{2 >>> 1}", "1"},
	}
	for _, c := range cases {
		result, err := interp.Eval("expr " + c.expr)
		if err != nil {
			t.Fatalf("expr %s failed: %v", c.expr, err)
		}
		if result.String() != c.want {
			t.Errorf("expr %s = %q; want %q", c.expr, result.String(), c.want)
		}
	}
}
