package interpreter

import (
	"strconv"
	"strings"

	"github.com/kobylang/koby/pkg/ast"
)

// Value is the sealed interface implemented by every runtime value: Nil,
// Bool, Number, String, and the two Callable variants.
type Value interface {
	a0value()
}

// Nil is Koby's absence-of-value, distinct from Go's untyped nil so a
// Value variable is never left holding a bare nil interface.
type Nil struct{}

func (Nil) a0value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) a0value() {}

// Number is Koby's only numeric type: a float64.
type Number float64

func (Number) a0value() {}

// String is a Koby string value.
type String string

func (String) a0value() {}

// Callable is implemented by anything that can appear as a call's callee.
type Callable interface {
	Value
	Arity() int
	Name() string
	Call(interp *Interpreter, args []Value, line int) (Value, error)
}

// UserFunction is a function or lambda declared in Koby source. It closes
// over the Env active at its declaration site.
type UserFunction struct {
	DisplayName string
	Params      []string
	Body        []ast.Stmt
	Closure     *Env
}

func (*UserFunction) a0value() {}
func (f *UserFunction) Arity() int    { return len(f.Params) }
func (f *UserFunction) Name() string  { return f.DisplayName }

// NativeFunction wraps a Go closure as a callable prelude builtin.
type NativeFunction struct {
	FnName string
	Arg    int
	Fn     func(interp *Interpreter, args []Value, line int) (Value, error)
}

func (*NativeFunction) a0value() {}
func (f *NativeFunction) Arity() int   { return f.Arg }
func (f *NativeFunction) Name() string { return f.FnName }
func (f *NativeFunction) Call(interp *Interpreter, args []Value, line int) (Value, error) {
	return f.Fn(interp, args, line)
}

// Display renders v the way `put` and the REPL echo it.
func Display(v Value) string {
	switch val := v.(type) {
	case Nil, nil:
		return "nil"
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(float64(val))
	case String:
		return string(val)
	case *NativeFunction:
		return "<function native>"
	case Callable:
		return "<function " + val.Name() + ">"
	default:
		return "nil"
	}
}

// formatNumber drops the fractional part's trailing ".0" for integral
// values; otherwise it renders up to 6 fractional digits, with trailing
// zeros stripped, matching the original implementation's to_string rule.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	s := strconv.FormatFloat(f, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Truthy implements Koby's truthiness rule: only `false` and `nil` are
// falsy; every other value, including 0 and "", is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Nil, nil:
		return false
	case Bool:
		return bool(val)
	default:
		return true
	}
}

// Equal implements Koby's `==`/`!=` value-equality rule: cross-type
// comparisons are always false, same-type comparisons compare values.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	default:
		return a == b
	}
}
