// Package interpreter tree-walks a Koby AST, evaluating expressions and
// executing statements against a chain of lexical Envs.
package interpreter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kobylang/koby/pkg/ast"
	"github.com/kobylang/koby/pkg/diagnostics"
	"github.com/kobylang/koby/pkg/token"
)

// ControlFlag tags why execution of a statement sequence stopped early.
type ControlFlag int

const (
	ControlNone ControlFlag = iota
	ControlBreak
	ControlContinue
	ControlReturn
)

// ExecSig is the non-local control-flow carrier threaded back up through
// statement execution instead of panicking: break/continue/return unwind
// by returning a tagged ExecSig rather than throwing.
type ExecSig struct {
	Control ControlFlag
	Value   Value
}

var execNone = ExecSig{Control: ControlNone}

// Interpreter walks one Koby program or REPL session. Global is the
// outermost Env; it persists across Eval calls within the same session so
// the REPL can build up state line by line.
type Interpreter struct {
	Global *Env
	Stdout func(string)
}

// New creates an Interpreter with a prelude-free global scope. Callers
// install prelude builtins with DefinePrelude.
func New(stdout func(string)) *Interpreter {
	return &Interpreter{Global: NewEnv(nil), Stdout: stdout}
}

// DefinePrelude seeds the global scope with the native functions not
// excluded by policy. Koby ships two: now() and put(value).
func (i *Interpreter) DefinePrelude(exclude map[string]bool) {
	register := func(fn *NativeFunction) {
		if exclude[fn.FnName] {
			return
		}
		_ = i.Global.Define(fn.FnName, fn, 0)
	}

	register(&NativeFunction{FnName: "now", Arg: 0, Fn: func(_ *Interpreter, _ []Value, _ int) (Value, error) {
		return Number(float64(time.Now().Unix())), nil
	}})
	register(&NativeFunction{FnName: "put", Arg: 1, Fn: func(interp *Interpreter, args []Value, _ int) (Value, error) {
		if interp.Stdout != nil {
			interp.Stdout(Display(args[0]) + "\n")
		}
		return Nil{}, nil
	}})
}

// Run executes a full program's statements against the given scope in
// order, stopping at the first fatal runtime error.
func (i *Interpreter) Run(ctx context.Context, stmts []ast.Stmt, env *Env) (Value, error) {
	var last Value = Nil{}
	for _, s := range stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sig, err := i.execStmt(ctx, s, env)
		if err != nil {
			return nil, err
		}
		last = sig.Value
	}
	return last, nil
}

// --- statement execution ---

func (i *Interpreter) execStmt(ctx context.Context, s ast.Stmt, env *Env) (ExecSig, error) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		v, err := i.eval(ctx, n.Expr, env)
		if err != nil {
			return execNone, err
		}
		return ExecSig{Value: v}, nil

	case *ast.VarDecl:
		var v Value = Nil{}
		if n.Initializer != nil {
			var err error
			v, err = i.eval(ctx, n.Initializer, env)
			if err != nil {
				return execNone, err
			}
		}
		if err := env.Define(n.Name.Lexeme, v, n.Name.Line); err != nil {
			return execNone, err
		}
		return execNone, nil

	case *ast.FuncDecl:
		fn := &UserFunction{
			DisplayName: n.Name.Lexeme,
			Params:      paramNames(n.Params),
			Body:        n.Body,
			Closure:     env,
		}
		if err := env.Define(n.Name.Lexeme, fn, n.Name.Line); err != nil {
			return execNone, err
		}
		return execNone, nil

	case *ast.Block:
		return i.execBlock(ctx, n.Stmts, NewEnv(env))

	case *ast.IfStmt:
		cond, err := i.eval(ctx, n.Cond, env)
		if err != nil {
			return execNone, err
		}
		if Truthy(cond) {
			return i.execStmt(ctx, n.Then, env)
		}
		if n.Else != nil {
			return i.execStmt(ctx, n.Else, env)
		}
		return execNone, nil

	case *ast.WhileStmt:
		for {
			if err := ctx.Err(); err != nil {
				return execNone, err
			}
			cond, err := i.eval(ctx, n.Cond, env)
			if err != nil {
				return execNone, err
			}
			if !Truthy(cond) {
				return execNone, nil
			}
			sig, err := i.execStmt(ctx, n.Body, env)
			if err != nil {
				return execNone, err
			}
			switch sig.Control {
			case ControlBreak:
				return execNone, nil
			case ControlReturn:
				return sig, nil
			}
		}

	case *ast.BreakStmt:
		return ExecSig{Control: ControlBreak}, nil

	case *ast.ContinueStmt:
		return ExecSig{Control: ControlContinue}, nil

	case *ast.ReturnStmt:
		var v Value = Nil{}
		if n.Value != nil {
			var err error
			v, err = i.eval(ctx, n.Value, env)
			if err != nil {
				return execNone, err
			}
		}
		return ExecSig{Control: ControlReturn, Value: v}, nil

	default:
		return execNone, fmt.Errorf("interpreter: unhandled statement %T", n)
	}
}

// execBlock runs a statement list in its own scope, propagating the
// first break/continue/return or error encountered.
func (i *Interpreter) execBlock(ctx context.Context, stmts []ast.Stmt, env *Env) (ExecSig, error) {
	for _, s := range stmts {
		if err := ctx.Err(); err != nil {
			return execNone, err
		}
		sig, err := i.execStmt(ctx, s, env)
		if err != nil {
			return execNone, err
		}
		if sig.Control != ControlNone {
			return sig, nil
		}
	}
	return execNone, nil
}

// --- expression evaluation ---

func (i *Interpreter) eval(ctx context.Context, e ast.Expr, env *Env) (Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return literalValue(n.Value), nil

	case *ast.Variable:
		return env.Get(n.Name.Lexeme, n.Name.Line)

	case *ast.Assign:
		v, err := i.eval(ctx, n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Assign(n.Name.Lexeme, v, n.Name.Line); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Grouping:
		return i.eval(ctx, n.Inner, env)

	case *ast.Logical:
		left, err := i.eval(ctx, n.Left, env)
		if err != nil {
			return nil, err
		}
		switch n.Op.Type {
		case token.Or:
			if Truthy(left) {
				return left, nil
			}
		case token.And:
			if !Truthy(left) {
				return left, nil
			}
		}
		return i.eval(ctx, n.Right, env)

	case *ast.Unary:
		return i.evalUnary(ctx, n, env)

	case *ast.Binary:
		return i.evalBinary(ctx, n, env)

	case *ast.Call:
		return i.evalCall(ctx, n, env)

	case *ast.Lambda:
		return &UserFunction{
			DisplayName: "lambda",
			Params:      paramNames(n.Params),
			Body:        n.Body,
			Closure:     env,
		}, nil

	default:
		return nil, fmt.Errorf("interpreter: unhandled expression %T", n)
	}
}

func (i *Interpreter) evalUnary(ctx context.Context, n *ast.Unary, env *Env) (Value, error) {
	right, err := i.eval(ctx, n.Right, env)
	if err != nil {
		return nil, err
	}
	switch n.Op.Type {
	case token.Minus:
		num, ok := right.(Number)
		if !ok {
			return nil, operandError(n.Op.Line, "Operand must be a number.")
		}
		return -num, nil
	case token.Bang:
		return Bool(!Truthy(right)), nil
	}
	return nil, fmt.Errorf("interpreter: unhandled unary operator %s", n.Op.Lexeme)
}

func (i *Interpreter) evalBinary(ctx context.Context, n *ast.Binary, env *Env) (Value, error) {
	left, err := i.eval(ctx, n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.eval(ctx, n.Right, env)
	if err != nil {
		return nil, err
	}
	line := n.Op.Line

	switch n.Op.Type {
	case token.Plus:
		if ln, lok := left.(Number); lok {
			if rn, rok := right.(Number); rok {
				return ln + rn, nil
			}
		}
		if _, lok := left.(String); lok {
			return String(Display(left) + Display(right)), nil
		}
		if _, rok := right.(String); rok {
			return String(Display(left) + Display(right)), nil
		}
		return nil, operandError(line, "Operands must both be numbers, or at least one must be a string.")

	case token.Minus, token.Star, token.Slash, token.Percent:
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, operandError(line, "Operands must be numbers.")
		}
		switch n.Op.Type {
		case token.Minus:
			return ln - rn, nil
		case token.Star:
			return ln * rn, nil
		case token.Slash:
			return ln / rn, nil
		case token.Percent:
			return Number(math.Mod(float64(ln), float64(rn))), nil
		}

	case token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, operandError(line, "Operands must be numbers.")
		}
		switch n.Op.Type {
		case token.Greater:
			return Bool(ln > rn), nil
		case token.GreaterEqual:
			return Bool(ln >= rn), nil
		case token.Less:
			return Bool(ln < rn), nil
		case token.LessEqual:
			return Bool(ln <= rn), nil
		}

	case token.EqualEqual:
		return Bool(Equal(left, right)), nil
	case token.BangEqual:
		return Bool(!Equal(left, right)), nil
	}

	return nil, fmt.Errorf("interpreter: unhandled binary operator %s", n.Op.Lexeme)
}

func (i *Interpreter) evalCall(ctx context.Context, n *ast.Call, env *Env) (Value, error) {
	callee, err := i.eval(ctx, n.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.Args))
	for idx, a := range n.Args {
		v, err := i.eval(ctx, a, env)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, &diagnostics.RuntimeError{
			Code:    diagnostics.NotCallable,
			Message: "Value is not callable.",
			Line:    n.Paren.Line,
		}
	}
	if fn.Arity() != len(args) {
		return nil, &diagnostics.RuntimeError{
			Code:    diagnostics.ArgumentCountMismatch,
			Message: fmt.Sprintf("Expected %d argument(s) but got %d.", fn.Arity(), len(args)),
			Line:    n.Paren.Line,
		}
	}

	if uf, ok := fn.(*UserFunction); ok {
		return i.callUserFunction(ctx, uf, args)
	}
	return fn.Call(i, args, n.Paren.Line)
}

func (i *Interpreter) callUserFunction(ctx context.Context, fn *UserFunction, args []Value) (Value, error) {
	call := NewEnv(fn.Closure)
	for idx, name := range fn.Params {
		_ = call.Define(name, args[idx], 0)
	}
	sig, err := i.execBlock(ctx, fn.Body, call)
	if err != nil {
		return nil, err
	}
	if sig.Control == ControlReturn {
		return sig.Value, nil
	}
	return Nil{}, nil
}

func (uf *UserFunction) Call(interp *Interpreter, args []Value, _ int) (Value, error) {
	return interp.callUserFunction(context.Background(), uf, args)
}

func literalValue(v any) Value {
	switch val := v.(type) {
	case nil:
		return Nil{}
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case string:
		return String(val)
	default:
		return Nil{}
	}
}

func paramNames(params []token.Token) []string {
	names := make([]string, len(params))
	for i, t := range params {
		names[i] = t.Lexeme
	}
	return names
}

func operandError(line int, message string) error {
	return &diagnostics.RuntimeError{Code: diagnostics.OperandInvalid, Message: message, Line: line}
}
