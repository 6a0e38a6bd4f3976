// Package runtime wires the lexer, parser, and interpreter into a single
// pipeline and exposes it two ways: a one-shot Run for `koby run`, and a
// persistent Session for the REPL.
package runtime

import (
	"context"
	"fmt"
	"io"

	"github.com/kobylang/koby/pkg/ast"
	"github.com/kobylang/koby/pkg/diagnostics"
	"github.com/kobylang/koby/pkg/interpreter"
	"github.com/kobylang/koby/pkg/lexer"
	"github.com/kobylang/koby/pkg/parser"
)

// Option configures a Runtime built with New.
type Option func(*Runtime)

// WithStdout redirects `put` output and warning diagnostics.
func WithStdout(w io.Writer) Option {
	return func(r *Runtime) { r.stdout = w }
}

// WithStderr redirects error diagnostics.
func WithStderr(w io.Writer) Option {
	return func(r *Runtime) { r.stderr = w }
}

// WithPreludeExclude names native functions to omit from the global
// scope. Names from repeated options accumulate.
func WithPreludeExclude(names ...string) Option {
	return func(r *Runtime) {
		for _, n := range names {
			r.exclude[n] = true
		}
	}
}

// Runtime holds the shared configuration for running Koby source.
type Runtime struct {
	stdout  io.Writer
	stderr  io.Writer
	exclude map[string]bool
}

// New builds a Runtime with the given options applied over sane defaults
// (io.Discard for both streams, no prelude exclusions).
func New(opts ...Option) *Runtime {
	r := &Runtime{
		stdout:  io.Discard,
		stderr:  io.Discard,
		exclude: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result summarizes one Run: the diagnostics produced and the process
// exit code that should follow from them (0 clean, 1 fatal error).
type Result struct {
	Diagnostics []diagnostics.Diagnostic
	ExitCode    int
}

// Run lexes, parses, and executes source as a full program. It reports
// every lex diagnostic; the parser runs only when lexing reported none,
// and its diagnostics are reported in turn. Nothing executes if any fatal
// diagnostic was reported, and execution stops at the first runtime error.
func (r *Runtime) Run(ctx context.Context, source string) Result {
	tokens, lexDiags := lexer.Scan(source)
	all := append([]diagnostics.Diagnostic{}, lexDiags...)

	var stmts []ast.Stmt
	if len(lexDiags) == 0 {
		var parseDiags []diagnostics.Diagnostic
		stmts, parseDiags = parser.Parse(tokens)
		all = append(all, parseDiags...)
	}

	r.report(all)

	if hasFatal(all) {
		return Result{Diagnostics: all, ExitCode: 1}
	}

	interp := interpreter.New(func(s string) { fmt.Fprint(r.stdout, s) })
	interp.DefinePrelude(r.exclude)

	if _, err := interp.Run(ctx, stmts, interp.Global); err != nil {
		d := runtimeDiag(err)
		all = append(all, d)
		fmt.Fprintln(r.stderr, d.Format())
		return Result{Diagnostics: all, ExitCode: 1}
	}

	return Result{Diagnostics: all, ExitCode: 0}
}

func (r *Runtime) report(diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		w := r.stderr
		if d.Warning {
			w = r.stdout
		}
		fmt.Fprintln(w, d.Format())
	}
}

func hasFatal(diags []diagnostics.Diagnostic) bool {
	for _, d := range diags {
		if !d.Warning {
			return true
		}
	}
	return false
}

func runtimeDiag(err error) diagnostics.Diagnostic {
	if re, ok := err.(*diagnostics.RuntimeError); ok {
		return re.Diag()
	}
	return diagnostics.New(diagnostics.OperandInvalid, err.Error(), 0)
}

// Session is a persistent Koby interpreter across REPL lines: variables
// and functions declared on one line are visible on the next.
type Session struct {
	rt    *Runtime
	interp *interpreter.Interpreter
}

// NewSession starts a REPL session, registering the prelude once.
func (r *Runtime) NewSession() *Session {
	interp := interpreter.New(func(s string) { fmt.Fprint(r.stdout, s) })
	interp.DefinePrelude(r.exclude)
	return &Session{rt: r, interp: interp}
}

// Eval lexes, parses, and executes one line of REPL input against the
// session's persistent global scope, returning the value of its last
// statement (nil when that statement is not an expression statement, e.g.
// a declaration).
func (s *Session) Eval(ctx context.Context, line string) (interpreter.Value, []diagnostics.Diagnostic, error) {
	tokens, lexDiags := lexer.Scan(line)
	all := append([]diagnostics.Diagnostic{}, lexDiags...)

	var stmts []ast.Stmt
	if len(lexDiags) == 0 {
		var parseDiags []diagnostics.Diagnostic
		stmts, parseDiags = parser.Parse(tokens)
		all = append(all, parseDiags...)
	}

	s.rt.report(all)

	if hasFatal(all) {
		return nil, all, nil
	}

	v, err := s.interp.Run(ctx, stmts, s.interp.Global)
	if err != nil {
		d := runtimeDiag(err)
		fmt.Fprintln(s.rt.stderr, d.Format())
		return nil, append(all, d), nil
	}
	return v, all, nil
}
