package parser

import (
	"testing"

	"github.com/kobylang/koby/pkg/ast"
	"github.com/kobylang/koby/pkg/diagnostics"
	"github.com/kobylang/koby/pkg/lexer"
)

func parseSource(t *testing.T, src string) ([]ast.Stmt, []diagnostics.Diagnostic) {
	t.Helper()
	tokens, lexDiags := lexer.Scan(src)
	if len(lexDiags) != 0 {
		t.Fatalf("unexpected lex diagnostics: %v", lexDiags)
	}
	return Parse(tokens)
}

func TestParseVarDecl(t *testing.T) {
	stmts, diags := parseSource(t, "var x = 1 + 2;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	v, ok := stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", stmts[0])
	}
	if v.Name.Lexeme != "x" {
		t.Errorf("got name %q", v.Name.Lexeme)
	}
	if _, ok := v.Initializer.(*ast.Binary); !ok {
		t.Errorf("expected binary initializer, got %T", v.Initializer)
	}
}

func TestPrecedenceClimbing(t *testing.T) {
	stmts, diags := parseSource(t, "1 + 2 * 3;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	bin := stmts[0].(*ast.ExprStmt).Expr.(*ast.Binary)
	if bin.Op.Lexeme != "+" {
		t.Fatalf("expected top-level '+', got %q", bin.Op.Lexeme)
	}
	right, ok := bin.Right.(*ast.Binary)
	if !ok || right.Op.Lexeme != "*" {
		t.Fatalf("expected '*' nested on the right, got %T", bin.Right)
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	stmts, diags := parseSource(t, "for (var i = 0; i < 10; i = i + 1) { put(i); }")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	block, ok := stmts[0].(*ast.Block)
	if !ok || len(block.Stmts) != 2 {
		t.Fatalf("expected desugared block with init+while, got %#v", stmts[0])
	}
	if _, ok := block.Stmts[0].(*ast.VarDecl); !ok {
		t.Errorf("expected first stmt to be the init VarDecl, got %T", block.Stmts[0])
	}
	while, ok := block.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected second stmt to be a WhileStmt, got %T", block.Stmts[1])
	}
	body, ok := while.Body.(*ast.Block)
	if !ok || len(body.Stmts) != 2 {
		t.Fatalf("expected while body to be [original body, post], got %#v", while.Body)
	}
}

func TestBreakOutsideLoopIsFatal(t *testing.T) {
	_, diags := parseSource(t, "break;")
	if len(diags) != 1 || diags[0].Code != diagnostics.BreakOutsideLoop {
		t.Fatalf("expected BreakOutsideLoop, got %v", diags)
	}
}

func TestContinueOutsideLoopIsFatal(t *testing.T) {
	_, diags := parseSource(t, "continue;")
	if len(diags) != 1 || diags[0].Code != diagnostics.ContinueOutsideLoop {
		t.Fatalf("expected ContinueOutsideLoop, got %v", diags)
	}
}

func TestBreakInsideLoopIsFine(t *testing.T) {
	_, diags := parseSource(t, "while (true) { break; }")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestTooManyParametersWarns(t *testing.T) {
	src := "fun f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "p" + itoa(i)
	}
	src += ") { return 1; }"

	_, diags := parseSource(t, src)
	if len(diags) != 1 || !diags[0].Warning || diags[0].Code != diagnostics.TooManyArguments {
		t.Fatalf("expected one TooManyArguments warning, got %v", diags)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestRecoversAndContinuesAfterFatalError(t *testing.T) {
	// Missing ';' after the first statement should be recorded. Recovery
	// discards tokens through the next ';' (here the rest of `put(x);`),
	// so the declaration after it still parses.
	stmts, diags := parseSource(t, "var x = 1\nput(x);\nvar y = 2;")
	if len(diags) != 1 || diags[0].Code != diagnostics.SemicolonMissing {
		t.Fatalf("expected one SemicolonMissing diagnostic, got %v", diags)
	}
	foundY := false
	for _, s := range stmts {
		if v, ok := s.(*ast.VarDecl); ok && v.Name.Lexeme == "y" {
			foundY = true
		}
	}
	if !foundY {
		t.Fatalf("expected parser to recover and still parse 'var y', got %#v", stmts)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, diags := parseSource(t, "1 = 2;")
	if len(diags) != 1 || diags[0].Code != diagnostics.InvalidAssignmentTarget {
		t.Fatalf("expected InvalidAssignmentTarget, got %v", diags)
	}
}

func TestLambdaExpression(t *testing.T) {
	stmts, diags := parseSource(t, "var add = -> (a, b) { return a + b; };")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	v := stmts[0].(*ast.VarDecl)
	lambda, ok := v.Initializer.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected *ast.Lambda initializer, got %T", v.Initializer)
	}
	if len(lambda.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(lambda.Params))
	}
}

func FuzzParseDoesNotPanicOutsideParseError(f *testing.F) {
	seeds := []string{
		"", "var x = 1;", "fun f() { return; }", "if (true) { } else { }",
		"1 + * 2;", "while (", "{{{{", "\"unterminated",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		tokens, _ := lexer.Scan(src)
		Parse(tokens) // must never panic with anything other than a recovered parseError
	})
}
