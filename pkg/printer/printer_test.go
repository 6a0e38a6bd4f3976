package printer

import (
	"testing"

	"github.com/kobylang/koby/pkg/lexer"
	"github.com/kobylang/koby/pkg/parser"
)

// reparse runs source through the full lex/parse pipeline and fails the
// test if it produced any diagnostic.
func reparse(t *testing.T, src string) string {
	t.Helper()
	tokens, lexDiags := lexer.Scan(src)
	if len(lexDiags) != 0 {
		t.Fatalf("unexpected lex diagnostics for %q: %v", src, lexDiags)
	}
	stmts, parseDiags := parser.Parse(tokens)
	if len(parseDiags) != 0 {
		t.Fatalf("unexpected parse diagnostics for %q: %v", src, parseDiags)
	}
	return Print(stmts)
}

// TestRoundTripPreservesShape checks that printing and re-parsing a
// program yields an AST with the same shape as the original, i.e. the
// printer's output is itself valid Koby source that means the same thing.
func TestRoundTripPreservesShape(t *testing.T) {
	sources := []string{
		"var x = 1 + 2 * 3;",
		"fun add(a, b) { return a + b; }",
		"if (x > 0) { put(x); } else { put(0); }",
		"while (x < 10) { x = x + 1; }",
	}
	for _, src := range sources {
		printed := reparse(t, src)
		reprinted := reparse(t, printed)
		if printed != reprinted {
			t.Errorf("round-trip mismatch for %q:\nfirst:  %q\nsecond: %q", src, printed, reprinted)
		}
	}
}

func TestPrecedencePreservedWithParens(t *testing.T) {
	printed := reparse(t, "(1 + 2) * 3;")
	if !contains(printed, "(1 + 2)") {
		t.Errorf("expected parens to survive printing, got %q", printed)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
