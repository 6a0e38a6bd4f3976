// Package printer renders a Koby AST back to source text. It is used by
// the `koby fmt` command and by tests that check parse/print round-trips.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kobylang/koby/pkg/ast"
	"github.com/kobylang/koby/pkg/token"
)

// Print renders a sequence of top-level statements as formatted source.
func Print(stmts []ast.Stmt) string {
	p := &printer{}
	for _, s := range stmts {
		p.stmt(s, 0)
	}
	return p.buf.String()
}

// PrintExpr renders a single expression, parenthesizing only where the
// grammar would otherwise re-parse it differently.
func PrintExpr(e ast.Expr) string {
	p := &printer{}
	p.expr(e)
	return p.buf.String()
}

type printer struct {
	buf strings.Builder
}

func (p *printer) indent(depth int) {
	p.buf.WriteString(strings.Repeat("    ", depth))
}

func (p *printer) stmt(s ast.Stmt, depth int) {
	p.indent(depth)
	switch n := s.(type) {
	case *ast.ExprStmt:
		p.expr(n.Expr)
		p.buf.WriteString(";\n")

	case *ast.VarDecl:
		p.buf.WriteString("var ")
		p.buf.WriteString(n.Name.Lexeme)
		if n.Initializer != nil {
			p.buf.WriteString(" = ")
			p.expr(n.Initializer)
		}
		p.buf.WriteString(";\n")

	case *ast.FuncDecl:
		p.buf.WriteString("fun ")
		p.buf.WriteString(n.Name.Lexeme)
		p.paramTokens(n.Params)
		p.buf.WriteString(" {\n")
		for _, b := range n.Body {
			p.stmt(b, depth+1)
		}
		p.indent(depth)
		p.buf.WriteString("}\n")

	case *ast.Block:
		p.buf.WriteString("{\n")
		for _, b := range n.Stmts {
			p.stmt(b, depth+1)
		}
		p.indent(depth)
		p.buf.WriteString("}\n")

	case *ast.IfStmt:
		p.buf.WriteString("if (")
		p.expr(n.Cond)
		p.buf.WriteString(") ")
		p.inlineOrBlock(n.Then, depth)
		if n.Else != nil {
			p.indent(depth)
			p.buf.WriteString("else ")
			p.inlineOrBlock(n.Else, depth)
		}

	case *ast.WhileStmt:
		p.buf.WriteString("while (")
		p.expr(n.Cond)
		p.buf.WriteString(") ")
		p.inlineOrBlock(n.Body, depth)

	case *ast.BreakStmt:
		p.buf.WriteString("break;\n")

	case *ast.ContinueStmt:
		p.buf.WriteString("continue;\n")

	case *ast.ReturnStmt:
		p.buf.WriteString("return")
		if n.Value != nil {
			p.buf.WriteString(" ")
			p.expr(n.Value)
		}
		p.buf.WriteString(";\n")

	default:
		p.buf.WriteString(fmt.Sprintf("/* unknown stmt %T */\n", n))
	}
}

// inlineOrBlock renders a block statement inline (its own braces, same
// line as the header); a bare statement goes on the next line, indented
// one level, without braces.
func (p *printer) inlineOrBlock(s ast.Stmt, depth int) {
	if b, ok := s.(*ast.Block); ok {
		p.buf.WriteString("{\n")
		for _, inner := range b.Stmts {
			p.stmt(inner, depth+1)
		}
		p.indent(depth)
		p.buf.WriteString("}\n")
		return
	}
	p.buf.WriteString("\n")
	p.stmt(s, depth+1)
}

func (p *printer) paramTokens(params []token.Token) {
	p.buf.WriteString("(")
	for i, t := range params {
		if i > 0 {
			p.buf.WriteString(", ")
		}
		p.buf.WriteString(t.Lexeme)
	}
	p.buf.WriteString(")")
}

func (p *printer) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		p.literal(n.Value)

	case *ast.Variable:
		p.buf.WriteString(n.Name.Lexeme)

	case *ast.Assign:
		p.buf.WriteString(n.Name.Lexeme)
		p.buf.WriteString(" = ")
		p.expr(n.Value)

	case *ast.Grouping:
		p.buf.WriteString("(")
		p.expr(n.Inner)
		p.buf.WriteString(")")

	case *ast.Unary:
		p.buf.WriteString(n.Op.Lexeme)
		p.maybeParen(n.Right, precedenceOf(n.Op.Lexeme, true))

	case *ast.Binary:
		p.binaryLike(n.Left, n.Op.Lexeme, n.Right)

	case *ast.Logical:
		p.binaryLike(n.Left, n.Op.Lexeme, n.Right)

	case *ast.Call:
		p.expr(n.Callee)
		p.buf.WriteString("(")
		for i, a := range n.Args {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.expr(a)
		}
		p.buf.WriteString(")")

	case *ast.Lambda:
		p.buf.WriteString("->")
		p.paramTokens(n.Params)
		p.buf.WriteString(" {\n")
		for _, b := range n.Body {
			p.stmt(b, 1)
		}
		p.buf.WriteString("}")

	default:
		p.buf.WriteString(fmt.Sprintf("/* unknown expr %T */", n))
	}
}

func (p *printer) binaryLike(left ast.Expr, op string, right ast.Expr) {
	prec := precedenceOf(op, false)
	p.maybeParen(left, prec)
	p.buf.WriteString(" ")
	p.buf.WriteString(op)
	p.buf.WriteString(" ")
	p.maybeParen(right, prec)
}

// maybeParen wraps child in parens when printing it unparenthesized next
// to a parent at precedence parentPrec could change how it re-parses.
func (p *printer) maybeParen(child ast.Expr, parentPrec int) {
	if needsParens(child, parentPrec) {
		p.buf.WriteString("(")
		p.expr(child)
		p.buf.WriteString(")")
		return
	}
	p.expr(child)
}

func needsParens(e ast.Expr, parentPrec int) bool {
	switch n := e.(type) {
	case *ast.Binary:
		return precedenceOf(n.Op.Lexeme, false) < parentPrec
	case *ast.Logical:
		return precedenceOf(n.Op.Lexeme, false) < parentPrec
	case *ast.Assign:
		return true
	default:
		return false
	}
}

// precedenceOf mirrors the parser's ladder: higher number binds tighter.
func precedenceOf(op string, unary bool) int {
	if unary {
		return 6
	}
	switch op {
	case "or":
		return 1
	case "and":
		return 2
	case "==", "!=":
		return 3
	case "<", "<=", ">", ">=":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%":
		return 6
	default:
		return 0
	}
}

func (p *printer) literal(v any) {
	switch val := v.(type) {
	case nil:
		p.buf.WriteString("nil")
	case bool:
		if val {
			p.buf.WriteString("true")
		} else {
			p.buf.WriteString("false")
		}
	case float64:
		p.buf.WriteString(formatNumber(val))
	case string:
		p.buf.WriteString(`"`)
		p.buf.WriteString(val)
		p.buf.WriteString(`"`)
	default:
		p.buf.WriteString(fmt.Sprintf("%v", val))
	}
}

// formatNumber prints integral values without a trailing ".0", like the
// interpreter's display rule; other values print in Go's shortest 'g'
// form rather than the interpreter's 6-digit rounding.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
