// Package parser implements the Koby parser: a recursive-descent parser
// over a token stream, producing a statement-level AST plus a parallel
// list of syntax diagnostics. Parse errors are recovered from in panic
// mode, resuming at the next statement boundary.
package parser

import (
	"fmt"

	"github.com/kobylang/koby/pkg/ast"
	"github.com/kobylang/koby/pkg/diagnostics"
	"github.com/kobylang/koby/pkg/token"
)

// maxArgs is the warning threshold for parameter/argument counts.
const maxArgs = 255

// parseError is panicked by p.panic (from consume and the other error
// sites) and recovered once per declaration; it carries the diagnostic
// that should be recorded.
type parseError struct {
	diag diagnostics.Diagnostic
}

type parser struct {
	tokens    []token.Token
	pos       int
	loopDepth int
	diags     []diagnostics.Diagnostic
}

// Parse consumes an END-terminated token stream and returns the parsed
// statements plus any syntax diagnostics (fatal or warning). Parsing never
// aborts outright: a fatal error in one declaration is recorded and the
// parser resynchronizes to the next statement boundary.
func Parse(tokens []token.Token) ([]ast.Stmt, []diagnostics.Diagnostic) {
	p := &parser{tokens: tokens}
	var stmts []ast.Stmt
	for !p.isEnd() {
		stmt := p.declarationRecover()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// --- token cursor ---

func (p *parser) current() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() token.Token {
	if p.pos == 0 {
		return p.current()
	}
	return p.tokens[p.pos-1]
}

func (p *parser) isEnd() bool {
	return p.current().Type == token.End
}

func (p *parser) advance() token.Token {
	if !p.isEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) check(t token.Type) bool {
	return p.current().Type == t
}

func (p *parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(t token.Type, code int, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.panic(code, message)
	panic("unreachable")
}

func (p *parser) panic(code int, message string) {
	panic(parseError{diag: diagnostics.New(code, message, p.current().Line)})
}

func (p *parser) warn(code int, message string) {
	p.diags = append(p.diags, diagnostics.NewWarning(code, message, p.current().Line))
}

// synchronize discards tokens until a likely statement boundary: either the
// previous token was a ';', or the current token starts a new statement.
func (p *parser) synchronize() {
	p.advance()
	for !p.isEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.current().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Break, token.Continue, token.Return:
			return
		}
		p.advance()
	}
}

// declarationRecover wraps declaration() with panic-mode recovery.
func (p *parser) declarationRecover() ast.Stmt {
	var result ast.Stmt
	func() {
		defer func() {
			if r := recover(); r != nil {
				pe, ok := r.(parseError)
				if !ok {
					panic(r)
				}
				p.diags = append(p.diags, pe.diag)
				p.synchronize()
				result = nil
			}
		}()
		result = p.declaration()
	}()
	return result
}

// --- declarations & statements ---

func (p *parser) declaration() ast.Stmt {
	switch {
	case p.match(token.Var):
		return p.varDecl()
	case p.match(token.Fun):
		return p.funcDecl()
	default:
		return p.statement()
	}
}

func (p *parser) varDecl() ast.Stmt {
	name := p.consume(token.Identifier, diagnostics.VarNameMissing, "Expect variable name.")
	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, diagnostics.SemicolonMissing, "Expect ';' after variable declaration.")
	return &ast.VarDecl{Name: name, Initializer: init}
}

func (p *parser) funcDecl() ast.Stmt {
	name := p.consume(token.Identifier, diagnostics.NamedFuncMissingName, "Expect function name.")
	params := p.paramList()
	p.consume(token.LeftBrace, diagnostics.BlockNotClosed, "Expect '{' before function body.")
	body := p.block()
	return &ast.FuncDecl{Name: name, Params: params, Body: body}
}

func (p *parser) paramList() []token.Token {
	p.consume(token.LeftParen, diagnostics.FuncParamsMissingParen, "Expect '(' after function name.")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.warn(diagnostics.TooManyArguments, "Too many parameters.")
			}
			params = append(params, p.consume(token.Identifier, diagnostics.FuncParamMissingName, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, diagnostics.FuncParamsMissingParen, "Expect ')' after parameters.")
	return params
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.If):
		return p.ifStatement()
	case p.match(token.While):
		return p.whileStatement()
	case p.match(token.For):
		return p.forStatement()
	case p.match(token.LeftBrace):
		return &ast.Block{Stmts: p.block()}
	case p.match(token.Break):
		return p.breakStatement()
	case p.match(token.Continue):
		return p.continueStatement()
	case p.match(token.Return):
		return p.returnStatement()
	default:
		return p.exprStatement()
	}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.isEnd() {
		stmt := p.declarationRecover()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RightBrace, diagnostics.BlockNotClosed, "Expect '}' after block.")
	return stmts
}

func (p *parser) ifStatement() ast.Stmt {
	p.consume(token.LeftParen, diagnostics.IfCondMissingParen, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RightParen, diagnostics.IfCondMissingParen, "Expect ')' after if condition.")
	then := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.Else) {
		elseBranch = p.statement()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseBranch}
}

func (p *parser) whileStatement() ast.Stmt {
	p.consume(token.LeftParen, diagnostics.WhileCondMissingParen, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RightParen, diagnostics.WhileCondMissingParen, "Expect ')' after while condition.")
	p.loopDepth++
	body := p.statement()
	p.loopDepth--
	return &ast.WhileStmt{Cond: cond, Body: body}
}

// forStatement desugars `for (init; cond; post) body` into
// `{ init; while (cond) { body; post; } }`.
func (p *parser) forStatement() ast.Stmt {
	p.consume(token.LeftParen, diagnostics.ForCondMissingParen, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
		init = nil
	case p.match(token.Var):
		init = p.varDecl()
	default:
		init = p.exprStatement()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, diagnostics.ForCondMissingParen, "Expect ';' after for condition.")

	var post ast.Expr
	if !p.check(token.RightParen) {
		post = p.expression()
	}
	p.consume(token.RightParen, diagnostics.ForCondMissingParen, "Expect ')' after for clauses.")

	p.loopDepth++
	body := p.statement()
	p.loopDepth--

	if post != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.ExprStmt{Expr: post}}}
	}

	if cond == nil {
		cond = &ast.Literal{Value: true}
	}
	loop := &ast.WhileStmt{Cond: cond, Body: body}

	if init == nil {
		return &ast.Block{Stmts: []ast.Stmt{loop}}
	}
	return &ast.Block{Stmts: []ast.Stmt{init, loop}}
}

func (p *parser) breakStatement() ast.Stmt {
	line := p.previous().Line
	if p.loopDepth == 0 {
		p.panic(diagnostics.BreakOutsideLoop, "'break' outside of a loop.")
	}
	p.consume(token.Semicolon, diagnostics.SemicolonMissing, "Expect ';' after 'break'.")
	return &ast.BreakStmt{Line: line}
}

func (p *parser) continueStatement() ast.Stmt {
	line := p.previous().Line
	if p.loopDepth == 0 {
		p.panic(diagnostics.ContinueOutsideLoop, "'continue' outside of a loop.")
	}
	p.consume(token.Semicolon, diagnostics.SemicolonMissing, "Expect ';' after 'continue'.")
	return &ast.ContinueStmt{Line: line}
}

func (p *parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, diagnostics.SemicolonMissing, "Expect ';' after return value.")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

func (p *parser) exprStatement() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, diagnostics.SemicolonMissing, "Expect ';' after expression.")
	return &ast.ExprStmt{Expr: expr}
}

// --- expressions (precedence ladder, lowest to highest) ---
//
// assignment -> logical_or -> logical_and -> equality
//            -> comparison -> term -> factor -> unary -> call -> primary

func (p *parser) expression() ast.Expr {
	return p.assignment()
}

func (p *parser) assignment() ast.Expr {
	expr := p.logicalOr()

	if p.match(token.Equal) {
		value := p.assignment() // right-associative
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}
		}
		p.panic(diagnostics.InvalidAssignmentTarget, "Invalid assignment target.")
	}

	return expr
}

func (p *parser) logicalOr() ast.Expr {
	expr := p.logicalAnd()
	for p.match(token.Or) {
		op := p.previous()
		right := p.logicalAnd()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) logicalAnd() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Plus, token.Minus) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Slash, token.Star, token.Percent) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for p.match(token.LeftParen) {
		expr = p.finishCall(expr)
	}
	return expr
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.warn(diagnostics.TooManyArguments, "Too many arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, diagnostics.CallNotClosed, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}
	case p.match(token.True):
		return &ast.Literal{Value: true}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.Identifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		expr := p.expression()
		p.consume(token.RightParen, diagnostics.ExprNotClosed, "Expect ')' after expression.")
		return &ast.Grouping{Inner: expr}
	case p.match(token.Arrow):
		return p.lambda()
	}

	p.panic(diagnostics.UnknownParsingError, fmt.Sprintf("Unexpected token '%s'.", p.current().Lexeme))
	panic("unreachable")
}

func (p *parser) lambda() ast.Expr {
	params := p.paramList()
	p.consume(token.LeftBrace, diagnostics.BlockNotClosed, "Expect '{' before lambda body.")
	body := p.block()
	return &ast.Lambda{Params: params, Body: body}
}
