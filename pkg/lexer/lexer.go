// Package lexer implements the Koby scanner: source text to a token
// stream plus a parallel list of lexical diagnostics.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/kobylang/koby/pkg/diagnostics"
	"github.com/kobylang/koby/pkg/token"
)

type scanner struct {
	source string
	start  int // start of the current lexeme
	pos    int // scan cursor
	line   int

	tokens []token.Token
	diags  []diagnostics.Diagnostic
}

// Scan lexes source into a token stream (always END-terminated) and a
// parallel list of diagnostics. Lexical errors never abort scanning; they
// accumulate and the scanner keeps going.
func Scan(source string) ([]token.Token, []diagnostics.Diagnostic) {
	s := &scanner{source: source, line: 1}
	for !s.atEnd() {
		s.start = s.pos
		s.scanToken()
	}
	s.start = s.pos
	s.emit(token.End, "")
	return s.tokens, s.diags
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	return ch
}

// peekMatch consumes the current character if it equals expected.
func (s *scanner) peekMatch(expected byte) bool {
	if s.atEnd() || s.peek() != expected {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) emit(t token.Type, literal any) {
	lexeme := s.source[s.start:s.pos]
	s.tokens = append(s.tokens, token.New(t, lexeme, literal, s.line))
}

func (s *scanner) errorf(code int, format string, args ...any) {
	s.diags = append(s.diags, diagnostics.New(code, fmt.Sprintf(format, args...), s.line))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanToken() {
	ch := s.advance()

	switch ch {
	case ' ', '\t', '\r':
		return
	case '\n':
		s.line++
		return
	case '(':
		s.emit(token.LeftParen, nil)
	case ')':
		s.emit(token.RightParen, nil)
	case '{':
		s.emit(token.LeftBrace, nil)
	case '}':
		s.emit(token.RightBrace, nil)
	case ',':
		s.emit(token.Comma, nil)
	case '.':
		s.emit(token.Dot, nil)
	case ';':
		s.emit(token.Semicolon, nil)
	case '+':
		s.emit(token.Plus, nil)
	case '*':
		s.emit(token.Star, nil)
	case '%':
		s.emit(token.Percent, nil)
	case '-':
		if s.peekMatch('>') {
			s.emit(token.Arrow, nil)
		} else {
			s.emit(token.Minus, nil)
		}
	case '/':
		if s.peekMatch('/') {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.emit(token.Slash, nil)
		}
	case '!':
		if s.peekMatch('=') {
			s.emit(token.BangEqual, nil)
		} else {
			s.emit(token.Bang, nil)
		}
	case '=':
		if s.peekMatch('=') {
			s.emit(token.EqualEqual, nil)
		} else {
			s.emit(token.Equal, nil)
		}
	case '<':
		if s.peekMatch('=') {
			s.emit(token.LessEqual, nil)
		} else {
			s.emit(token.Less, nil)
		}
	case '>':
		if s.peekMatch('=') {
			s.emit(token.GreaterEqual, nil)
		} else {
			s.emit(token.Greater, nil)
		}
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(ch):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentifier()
		default:
			s.errorf(diagnostics.LexicalError, "Unexpected character: %c", ch)
		}
	}
}

func (s *scanner) scanString() {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}

	if s.atEnd() {
		s.errorf(diagnostics.UnterminatedString, "Unterminated string.")
		return
	}

	value := s.source[s.start+1 : s.pos]
	s.advance() // closing quote
	s.emit(token.String, value)
}

func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}

	// A trailing '.' without a fractional digit after it is not part of the
	// number; it is left for the next token (e.g. method-call-style dot).
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	text := s.source[s.start:s.pos]
	value, _ := strconv.ParseFloat(text, 64)
	s.emit(token.Number, value)
}

func (s *scanner) scanIdentifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	// A single trailing '?' is allowed in identifiers (e.g. empty?).
	if s.peek() == '?' {
		s.advance()
	}

	text := s.source[s.start:s.pos]
	if kw, ok := token.Keywords[text]; ok {
		switch kw {
		case token.True:
			s.emit(kw, true)
		case token.False:
			s.emit(kw, false)
		case token.Nil:
			s.emit(kw, nil)
		default:
			s.emit(kw, nil)
		}
		return
	}
	s.emit(token.Identifier, nil)
}
