// Package diagnostics defines Koby's numeric error-code taxonomy and the
// formatting rules used to render errors and warnings to the user.
package diagnostics

import "fmt"

// Code namespaces: lex 1-100, parse 101-200, eval 201-300.
const (
	LexicalError       = 1
	UnterminatedString = 2

	UnknownParsingError     = 101
	ExprNotClosed           = 102
	BlockNotClosed          = 103
	VarNameMissing          = 104
	SemicolonMissing        = 105
	InvalidAssignmentTarget = 106
	IfCondMissingParen      = 107
	WhileCondMissingParen   = 108
	ForCondMissingParen     = 109
	BreakOutsideLoop        = 110
	ContinueOutsideLoop     = 111
	CallNotClosed           = 112
	TooManyArguments        = 113
	NamedFuncMissingName    = 114
	FuncParamsMissingParen  = 115
	FuncParamMissingName    = 116

	OperandInvalid         = 201
	UndefinedVar           = 202
	ArgumentCountMismatch  = 203
	NotCallable            = 204
	DuplicateVar           = 205
)

// Diagnostic is one reported error or warning, localized to a source line.
type Diagnostic struct {
	Code    int
	Message string
	Line    int
	Warning bool
}

// New creates a fatal diagnostic.
func New(code int, message string, line int) Diagnostic {
	return Diagnostic{Code: code, Message: message, Line: line}
}

// NewWarning creates a non-fatal diagnostic.
func NewWarning(code int, message string, line int) Diagnostic {
	return Diagnostic{Code: code, Message: message, Line: line, Warning: true}
}

// Format renders a diagnostic as:
//
//	[Error <code>]<message>
//	[line <line>]
//
// Warnings render as a "Warning:"-prefixed single line instead.
func (d Diagnostic) Format() string {
	if d.Warning {
		return fmt.Sprintf("Warning: %s", d.Message)
	}
	return fmt.Sprintf("[Error %d]%s\n[line %d]", d.Code, d.Message, d.Line)
}

// RuntimeError is a fatal evaluation-time error. Unlike lex/parse
// Diagnostics, which accumulate, a RuntimeError unwinds the current
// program/REPL line immediately.
type RuntimeError struct {
	Code    int
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return Diagnostic{Code: e.Code, Message: e.Message, Line: e.Line}.Format()
}

// Diag converts a RuntimeError to its Diagnostic representation.
func (e *RuntimeError) Diag() Diagnostic {
	return Diagnostic{Code: e.Code, Message: e.Message, Line: e.Line}
}
