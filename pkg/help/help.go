// Package help holds the static text shown by `koby help [topic]`.
package help

import "strings"

// QUICKREF is printed by `koby help` with no topic argument.
const QUICKREF = `koby - a small tree-walking interpreter

Usage:
  koby help [topic]   Show this summary, or detail on one topic
  koby run <path>     Run a Koby source file
  koby repl           Start an interactive session
  koby fmt <path>     Print a formatted version of a source file

Topics: syntax, functions, control-flow, errors, repl`

// Topics maps a topic name to its detail text.
var Topics = map[string]string{
	"syntax": `Syntax

Statements end with ';'. Blocks are '{' ... '}'. Comments start with
'//' and run to end of line. Variables are declared with 'var':

  var count = 0;
  count = count + 1;`,

	"functions": `Functions

Named functions:

  fun add(a, b) { return a + b; }

Anonymous functions (lambdas):

  var add = -> (a, b) { return a + b; };

Calling a value that isn't a function is a runtime error (NOT_CALLABLE).
Calling a function with the wrong number of arguments is a runtime error
(ARGUMENT_COUNT_MISMATCH).`,

	"control-flow": `Control flow

  if (cond) { ... } else { ... }
  while (cond) { ... }
  for (var i = 0; i < 10; i = i + 1) { ... }
  break;
  continue;
  return value;

'break' and 'continue' are only valid inside a loop body.`,

	"errors": `Errors

Lexical errors are collected first; the parser runs only if there were
none, and collects its own errors. A fatal error from either stage
prevents execution. Runtime errors stop the current
program or REPL line immediately. Every error prints as:

  [Error <code>]<message>
  [line <line>]

Warnings (e.g. too many parameters) print as a single "Warning: ..."
line and do not stop execution.`,

	"repl": `REPL

Start with 'koby repl'. Each line is compiled and run against a
persistent session: variables and functions declared on one line stay
visible on later ones. An empty result prints as an italicized
'<empty>' marker. Type 'exit' to quit.`,
}

// TopicList returns the known topic names in help-text order.
func TopicList() []string {
	return []string{"syntax", "functions", "control-flow", "errors", "repl"}
}

// MatchTopic resolves a user-typed topic name, case-insensitively and
// tolerant of a leading "-"/"--", to a known topic. A name that is empty
// after trimming matches no topic.
func MatchTopic(arg string) (string, bool) {
	name := strings.ToLower(strings.TrimLeft(arg, "-"))
	if name == "" {
		return "", false
	}
	if _, ok := Topics[name]; ok {
		return name, true
	}
	return "", false
}
