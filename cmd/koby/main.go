// Command koby is the Koby interpreter's CLI entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kobylang/koby/pkg/config"
	"github.com/kobylang/koby/pkg/diagnostics"
	"github.com/kobylang/koby/pkg/help"
	"github.com/kobylang/koby/pkg/interpreter"
	"github.com/kobylang/koby/pkg/lexer"
	"github.com/kobylang/koby/pkg/parser"
	"github.com/kobylang/koby/pkg/printer"
	"github.com/kobylang/koby/pkg/runtime"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(help.QUICKREF)
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "help", "--help", "-h":
		os.Exit(cmdHelp(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func cmdRun(args []string) int {
	var file string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			file = a
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: koby run <file>")
		return 1
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read file: %s\n", file)
		return 1
	}

	policy, err := config.Load(dirOf(file))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load config: %s\n", err)
		return 1
	}

	rt := runtime.New(
		runtime.WithStdout(os.Stdout),
		runtime.WithStderr(os.Stderr),
		runtime.WithPreludeExclude(policy.Exclude...),
	)
	result := rt.Run(context.Background(), string(source))
	return result.ExitCode
}

func cmdFmt(args []string) int {
	var file string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			file = a
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: koby fmt <file>")
		return 1
	}

	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read file: %s\n", file)
		return 1
	}

	tokens, lexDiags := lexer.Scan(string(source))
	stmts, parseDiags := parser.Parse(tokens)
	all := append(append([]diagnostics.Diagnostic{}, lexDiags...), parseDiags...)
	for _, d := range all {
		fmt.Fprintln(os.Stderr, d.Format())
		if !d.Warning {
			return 2
		}
	}

	fmt.Print(printer.Print(stmts))
	return 0
}

func cmdHelp(args []string) int {
	if len(args) == 0 {
		fmt.Println(help.QUICKREF)
		return 0
	}
	name, ok := help.MatchTopic(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown topic: %s\nAvailable topics: %s\n", args[0], strings.Join(help.TopicList(), ", "))
		return 1
	}
	fmt.Println(help.Topics[name])
	return 0
}

func cmdRepl(_ []string) int {
	policy, err := config.LoadREPLPolicy(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load config: %s\n", err)
		return 1
	}

	rt := runtime.New(
		runtime.WithStdout(os.Stdout),
		runtime.WithStderr(os.Stderr),
		runtime.WithPreludeExclude(policy.Exclude...),
	)
	session := rt.NewSession()
	ctx := context.Background()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print(">>> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			return 0
		}
		if line == "" {
			fmt.Print(">>> ")
			continue
		}
		if !strings.HasSuffix(line, ";") && !strings.HasSuffix(line, "}") {
			line += ";"
		}

		v, _, err := session.Eval(ctx, line)
		if err == nil && v != nil {
			printREPLValue(v)
		}
		fmt.Print(">>> ")
	}
	return 0
}

func printREPLValue(v interpreter.Value) {
	if _, isNil := v.(interpreter.Nil); isNil {
		fmt.Println("\033[3m<empty>\033[0m")
		return
	}
	fmt.Println(interpreter.Display(v))
}

func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}
