package koby

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kobylang/koby/internal/testutil"
	"github.com/kobylang/koby/pkg/runtime"
)

// scenarios captures the named end-to-end behaviors in the language
// contract: the full lex→parse→interpret pipeline, exercised the way a
// `koby run` invocation would exercise it.
var scenarios = []testutil.Scenario{
	{
		Name:       "arithmetic display",
		Source:     `put(1 + 2 * 3);`,
		WantStdout: "7\n",
		WantExit:   0,
	},
	{
		Name:       "string concatenation coerces non-string operand",
		Source:     `put("hi " + 42);`,
		WantStdout: "hi 42\n",
		WantExit:   0,
	},
	{
		Name: "closures capture their defining environment",
		Source: `
fun makeCounter() {
    var count = 0;
    fun increment() {
        count = count + 1;
        return count;
    }
    return increment;
}
var counter = makeCounter();
put(counter());
put(counter());
put(counter());
`,
		WantStdout: "1\n2\n3\n",
		WantExit:   0,
	},
	{
		Name: "for-loop desugaring with break",
		Source: `
for (var i = 0; i < 10; i = i + 1) {
    if (i == 3) { break; }
    put(i);
}
`,
		WantStdout: "0\n1\n2\n",
		WantExit:   0,
	},
	{
		Name:               "undefined variable is a fatal runtime error",
		Source:             `put(missing);`,
		WantStdout:         "",
		WantExit:           1,
		WantStderrContains: "[Error 202]",
	},
	{
		Name: "redeclaration in the same scope is DUPLICATE_VAR",
		Source: `
var x = 1;
var x = 2;
`,
		WantStdout:         "",
		WantExit:           1,
		WantStderrContains: "[Error 205]",
	},
	{
		Name:       "empty program runs cleanly",
		Source:     ``,
		WantStdout: "",
		WantExit:   0,
	},
	{
		Name:               "unterminated string is a fatal lex error",
		Source:             `var x = "oops;`,
		WantStdout:         "",
		WantExit:           1,
		WantStderrContains: "[Error 2]",
	},
	{
		Name:               "break outside a loop is a fatal parse error",
		Source:             `break;`,
		WantStdout:         "",
		WantExit:           1,
		WantStderrContains: "[Error 110]",
	},
	{
		Name:               "calling a function with the wrong arity is fatal",
		Source:             `fun f(a, b) { return a; } f(1);`,
		WantStdout:         "",
		WantExit:           1,
		WantStderrContains: "[Error 203]",
	},
	{
		Name:               "calling a non-function value is fatal",
		Source:             `var x = 1; x();`,
		WantStdout:         "",
		WantExit:           1,
		WantStderrContains: "[Error 204]",
	},
	{
		Name: "255+ parameters is a warning, not a fatal error",
		Source: func() string {
			var params []string
			for i := 0; i < 256; i++ {
				params = append(params, "p"+itoa(i))
			}
			return "fun f(" + strings.Join(params, ", ") + ") { return 1; }\nput(f(" + strings.Join(repeat("0", 256), ", ") + "));"
		}(),
		WantStdout: "Warning: Too many parameters.\nWarning: Too many arguments.\n1\n",
		WantExit:   0,
	},
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

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func TestConformanceScenarios(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			rt := runtime.New(runtime.WithStdout(&stdout), runtime.WithStderr(&stderr))
			result := rt.Run(context.Background(), sc.Source)

			if result.ExitCode != sc.WantExit {
				t.Errorf("exit code = %d, want %d (stderr=%q)", result.ExitCode, sc.WantExit, stderr.String())
			}
			if stdout.String() != sc.WantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), sc.WantStdout)
			}
			if sc.WantStderrContains != "" && !strings.Contains(stderr.String(), sc.WantStderrContains) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), sc.WantStderrContains)
			}
		})
	}
}
