// Package testutil provides shared test helpers for Koby Go tests.
package testutil

// Scenario describes one end-to-end run of the Koby pipeline: a source
// program plus the stdout and exit code it must produce.
type Scenario struct {
	Name       string
	Source     string
	WantStdout string
	WantExit   int
	// WantStderrContains, when non-empty, must appear somewhere in stderr.
	WantStderrContains string
}
