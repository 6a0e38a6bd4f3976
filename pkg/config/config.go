// Package config loads Koby's prelude policy: which native builtins a
// given run or REPL session should exclude. Configuration is layered
// project config over user config over a built-in default.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PreludePolicy controls which native functions get registered into the
// global scope before a program or REPL session runs.
type PreludePolicy struct {
	Exclude []string `yaml:"exclude"`
}

// ExcludeSet returns the policy's exclude list as a lookup set.
func (p PreludePolicy) ExcludeSet() map[string]bool {
	set := make(map[string]bool, len(p.Exclude))
	for _, name := range p.Exclude {
		set[name] = true
	}
	return set
}

// defaultPolicy excludes nothing: both now() and put() are registered by
// default, as `koby run` expects. The REPL's own default comes from
// LoadREPLPolicy.
func defaultPolicy() PreludePolicy {
	return PreludePolicy{}
}

// Load resolves the effective policy by merging, in increasing priority:
// the built-in default, the user config (~/.koby/config.yaml), and the
// project config (.koby.yaml in projectDir). A later layer whose file
// exists replaces the prior layer's policy, even when its Exclude list is
// empty.
func Load(projectDir string) (PreludePolicy, error) {
	policy, _, err := load(projectDir)
	return policy, err
}

// LoadREPLPolicy is Load, specialized for the REPL entry point: when no
// config file exists anywhere in the chain, it falls back to the REPL's
// hardcoded default of excluding "put" from the prelude before the first
// prompt, rather than registering every native binding unfiltered.
func LoadREPLPolicy(projectDir string) (PreludePolicy, error) {
	policy, found, err := load(projectDir)
	if err != nil {
		return policy, err
	}
	if !found {
		return PreludePolicy{Exclude: []string{"put"}}, nil
	}
	return policy, nil
}

func load(projectDir string) (PreludePolicy, bool, error) {
	policy := defaultPolicy()
	found := false

	if home, err := os.UserHomeDir(); err == nil {
		if p, ok, err := readPolicy(filepath.Join(home, ".koby", "config.yaml")); err != nil {
			return policy, found, err
		} else if ok {
			policy, found = p, true
		}
	}

	if p, ok, err := readPolicy(filepath.Join(projectDir, ".koby.yaml")); err != nil {
		return policy, found, err
	} else if ok {
		policy, found = p, true
	}

	return policy, found, nil
}

func readPolicy(path string) (PreludePolicy, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return PreludePolicy{}, false, nil
	}
	if err != nil {
		return PreludePolicy{}, false, err
	}
	var p PreludePolicy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return PreludePolicy{}, false, err
	}
	return p, true, nil
}
