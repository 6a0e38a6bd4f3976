package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultWhenNoFilesExist(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Exclude) != 0 {
		t.Errorf("expected no exclusions by default, got %v", p.Exclude)
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".koby"), 0755); err != nil {
		t.Fatal(err)
	}
	writeYAML(t, filepath.Join(home, ".koby", "config.yaml"), "exclude: [\"now\"]")

	project := t.TempDir()
	writeYAML(t, filepath.Join(project, ".koby.yaml"), "exclude: [\"put\"]")

	p, err := Load(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Exclude) != 1 || p.Exclude[0] != "put" {
		t.Errorf("expected project config to win, got %v", p.Exclude)
	}
}

func TestUserConfigAppliesWithoutProjectConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".koby"), 0755); err != nil {
		t.Fatal(err)
	}
	writeYAML(t, filepath.Join(home, ".koby", "config.yaml"), "exclude: [\"now\"]")

	p, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Exclude) != 1 || p.Exclude[0] != "now" {
		t.Errorf("expected user config to apply, got %v", p.Exclude)
	}
}

func TestLoadREPLPolicyDefaultsToExcludingPut(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	p, err := LoadREPLPolicy(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Exclude) != 1 || p.Exclude[0] != "put" {
		t.Errorf("expected default REPL policy to exclude put, got %v", p.Exclude)
	}
}

func TestLoadREPLPolicyHonorsProjectConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	project := t.TempDir()
	writeYAML(t, filepath.Join(project, ".koby.yaml"), "exclude: [\"now\"]")

	p, err := LoadREPLPolicy(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Exclude) != 1 || p.Exclude[0] != "now" {
		t.Errorf("expected project config to override REPL default, got %v", p.Exclude)
	}
}

func TestExcludeSet(t *testing.T) {
	p := PreludePolicy{Exclude: []string{"put", "now"}}
	set := p.ExcludeSet()
	if !set["put"] || !set["now"] || set["missing"] {
		t.Errorf("unexpected set contents: %v", set)
	}
}

func writeYAML(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
