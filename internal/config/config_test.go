package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find = %q,%v,%v", got, ok, err)
	}
	if got != want {
		t.Errorf("Find = %q, want %q", got, want)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	dir := t.TempDir()
	if _, ok, _ := Find(dir); ok {
		t.Skip("a jasm.toml exists above the temp dir")
	}
	cfg, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Assemble.Verify || !cfg.Disassemble.IndyAlias || cfg.Diagnostics.Max != 100 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q for defaults", cfg.Path)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[assemble]
verify = false
owner = "com/example/Demo"
jobs = 4

[disassemble]
indy_alias = false

[hierarchy]
files = ["classes.toml", "/abs/more.toml"]

[diagnostics]
max = 7
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Assemble.Verify || cfg.Assemble.Owner != "com/example/Demo" || cfg.Assemble.Jobs != 4 {
		t.Errorf("assemble = %+v", cfg.Assemble)
	}
	if cfg.Disassemble.IndyAlias {
		t.Error("indy_alias should be off")
	}
	if cfg.Diagnostics.Max != 7 {
		t.Errorf("max = %d", cfg.Diagnostics.Max)
	}
	if got := cfg.Hierarchy.Files[0]; got != filepath.Join(dir, "classes.toml") {
		t.Errorf("relative table path = %q", got)
	}
	if got := cfg.Hierarchy.Files[1]; got != "/abs/more.toml" {
		t.Errorf("absolute table path = %q", got)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"unknown key", "[assemble]\nverfy = true\n", "assemble.verfy"},
		{"unknown table", "[linker]\nx = 1\n", "linker"},
		{"negative max", "[diagnostics]\nmax = -1\n", "must not be negative"},
		{"negative jobs", "[assemble]\njobs = -2\n", "must not be negative"},
		{"bad toml", "[assemble\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.text)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
