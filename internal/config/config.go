// Package config reads jasm.toml, the per-directory defaults for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name looked up from the working directory upwards.
const FileName = "jasm.toml"

type Config struct {
	Assemble    Assemble    `toml:"assemble"`
	Disassemble Disassemble `toml:"disassemble"`
	Hierarchy   Hierarchy   `toml:"hierarchy"`
	Diagnostics Diagnostics `toml:"diagnostics"`

	// Path is the file the values came from; empty for Default.
	Path string `toml:"-"`
}

type Assemble struct {
	Verify bool `toml:"verify"`
	// Owner is the internal name of the declaring class.
	Owner string `toml:"owner"`
	Jobs  int    `toml:"jobs"`
}

type Disassemble struct {
	IndyAlias bool `toml:"indy_alias"`
}

// Hierarchy lists class tables; relative paths are resolved against the
// directory of the config file.
type Hierarchy struct {
	Files []string `toml:"files"`
}

type Diagnostics struct {
	Max int `toml:"max"`
}

// Default is what the CLI uses without a jasm.toml.
func Default() Config {
	return Config{
		Assemble:    Assemble{Verify: true},
		Disassemble: Disassemble{IndyAlias: true},
		Diagnostics: Diagnostics{Max: 100},
	}
}

// Find walks up from startDir looking for jasm.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := checkUndecoded(path, meta); err != nil {
		return Config{}, err
	}
	if cfg.Diagnostics.Max < 0 {
		return Config{}, fmt.Errorf("%s: [diagnostics].max must not be negative", path)
	}
	if cfg.Assemble.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [assemble].jobs must not be negative", path)
	}
	cfg.Path = path
	base := filepath.Dir(path)
	for i, f := range cfg.Hierarchy.Files {
		if !filepath.IsAbs(f) {
			cfg.Hierarchy.Files[i] = filepath.Join(base, filepath.FromSlash(f))
		}
	}
	return cfg, nil
}

// Discover loads the nearest jasm.toml, or returns Default when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func checkUndecoded(path string, meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	sort.Strings(keys)
	return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
}
