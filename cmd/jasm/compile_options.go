package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jasm/internal/driver"
	"jasm/internal/hierarchy"
)

// addCompileFlags registers the flags assemble and verify share.
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().String("owner", "", "internal name of the declaring class (overrides jasm.toml)")
	cmd.Flags().StringSlice("classes", nil, "extra class hierarchy tables (TOML)")
	cmd.Flags().String("baseline", "", "member file whose variable table seeds slot allocation")
}

// compileOptions merges jasm.toml and the command flags. The returned
// options have no cache and no write hook.
func compileOptions(cmd *cobra.Command) (driver.AssembleOptions, error) {
	cfg := session.cfg
	opts := driver.AssembleOptions{
		Verify:         cfg.Assemble.Verify,
		Owner:          cfg.Assemble.Owner,
		MaxDiagnostics: session.maxDiag,
		Logger:         &session.log,
	}
	if cmd.Flags().Changed("owner") {
		owner, err := cmd.Flags().GetString("owner")
		if err != nil {
			return opts, fmt.Errorf("failed to get owner flag: %w", err)
		}
		opts.Owner = owner
	}

	classes, err := cmd.Flags().GetStringSlice("classes")
	if err != nil {
		return opts, fmt.Errorf("failed to get classes flag: %w", err)
	}
	tables := append(append([]string(nil), cfg.Hierarchy.Files...), classes...)
	if len(tables) > 0 {
		idx := session.begin("hierarchy")
		graph := hierarchy.New()
		var salt bytes.Buffer
		for _, path := range tables {
			// #nosec G304 -- path is provided by the user
			data, err := os.ReadFile(path)
			if err != nil {
				return opts, fmt.Errorf("hierarchy: %w", err)
			}
			if err := graph.LoadFile(path); err != nil {
				return opts, err
			}
			// ключ кэша зависит от содержимого таблиц, не от путей
			salt.Write(data)
			salt.WriteByte(0)
		}
		opts.Oracle = graph
		opts.Salt = salt.Bytes()
		session.end(idx, fmt.Sprintf("%d classes", graph.Len()))
		session.log.Debug().Strs("tables", tables).Int("classes", graph.Len()).Msg("hierarchy loaded")
	}

	baseline, err := cmd.Flags().GetString("baseline")
	if err != nil {
		return opts, fmt.Errorf("failed to get baseline flag: %w", err)
	}
	if baseline != "" {
		m, err := driver.LoadMember(baseline)
		if err != nil {
			return opts, fmt.Errorf("baseline: %w", err)
		}
		opts.Baseline = m.Locals
	}
	return opts, nil
}
