package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jasm/internal/driver"
	"jasm/internal/source"
)

var disassembleCmd = &cobra.Command{
	Use:     "disassemble [flags] <member.mp|member.json>",
	Aliases: []string{"dis"},
	Short:   "Turn a member file back into a listing",
	Args:    cobra.ExactArgs(1),
	RunE:    runDisassemble,
}

func init() {
	disassembleCmd.Flags().StringP("output", "o", "", "write the listing to this file instead of stdout")
	disassembleCmd.Flags().Bool("no-indy-alias", false, "print the metafactory bootstrap handle in full instead of H_META")
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	noAlias, err := cmd.Flags().GetBool("no-indy-alias")
	if err != nil {
		return fmt.Errorf("failed to get no-indy-alias flag: %w", err)
	}

	idx := session.begin("disassemble")
	fs := source.NewFileSet()
	res := driver.DisassembleFile(cmd.Context(), fs, args[0], driver.DisassembleOptions{
		IndyAlias: session.cfg.Disassemble.IndyAlias && !noAlias,
		Logger:    &session.log,
	})
	session.end(idx, "")

	if err := session.report(os.Stderr, res.Bag, fs); err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return errReported
	}
	if output == "" || output == "-" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), res.Text)
		return err
	}
	return os.WriteFile(output, []byte(res.Text), 0o644)
}
