package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"jasm/internal/diagfmt"
	"jasm/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.jasm|->",
	Short: "Parse a listing and print its AST",
	Long:  `Parse reads one listing and prints the nodes it consists of, one per line`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	idx := session.begin("parse")
	var result *driver.ParseResult
	if args[0] == "-" {
		text, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		result = driver.ParseText(cmd.Context(), "<stdin>", string(text), session.maxDiag)
	} else if result, err = driver.Parse(cmd.Context(), args[0], session.maxDiag); err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	session.end(idx, fmt.Sprintf("%d nodes", len(result.Result.Root.Nodes)))

	if err := session.report(os.Stderr, result.Bag, result.FileSet); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if format == "json" {
		err = diagfmt.FormatASTJSON(out, result.Result.Root)
	} else {
		err = diagfmt.FormatASTPretty(out, result.Result.Root)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errReported
	}
	return nil
}
