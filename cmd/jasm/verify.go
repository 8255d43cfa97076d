package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jasm/internal/driver"
	"jasm/internal/source"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [flags] <file.jasm>",
	Short: "Assemble a listing with the verifier and report the result",
	Long: `Verify assembles a listing with verification enabled and writes nothing.
With --frames it prints the frame the verifier computed before every instruction`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Bool("frames", false, "print the frame before every instruction")
	addCompileFlags(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	frames, err := cmd.Flags().GetBool("frames")
	if err != nil {
		return fmt.Errorf("failed to get frames flag: %w", err)
	}
	opts, err := compileOptions(cmd)
	if err != nil {
		return err
	}
	opts.Verify = true

	fs := source.NewFileSet()
	res, err := driver.AssembleFile(cmd.Context(), fs, args[0], opts)
	if err != nil {
		return err
	}
	recordTimings(res.Timings)
	if err := session.report(os.Stderr, res.Bag, fs); err != nil {
		return err
	}
	if res.Failed() {
		return errReported
	}
	if frames {
		return driver.WriteFrames(cmd.OutOrStdout(), res.Output)
	}
	if !session.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "ok %s: %s\n", args[0], driver.Describe(res.Member()))
	}
	return nil
}
