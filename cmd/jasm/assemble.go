package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jasm/internal/buildpipeline"
	"jasm/internal/driver"
	"jasm/internal/source"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble [flags] <file.jasm|directory|->",
	Short: "Compile listings into member files",
	Long: `Assemble compiles a listing, every *.jasm file under a directory, or a
listing read from stdin (-) into member files (msgpack or JSON)`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().StringP("output", "o", "", "output file or directory (default: next to each listing, stdout for -)")
	assembleCmd.Flags().String("format", "msgpack", "member file format (msgpack|json)")
	assembleCmd.Flags().Bool("no-verify", false, "skip the verifier (max_stack stays 0)")
	assembleCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0 = jasm.toml or auto)")
	assembleCmd.Flags().Bool("cache", false, "reuse members compiled before from the user cache directory")
	assembleCmd.Flags().Bool("clear-cache", false, "drop the member cache before assembling")
	addCompileFlags(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := driver.ParseMemberFormat(formatStr)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	opts, err := compileOptions(cmd)
	if err != nil {
		return err
	}
	noVerify, err := cmd.Flags().GetBool("no-verify")
	if err != nil {
		return fmt.Errorf("failed to get no-verify flag: %w", err)
	}
	if noVerify {
		opts.Verify = false
	}
	if err := setupCache(cmd, &opts); err != nil {
		return err
	}

	if path == "-" {
		return assembleStdin(cmd, output, format, opts)
	}
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if st.IsDir() {
		return assembleDir(cmd, path, output, format, opts)
	}

	fs := source.NewFileSet()
	res, err := driver.AssembleFile(ctx, fs, path, opts)
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
	target := singleOutput(path, output, format)
	if err := driver.WriteMember(target, res.Member(), format); err != nil {
		return err
	}
	if !session.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %s\n", path, target, driver.Describe(res.Member()))
	}
	return nil
}

func setupCache(cmd *cobra.Command, opts *driver.AssembleOptions) error {
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if !useCache && !clearCache {
		return nil
	}
	cache, err := driver.OpenDiskCache("jasm")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	if useCache {
		opts.Cache = cache
	}
	return nil
}

func assembleStdin(cmd *cobra.Command, output string, format driver.MemberFormat, opts driver.AssembleOptions) error {
	text, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	fs := source.NewFileSet()
	res := driver.AssembleText(cmd.Context(), fs, "<stdin>", string(text), opts)
	recordTimings(res.Timings)
	if err := session.report(os.Stderr, res.Bag, fs); err != nil {
		return err
	}
	if res.Failed() {
		return errReported
	}
	if output == "" || output == "-" {
		return driver.EncodeMember(cmd.OutOrStdout(), res.Member(), format)
	}
	return driver.WriteMember(output, res.Member(), format)
}

func assembleDir(cmd *cobra.Command, dir, output string, format driver.MemberFormat, opts driver.AssembleOptions) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = session.cfg.Assemble.Jobs
	}
	files, err := driver.ListFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to list listings: %w", err)
	}
	if len(files) == 0 {
		session.log.Warn().Str("dir", dir).Msg("no listings found")
		return nil
	}
	opts.Write = func(res *driver.AssembleResult) error {
		return driver.WriteMember(batchOutput(dir, res.Path, output, format), res.Member(), format)
	}

	fs := source.NewFileSetWithBase(dir)
	withUI, err := useProgressUI(cmd)
	if err != nil {
		return err
	}
	var batch *driver.BatchResult
	if withUI {
		batch, err = runBatchWithUI(cmd.Context(), "assemble "+dir, fs, files, jobs, opts)
	} else {
		batch, err = driver.AssembleFiles(cmd.Context(), fs, files, jobs, opts)
	}
	if err != nil {
		return err
	}

	recordTimings(batch.Timings)
	for _, res := range batch.Results {
		if err := session.report(os.Stderr, res.Bag, batch.FileSet); err != nil {
			return err
		}
	}
	failed := batch.Failed()
	if !session.quiet {
		cached := 0
		for _, res := range batch.Results {
			if res.Cached {
				cached++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "assembled %d/%d listings (%d cached) in %s\n",
			len(files)-failed, len(files), cached, batch.Elapsed.Round(time.Millisecond))
	}
	if failed > 0 {
		return errReported
	}
	return nil
}

// singleOutput picks the member path for one listing: -o may name the file
// itself or a directory.
func singleOutput(listing, output string, format driver.MemberFormat) string {
	if output == "" {
		return driver.OutputPath(listing, "", format)
	}
	if st, err := os.Stat(output); err == nil && st.IsDir() {
		return driver.OutputPath(listing, output, format)
	}
	if filepath.Ext(output) != "" {
		return output
	}
	return driver.OutputPath(listing, output, format)
}

// batchOutput keeps the layout of dir below output so equal base names in
// different subdirectories do not collide.
func batchOutput(dir, listing, output string, format driver.MemberFormat) string {
	if output == "" {
		return driver.OutputPath(listing, "", format)
	}
	rel, err := filepath.Rel(dir, listing)
	if err != nil || strings.HasPrefix(rel, "..") {
		return driver.OutputPath(listing, output, format)
	}
	return filepath.Join(output, strings.TrimSuffix(rel, filepath.Ext(rel))+format.Extension())
}

func recordTimings(t buildpipeline.Timings) {
	for _, stage := range buildpipeline.Stages {
		if t.Has(stage) {
			session.record(string(stage), t.Duration(stage), "")
		}
	}
}
