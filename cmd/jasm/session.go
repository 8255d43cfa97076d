package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jasm/internal/config"
	"jasm/internal/diag"
	"jasm/internal/diagfmt"
	"jasm/internal/observ"
	"jasm/internal/prof"
	"jasm/internal/source"
	"jasm/internal/trace"
)

// runSession holds what the persistent flags and jasm.toml resolve to for
// one invocation.
type runSession struct {
	cfg        config.Config
	log        zerolog.Logger
	color      bool
	quiet      bool
	maxDiag    int
	diagFormat string
	pathMode   diagfmt.PathMode
	timer      *observ.Timer // nil without --timings
	tracer     trace.Tracer
	cleanup    func()
	profiling  *prof.Session
}

var session = runSession{log: zerolog.Nop(), tracer: trace.Nop}

func setupSession(cmd *cobra.Command, _ []string) error {
	root := cmd.Root().PersistentFlags()

	colorFlag, err := root.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		session.color = true
	case "off":
		session.color = false
	case "auto":
		session.color = isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	color.NoColor = !session.color

	if session.quiet, err = root.GetBool("quiet"); err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if err := session.setupLogger(cmd); err != nil {
		return err
	}

	timings, err := root.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		session.timer = observ.NewTimer()
	}

	idx := session.begin("config")
	if err := session.loadConfig(cmd); err != nil {
		return err
	}
	session.end(idx, session.cfg.Path)

	if session.maxDiag, err = root.GetInt("max-diagnostics"); err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if session.maxDiag <= 0 {
		session.maxDiag = session.cfg.Diagnostics.Max
	}
	if session.diagFormat, err = root.GetString("diagnostics-format"); err != nil {
		return fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	if session.diagFormat != "pretty" && session.diagFormat != "json" {
		return fmt.Errorf("invalid --diagnostics-format %q (expected pretty|json)", session.diagFormat)
	}
	pathMode, err := root.GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if session.pathMode, err = readPathMode(pathMode); err != nil {
		return err
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	session.tracer, session.cleanup = tracer, cleanup
	return session.startProfiling(cmd)
}

func (s *runSession) startProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}
	s.profiling, err = prof.Start(opts)
	return err
}

func (s *runSession) setupLogger(cmd *cobra.Command) error {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	if s.quiet && level < zerolog.ErrorLevel {
		level = zerolog.ErrorLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !s.color, TimeFormat: time.TimeOnly}
	s.log = zerolog.New(out).Level(level).With().Timestamp().Logger()
	cmd.SetContext(s.log.WithContext(cmd.Context()))
	return nil
}

func (s *runSession) loadConfig(cmd *cobra.Command) error {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		s.cfg, err = config.Load(path)
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return err
		}
		s.cfg, err = config.Discover(wd)
	}
	if err != nil {
		return err
	}
	if s.cfg.Path != "" {
		s.log.Debug().Str("path", s.cfg.Path).Msg("config loaded")
	}
	return nil
}

func readPathMode(value string) (diagfmt.PathMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return diagfmt.PathModeAuto, nil
	case "absolute":
		return diagfmt.PathModeAbsolute, nil
	case "relative":
		return diagfmt.PathModeRelative, nil
	case "basename":
		return diagfmt.PathModeBasename, nil
	}
	return diagfmt.PathModeAuto, fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", value)
}

func (s *runSession) begin(name string) int {
	if s.timer == nil {
		return -1
	}
	return s.timer.Begin(name)
}

func (s *runSession) end(idx int, note string) {
	if s.timer != nil {
		s.timer.End(idx, note)
	}
}

func (s *runSession) record(name string, dur time.Duration, note string) {
	if s.timer != nil && dur > 0 {
		s.timer.Record(name, dur, note)
	}
}

// report prints bag to w in the selected format. Quiet runs keep errors only.
func (s *runSession) report(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	bag.Sort()
	if s.diagFormat == "json" {
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{PathMode: s.pathMode, IncludeNotes: true})
	}
	if s.quiet && !bag.HasErrors() {
		return nil
	}
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     s.color,
		Context:   2,
		PathMode:  s.pathMode,
		Width:     terminalWidth(os.Stderr),
		ShowNotes: true,
	})
	return nil
}

// close runs after the command: it dumps the trace ring when the run failed,
// then flushes the tracer and prints the timings.
func (s *runSession) close(runErr error) {
	if runErr != nil {
		if ring := trace.RingOf(s.tracer); ring != nil {
			fmt.Fprintln(os.Stderr, "trace: last events before the failure")
			if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
				fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
			}
		}
	}
	if s.cleanup != nil {
		s.cleanup()
	}
	if err := s.profiling.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
	}
	if s.timer != nil {
		fmt.Fprint(os.Stderr, s.timer.Summary())
	}
}
