// Package driver runs the assembler, verifier and disassembler over files
// and directories and collects what they report into diagnostic bags.
package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fortio.org/safecast"
	"github.com/rs/zerolog"

	"jasm/internal/asm"
	"jasm/internal/buildpipeline"
	"jasm/internal/diag"
	"jasm/internal/hierarchy"
	"jasm/internal/insn"
	"jasm/internal/parser"
	"jasm/internal/source"
	"jasm/internal/trace"
)

type AssembleOptions struct {
	Verify   bool
	Owner    string
	Static   *bool
	Oracle   hierarchy.Oracle
	Baseline []insn.LocalVariable
	// MaxDiagnostics caps the bag of each listing; 0 means no limit.
	MaxDiagnostics int
	Logger         *zerolog.Logger
	// Cache, when set, short-cuts listings compiled before with equal options.
	Cache *DiskCache
	// Salt describes the oracle for cache keys, e.g. the class tables it was loaded from.
	Salt     []byte
	Progress buildpipeline.ProgressSink
	// Write, when set, stores each compiled listing of a batch. It is called
	// from the worker goroutines.
	Write func(*AssembleResult) error
}

func (o *AssembleOptions) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// AssembleResult is the outcome for one listing.
type AssembleResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	// Output is nil when the listing did not compile. A cached result has
	// only Member and Lines.
	Output  *asm.Output
	Cached  bool
	Timings buildpipeline.Timings
}

// Member returns the compiled member or nil.
func (r *AssembleResult) Member() *insn.Member {
	if r == nil || r.Output == nil {
		return nil
	}
	return r.Output.Member
}

func (r *AssembleResult) Failed() bool {
	return r.Output == nil || r.Bag.HasErrors()
}

// AssembleFile loads path into fs and assembles it. Load failures are
// reported in the bag; the error is only set when ctx is done.
func AssembleFile(ctx context.Context, fs *source.FileSet, path string, opts AssembleOptions) (*AssembleResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := fs.Load(path)
	if err != nil {
		// пустая запись, чтобы диагностике было на что сослаться
		id = fs.AddVirtual(path, nil)
		res := &AssembleResult{Path: path, FileID: id, Bag: diag.NewBag(opts.MaxDiagnostics)}
		res.Bag.Add(diag.Errorf(diag.IOLoadFileError, source.At(id, -1), "cannot read listing: %v", err))
		buildpipeline.Emit(opts.Progress, buildpipeline.Event{File: path, Stage: buildpipeline.StageParse, Status: buildpipeline.StatusError, Err: err})
		return res, nil
	}
	return assembleSource(ctx, fs.Get(id), opts), nil
}

// AssembleText assembles an in-memory listing, e.g. one read from stdin.
func AssembleText(ctx context.Context, fs *source.FileSet, name, text string, opts AssembleOptions) *AssembleResult {
	id := fs.AddVirtual(name, []byte(text))
	return assembleSource(ctx, fs.Get(id), opts)
}

func assembleSource(ctx context.Context, f *source.File, opts AssembleOptions) *AssembleResult {
	log := opts.logger().With().Str("file", f.Path).Logger()
	res := &AssembleResult{Path: f.Path, FileID: f.ID, Bag: diag.NewBag(opts.MaxDiagnostics)}
	emit := func(stage buildpipeline.Stage, status buildpipeline.Status, err error) {
		buildpipeline.Emit(opts.Progress, buildpipeline.Event{File: f.Path, Stage: stage, Status: status, Err: err})
	}

	var key Digest
	if opts.Cache != nil {
		key = cacheKey(Digest(f.Hash), &opts)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			log.Warn().Err(err).Msg("disk cache read failed")
		}
		if hit && payload.ContentHash == Digest(f.Hash) {
			res.Output = &asm.Output{Member: payload.Member, Lines: payload.Lines}
			res.Cached = true
			log.Debug().Str("key", key.String()).Msg("cache hit")
			emit(buildpipeline.StageParse, buildpipeline.StatusCached, nil)
			return res
		}
	}

	emit(buildpipeline.StageParse, buildpipeline.StatusWorking, nil)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "assemble "+f.Path)
	parseStart := time.Now()
	_, parseSpan := trace.StartPass(ctx, trace.PassParse)
	parsed := parser.ParseFile(f, parser.Options{MaxErrors: maxErrors(opts.MaxDiagnostics), File: f.ID})
	parseSpan.WithExtra("problems", strconv.Itoa(len(parsed.Problems))).End("")
	res.Timings.Add(buildpipeline.StageParse, time.Since(parseStart))
	log.Debug().Int("problems", len(parsed.Problems)).Dur("took", time.Since(parseStart)).Msg("parsed")

	emit(buildpipeline.StageAssemble, buildpipeline.StatusWorking, nil)
	observer := observe(trace.FromContext(ctx), func(ev PhaseEvent) {
		stage := buildpipeline.StageAssemble
		if ev.Name == string(trace.PassVerify) {
			stage = buildpipeline.StageVerify
		}
		switch ev.Status {
		case PhaseStart:
			emit(stage, buildpipeline.StatusWorking, nil)
		case PhaseEnd:
			res.Timings.Add(stage, ev.Elapsed)
			log.Debug().Str("pass", ev.Name).Dur("took", ev.Elapsed).Msg("pass finished")
		}
	})
	out, err := asm.Compile(trace.WithTracer(ctx, observer), parsed, asm.Options{
		Owner:    opts.Owner,
		Static:   opts.Static,
		Verify:   opts.Verify,
		Oracle:   opts.Oracle,
		Baseline: opts.Baseline,
		Logger:   &log,
	})
	if err != nil {
		for _, d := range asm.Diagnostics(err, f.ID) {
			res.Bag.Add(d)
		}
		span.End("failed")
		log.Debug().Err(err).Msg("listing rejected")
		emit(buildpipeline.StageAssemble, buildpipeline.StatusError, err)
		return res
	}
	res.Output = out
	span.End("")

	if opts.Cache != nil {
		payload := &DiskPayload{Path: f.Path, ContentHash: Digest(f.Hash), Member: out.Member, Lines: out.Lines}
		if err := opts.Cache.Put(key, payload); err != nil {
			log.Warn().Err(err).Msg("disk cache write failed")
		}
	}
	return res
}

func maxErrors(maxDiagnostics int) uint {
	n, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return 0
	}
	return n
}

// Describe summarises a compiled member in one line for logs and the CLI.
func Describe(m *insn.Member) string {
	if m == nil {
		return "<none>"
	}
	if m.Kind == insn.KindField {
		return fmt.Sprintf("field %s %s", m.Name, m.Desc)
	}
	return fmt.Sprintf("method %s%s: %d insns, max_stack=%d, max_locals=%d, %d locals, %d handlers",
		m.Name, m.Desc, len(m.Instructions), m.MaxStack, m.MaxLocals, len(m.Locals), len(m.TryCatches))
}
