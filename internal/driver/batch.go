package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jasm/internal/buildpipeline"
	"jasm/internal/diag"
	"jasm/internal/source"
	"jasm/internal/trace"
)

// Ext is the extension of assembly listings.
const Ext = ".jasm"

// ListFiles возвращает отсортированный список всех *.jasm файлов в директории
func ListFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, Ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// BatchResult holds one result per listing, in ListFiles order.
type BatchResult struct {
	FileSet *source.FileSet
	Results []*AssembleResult
	Timings buildpipeline.Timings
	Elapsed time.Duration
}

// Failed counts listings that did not compile.
func (b *BatchResult) Failed() int {
	n := 0
	for _, r := range b.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// AssembleDir assembles every listing under dir with at most jobs workers.
// Each listing is independent: one failing does not stop the others, only
// ctx cancellation does.
func AssembleDir(ctx context.Context, dir string, jobs int, opts AssembleOptions) (*BatchResult, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	return AssembleFiles(ctx, source.NewFileSetWithBase(dir), files, jobs, opts)
}

// AssembleFiles is AssembleDir over an explicit list.
func AssembleFiles(ctx context.Context, fileSet *source.FileSet, files []string, jobs int, opts AssembleOptions) (*BatchResult, error) {
	start := time.Now()
	batch := &BatchResult{FileSet: fileSet, Results: make([]*AssembleResult, len(files))}
	if len(files) == 0 {
		return batch, nil
	}
	log := opts.logger()
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "batch")
	defer span.End("")

	buildpipeline.EmitQueued(opts.Progress, files)

	// Настраиваем параллелизм
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	// индексы уникальны для каждой горутины, мьютекс не нужен
	for i, path := range files {
		g.Go(func() error {
			res, err := AssembleFile(gctx, fileSet, path, opts)
			if err != nil {
				return err
			}
			batch.Results[i] = res
			finish(res, &opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range batch.Results {
		batch.Timings.Merge(r.Timings)
	}
	batch.Elapsed = time.Since(start)
	log.Debug().
		Int("files", len(files)).
		Int("failed", batch.Failed()).
		Int("jobs", jobs).
		Dur("took", batch.Elapsed).
		Msg("batch assembled")
	return batch, nil
}

// finish writes a compiled listing and reports its final status.
func finish(res *AssembleResult, opts *AssembleOptions) {
	ev := buildpipeline.Event{File: res.Path, Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusDone}
	switch {
	case res.Failed():
		ev.Status = buildpipeline.StatusError
	case opts.Write != nil:
		buildpipeline.Emit(opts.Progress, buildpipeline.Event{File: res.Path, Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusWorking})
		start := time.Now()
		if err := opts.Write(res); err != nil {
			res.Bag.Add(diag.NewError(diag.IOWriteError, source.At(res.FileID, -1), err.Error()))
			ev.Status, ev.Err = buildpipeline.StatusError, err
		}
		res.Timings.Add(buildpipeline.StageWrite, time.Since(start))
		if res.Cached && ev.Err == nil {
			ev.Status = buildpipeline.StatusCached
		}
	case res.Cached:
		ev.Status = buildpipeline.StatusCached
	}
	buildpipeline.Emit(opts.Progress, ev)
}
