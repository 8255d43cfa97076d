package driver

import (
	"context"

	"jasm/internal/diag"
	"jasm/internal/parser"
	"jasm/internal/source"
	"jasm/internal/trace"
)

// ParseResult is a parsed listing without compilation.
type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Result  *parser.Result
	Bag     *diag.Bag
}

// Parse reads one listing. Syntax errors go to Bag; the error is for I/O.
func Parse(ctx context.Context, filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	return parseSource(ctx, fs, fs.Get(fileID), maxDiagnostics), nil
}

// ParseText parses an in-memory listing, e.g. stdin.
func ParseText(ctx context.Context, name, text string, maxDiagnostics int) *ParseResult {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(text))
	return parseSource(ctx, fs, fs.Get(id), maxDiagnostics)
}

func parseSource(ctx context.Context, fs *source.FileSet, f *source.File, maxDiagnostics int) *ParseResult {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "parse "+f.Path)
	_, pass := trace.StartPass(ctx, trace.PassParse)
	bag := diag.NewBag(maxDiagnostics)
	result := parser.ParseFile(f, parser.Options{
		Reporter:  &diag.BagReporter{Bag: bag},
		MaxErrors: maxErrors(maxDiagnostics),
		File:      f.ID,
	})
	pass.End("")
	span.End("")
	return &ParseResult{FileSet: fs, File: f, Result: result, Bag: bag}
}
