package asm

import (
	"errors"
	"fmt"

	"jasm/internal/analysis"
	"jasm/internal/diag"
	"jasm/internal/parser"
	"jasm/internal/source"
	"jasm/internal/vars"
)

// CompileError stops the compilation of a member. Line is -1 when the
// problem is not tied to one line. Problems carries the syntax errors when
// compilation was refused because parsing failed.
type CompileError struct {
	Line     int
	Code     diag.Code
	Message  string
	Problems []*parser.Error
}

func (e *CompileError) Error() string {
	if e.Line < 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func failAt(line int, code diag.Code, format string, args ...any) *CompileError {
	return &CompileError{Line: line, Code: code, Message: fmt.Sprintf(format, args...)}
}

func fromVars(err error) error {
	var ve *vars.Error
	if errors.As(err, &ve) {
		return &CompileError{Line: ve.Line, Code: ve.Code, Message: ve.Message}
	}
	return err
}

// Diagnostics converts any error Compile returns into diagnostics against
// file. Parse problems become one diagnostic each.
func Diagnostics(err error, file source.FileID) []diag.Diagnostic {
	var (
		ce *CompileError
		ve *analysis.VerificationError
	)
	switch {
	case errors.As(err, &ce):
		if len(ce.Problems) > 0 {
			out := make([]diag.Diagnostic, 0, len(ce.Problems))
			for _, p := range ce.Problems {
				out = append(out, diag.NewError(p.Code, source.At(file, p.Line), p.Message))
			}
			return out
		}
		return []diag.Diagnostic{diag.NewError(ce.Code, source.At(file, ce.Line), ce.Message)}
	case errors.As(err, &ve):
		return []diag.Diagnostic{diag.NewError(ve.Code, source.At(file, ve.Line), ve.Message)}
	case err != nil:
		return []diag.Diagnostic{diag.NewError(diag.UnknownCode, source.At(file, -1), err.Error())}
	}
	return nil
}
