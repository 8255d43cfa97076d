package source

import (
	"fmt"
)

// Span points at a line of a file. Line 0 means the file as a whole,
// which is what compile errors without a better location carry.
type Span struct {
	File FileID
	Line int
}

// At builds a span for the given 1-based line; negative lines collapse to 0.
func At(file FileID, line int) Span {
	if line < 0 {
		line = 0
	}
	return Span{File: file, Line: line}
}

func (s Span) HasLine() bool {
	return s.Line > 0
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.File, s.Line)
}
