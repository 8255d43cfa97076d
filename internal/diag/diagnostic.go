package diag

import (
	"jasm/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// Line is a shortcut for the primary line (0 when not line specific).
func (d Diagnostic) Line() int {
	return d.Primary.Line
}
