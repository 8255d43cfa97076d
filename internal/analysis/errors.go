package analysis

import (
	"errors"
	"fmt"

	"jasm/internal/diag"
)

// VerificationError is the first failing instruction of a member. Line is
// the source line of the instruction, or -1 when the stream carries none.
type VerificationError struct {
	Line    int
	Index   int
	Code    diag.Code
	Message string
}

func (e *VerificationError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("instruction %d: %s", e.Index, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var errUnderflow = errors.New("operand stack underflow")

// structural failures stop the analysis at once.
type structural struct {
	code diag.Code
	msg  string
}

func (e *structural) Error() string { return e.msg }

func abort(code diag.Code, format string, args ...any) error {
	return &structural{code: code, msg: fmt.Sprintf(format, args...)}
}

// classify turns an error raised while executing an instruction into a code.
func classify(err error) (diag.Code, string) {
	var s *structural
	switch {
	case errors.As(err, &s):
		return s.code, s.msg
	case errors.Is(err, errUnderflow):
		return diag.VerStackUnderflow, err.Error()
	}
	return diag.VerBadLocal, err.Error()
}
