package asm

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"jasm/internal/analysis"
	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/trace"
	"jasm/internal/vars"
)

// compilation holds the state of one member compilation.
type compilation struct {
	m    *insn.Member
	def  *ast.Definition
	vars *vars.Cache
	log  zerolog.Logger

	labels map[string]insn.LabelID
	// lines[i] is the source line instruction i was lowered from
	lines []int
	// emitted maps an AST instruction to its index in the stream
	emitted map[*ast.Instruction]int
	pending []string
}

func newCompilation(m *insn.Member, def *ast.Definition, log zerolog.Logger) *compilation {
	return &compilation{
		m:       m,
		def:     def,
		log:     log,
		labels:  make(map[string]insn.LabelID),
		emitted: make(map[*ast.Instruction]int),
	}
}

// emit appends in, attributed to line, and attaches pending comments.
func (c *compilation) emit(in insn.Instruction, line int) int {
	idx := len(c.m.Instructions)
	if len(c.pending) > 0 {
		c.attach(idx)
	}
	c.m.Instructions = append(c.m.Instructions, in)
	c.lines = append(c.lines, line)
	return idx
}

func (c *compilation) attach(idx int) {
	if c.m.Comments == nil {
		c.m.Comments = make(map[int]string)
	}
	text := strings.Join(c.pending, "\n")
	if prev, ok := c.m.Comments[idx]; ok {
		text = prev + "\n" + text
	}
	c.m.Comments[idx] = text
	c.pending = c.pending[:0]
}

// prepend inserts in at index 0, shifting everything recorded so far.
func (c *compilation) prepend(in insn.Instruction, line int) {
	c.m.Instructions = append([]insn.Instruction{in}, c.m.Instructions...)
	c.lines = append([]int{line}, c.lines...)
	for k, v := range c.emitted {
		c.emitted[k] = v + 1
	}
	if len(c.m.Comments) > 0 {
		shifted := make(map[int]string, len(c.m.Comments))
		for k, v := range c.m.Comments {
			shifted[k+1] = v
		}
		c.m.Comments = shifted
	}
}

// label resolves a name declared in the listing.
func (c *compilation) label(name string, line int) (insn.LabelID, error) {
	id, ok := c.labels[name]
	if !ok {
		return insn.NoLabel, failAt(line, diag.AsmUnresolvedLabel, "label %q is not defined", name)
	}
	return id, nil
}

// traceVisit reports each verifier step as an instruction event; nil when
// the tracer drops them anyway.
func (c *compilation) traceVisit(ctx context.Context) func(int, *analysis.Frame) {
	if !trace.InsnEnabled(ctx) {
		return nil
	}
	return func(i int, f *analysis.Frame) {
		ref := trace.InsnRef{Index: i, Line: -1, Op: c.m.Instructions[i].Op.String()}
		if i < len(c.lines) {
			ref.Line = c.lines[i]
		}
		trace.Insn(ctx, ref, f.String())
	}
}
