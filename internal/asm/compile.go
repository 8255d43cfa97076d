// Package asm lowers a parsed listing into an insn.Member: it resolves
// labels, lays out local slots, emits the instruction stream with its line
// map, builds the local variable table and optionally verifies the result.
package asm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"jasm/internal/analysis"
	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/hierarchy"
	"jasm/internal/insn"
	"jasm/internal/parser"
	"jasm/internal/trace"
	"jasm/internal/types"
	"jasm/internal/vars"
)

type Options struct {
	// Owner is the declaring class in internal form.
	Owner string
	// Static overrides the definition's static modifier when set.
	Static *bool
	// Verify runs the analyzer; it fills MaxStack and reference local types.
	Verify bool
	Oracle hierarchy.Oracle
	// Baseline is the local table of a previous compilation of this member.
	Baseline []insn.LocalVariable
	Logger   *zerolog.Logger
}

// Output is a compiled member plus what was learned on the way.
type Output struct {
	Member *insn.Member
	Vars   *vars.Cache
	// Lines holds the source line of every instruction of Member.
	Lines []int
	// Frames is set when verification ran.
	Frames []*analysis.Frame
}

// Compile builds the member described by res. Errors are *CompileError or
// *analysis.VerificationError.
func Compile(ctx context.Context, res *parser.Result, opts Options) (*Output, error) {
	if res == nil || res.Root == nil {
		return nil, failAt(-1, diag.AsmParseFailed, "nothing to compile")
	}
	if !res.Success() {
		return nil, &CompileError{
			Line:     -1,
			Code:     diag.AsmParseFailed,
			Message:  fmt.Sprintf("listing has %d syntax error(s)", len(res.Problems)),
			Problems: res.Problems,
		}
	}
	root := res.Root
	defs := root.Definitions()
	switch len(defs) {
	case 0:
		return nil, failAt(-1, diag.AsmNoDefinition, "listing has no DEFINE")
	case 1:
	default:
		return nil, failAt(defs[1].Line(), diag.AsmMultipleDefs, "second DEFINE, the first is on line %d", defs[0].Line())
	}
	def := defs[0]

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("member", def.Name).Logger()

	ctx, span := trace.StartMember(ctx, def.Kind.String(), def.Name, def.Desc())
	defer span.End("")

	m := &insn.Member{
		Kind:   def.Kind,
		Access: def.Access(),
		Name:   def.Name,
		Desc:   def.Desc(),
	}
	if opts.Static != nil {
		if *opts.Static {
			m.Access |= insn.AccStatic
		} else {
			m.Access &^= insn.AccStatic
		}
	}
	c := newCompilation(m, def, log)
	if err := c.metadata(root); err != nil {
		return nil, err
	}
	out := &Output{Member: m}
	if m.Kind == insn.KindField {
		if err := c.checkField(root); err != nil {
			return nil, err
		}
		return out, nil
	}
	if _, _, err := types.ParseMethod(m.Desc); err != nil {
		return nil, failAt(def.Line(), diag.AsmBadOperandType, "%v", err)
	}
	if m.IsAbstract() {
		if body := root.Instructions(); len(body) > 0 {
			log.Warn().Int("line", body[0].Line()).Msg("body of abstract or native member ignored")
		}
		return out, nil
	}
	if len(root.Instructions()) == 0 {
		return nil, failAt(def.Line(), diag.AsmEmptyBody, "method %s has no instructions", def.Name)
	}

	if err := c.declareLabels(root); err != nil {
		return nil, err
	}
	if err := c.tryCatches(root); err != nil {
		return nil, err
	}

	_, allocSpan := trace.StartPass(ctx, trace.PassAllocate)
	cache, err := vars.Assign(root, def, vars.Options{Static: opts.Static, Owner: opts.Owner, Baseline: opts.Baseline})
	allocSpan.End("")
	if err != nil {
		return nil, fromVars(err)
	}
	c.vars = cache
	out.Vars = cache
	m.MaxLocals = cache.MaxLocals()
	log.Debug().Int("max_locals", m.MaxLocals).Msg("slots assigned")

	_, lowerSpan := trace.StartPass(ctx, trace.PassLower)
	err = c.lower(root)
	lowerSpan.End("")
	if err != nil {
		return nil, err
	}
	visible := c.tableVariables()
	if len(visible) > 0 {
		c.boundaries()
	}

	if opts.Verify {
		vctx, verifySpan := trace.StartPass(ctx, trace.PassVerify)
		ar, err := analysis.Analyze(m, analysis.Options{
			Oracle: opts.Oracle,
			Owner:  opts.Owner,
			Lines:  c.lines,
			Logger: &log,
			Visit:  c.traceVisit(vctx),
		})
		verifySpan.End("")
		if err != nil {
			var ve *analysis.VerificationError
			if errors.As(err, &ve) {
				log.Debug().Int("line", ve.Line).Str("problem", ve.Message).Msg("verification failed")
			}
			return nil, err
		}
		m.MaxStack = ar.MaxStack
		out.Frames = ar.Frames
	}
	c.localTable(visible, out.Frames, opts.Oracle)
	out.Lines = c.lines
	log.Debug().Int("insns", len(m.Instructions)).Int("max_stack", m.MaxStack).Msg("member compiled")
	return out, nil
}

// metadata collects SIGNATURE, THROWS and VALUE.
func (c *compilation) metadata(root *ast.Root) error {
	for _, n := range root.Nodes {
		switch n := n.(type) {
		case *ast.Signature:
			c.m.Signature = n.Text
		case *ast.Throws:
			c.m.Exceptions = append(c.m.Exceptions, n.Type)
		case *ast.DefaultValue:
			if c.m.Kind != insn.KindField {
				return failAt(n.Line(), diag.AsmBadDefaultValue, "VALUE is only allowed on fields")
			}
			v := n.Value
			c.m.Value = &v
		}
	}
	return nil
}

// declareLabels gives every label of the listing an id before lowering so
// forward references resolve.
func (c *compilation) declareLabels(root *ast.Root) error {
	first := make(map[string]int)
	for _, l := range ast.Collect[*ast.Label](root) {
		if prev, dup := first[l.Name]; dup {
			return failAt(l.Line(), diag.AsmDuplicateLabel, "label %q already defined on line %d", l.Name, prev)
		}
		first[l.Name] = l.Line()
		c.labels[l.Name] = c.m.NewLabel()
	}
	return nil
}

func (c *compilation) tryCatches(root *ast.Root) error {
	for _, tc := range ast.Collect[*ast.TryCatch](root) {
		var ids [3]insn.LabelID
		for i, name := range []string{tc.Start, tc.End, tc.Handler} {
			id, err := c.label(name, tc.Line())
			if err != nil {
				return err
			}
			ids[i] = id
		}
		c.m.TryCatches = append(c.m.TryCatches, insn.TryCatch{
			Start:   ids[0],
			End:     ids[1],
			Handler: ids[2],
			Type:    tc.Type,
		})
	}
	return nil
}
