package analysis

import (
	"fmt"

	"github.com/rs/zerolog"

	"jasm/internal/diag"
	"jasm/internal/hierarchy"
	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/types"
)

type Options struct {
	// Oracle answers subtype questions; nil treats every class as unknown.
	Oracle hierarchy.Oracle
	// Owner is the declaring class, the type of the receiver.
	Owner string
	// Lines holds the source line of each instruction (-1 for none).
	Lines  []int
	Logger *zerolog.Logger
	// Visit sees instruction i with its incoming frame each time the
	// worklist interprets it. The frame must not be kept or changed.
	Visit func(i int, f *Frame)
}

// Result holds the frame before every instruction (nil when unreachable).
type Result struct {
	Frames   []*Frame
	MaxStack int
}

// handler is one try/catch entry resolved to instruction indices.
type handler struct {
	start, end, target int
	catch              Value
}

type analyzer struct {
	m        *insn.Member
	opts     Options
	log      zerolog.Logger
	interp   interpreter
	frames   []*Frame
	problems []string
	handlers [][]handler
	labels   map[insn.LabelID]int
	queue    []int
	queued   []bool
	maxStack int
}

// Analyze runs the fixpoint over m's code. Structural failures stop at the
// instruction that causes them; type failures are reported for the first
// failing instruction in code order once the frames are stable.
func Analyze(m *insn.Member, opts Options) (*Result, error) {
	a := &analyzer{m: m, opts: opts, labels: m.LabelPositions()}
	if opts.Logger != nil {
		a.log = *opts.Logger
	} else {
		a.log = zerolog.Nop()
	}
	args, ret, err := types.ParseMethod(m.Desc)
	if err != nil {
		return nil, &VerificationError{Line: -1, Index: -1, Code: diag.VerBadOperand, Message: err.Error()}
	}
	a.interp = interpreter{oracle: opts.Oracle, ret: ret}

	n := len(m.Instructions)
	if n == 0 {
		return &Result{}, nil
	}
	a.frames = make([]*Frame, n)
	a.problems = make([]string, n)
	a.queued = make([]bool, n)
	if err := a.resolveHandlers(); err != nil {
		return nil, err
	}
	entry, err := a.entryFrame(args)
	if err != nil {
		return nil, err
	}
	a.frames[0] = entry
	a.push(0)

	steps := 0
	for len(a.queue) > 0 {
		i := a.queue[len(a.queue)-1]
		a.queue = a.queue[:len(a.queue)-1]
		a.queued[i] = false
		steps++
		if opts.Visit != nil {
			opts.Visit(i, a.frames[i])
		}
		if err := a.step(i); err != nil {
			return nil, err
		}
	}
	a.log.Debug().Str("member", m.Name).Int("insns", n).Int("steps", steps).Int("max_stack", a.maxStack).Msg("fixpoint reached")

	for i, p := range a.problems {
		if p != "" && a.frames[i] != nil {
			return nil, a.errorAt(i, diag.VerTypeMismatch, p)
		}
	}
	return &Result{Frames: a.frames, MaxStack: a.maxStack}, nil
}

func (a *analyzer) line(i int) int {
	if i >= 0 && i < len(a.opts.Lines) {
		return a.opts.Lines[i]
	}
	return -1
}

func (a *analyzer) errorAt(i int, code diag.Code, msg string) *VerificationError {
	return &VerificationError{Line: a.line(i), Index: i, Code: code, Message: msg}
}

func (a *analyzer) entryFrame(args []types.Type) (*Frame, error) {
	need := types.ArgumentsSize(args)
	if !a.m.IsStatic() {
		need++
	}
	locals := max(a.m.MaxLocals, need)
	f := NewFrame(locals)
	slot := 0
	if !a.m.IsStatic() {
		owner := a.opts.Owner
		if owner == "" {
			owner = "java/lang/Object"
		}
		f.Locals[0] = ObjectOf(owner)
		slot = 1
	}
	for _, t := range args {
		if err := f.SetLocal(slot, Of(t)); err != nil {
			return nil, &VerificationError{Line: -1, Index: 0, Code: diag.VerBadLocal, Message: err.Error()}
		}
		slot += t.Size()
	}
	return f, nil
}

func (a *analyzer) resolveHandlers() error {
	a.handlers = make([][]handler, len(a.m.Instructions))
	for _, tc := range a.m.TryCatches {
		start, ok1 := a.labels[tc.Start]
		end, ok2 := a.labels[tc.End]
		target, ok3 := a.labels[tc.Handler]
		if !ok1 || !ok2 || !ok3 {
			return &VerificationError{Line: -1, Index: -1, Code: diag.VerBadOperand, Message: "try/catch refers to a label that is not placed"}
		}
		catch := Of(types.ThrowableType)
		if tc.Type != "" {
			catch = ObjectOf(tc.Type)
		}
		h := handler{start: start, end: end, target: target, catch: catch}
		for i := start; i < end && i < len(a.handlers); i++ {
			a.handlers[i] = append(a.handlers[i], h)
		}
	}
	return nil
}

func (a *analyzer) push(i int) {
	if !a.queued[i] {
		a.queued[i] = true
		a.queue = append(a.queue, i)
	}
}

// step executes instruction i and propagates its output frame.
func (a *analyzer) step(i int) error {
	in := &a.m.Instructions[i]
	before := a.frames[i]
	a.maxStack = max(a.maxStack, before.StackSize())

	f := before.Clone()
	a.interp.problem = ""
	if err := a.interp.execute(f, in); err != nil {
		code, msg := classify(err)
		return a.errorAt(i, code, msg)
	}
	a.problems[i] = a.interp.problem
	a.maxStack = max(a.maxStack, f.StackSize())

	for _, h := range a.handlers[i] {
		for _, src := range []*Frame{before, f} {
			hf := &Frame{Locals: src.Locals, Stack: []Value{h.catch}}
			if err := a.merge(h.target, hf); err != nil {
				return err
			}
		}
	}

	switch op := in.Op; {
	case op == opcode.Jsr:
		if err := a.jump(i, in.Label, f); err != nil {
			return err
		}
		fall := f.Clone()
		fall.Stack = fall.Stack[:len(fall.Stack)-1]
		return a.fallThrough(i, fall)
	case op.IsReturn(), op == opcode.Athrow, op == opcode.Ret:
		return nil
	case op == opcode.Goto:
		return a.jump(i, in.Label, f)
	case op == opcode.Tableswitch, op == opcode.Lookupswitch:
		for _, id := range in.Successors() {
			if err := a.jump(i, id, f); err != nil {
				return err
			}
		}
		return nil
	case op.IsConditional():
		if err := a.jump(i, in.Label, f); err != nil {
			return err
		}
	}
	return a.fallThrough(i, f)
}

func (a *analyzer) fallThrough(i int, f *Frame) error {
	if i+1 >= len(a.m.Instructions) {
		return a.errorAt(i, diag.VerFallOff, "execution falls off the end of the code")
	}
	return a.merge(i+1, f)
}

func (a *analyzer) jump(i int, id insn.LabelID, f *Frame) error {
	t, ok := a.labels[id]
	if !ok {
		return a.errorAt(i, diag.VerBadOperand, fmt.Sprintf("%s to a label that is not placed", a.m.Instructions[i].Op))
	}
	return a.merge(t, f)
}

// merge folds f into the frame at t and queues t when it changed.
func (a *analyzer) merge(t int, f *Frame) error {
	if a.frames[t] == nil {
		a.frames[t] = f.Clone()
		a.push(t)
		return nil
	}
	changed, err := a.frames[t].Merge(a.opts.Oracle, f)
	if err != nil {
		return a.errorAt(t, diag.VerStackMismatch, err.Error())
	}
	if changed {
		a.push(t)
	}
	return nil
}
