package asm

import (
	"jasm/internal/analysis"
	"jasm/internal/hierarchy"
	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/types"
	"jasm/internal/vars"
)

// tableVariables lists the variables that get a local table entry.
func (c *compilation) tableVariables() []*vars.Variable {
	var out []*vars.Variable
	for _, v := range c.vars.Variables() {
		if !v.Anonymous {
			out = append(out, v)
		}
	}
	return out
}

// boundaries makes sure the stream starts and ends with a label.
func (c *compilation) boundaries() {
	code := c.m.Instructions
	if len(code) == 0 || code[0].Op != opcode.Label {
		c.prepend(insn.Mark(c.m.NewLabel()), c.def.Line())
	}
	code = c.m.Instructions
	if last := len(code) - 1; code[last].Op != opcode.Label {
		c.m.Instructions = append(c.m.Instructions, insn.Mark(c.m.NewLabel()))
		c.lines = append(c.lines, c.lines[last])
	}
}

// localTable builds Member.Locals. Parameters cover the whole body; other
// names run from the label at or before their first use to the label after
// their last one.
func (c *compilation) localTable(visible []*vars.Variable, frames []*analysis.Frame, o hierarchy.Oracle) {
	if len(visible) == 0 {
		return
	}
	code := c.m.Instructions
	begin, end := code[0].Label, code[len(code)-1].Label
	for _, v := range visible {
		lv := insn.LocalVariable{Name: v.Name, Index: v.Index, Desc: v.Desc, Start: begin, End: end}
		if !v.Param && v.First != nil {
			first, last := c.emitted[v.First], c.emitted[v.Last]
			lv.Start = c.labelBefore(first)
			lv.End = c.labelAfter(last)
			if lv.Desc == "" {
				lv.Desc = referenceDesc(o, code, frames, v.Index, first, last)
			}
		}
		if lv.Desc == "" {
			lv.Desc = types.ObjectType.Descriptor()
		}
		c.m.Locals = append(c.m.Locals, lv)
	}
	c.log.Debug().Int("entries", len(c.m.Locals)).Msg("local table built")
}

func (c *compilation) labelBefore(i int) insn.LabelID {
	for ; i >= 0; i-- {
		if c.m.Instructions[i].Op == opcode.Label {
			return c.m.Instructions[i].Label
		}
	}
	return c.m.Instructions[0].Label
}

func (c *compilation) labelAfter(i int) insn.LabelID {
	code := c.m.Instructions
	for i++; i < len(code); i++ {
		if code[i].Op == opcode.Label {
			return code[i].Label
		}
	}
	return code[len(code)-1].Label
}

// referenceDesc merges every reference type the slot holds between the
// variable's first use and the frame after its last one. Stores count with
// the value they take off the stack: a label right after a store may
// already hold the merged, unusable value.
func referenceDesc(o hierarchy.Oracle, code []insn.Instruction, frames []*analysis.Frame, slot, first, last int) string {
	var descs []string
	for i := first; i <= last+1 && i < len(frames); i++ {
		f := frames[i]
		if f == nil {
			continue
		}
		if i < len(code) && code[i].Op == opcode.Astore && code[i].Var == slot {
			if v, err := f.Peek(); err == nil && v.Kind() == analysis.Reference {
				descs = append(descs, v.Descriptor())
			}
		}
		if slot >= len(f.Locals) {
			continue
		}
		if v := f.Locals[slot]; v.Kind() == analysis.Reference {
			descs = append(descs, v.Descriptor())
		}
	}
	return vars.Infer(o, descs...)
}
