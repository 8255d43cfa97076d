package disasm

import (
	"fmt"
	"slices"

	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/opcode"
)

func (d *disassembler) repair(code diag.Code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.repairs = append(d.repairs, Repair{Code: code, Message: msg})
	d.log.Warn().Str("code", code.ID()).Msg(msg)
}

// dropUnplaced removes table entries whose range labels are not in the stream.
func (d *disassembler) dropUnplaced() {
	placed := d.m.LabelPositions()
	d.m.Locals = slices.DeleteFunc(d.m.Locals, func(lv insn.LocalVariable) bool {
		_, ok1 := placed[lv.Start]
		_, ok2 := placed[lv.End]
		if ok1 && ok2 {
			return false
		}
		d.repair(diag.DisUnplacedLabel, "variable %s (slot %d) refers to a label that is not placed; dropped", lv.Name, lv.Index)
		return true
	})
}

// enforceLabels puts a label before the first variable instruction and after
// the last one so every range can be written down.
func (d *disassembler) enforceLabels() {
	code := d.m.Instructions
	first, last := -1, -1
	for i := range code {
		if isVarInsn(code[i].Op) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return
	}
	if !slices.ContainsFunc(code[:first], isMark) {
		d.m.Instructions = slices.Insert(d.m.Instructions, 0, insn.Mark(d.m.NewLabel()))
		if len(d.m.Comments) > 0 {
			shifted := make(map[int]string, len(d.m.Comments))
			for k, v := range d.m.Comments {
				shifted[k+1] = v
			}
			d.m.Comments = shifted
		}
		last++
	}
	if !slices.ContainsFunc(d.m.Instructions[last+1:], isMark) {
		d.m.Instructions = append(d.m.Instructions, insn.Mark(d.m.NewLabel()))
	}
}

func isMark(in insn.Instruction) bool { return in.Op == opcode.Label }

func isVarInsn(op opcode.Opcode) bool {
	s := op.Shape()
	return s == opcode.ShapeVar || s == opcode.ShapeIinc
}

// splitSlots handles entries sharing a slot under different names. They
// are printed by range; an entry overlapping an earlier one cannot be and
// is dropped.
func (d *disassembler) splitSlots() {
	var kept []insn.LocalVariable
	for _, lv := range d.m.Locals {
		clash := false
		for _, k := range kept {
			if k.Index != lv.Index || k.Name == lv.Name {
				continue
			}
			if d.overlap(k, lv) {
				d.repair(diag.DisDroppedVariable, "variable %s overlaps %s in slot %d; dropped", lv.Name, k.Name, lv.Index)
				clash = true
				break
			}
			d.repair(diag.DisSplitVariable, "slot %d holds %s and %s; split by range", lv.Index, k.Name, lv.Name)
		}
		if !clash {
			kept = append(kept, lv)
		}
	}
	d.m.Locals = kept
}

func (d *disassembler) overlap(a, b insn.LocalVariable) bool {
	return d.pos[a.Start] < d.pos[b.End] && d.pos[b.Start] < d.pos[a.End]
}

// renameShared gives entries that reuse a name for another slot or type a
// name of their own, name_1, name_2 and so on.
func (d *disassembler) renameShared() {
	taken := make(map[string]bool, len(d.m.Locals))
	for _, lv := range d.m.Locals {
		taken[lv.Name] = true
	}
	first := make(map[string]insn.LocalVariable)
	renamed := make(map[[2]string]string)
	for i := range d.m.Locals {
		lv := &d.m.Locals[i]
		prev, seen := first[lv.Name]
		if !seen {
			first[lv.Name] = *lv
			continue
		}
		if prev.Index == lv.Index && prev.Desc == lv.Desc {
			continue
		}
		key := [2]string{lv.Name, fmt.Sprintf("%d:%s", lv.Index, lv.Desc)}
		name, ok := renamed[key]
		if !ok {
			for n := 1; ; n++ {
				name = fmt.Sprintf("%s_%d", lv.Name, n)
				if !taken[name] {
					break
				}
			}
			taken[name] = true
			renamed[key] = name
			d.repair(diag.DisRenamedVariable, "variable %s in slot %d (%s) renamed to %s", lv.Name, lv.Index, lv.Desc, name)
		}
		lv.Name = name
	}
}
