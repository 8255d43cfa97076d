package disasm

import (
	"jasm/internal/ast"
	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/parser"
	"jasm/internal/vars"
)

// node rebuilds the AST form of instruction i.
func (d *disassembler) node(i int) ast.Node {
	in := &d.m.Instructions[i]
	pos := d.at()
	switch in.Op {
	case opcode.Label:
		return &ast.Label{Pos: pos, Name: d.labels[in.Label]}
	case opcode.Line:
		return &ast.LineNumber{Pos: pos, Label: d.labels[in.Label], Number: in.Int}
	}
	return &ast.Instruction{Pos: pos, Op: in.Op, Operand: d.operand(i, in)}
}

func (d *disassembler) operand(i int, in *insn.Instruction) ast.Operand {
	switch in.Op.Shape() {
	case opcode.ShapeInt:
		return &ast.IntOperand{Value: in.Int}
	case opcode.ShapeVar:
		return &ast.VarOperand{Var: d.varRef(i, in.Var)}
	case opcode.ShapeIinc:
		return &ast.IincOperand{Var: d.varRef(i, in.Var), Delta: in.Int}
	case opcode.ShapeType:
		return &ast.TypeOperand{Type: in.Type}
	case opcode.ShapeField:
		return &ast.FieldOperand{Owner: in.Owner, Name: in.Name, Desc: in.Desc}
	case opcode.ShapeMethod:
		// INVOKEINTERFACE implies itf
		return &ast.MethodOperand{Owner: in.Owner, Name: in.Name, Desc: in.Desc, Itf: in.Itf && in.Op != opcode.Invokeinterface}
	case opcode.ShapeJump:
		return &ast.JumpOperand{Label: d.labels[in.Label]}
	case opcode.ShapeLdc:
		if in.Const == nil {
			return nil
		}
		return &ast.LdcOperand{Value: *in.Const}
	case opcode.ShapeTableSwitch:
		return &ast.TableSwitchOperand{Min: in.Min, Max: in.Max, Labels: d.names(in.Targets), Default: d.labels[in.Default]}
	case opcode.ShapeLookupSwitch:
		return &ast.LookupSwitchOperand{Keys: in.Keys, Labels: d.names(in.Targets), Default: d.labels[in.Default]}
	case opcode.ShapeMultiArray:
		return &ast.MultiArrayOperand{Desc: in.Type, Dims: in.Int}
	case opcode.ShapeInvokeDynamic:
		op := &ast.InvokeDynamicOperand{Name: in.Name, Desc: in.Desc, Args: in.BootstrapArgs}
		if in.Bootstrap != nil {
			op.Bootstrap = *in.Bootstrap
			if d.alias && op.Bootstrap == insn.MetaFactory {
				op.BootstrapAlias = parser.MetaAlias
			}
		}
		return op
	}
	return nil
}

func (d *disassembler) names(ids []insn.LabelID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = d.labels[id]
	}
	return out
}

// varRef names slot at instruction i: the table entry whose range (widened
// by one instruction each way) covers i, then the receiver, then the raw
// slot. Code may reuse slot 0 for its own local; an entry live from the
// first instruction is the receiver itself and prints as this.
func (d *disassembler) varRef(i, slot int) ast.VarRef {
	receiver := slot == 0 && !d.m.IsStatic()
	for _, lv := range d.m.Locals {
		if lv.Index != slot {
			continue
		}
		if i < d.pos[lv.Start]-1 || i > d.pos[lv.End]+1 {
			continue
		}
		if receiver && d.atEntry(lv.Start) {
			continue
		}
		return ast.NamedVar(lv.Name)
	}
	if receiver {
		return ast.NamedVar(vars.This)
	}
	return ast.RawVar(slot)
}

// atEntry reports whether only labels precede label id.
func (d *disassembler) atEntry(id insn.LabelID) bool {
	for _, in := range d.m.Instructions[:d.pos[id]] {
		if in.Op != opcode.Label {
			return false
		}
	}
	return true
}
