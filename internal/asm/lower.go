package asm

import (
	"cmp"
	"slices"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/opcode"
)

// lower emits the body in source order.
func (c *compilation) lower(root *ast.Root) error {
	for _, n := range root.Nodes {
		switch n := n.(type) {
		case *ast.Label:
			c.emit(insn.Mark(c.labels[n.Name]), n.Line())
		case *ast.LineNumber:
			id, err := c.label(n.Label, n.Line())
			if err != nil {
				return err
			}
			c.emit(insn.LineAt(id, n.Number), n.Line())
		case *ast.Comment:
			c.pending = append(c.pending, n.Text)
		case *ast.Instruction:
			if err := c.instruction(n); err != nil {
				return err
			}
		case *ast.Expr:
			for _, in := range n.Body {
				if err := c.instruction(in); err != nil {
					return err
				}
			}
		}
	}
	if len(c.pending) > 0 {
		// trailing comments stay keyed one past the last instruction
		c.attach(len(c.m.Instructions))
	}
	return nil
}

func (c *compilation) instruction(n *ast.Instruction) error {
	in, err := c.translate(n)
	if err != nil {
		return err
	}
	c.emitted[n] = c.emit(in, n.Line())
	return nil
}

// translate maps one AST instruction onto its stream form.
func (c *compilation) translate(n *ast.Instruction) (insn.Instruction, error) {
	line := n.Line()
	switch op := n.Operand.(type) {
	case nil:
		return insn.Simple(n.Op), nil
	case *ast.IntOperand:
		return insn.IntInsn(n.Op, op.Value), nil
	case *ast.VarOperand:
		slot, err := c.slot(op.Var, line)
		if err != nil {
			return insn.Instruction{}, err
		}
		return insn.VarInsn(n.Op, slot), nil
	case *ast.IincOperand:
		slot, err := c.slot(op.Var, line)
		if err != nil {
			return insn.Instruction{}, err
		}
		return insn.Iinc(slot, op.Delta), nil
	case *ast.TypeOperand:
		return insn.TypeInsn(n.Op, op.Type), nil
	case *ast.FieldOperand:
		return insn.FieldInsn(n.Op, op.Owner, op.Name, op.Desc), nil
	case *ast.MethodOperand:
		return insn.MethodInsn(n.Op, op.Owner, op.Name, op.Desc, op.Itf || n.Op == opcode.Invokeinterface), nil
	case *ast.JumpOperand:
		id, err := c.label(op.Label, line)
		if err != nil {
			return insn.Instruction{}, err
		}
		return insn.Jump(n.Op, id), nil
	case *ast.LdcOperand:
		return insn.Ldc(op.Value), nil
	case *ast.TableSwitchOperand:
		return c.tableSwitch(op, line)
	case *ast.LookupSwitchOperand:
		return c.lookupSwitch(op, line)
	case *ast.MultiArrayOperand:
		return insn.MultiANewArray(op.Desc, op.Dims), nil
	case *ast.InvokeDynamicOperand:
		return insn.InvokeDynamic(op.Name, op.Desc, op.Bootstrap, op.Args...), nil
	}
	return insn.Instruction{}, failAt(line, diag.AsmBadOperandType, "%s: unsupported operand %T", n.Op, n.Operand)
}

func (c *compilation) slot(ref ast.VarRef, line int) (int, error) {
	slot, ok := c.vars.Slot(ref)
	if !ok {
		return 0, failAt(line, diag.AsmBadOperandType, "variable %s has no slot", ref)
	}
	return slot, nil
}

func (c *compilation) labelList(names []string, line int) ([]insn.LabelID, error) {
	out := make([]insn.LabelID, len(names))
	for i, name := range names {
		id, err := c.label(name, line)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (c *compilation) tableSwitch(op *ast.TableSwitchOperand, line int) (insn.Instruction, error) {
	if want := int64(op.Max) - int64(op.Min) + 1; want != int64(len(op.Labels)) {
		return insn.Instruction{}, failAt(line, diag.AsmBadOperandType,
			"tableswitch %d..%d needs %d labels, got %d", op.Min, op.Max, want, len(op.Labels))
	}
	dflt, err := c.label(op.Default, line)
	if err != nil {
		return insn.Instruction{}, err
	}
	targets, err := c.labelList(op.Labels, line)
	if err != nil {
		return insn.Instruction{}, err
	}
	return insn.TableSwitch(op.Min, op.Max, dflt, targets...), nil
}

// lookupSwitch sorts the pairs by key; the instruction requires ascending keys.
func (c *compilation) lookupSwitch(op *ast.LookupSwitchOperand, line int) (insn.Instruction, error) {
	if len(op.Keys) != len(op.Labels) {
		return insn.Instruction{}, failAt(line, diag.AsmBadOperandType,
			"lookupswitch has %d keys and %d labels", len(op.Keys), len(op.Labels))
	}
	dflt, err := c.label(op.Default, line)
	if err != nil {
		return insn.Instruction{}, err
	}
	targets, err := c.labelList(op.Labels, line)
	if err != nil {
		return insn.Instruction{}, err
	}
	order := make([]int, len(op.Keys))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(op.Keys[a], op.Keys[b])
	})
	keys := make([]int32, len(order))
	sorted := make([]insn.LabelID, len(order))
	for i, j := range order {
		keys[i] = op.Keys[j]
		sorted[i] = targets[j]
		if i > 0 && keys[i] == keys[i-1] {
			return insn.Instruction{}, failAt(line, diag.AsmDuplicateSwitch, "lookupswitch key %d appears twice", keys[i])
		}
	}
	return insn.LookupSwitch(dflt, keys, sorted), nil
}
