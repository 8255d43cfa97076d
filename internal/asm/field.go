package asm

import (
	"fortio.org/safecast"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/types"
)

// checkField rejects code in a field listing and a VALUE that does not fit
// the field type.
func (c *compilation) checkField(root *ast.Root) error {
	for _, n := range root.Nodes {
		switch n.(type) {
		case *ast.Instruction, *ast.Expr, *ast.Label, *ast.TryCatch, *ast.LineNumber:
			return failAt(n.Line(), diag.AsmFieldHasCode, "field %s cannot have code", c.m.Name)
		}
	}
	if c.m.Value == nil {
		return nil
	}
	t, err := types.ParseField(c.m.Desc)
	if err != nil {
		return failAt(c.def.Line(), diag.AsmBadOperandType, "%v", err)
	}
	line := c.def.Line()
	if vs := ast.Collect[*ast.DefaultValue](root); len(vs) > 0 {
		line = vs[len(vs)-1].Line()
	}
	if msg := valueMismatch(t, *c.m.Value); msg != "" {
		return failAt(line, diag.AsmBadDefaultValue, "field %s: %s", c.m.Name, msg)
	}
	return nil
}

func valueMismatch(t types.Type, v insn.Constant) string {
	var want insn.ConstKind
	switch t.Sort() {
	case types.Boolean, types.Byte, types.Char, types.Short, types.Int:
		want = insn.ConstInt
	case types.Long:
		want = insn.ConstLong
	case types.Float:
		want = insn.ConstFloat
	case types.Double:
		want = insn.ConstDouble
	default:
		if t != types.StringType {
			return "type " + t.String() + " cannot have a constant value"
		}
		want = insn.ConstString
	}
	if v.Kind != want {
		return v.Kind.String() + " value for a " + t.String() + " field"
	}
	if want != insn.ConstInt {
		return ""
	}
	var err error
	switch t.Sort() {
	case types.Boolean:
		if v.Long != 0 && v.Long != 1 {
			return "boolean value must be 0 or 1"
		}
	case types.Byte:
		_, err = safecast.Conv[int8](v.Long)
	case types.Char:
		_, err = safecast.Conv[uint16](v.Long)
	case types.Short:
		_, err = safecast.Conv[int16](v.Long)
	}
	if err != nil {
		return "value out of range for " + t.String()
	}
	return ""
}
