package ast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/types"
)

// Format renders the whole listing, one node per line.
func Format(r *Root) string {
	var sb strings.Builder
	for _, n := range r.Nodes {
		sb.WriteString(FormatNode(n))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatNode renders one node in the form the parser accepts.
func FormatNode(n Node) string {
	switch n := n.(type) {
	case *Definition:
		return formatDefinition(n)
	case *Modifier:
		return n.Name
	case *Label:
		return n.Name + ":"
	case *TryCatch:
		typ := n.Type
		if typ == "" {
			typ = "*"
		}
		return fmt.Sprintf("TRY %s %s CATCH(%s) %s", n.Start, n.End, typ, n.Handler)
	case *Alias:
		return fmt.Sprintf("ALIAS %s \"%s\"", n.Name, n.Value)
	case *Signature:
		return "SIGNATURE " + n.Text
	case *Throws:
		return "THROWS " + n.Type
	case *DefaultValue:
		return "VALUE " + FormatConstant(n.Value)
	case *LineNumber:
		return fmt.Sprintf("LINE %s %d", n.Label, n.Number)
	case *Comment:
		if n.Text == "" {
			return "//"
		}
		return "// " + n.Text
	case *Expr:
		parts := make([]string, len(n.Body))
		for i, in := range n.Body {
			parts[i] = formatInstruction(in)
		}
		return "EXPR " + strings.Join(parts, "; ")
	case *Instruction:
		return formatInstruction(n)
	}
	return fmt.Sprintf("// unknown node %T", n)
}

func formatDefinition(d *Definition) string {
	var sb strings.Builder
	sb.WriteString("DEFINE ")
	for _, m := range d.Modifiers {
		sb.WriteString(m.Name)
		sb.WriteByte(' ')
	}
	if d.Kind == insn.KindField {
		sb.WriteString(d.Type)
		sb.WriteByte(' ')
		sb.WriteString(d.Name)
		return sb.String()
	}
	sb.WriteString(d.Name)
	sb.WriteByte('(')
	for i, a := range d.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Desc)
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
	}
	sb.WriteByte(')')
	sb.WriteString(d.Type)
	return sb.String()
}

func formatInstruction(in *Instruction) string {
	name := in.Op.String()
	switch op := in.Operand.(type) {
	case nil:
		return name
	case *IntOperand:
		if in.Op == opcode.Newarray {
			if t, ok := types.NewArrayElement(op.Value); ok {
				return name + " " + t.Descriptor()
			}
		}
		return name + " " + itoa(int64(op.Value))
	case *VarOperand:
		return name + " " + op.Var.String()
	case *TypeOperand:
		return name + " " + op.Type
	case *FieldOperand:
		return fmt.Sprintf("%s %s.%s %s", name, op.Owner, op.Name, op.Desc)
	case *MethodOperand:
		s := fmt.Sprintf("%s %s.%s%s", name, op.Owner, op.Name, op.Desc)
		if op.Itf {
			s += " itf"
		}
		return s
	case *JumpOperand:
		return name + " " + op.Label
	case *LdcOperand:
		return name + " " + FormatConstant(op.Value)
	case *IincOperand:
		return fmt.Sprintf("%s %s %d", name, op.Var, op.Delta)
	case *TableSwitchOperand:
		return fmt.Sprintf("%s range[%d:%d] labels[%s] default[%s]",
			name, op.Min, op.Max, strings.Join(op.Labels, ", "), op.Default)
	case *LookupSwitchOperand:
		pairs := make([]string, len(op.Keys))
		for i, k := range op.Keys {
			pairs[i] = fmt.Sprintf("%d=%s", k, op.Labels[i])
		}
		return fmt.Sprintf("%s mapping[%s] default[%s]", name, strings.Join(pairs, ", "), op.Default)
	case *MultiArrayOperand:
		return fmt.Sprintf("%s %s %d", name, op.Desc, op.Dims)
	case *InvokeDynamicOperand:
		bsm := "${" + op.BootstrapAlias + "}"
		if op.BootstrapAlias == "" {
			bsm = FormatHandle(op.Bootstrap)
		}
		s := fmt.Sprintf("%s %s %s %s", name, op.Name, op.Desc, bsm)
		if len(op.Args) > 0 {
			args := make([]string, len(op.Args))
			for i, a := range op.Args {
				args[i] = FormatConstant(a)
			}
			s += " args[" + strings.Join(args, ", ") + "]"
		}
		return s
	}
	return name
}

// FormatHandle renders handle[TAG owner.name desc]. Method descriptors are
// glued to the name, field descriptors are separated by a space.
func FormatHandle(h insn.Handle) string {
	var sb strings.Builder
	sb.WriteString("handle[")
	sb.WriteString(h.Tag.String())
	sb.WriteByte(' ')
	sb.WriteString(h.Owner)
	sb.WriteByte('.')
	sb.WriteString(h.Name)
	if h.Tag.IsField() {
		sb.WriteByte(' ')
	}
	sb.WriteString(h.Desc)
	if h.Itf {
		sb.WriteString(" itf")
	}
	sb.WriteByte(']')
	return sb.String()
}

// FormatConstant renders a constant so that the parser reads back the same
// kind and value.
func FormatConstant(c insn.Constant) string {
	switch c.Kind {
	case insn.ConstInt:
		return itoa(c.Long)
	case insn.ConstLong:
		return itoa(c.Long) + "L"
	case insn.ConstFloat:
		return formatFloat(c.Double, 32) + "F"
	case insn.ConstDouble:
		return formatFloat(c.Double, 64) + "D"
	case insn.ConstString:
		return Quote(c.Str)
	case insn.ConstType, insn.ConstMethodType:
		return c.Str
	case insn.ConstHandle:
		if c.Handle != nil {
			return FormatHandle(*c.Handle)
		}
	}
	return "?"
}

func formatFloat(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Quote wraps s in double quotes, escaping what the parser unescapes.
func Quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i, r := range s {
		switch r {
		case '$':
			// "${" читается как подстановка алиаса
			if strings.HasPrefix(s[i+1:], "{") {
				sb.WriteString(`\u0024`)
				continue
			}
			sb.WriteByte('$')
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7f || r == utf8.RuneError {
				fmt.Fprintf(&sb, `\u%04X`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
