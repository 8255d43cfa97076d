// Package insn is the assembled form of a member: access flags, descriptor,
// the flat instruction stream with label and line pseudo entries, try/catch
// blocks and the local variable table.
package insn

import (
	"fmt"
	"strings"

	"jasm/internal/opcode"
)

// LabelID names a position in an instruction stream. IDs are dense,
// starting at 0, and resolve through the stream's Label entries.
type LabelID int

// NoLabel marks an absent label reference.
const NoLabel LabelID = -1

// Instruction is one entry of the stream. Op selects which fields are used:
//
//	ShapeInt            Int
//	ShapeVar            Var
//	ShapeIinc           Var, Int
//	ShapeType           Type
//	ShapeField          Owner, Name, Desc
//	ShapeMethod         Owner, Name, Desc, Itf
//	ShapeJump           Label
//	ShapeLdc            Const
//	ShapeTableSwitch    Min, Max, Targets, Default
//	ShapeLookupSwitch   Keys, Targets, Default
//	ShapeMultiArray     Type, Int
//	ShapeInvokeDynamic  Name, Desc, Bootstrap, BootstrapArgs
//	ShapeLabel          Label
//	ShapeLine           Label, Int
type Instruction struct {
	Op            opcode.Opcode `msgpack:"op" json:"op"`
	Int           int32         `msgpack:"int,omitempty" json:"int,omitempty"`
	Var           int           `msgpack:"var,omitempty" json:"var,omitempty"`
	Type          string        `msgpack:"type,omitempty" json:"type,omitempty"`
	Owner         string        `msgpack:"owner,omitempty" json:"owner,omitempty"`
	Name          string        `msgpack:"name,omitempty" json:"name,omitempty"`
	Desc          string        `msgpack:"desc,omitempty" json:"desc,omitempty"`
	Itf           bool          `msgpack:"itf,omitempty" json:"itf,omitempty"`
	Label         LabelID       `msgpack:"label,omitempty" json:"label,omitempty"`
	Const         *Constant     `msgpack:"const,omitempty" json:"const,omitempty"`
	Min           int32         `msgpack:"min,omitempty" json:"min,omitempty"`
	Max           int32         `msgpack:"max,omitempty" json:"max,omitempty"`
	Keys          []int32       `msgpack:"keys,omitempty" json:"keys,omitempty"`
	Targets       []LabelID     `msgpack:"targets,omitempty" json:"targets,omitempty"`
	Default       LabelID       `msgpack:"default,omitempty" json:"default,omitempty"`
	Bootstrap     *Handle       `msgpack:"bsm,omitempty" json:"bsm,omitempty"`
	BootstrapArgs []Constant    `msgpack:"bsm_args,omitempty" json:"bsm_args,omitempty"`
}

func Simple(op opcode.Opcode) Instruction { return Instruction{Op: op} }

func IntInsn(op opcode.Opcode, v int32) Instruction { return Instruction{Op: op, Int: v} }

func VarInsn(op opcode.Opcode, slot int) Instruction { return Instruction{Op: op, Var: slot} }

func Iinc(slot int, delta int32) Instruction {
	return Instruction{Op: opcode.Iinc, Var: slot, Int: delta}
}

func TypeInsn(op opcode.Opcode, internalName string) Instruction {
	return Instruction{Op: op, Type: internalName}
}

func FieldInsn(op opcode.Opcode, owner, name, desc string) Instruction {
	return Instruction{Op: op, Owner: owner, Name: name, Desc: desc}
}

func MethodInsn(op opcode.Opcode, owner, name, desc string, itf bool) Instruction {
	return Instruction{Op: op, Owner: owner, Name: name, Desc: desc, Itf: itf}
}

func Jump(op opcode.Opcode, target LabelID) Instruction {
	return Instruction{Op: op, Label: target}
}

func Ldc(c Constant) Instruction { return Instruction{Op: opcode.Ldc, Const: &c} }

func TableSwitch(lo, hi int32, dflt LabelID, targets ...LabelID) Instruction {
	return Instruction{Op: opcode.Tableswitch, Min: lo, Max: hi, Default: dflt, Targets: targets}
}

func LookupSwitch(dflt LabelID, keys []int32, targets []LabelID) Instruction {
	return Instruction{Op: opcode.Lookupswitch, Keys: keys, Targets: targets, Default: dflt}
}

func MultiANewArray(desc string, dims int32) Instruction {
	return Instruction{Op: opcode.Multianewarray, Type: desc, Int: dims}
}

func InvokeDynamic(name, desc string, bsm Handle, args ...Constant) Instruction {
	return Instruction{Op: opcode.Invokedynamic, Name: name, Desc: desc, Bootstrap: &bsm, BootstrapArgs: args}
}

func Mark(id LabelID) Instruction { return Instruction{Op: opcode.Label, Label: id} }

func LineAt(id LabelID, line int32) Instruction {
	return Instruction{Op: opcode.Line, Label: id, Int: line}
}

// Successors lists label targets the instruction may jump to, switch
// default first.
func (in *Instruction) Successors() []LabelID {
	switch in.Op.Shape() {
	case opcode.ShapeJump:
		return []LabelID{in.Label}
	case opcode.ShapeTableSwitch, opcode.ShapeLookupSwitch:
		out := make([]LabelID, 0, len(in.Targets)+1)
		out = append(out, in.Default)
		return append(out, in.Targets...)
	}
	return nil
}

func (in *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.Op.String())
	switch in.Op.Shape() {
	case opcode.ShapeInt:
		fmt.Fprintf(&sb, " %d", in.Int)
	case opcode.ShapeVar:
		fmt.Fprintf(&sb, " %d", in.Var)
	case opcode.ShapeIinc:
		fmt.Fprintf(&sb, " %d %d", in.Var, in.Int)
	case opcode.ShapeType:
		fmt.Fprintf(&sb, " %s", in.Type)
	case opcode.ShapeField, opcode.ShapeMethod:
		fmt.Fprintf(&sb, " %s.%s %s", in.Owner, in.Name, in.Desc)
	case opcode.ShapeJump, opcode.ShapeLabel:
		fmt.Fprintf(&sb, " L%d", in.Label)
	case opcode.ShapeLine:
		fmt.Fprintf(&sb, " L%d %d", in.Label, in.Int)
	case opcode.ShapeLdc:
		if in.Const != nil {
			fmt.Fprintf(&sb, " %s", in.Const)
		}
	case opcode.ShapeTableSwitch:
		fmt.Fprintf(&sb, " %d..%d %v default L%d", in.Min, in.Max, in.Targets, in.Default)
	case opcode.ShapeLookupSwitch:
		fmt.Fprintf(&sb, " %v -> %v default L%d", in.Keys, in.Targets, in.Default)
	case opcode.ShapeMultiArray:
		fmt.Fprintf(&sb, " %s %d", in.Type, in.Int)
	case opcode.ShapeInvokeDynamic:
		fmt.Fprintf(&sb, " %s %s", in.Name, in.Desc)
	}
	return sb.String()
}
