package ast

import (
	"jasm/internal/insn"
)

// Operand is the closed set of operand forms, one per opcode.Shape.
type Operand interface {
	operand()
}

// VarRef names a local variable by name or by raw slot.
type VarRef struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// NamedVar builds a reference by name.
func NamedVar(name string) VarRef { return VarRef{Name: name, Index: -1} }

// RawVar builds a reference to a numeric slot.
func RawVar(slot int) VarRef { return VarRef{Index: slot} }

// IsRaw reports a numeric slot reference.
func (v VarRef) IsRaw() bool { return v.Index >= 0 && v.Name == "" }

func (v VarRef) String() string {
	if v.IsRaw() {
		return itoa(int64(v.Index))
	}
	return v.Name
}

type IntOperand struct {
	Value int32 `json:"value"`
}

type VarOperand struct {
	Var VarRef `json:"var"`
}

type TypeOperand struct {
	Type string `json:"type"`
}

type FieldOperand struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Desc  string `json:"desc"`
}

type MethodOperand struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Desc  string `json:"desc"`
	Itf   bool   `json:"itf,omitempty"`
}

type JumpOperand struct {
	Label string `json:"label"`
}

type LdcOperand struct {
	Value insn.Constant `json:"value"`
}

type IincOperand struct {
	Var   VarRef `json:"var"`
	Delta int32  `json:"delta"`
}

type TableSwitchOperand struct {
	Min     int32    `json:"min"`
	Max     int32    `json:"max"`
	Labels  []string `json:"labels"`
	Default string   `json:"default"`
}

type LookupSwitchOperand struct {
	Keys    []int32  `json:"keys"`
	Labels  []string `json:"labels"`
	Default string   `json:"default"`
}

type MultiArrayOperand struct {
	Desc string `json:"desc"`
	Dims int32  `json:"dims"`
}

// InvokeDynamicOperand is a call site. When BootstrapAlias is set the
// formatter prints ${BootstrapAlias} in place of the handle.
type InvokeDynamicOperand struct {
	Name           string          `json:"name"`
	Desc           string          `json:"desc"`
	Bootstrap      insn.Handle     `json:"bsm"`
	Args           []insn.Constant `json:"args,omitempty"`
	BootstrapAlias string          `json:"bsm_alias,omitempty"`
}

func (*IntOperand) operand()           {}
func (*VarOperand) operand()           {}
func (*TypeOperand) operand()          {}
func (*FieldOperand) operand()         {}
func (*MethodOperand) operand()        {}
func (*JumpOperand) operand()          {}
func (*LdcOperand) operand()           {}
func (*IincOperand) operand()          {}
func (*TableSwitchOperand) operand()   {}
func (*LookupSwitchOperand) operand()  {}
func (*MultiArrayOperand) operand()    {}
func (*InvokeDynamicOperand) operand() {}

// Var returns the variable an instruction touches, if any.
func (in *Instruction) Var() (VarRef, bool) {
	switch op := in.Operand.(type) {
	case *VarOperand:
		return op.Var, true
	case *IincOperand:
		return op.Var, true
	}
	return VarRef{}, false
}

// LabelRefs lists every label name the instruction refers to.
func (in *Instruction) LabelRefs() []string {
	switch op := in.Operand.(type) {
	case *JumpOperand:
		return []string{op.Label}
	case *TableSwitchOperand:
		return append([]string{op.Default}, op.Labels...)
	case *LookupSwitchOperand:
		return append([]string{op.Default}, op.Labels...)
	}
	return nil
}
