// Package ast holds the parsed form of one member listing: an ordered list
// of nodes, one per source line, each remembering the line it came from.
package ast

import (
	"strings"

	"jasm/internal/insn"
	"jasm/internal/opcode"
)

// Node is one parsed line. The set of node types is closed.
type Node interface {
	Line() int
	node()
}

// Pos carries the 1-based source line of a node.
type Pos struct {
	Num int `json:"line"`
}

func (p Pos) Line() int { return p.Num }
func (Pos) node()       {}

// At builds a Pos for line n.
func At(n int) Pos { return Pos{Num: n} }

// Definition declares the member. Args is nil for fields.
type Definition struct {
	Pos
	Kind      insn.Kind   `json:"kind"`
	Modifiers []*Modifier `json:"modifiers,omitempty"`
	Name      string      `json:"name"`
	// Type is the return descriptor for methods and the field descriptor for fields.
	Type string `json:"type"`
	Args []*Arg `json:"args,omitempty"`
}

// Arg is one declared method parameter.
type Arg struct {
	Desc string `json:"desc"`
	Name string `json:"name"`
}

// Desc assembles the member descriptor.
func (d *Definition) Desc() string {
	if d.Kind == insn.KindField {
		return d.Type
	}
	var sb strings.Builder
	sb.WriteByte('(')
	for _, a := range d.Args {
		sb.WriteString(a.Desc)
	}
	sb.WriteByte(')')
	sb.WriteString(d.Type)
	return sb.String()
}

// Access ORs the flags of every modifier.
func (d *Definition) Access() insn.Access {
	var acc insn.Access
	for _, m := range d.Modifiers {
		acc |= m.Flag
	}
	return acc
}

func (d *Definition) IsStatic() bool { return d.Access()&insn.AccStatic != 0 }

// Modifier is one access keyword of a definition.
type Modifier struct {
	Pos
	Name string      `json:"name"`
	Flag insn.Access `json:"flag"`
}

// Label marks a jump target.
type Label struct {
	Pos
	Name string `json:"name"`
}

// TryCatch is an exception range; an empty Type catches everything.
type TryCatch struct {
	Pos
	Start   string `json:"start"`
	End     string `json:"end"`
	Handler string `json:"handler"`
	Type    string `json:"type,omitempty"`
}

// Alias is a textual macro. It has already been applied when the tree is built.
type Alias struct {
	Pos
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Signature struct {
	Pos
	Text string `json:"text"`
}

type Throws struct {
	Pos
	Type string `json:"type"`
}

// DefaultValue is a field's constant value.
type DefaultValue struct {
	Pos
	Value insn.Constant `json:"value"`
}

// LineNumber attaches a source line to the position of a label.
type LineNumber struct {
	Pos
	Label  string `json:"label"`
	Number int32  `json:"number"`
}

type Comment struct {
	Pos
	Text string `json:"text"`
}

// Expr is a block of instructions written on one line.
type Expr struct {
	Pos
	Body []*Instruction `json:"body"`
}

// Instruction is an opcode with the operand its shape requires.
type Instruction struct {
	Pos
	Op      opcode.Opcode `json:"op"`
	Operand Operand       `json:"operand,omitempty"`
}

// Root is a parsed listing in source order.
type Root struct {
	Nodes []Node `json:"nodes"`
}

func (r *Root) Add(n Node) {
	r.Nodes = append(r.Nodes, n)
}

// Collect returns the nodes of type T in order.
func Collect[T Node](r *Root) []T {
	var out []T
	for _, n := range r.Nodes {
		if t, ok := n.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Definitions lists every DEFINE in the listing.
func (r *Root) Definitions() []*Definition {
	return Collect[*Definition](r)
}

// Instructions flattens plain instructions and Expr blocks in order.
func (r *Root) Instructions() []*Instruction {
	var out []*Instruction
	for _, n := range r.Nodes {
		switch n := n.(type) {
		case *Instruction:
			out = append(out, n)
		case *Expr:
			out = append(out, n.Body...)
		}
	}
	return out
}
