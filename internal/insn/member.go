package insn

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"jasm/internal/opcode"
	"jasm/internal/types"
)

// Kind says whether a Member is a method or a field.
type Kind uint8

const (
	KindMethod Kind = iota + 1
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	}
	return "unknown"
}

// TryCatch covers [Start, End) with a handler; an empty Type catches anything.
type TryCatch struct {
	Start   LabelID `msgpack:"start" json:"start"`
	End     LabelID `msgpack:"end" json:"end"`
	Handler LabelID `msgpack:"handler" json:"handler"`
	Type    string  `msgpack:"type,omitempty" json:"type,omitempty"`
}

// LocalVariable is one entry of the local variable table, live in [Start, End).
type LocalVariable struct {
	Name  string  `msgpack:"name" json:"name"`
	Desc  string  `msgpack:"desc" json:"desc"`
	Start LabelID `msgpack:"start" json:"start"`
	End   LabelID `msgpack:"end" json:"end"`
	Index int     `msgpack:"index" json:"index"`
}

// Member is a single assembled method or field.
type Member struct {
	Kind         Kind            `msgpack:"kind" json:"kind"`
	Access       Access          `msgpack:"access" json:"access"`
	Name         string          `msgpack:"name" json:"name"`
	Desc         string          `msgpack:"desc" json:"desc"`
	Signature    string          `msgpack:"signature,omitempty" json:"signature,omitempty"`
	Exceptions   []string        `msgpack:"exceptions,omitempty" json:"exceptions,omitempty"`
	Value        *Constant       `msgpack:"value,omitempty" json:"value,omitempty"`
	Labels       int             `msgpack:"labels,omitempty" json:"labels,omitempty"`
	Instructions []Instruction   `msgpack:"code,omitempty" json:"code,omitempty"`
	TryCatches   []TryCatch      `msgpack:"try_catch,omitempty" json:"try_catch,omitempty"`
	Locals       []LocalVariable `msgpack:"locals,omitempty" json:"locals,omitempty"`
	MaxStack     int             `msgpack:"max_stack,omitempty" json:"max_stack,omitempty"`
	MaxLocals    int             `msgpack:"max_locals,omitempty" json:"max_locals,omitempty"`
	// Comments keyed by the index of the instruction they precede.
	Comments map[int]string `msgpack:"comments,omitempty" json:"comments,omitempty"`
}

func (m *Member) IsStatic() bool   { return m.Access&AccStatic != 0 }
func (m *Member) IsAbstract() bool { return m.Access&(AccAbstract|AccNative) != 0 }

// NewLabel allocates a fresh label id.
func (m *Member) NewLabel() LabelID {
	id := LabelID(m.Labels)
	m.Labels++
	return id
}

// LabelPositions maps every placed label to its index in Instructions.
func (m *Member) LabelPositions() map[LabelID]int {
	pos := make(map[LabelID]int, m.Labels)
	for i := range m.Instructions {
		if m.Instructions[i].Op == opcode.Label {
			pos[m.Instructions[i].Label] = i
		}
	}
	return pos
}

var errNoPosition = errors.New("label is not placed")

// Validate checks structural consistency: descriptor syntax, label ranges,
// and that every referenced label is placed exactly once.
func (m *Member) Validate() error {
	switch m.Kind {
	case KindMethod:
		if _, _, err := types.ParseMethod(m.Desc); err != nil {
			return fmt.Errorf("method %s: %w", m.Name, err)
		}
	case KindField:
		if _, err := types.ParseField(m.Desc); err != nil {
			return fmt.Errorf("field %s: %w", m.Name, err)
		}
		if len(m.Instructions) > 0 {
			return fmt.Errorf("field %s has code", m.Name)
		}
		return nil
	default:
		return fmt.Errorf("member %s: unknown kind %d", m.Name, m.Kind)
	}
	placed := make(map[LabelID]bool, m.Labels)
	for i := range m.Instructions {
		in := &m.Instructions[i]
		if !in.Op.Valid() {
			return fmt.Errorf("instruction %d: invalid opcode %d", i, in.Op)
		}
		if in.Op == opcode.Label {
			if placed[in.Label] {
				return fmt.Errorf("instruction %d: label %d placed twice", i, in.Label)
			}
			placed[in.Label] = true
		}
	}
	check := func(where string, id LabelID) error {
		if id < 0 || int(id) >= m.Labels || !placed[id] {
			return fmt.Errorf("%s: label %d: %w", where, id, errNoPosition)
		}
		return nil
	}
	for i := range m.Instructions {
		in := &m.Instructions[i]
		where := fmt.Sprintf("instruction %d (%s)", i, in.Op)
		switch in.Op.Shape() {
		case opcode.ShapeJump, opcode.ShapeLine:
			if err := check(where, in.Label); err != nil {
				return err
			}
		case opcode.ShapeTableSwitch, opcode.ShapeLookupSwitch:
			for _, id := range in.Successors() {
				if err := check(where, id); err != nil {
					return err
				}
			}
		}
	}
	for i, tc := range m.TryCatches {
		where := fmt.Sprintf("try/catch %d", i)
		for _, id := range []LabelID{tc.Start, tc.End, tc.Handler} {
			if err := check(where, id); err != nil {
				return err
			}
		}
	}
	for _, lv := range m.Locals {
		where := "local " + lv.Name
		if err := check(where, lv.Start); err != nil {
			return err
		}
		if err := check(where, lv.End); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *Member) Clone() *Member {
	out := *m
	out.Exceptions = slices.Clone(m.Exceptions)
	if m.Value != nil {
		v := m.Value.clone()
		out.Value = &v
	}
	out.Instructions = make([]Instruction, len(m.Instructions))
	for i := range m.Instructions {
		out.Instructions[i] = m.Instructions[i].clone()
	}
	out.TryCatches = slices.Clone(m.TryCatches)
	out.Locals = slices.Clone(m.Locals)
	out.Comments = maps.Clone(m.Comments)
	return &out
}

func (c Constant) clone() Constant {
	if c.Handle != nil {
		h := *c.Handle
		c.Handle = &h
	}
	return c
}

func (in Instruction) clone() Instruction {
	if in.Const != nil {
		c := in.Const.clone()
		in.Const = &c
	}
	if in.Bootstrap != nil {
		h := *in.Bootstrap
		in.Bootstrap = &h
	}
	in.Keys = slices.Clone(in.Keys)
	in.Targets = slices.Clone(in.Targets)
	if in.BootstrapArgs != nil {
		args := make([]Constant, len(in.BootstrapArgs))
		for i, a := range in.BootstrapArgs {
			args[i] = a.clone()
		}
		in.BootstrapArgs = args
	}
	return in
}
