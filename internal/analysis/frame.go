package analysis

import (
	"fmt"
	"strings"

	"jasm/internal/hierarchy"
)

// Frame is the abstract machine state before one instruction. A two-slot
// value in local n leaves local n+1 Uninitialized.
type Frame struct {
	Locals []Value
	Stack  []Value
}

func NewFrame(locals int) *Frame {
	return &Frame{Locals: make([]Value, locals)}
}

func (f *Frame) Clone() *Frame {
	out := &Frame{
		Locals: make([]Value, len(f.Locals)),
		Stack:  make([]Value, len(f.Stack), cap(f.Stack)),
	}
	copy(out.Locals, f.Locals)
	copy(out.Stack, f.Stack)
	return out
}

// StackSize is the operand stack depth in slots.
func (f *Frame) StackSize() int {
	n := 0
	for _, v := range f.Stack {
		n += v.Size()
	}
	return n
}

func (f *Frame) Push(v Value) { f.Stack = append(f.Stack, v) }

func (f *Frame) Pop() (Value, error) {
	if len(f.Stack) == 0 {
		return Unset, errUnderflow
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v, nil
}

// PopN pops n values and returns them in push order.
func (f *Frame) PopN(n int) ([]Value, error) {
	if n > len(f.Stack) {
		return nil, errUnderflow
	}
	out := make([]Value, n)
	copy(out, f.Stack[len(f.Stack)-n:])
	f.Stack = f.Stack[:len(f.Stack)-n]
	return out, nil
}

func (f *Frame) Peek() (Value, error) {
	if len(f.Stack) == 0 {
		return Unset, errUnderflow
	}
	return f.Stack[len(f.Stack)-1], nil
}

func (f *Frame) Local(i int) (Value, error) {
	if i < 0 || i >= len(f.Locals) {
		return Unset, fmt.Errorf("local %d is outside the frame of %d slots", i, len(f.Locals))
	}
	return f.Locals[i], nil
}

// SetLocal stores v into slot i. Overwriting either half of a two-slot
// value destroys it.
func (f *Frame) SetLocal(i int, v Value) error {
	if i < 0 || i+v.Size() > len(f.Locals) {
		return fmt.Errorf("local %d is outside the frame of %d slots", i, len(f.Locals))
	}
	if i > 0 && f.Locals[i-1].Size() == 2 {
		f.Locals[i-1] = Unset
	}
	f.Locals[i] = v
	if v.Size() == 2 {
		f.Locals[i+1] = Unset
	}
	return nil
}

// Merge folds other into f. It reports whether f changed; frames with
// different stack heights cannot be merged.
func (f *Frame) Merge(o hierarchy.Oracle, other *Frame) (bool, error) {
	if len(f.Stack) != len(other.Stack) {
		return false, fmt.Errorf("stack height mismatch: %d vs %d", len(f.Stack), len(other.Stack))
	}
	changed := false
	for i := range f.Locals {
		m := Merge(o, f.Locals[i], other.Locals[i])
		if !m.Equal(f.Locals[i]) {
			f.Locals[i] = m
			changed = true
		}
	}
	for i := range f.Stack {
		m := Merge(o, f.Stack[i], other.Stack[i])
		if !m.Equal(f.Stack[i]) {
			f.Stack[i] = m
			changed = true
		}
	}
	return changed, nil
}

func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString("locals [")
	b.WriteString(describe(f.Locals))
	b.WriteString("] stack [")
	b.WriteString(describe(f.Stack))
	b.WriteString("]")
	return b.String()
}
