// Package vars assigns local variable slots to the names and raw indices a
// listing refers to. Assignment is deterministic: the receiver, then the
// parameters, then raw slot reservations, then names kept from a baseline
// layout, then the remaining names in order of first use.
package vars

import (
	"fmt"
	"slices"
	"strings"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/types"
)

// This is the implicit receiver of instance members.
const This = "this"

type Options struct {
	// Static overrides the definition's own static modifier when set.
	Static *bool
	// Owner is the declaring class; it types the receiver.
	Owner string
	// Baseline is a previous layout; referenced names keep its slots.
	Baseline []insn.LocalVariable
}

// Error is an allocation failure tied to a source line (or -1).
type Error struct {
	Line    int
	Code    diag.Code
	Message string
}

func (e *Error) Error() string {
	if e.Line < 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func errAt(line int, code diag.Code, format string, args ...any) *Error {
	return &Error{Line: line, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Variable is one named slot.
type Variable struct {
	Name  string
	Index int
	// Size is 2 for long and double.
	Size int
	// Sort is the computational sort the listing uses it with.
	Sort types.Sort
	// Desc is the declared descriptor for the receiver and parameters,
	// and the inferred one for locals once known.
	Desc string
	// Param marks the receiver and declared parameters; they live for the
	// whole body.
	Param bool
	// Anonymous parameters have a numeric name and no table entry.
	Anonymous bool
	// First and Last are the first and last instructions referring to it.
	First, Last *ast.Instruction
}

// Cache is the name to slot layout of one member.
type Cache struct {
	byName    map[string]*Variable
	bySlot    map[int]*Variable
	raw       map[int]types.Sort
	companion map[int]int
	next      int
	maxLocals int
}

func newCache() *Cache {
	return &Cache{
		byName:    make(map[string]*Variable),
		bySlot:    make(map[int]*Variable),
		raw:       make(map[int]types.Sort),
		companion: make(map[int]int),
	}
}

// Lookup returns the variable bound to name.
func (c *Cache) Lookup(name string) (*Variable, bool) {
	v, ok := c.byName[name]
	return v, ok
}

// Index resolves a name to its slot.
func (c *Cache) Index(name string) (int, bool) {
	if v, ok := c.byName[name]; ok {
		return v.Index, true
	}
	return 0, false
}

// Name returns the variable that owns slot, if a named one does.
func (c *Cache) Name(slot int) (string, bool) {
	if v, ok := c.bySlot[slot]; ok && !v.Anonymous {
		return v.Name, true
	}
	return "", false
}

// Slot resolves a reference from the listing.
func (c *Cache) Slot(ref ast.VarRef) (int, bool) {
	if ref.IsRaw() {
		return ref.Index, true
	}
	return c.Index(ref.Name)
}

// IsRaw reports a slot reserved by a numeric reference.
func (c *Cache) IsRaw(slot int) bool {
	_, ok := c.raw[slot]
	return ok
}

// Variables lists the named slots ordered by index.
func (c *Cache) Variables() []*Variable {
	out := make([]*Variable, 0, len(c.byName))
	for _, v := range c.byName {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *Variable) int {
		if a.Index != b.Index {
			return a.Index - b.Index
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// MaxLocals is one past the highest slot in use.
func (c *Cache) MaxLocals() int { return c.maxLocals }

// taken reports whether a slot is occupied by anything.
func (c *Cache) taken(slot int) bool {
	if _, ok := c.bySlot[slot]; ok {
		return true
	}
	if _, ok := c.raw[slot]; ok {
		return true
	}
	_, ok := c.companion[slot]
	return ok
}

func (c *Cache) bind(v *Variable) {
	c.byName[v.Name] = v
	c.bySlot[v.Index] = v
	if v.Size == 2 {
		c.companion[v.Index+1] = v.Index
	}
	c.grow(v.Index + v.Size)
}

func (c *Cache) grow(n int) {
	if n > c.maxLocals {
		c.maxLocals = n
	}
}

// usage is what the body says about one name or raw slot.
type usage struct {
	sort        types.Sort
	wide        bool
	first, last *ast.Instruction
}

func sizeOf(s types.Sort) int {
	if s == types.Long || s == types.Double {
		return 2
	}
	return 1
}

// computational folds a descriptor onto the sort load/store opcodes use.
func computational(t types.Type) types.Sort {
	switch {
	case t.IsIntLike():
		return types.Int
	case t.IsReference():
		return types.Object
	}
	return t.Sort()
}
