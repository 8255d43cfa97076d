// Package analysis is the abstract interpreter behind verification: a
// worklist fixpoint over frames of abstract values, with primitive literals
// folded along the way.
package analysis

import (
	"strings"

	"jasm/internal/hierarchy"
	"jasm/internal/insn"
	"jasm/internal/types"
)

// Kind tags a Value.
type Kind uint8

const (
	// Uninitialized is the lattice top: nothing usable is known.
	Uninitialized Kind = iota
	ReturnAddress
	Null
	Primitive
	Reference
)

func (k Kind) String() string {
	switch k {
	case ReturnAddress:
		return "return address"
	case Null:
		return "null"
	case Primitive:
		return "primitive"
	case Reference:
		return "reference"
	}
	return "uninitialized"
}

// Value is one abstract stack or local entry. The zero Value is Uninitialized.
// Primitive values carry their computational type (int, long, float, double)
// and, when known, a literal.
type Value struct {
	kind   Kind
	typ    types.Type
	lit    insn.Constant
	hasLit bool
}

var (
	Unset   = Value{}
	NullRef = Value{kind: Null}
	RetAddr = Value{kind: ReturnAddress}
)

// Of returns an unknown value of type t. Sub-int primitives fold onto int.
func Of(t types.Type) Value {
	switch {
	case t.IsZero(), t.Sort() == types.Void:
		return Unset
	case t.IsReference():
		return Value{kind: Reference, typ: t}
	}
	return Value{kind: Primitive, typ: t.Computational()}
}

// ObjectOf is a reference to internalName (which may be an array descriptor).
func ObjectOf(internalName string) Value {
	t, err := types.FromInternalName(internalName)
	if err != nil {
		return Value{kind: Reference, typ: types.ObjectType}
	}
	return Value{kind: Reference, typ: t}
}

// Literal is a primitive value with a known constant. Non-numeric constants
// yield their reference type without a literal.
func Literal(c insn.Constant) Value {
	switch c.Kind {
	case insn.ConstInt:
		return Value{kind: Primitive, typ: types.IntType, lit: c, hasLit: true}
	case insn.ConstLong:
		return Value{kind: Primitive, typ: types.LongType, lit: c, hasLit: true}
	case insn.ConstFloat:
		return Value{kind: Primitive, typ: types.FloatType, lit: c, hasLit: true}
	case insn.ConstDouble:
		return Value{kind: Primitive, typ: types.DoubleType, lit: c, hasLit: true}
	case insn.ConstString:
		return Of(types.StringType)
	case insn.ConstType:
		return Of(types.ClassType)
	case insn.ConstMethodType:
		return Of(types.MethodTypeType)
	case insn.ConstHandle:
		return Of(types.MethodHandleType)
	}
	return Unset
}

func Int(v int32) Value      { return Literal(insn.IntConst(v)) }
func Long(v int64) Value     { return Literal(insn.LongConst(v)) }
func Float(v float32) Value  { return Literal(insn.FloatConst(v)) }
func Double(v float64) Value { return Literal(insn.DoubleConst(v)) }

func (v Value) Kind() Kind                     { return v.kind }
func (v Value) Type() types.Type               { return v.typ }
func (v Value) Literal() (insn.Constant, bool) { return v.lit, v.hasLit }
func (v Value) IsUninitialized() bool          { return v.kind == Uninitialized }
func (v Value) IsReference() bool              { return v.kind == Reference || v.kind == Null }
func (v Value) Sort() types.Sort               { return v.typ.Sort() }

// Size is the number of slots the value occupies.
func (v Value) Size() int {
	if v.kind == Primitive && (v.typ.Sort() == types.Long || v.typ.Sort() == types.Double) {
		return 2
	}
	return 1
}

// Is reports a primitive of sort s.
func (v Value) Is(s types.Sort) bool {
	return v.kind == Primitive && v.typ.Sort() == s
}

// Equal compares kind, type and literal; literals compare bit for bit.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.typ != o.typ || v.hasLit != o.hasLit {
		return false
	}
	return !v.hasLit || v.lit.Equal(o.lit)
}

// Widen drops the literal.
func (v Value) Widen() Value {
	v.hasLit = false
	v.lit = insn.Constant{}
	return v
}

// Descriptor is the field descriptor of the value, or "" when it has none.
func (v Value) Descriptor() string {
	switch v.kind {
	case Primitive, Reference:
		return v.typ.Descriptor()
	case Null:
		return types.ObjectType.Descriptor()
	}
	return ""
}

func (v Value) String() string {
	switch v.kind {
	case Primitive:
		if v.hasLit {
			return typeName(v.typ) + "(" + v.lit.String() + ")"
		}
		return typeName(v.typ)
	case Reference:
		return typeName(v.typ)
	}
	return v.kind.String()
}

// typeName prints primitives by keyword and classes by internal name.
func typeName(t types.Type) string {
	switch {
	case t.IsPrimitive():
		return t.Sort().String()
	case t.Sort() == types.Object:
		return t.InternalName()
	}
	return t.Descriptor()
}

// CanMerge holds for identical values, a null and any reference, two
// primitives of one computational type, and references on one ancestor chain.
// Classes the oracle does not know never merge with other classes.
func CanMerge(o hierarchy.Oracle, a, b Value) bool {
	_, ok := merge(o, a, b)
	return ok
}

// Merge joins two values at a control flow join. It never fails; values that
// cannot merge yield Uninitialized.
func Merge(o hierarchy.Oracle, a, b Value) Value {
	v, ok := merge(o, a, b)
	if !ok {
		return Unset
	}
	return v
}

func merge(o hierarchy.Oracle, a, b Value) (Value, bool) {
	if a.Equal(b) {
		return a, true
	}
	switch {
	case a.kind == Null && b.kind == Reference:
		return b, true
	case a.kind == Reference && b.kind == Null:
		return a, true
	case a.kind == Primitive && b.kind == Primitive:
		if a.typ == b.typ {
			return a.Widen(), true
		}
		return Unset, false
	case a.kind == Reference && b.kind == Reference:
		if a.typ == b.typ {
			return a, true
		}
		if o == nil {
			return Unset, false
		}
		an, bn := a.typ.InternalName(), b.typ.InternalName()
		if is, known := o.IsAncestor(an, bn); known && is {
			return a, true
		}
		if is, known := o.IsAncestor(bn, an); known && is {
			return b, true
		}
	}
	return Unset, false
}

// assignable reports whether v can be used where a value of type want is
// expected. Unknown classes give no information and are accepted.
func assignable(o hierarchy.Oracle, want types.Type, v Value) bool {
	if !want.IsReference() {
		return v.kind == Primitive && v.typ == want.Computational()
	}
	switch v.kind {
	case Null, Uninitialized:
		return true
	case Reference:
	default:
		return false
	}
	if want == types.ObjectType || want == v.typ {
		return true
	}
	if want.Sort() == types.Array && v.typ.Sort() != types.Array {
		return false
	}
	if o == nil {
		return true
	}
	is, known := o.IsAncestor(want.InternalName(), v.typ.InternalName())
	if is || !known {
		return true
	}
	// Interface types are not checked on assignment, as in the JVM verifier.
	if io, ok := o.(interfaceOracle); ok && want.Sort() == types.Object {
		itf, _ := io.IsInterface(want.InternalName())
		return itf
	}
	return false
}

type interfaceOracle interface {
	IsInterface(name string) (is, known bool)
}

func describe(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
