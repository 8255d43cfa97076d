package insn

import (
	"fmt"
	"math"
)

// ConstKind discriminates Constant.
type ConstKind uint8

const (
	ConstInt ConstKind = iota + 1
	ConstLong
	ConstFloat
	ConstDouble
	ConstString
	ConstType
	ConstMethodType
	ConstHandle
)

func (k ConstKind) String() string {
	switch k {
	case ConstInt:
		return "int"
	case ConstLong:
		return "long"
	case ConstFloat:
		return "float"
	case ConstDouble:
		return "double"
	case ConstString:
		return "string"
	case ConstType:
		return "type"
	case ConstMethodType:
		return "method type"
	case ConstHandle:
		return "handle"
	}
	return "unknown"
}

// Constant is a loadable constant (LDC operand, bootstrap argument, field default).
// Integers live in Long, floating values in Double, strings and descriptors in Str.
type Constant struct {
	Kind   ConstKind `msgpack:"kind" json:"kind"`
	Long   int64     `msgpack:"long,omitempty" json:"long,omitempty"`
	Double float64   `msgpack:"double,omitempty" json:"double,omitempty"`
	Str    string    `msgpack:"str,omitempty" json:"str,omitempty"`
	Handle *Handle   `msgpack:"handle,omitempty" json:"handle,omitempty"`
}

func IntConst(v int32) Constant         { return Constant{Kind: ConstInt, Long: int64(v)} }
func LongConst(v int64) Constant        { return Constant{Kind: ConstLong, Long: v} }
func FloatConst(v float32) Constant     { return Constant{Kind: ConstFloat, Double: float64(v)} }
func DoubleConst(v float64) Constant    { return Constant{Kind: ConstDouble, Double: v} }
func StringConst(v string) Constant     { return Constant{Kind: ConstString, Str: v} }
func TypeConst(desc string) Constant    { return Constant{Kind: ConstType, Str: desc} }
func MethodTypeConst(d string) Constant { return Constant{Kind: ConstMethodType, Str: d} }

func HandleConst(h Handle) Constant {
	return Constant{Kind: ConstHandle, Handle: &h}
}

func (c Constant) Int() int32      { return int32(c.Long) }
func (c Constant) Float() float32  { return float32(c.Double) }
func (c Constant) IsWide() bool    { return c.Kind == ConstLong || c.Kind == ConstDouble }
func (c Constant) IsNumeric() bool { return c.Kind >= ConstInt && c.Kind <= ConstDouble }

// Equal compares constants bit for bit, so NaN equals NaN and 0.0 differs from -0.0.
func (c Constant) Equal(o Constant) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case ConstInt, ConstLong:
		return c.Long == o.Long
	case ConstFloat:
		return math.Float32bits(c.Float()) == math.Float32bits(o.Float())
	case ConstDouble:
		return math.Float64bits(c.Double) == math.Float64bits(o.Double)
	case ConstHandle:
		if c.Handle == nil || o.Handle == nil {
			return c.Handle == o.Handle
		}
		return *c.Handle == *o.Handle
	}
	return c.Str == o.Str
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt, ConstLong:
		return fmt.Sprintf("%s %d", c.Kind, c.Long)
	case ConstFloat, ConstDouble:
		return fmt.Sprintf("%s %v", c.Kind, c.Double)
	case ConstHandle:
		if c.Handle != nil {
			return fmt.Sprintf("handle %s %s.%s%s", c.Handle.Tag, c.Handle.Owner, c.Handle.Name, c.Handle.Desc)
		}
	}
	return fmt.Sprintf("%s %q", c.Kind, c.Str)
}
