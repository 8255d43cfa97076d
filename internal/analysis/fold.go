package analysis

import (
	"math"

	"jasm/internal/types"
)

// ArithOp is a binary arithmetic or bitwise operator.
type ArithOp uint8

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpUshr
)

// rank orders the computational types for promotion.
func rank(s types.Sort) int {
	switch s {
	case types.Int:
		return 1
	case types.Long:
		return 2
	case types.Float:
		return 3
	case types.Double:
		return 4
	}
	return 0
}

func promote(a, b types.Type) types.Type {
	if rank(b.Sort()) > rank(a.Sort()) {
		return b
	}
	return a
}

// Fold applies op to two primitive values. Operands are promoted to the
// wider of the two types (int, long, float, double in that order); shifts
// keep the type of the shifted value. The result carries a literal only
// when both inputs do and the operation is defined on them.
func Fold(op ArithOp, a, b Value) Value {
	if a.kind != Primitive || b.kind != Primitive {
		return Unset
	}
	if op >= OpShl {
		return shift(op, a, b)
	}
	t := promote(a.typ, b.typ)
	if !a.hasLit || !b.hasLit {
		return Of(t)
	}
	switch t.Sort() {
	case types.Int:
		r, ok := foldInt(op, int32(asLong(a)), int32(asLong(b)))
		if !ok {
			return Of(t)
		}
		return Int(r)
	case types.Long:
		r, ok := foldLong(op, asLong(a), asLong(b))
		if !ok {
			return Of(t)
		}
		return Long(r)
	case types.Float:
		r, ok := foldFloat(op, float32(asDouble(a)), float32(asDouble(b)))
		if !ok {
			return Of(t)
		}
		return Float(r)
	case types.Double:
		r, ok := foldDouble(op, asDouble(a), asDouble(b))
		if !ok {
			return Of(t)
		}
		return Double(r)
	}
	return Of(t)
}

func asLong(v Value) int64 {
	switch v.typ.Sort() {
	case types.Float, types.Double:
		return d2l(v.lit.Double)
	}
	return v.lit.Long
}

func asDouble(v Value) float64 {
	switch v.typ.Sort() {
	case types.Int, types.Long:
		return float64(v.lit.Long)
	case types.Float:
		return float64(float32(v.lit.Double))
	}
	return v.lit.Double
}

func foldInt(op ArithOp, a, b int32) (int32, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		if b == 0 {
			return 0, false
		}
		if b == -1 {
			return -a, true
		}
		return a / b, true
	case OpRem:
		if b == 0 {
			return 0, false
		}
		if b == -1 {
			return 0, true
		}
		return a % b, true
	case OpAnd:
		return a & b, true
	case OpOr:
		return a | b, true
	case OpXor:
		return a ^ b, true
	}
	return 0, false
}

func foldLong(op ArithOp, a, b int64) (int64, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		if b == 0 {
			return 0, false
		}
		if b == -1 {
			return -a, true
		}
		return a / b, true
	case OpRem:
		if b == 0 {
			return 0, false
		}
		if b == -1 {
			return 0, true
		}
		return a % b, true
	case OpAnd:
		return a & b, true
	case OpOr:
		return a | b, true
	case OpXor:
		return a ^ b, true
	}
	return 0, false
}

func foldFloat(op ArithOp, a, b float32) (float32, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		return a / b, true
	case OpRem:
		return float32(math.Mod(float64(a), float64(b))), true
	}
	return 0, false
}

func foldDouble(op ArithOp, a, b float64) (float64, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		return a / b, true
	case OpRem:
		return math.Mod(a, b), true
	}
	return 0, false
}

// shift keeps the left operand's type; the distance is masked to 5 or 6 bits.
func shift(op ArithOp, a, b Value) Value {
	if !a.hasLit || !b.hasLit || rank(b.typ.Sort()) != 1 {
		return a.Widen()
	}
	n := uint(b.lit.Long)
	switch a.typ.Sort() {
	case types.Int:
		x := int32(a.lit.Long)
		n &= 31
		switch op {
		case OpShl:
			return Int(x << n)
		case OpShr:
			return Int(x >> n)
		case OpUshr:
			return Int(int32(uint32(x) >> n))
		}
	case types.Long:
		x := a.lit.Long
		n &= 63
		switch op {
		case OpShl:
			return Long(x << n)
		case OpShr:
			return Long(x >> n)
		case OpUshr:
			return Long(int64(uint64(x) >> n))
		}
	}
	return a.Widen()
}

// Negate folds unary minus.
func Negate(v Value) Value {
	if v.kind != Primitive || !v.hasLit {
		return v.Widen()
	}
	switch v.typ.Sort() {
	case types.Int:
		return Int(-int32(v.lit.Long))
	case types.Long:
		return Long(-v.lit.Long)
	case types.Float:
		return Float(-float32(v.lit.Double))
	case types.Double:
		return Double(-v.lit.Double)
	}
	return v.Widen()
}

// Convert folds a primitive conversion (I2L, F2I, I2B, ...). Floating to
// integral conversions saturate and map NaN to zero.
func Convert(v Value, to types.Type) Value {
	if v.kind != Primitive {
		return Of(to)
	}
	if !v.hasLit {
		return Of(to)
	}
	from := v.typ.Sort()
	switch to.Sort() {
	case types.Int:
		switch from {
		case types.Float, types.Double:
			return Int(d2i(asDouble(v)))
		}
		return Int(int32(v.lit.Long))
	case types.Byte:
		return Int(int32(int8(v.lit.Long)))
	case types.Char:
		return Int(int32(uint16(v.lit.Long)))
	case types.Short:
		return Int(int32(int16(v.lit.Long)))
	case types.Long:
		switch from {
		case types.Float, types.Double:
			return Long(d2l(asDouble(v)))
		}
		return Long(v.lit.Long)
	case types.Float:
		if from == types.Int || from == types.Long {
			return Float(float32(v.lit.Long))
		}
		return Float(float32(asDouble(v)))
	case types.Double:
		return Double(asDouble(v))
	}
	return Of(to)
}

func d2i(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func d2l(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// Compare folds LCMP and the floating compares. nanResult is what a NaN
// operand yields: -1 for the L variants, 1 for the G variants.
func Compare(a, b Value, nanResult int32) Value {
	if !a.hasLit || !b.hasLit || a.kind != Primitive || b.kind != Primitive {
		return Of(types.IntType)
	}
	if a.typ.Sort() == types.Long {
		x, y := a.lit.Long, b.lit.Long
		switch {
		case x < y:
			return Int(-1)
		case x > y:
			return Int(1)
		}
		return Int(0)
	}
	x, y := asDouble(a), asDouble(b)
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return Int(nanResult)
	case x < y:
		return Int(-1)
	case x > y:
		return Int(1)
	}
	return Int(0)
}
