// Package opcode holds the instruction table: every mnemonic the listing
// format accepts and the operand shape that selects its sub-parser.
package opcode

import (
	"strings"

	"jasm/internal/types"
)

// Opcode is a JVM opcode or one of the pseudo instructions Label and Line.
type Opcode int

// Shape is the operand form an opcode takes.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeInt
	ShapeVar
	ShapeType
	ShapeField
	ShapeMethod
	ShapeJump
	ShapeLdc
	ShapeIinc
	ShapeTableSwitch
	ShapeLookupSwitch
	ShapeMultiArray
	ShapeInvokeDynamic
	ShapeLabel
	ShapeLine
)

var shapeNames = [...]string{
	ShapeNone:          "none",
	ShapeInt:           "int",
	ShapeVar:           "var",
	ShapeType:          "type",
	ShapeField:         "field",
	ShapeMethod:        "method",
	ShapeJump:          "jump",
	ShapeLdc:           "ldc",
	ShapeIinc:          "iinc",
	ShapeTableSwitch:   "tableswitch",
	ShapeLookupSwitch:  "lookupswitch",
	ShapeMultiArray:    "multianewarray",
	ShapeInvokeDynamic: "invokedynamic",
	ShapeLabel:         "label",
	ShapeLine:          "line",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}

type info struct {
	name  string
	shape Shape
}

var byName map[string]Opcode

func init() {
	byName = make(map[string]Opcode, 200)
	for op, in := range table {
		if in.name != "" {
			byName[in.name] = Opcode(op)
		}
	}
}

// Lookup resolves a mnemonic case-insensitively.
func Lookup(mnemonic string) (Opcode, bool) {
	op, ok := byName[strings.ToUpper(mnemonic)]
	return op, ok
}

// Valid reports whether op is a real opcode or a pseudo instruction.
func (op Opcode) Valid() bool {
	if op == Label || op == Line {
		return true
	}
	return op >= 0 && int(op) < len(table) && table[op].name != ""
}

// IsPseudo reports label and line entries.
func (op Opcode) IsPseudo() bool {
	return op == Label || op == Line
}

func (op Opcode) String() string {
	switch op {
	case Label:
		return "LABEL"
	case Line:
		return "LINE"
	}
	if op >= 0 && int(op) < len(table) && table[op].name != "" {
		return table[op].name
	}
	return "UNKNOWN"
}

func (op Opcode) Shape() Shape {
	switch op {
	case Label:
		return ShapeLabel
	case Line:
		return ShapeLine
	}
	if op >= 0 && int(op) < len(table) {
		return table[op].shape
	}
	return ShapeNone
}

// IsLoad reports the xLOAD variable instructions.
func (op Opcode) IsLoad() bool {
	return op >= Iload && op <= Aload
}

// IsStore reports the xSTORE variable instructions.
func (op Opcode) IsStore() bool {
	return op >= Istore && op <= Astore
}

func (op Opcode) IsReturn() bool {
	return op >= Ireturn && op <= Return
}

// IsConditional reports jumps that may fall through.
func (op Opcode) IsConditional() bool {
	return (op >= Ifeq && op <= IfAcmpne) || op == Ifnull || op == Ifnonnull
}

// EndsBlock reports instructions after which control never falls through.
func (op Opcode) EndsBlock() bool {
	switch op {
	case Goto, Ret, Tableswitch, Lookupswitch, Athrow:
		return true
	}
	return op.IsReturn()
}

// VarSort is the kind of value a variable instruction reads or writes.
// ASTORE and RET also handle return addresses; both report Object.
func (op Opcode) VarSort() types.Sort {
	switch op {
	case Iload, Istore, Iinc:
		return types.Int
	case Lload, Lstore:
		return types.Long
	case Fload, Fstore:
		return types.Float
	case Dload, Dstore:
		return types.Double
	case Aload, Astore, Ret:
		return types.Object
	}
	return types.NoSort
}

// VarType is VarSort as a concrete type; object variables report java/lang/Object.
func (op Opcode) VarType() types.Type {
	switch op.VarSort() {
	case types.Int:
		return types.IntType
	case types.Long:
		return types.LongType
	case types.Float:
		return types.FloatType
	case types.Double:
		return types.DoubleType
	case types.Object:
		return types.ObjectType
	}
	return types.Type{}
}
