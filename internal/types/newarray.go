package types

// Operand codes of NEWARRAY.
const (
	TBoolean = 4
	TChar    = 5
	TFloat   = 6
	TDouble  = 7
	TByte    = 8
	TShort   = 9
	TInt     = 10
	TLong    = 11
)

var newArrayTypes = map[int32]Type{
	TBoolean: BooleanType,
	TChar:    CharType,
	TFloat:   FloatType,
	TDouble:  DoubleType,
	TByte:    ByteType,
	TShort:   ShortType,
	TInt:     IntType,
	TLong:    LongType,
}

var newArrayNames = map[string]int32{
	"boolean": TBoolean,
	"char":    TChar,
	"float":   TFloat,
	"double":  TDouble,
	"byte":    TByte,
	"short":   TShort,
	"int":     TInt,
	"long":    TLong,
}

// NewArrayElement maps a NEWARRAY operand code to its element type.
func NewArrayElement(code int32) (Type, bool) {
	t, ok := newArrayTypes[code]
	return t, ok
}

// NewArrayCode resolves a NEWARRAY operand written either as a primitive
// descriptor ("I") or as a Java keyword ("int").
func NewArrayCode(s string) (int32, bool) {
	if code, ok := newArrayNames[s]; ok {
		return code, true
	}
	if len(s) == 1 {
		for code, t := range newArrayTypes {
			if t.desc == s {
				return code, true
			}
		}
	}
	return 0, false
}
