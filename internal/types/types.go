// Package types models JVM field and method descriptors.
package types

import (
	"fmt"
	"strings"
)

// Sort classifies a Type. The zero Sort marks the absence of a type.
type Sort uint8

const (
	NoSort Sort = iota
	Void
	Boolean
	Char
	Byte
	Short
	Int
	Float
	Long
	Double
	Array
	Object
	Method
)

func (s Sort) String() string {
	switch s {
	case Void:
		return "void"
	case Boolean:
		return "boolean"
	case Char:
		return "char"
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Float:
		return "float"
	case Long:
		return "long"
	case Double:
		return "double"
	case Array:
		return "array"
	case Object:
		return "object"
	case Method:
		return "method"
	}
	return "none"
}

// Type is an immutable descriptor. Values are comparable with ==.
type Type struct {
	sort Sort
	desc string
}

var (
	VoidType    = Type{Void, "V"}
	BooleanType = Type{Boolean, "Z"}
	CharType    = Type{Char, "C"}
	ByteType    = Type{Byte, "B"}
	ShortType   = Type{Short, "S"}
	IntType     = Type{Int, "I"}
	FloatType   = Type{Float, "F"}
	LongType    = Type{Long, "J"}
	DoubleType  = Type{Double, "D"}

	ObjectType       = Type{Object, "Ljava/lang/Object;"}
	StringType       = Type{Object, "Ljava/lang/String;"}
	ClassType        = Type{Object, "Ljava/lang/Class;"}
	ThrowableType    = Type{Object, "Ljava/lang/Throwable;"}
	MethodTypeType   = Type{Object, "Ljava/lang/invoke/MethodType;"}
	MethodHandleType = Type{Object, "Ljava/lang/invoke/MethodHandle;"}
)

var primitives = map[byte]Type{
	'V': VoidType, 'Z': BooleanType, 'C': CharType, 'B': ByteType, 'S': ShortType,
	'I': IntType, 'F': FloatType, 'J': LongType, 'D': DoubleType,
}

// Parse validates a field or method descriptor.
func Parse(desc string) (Type, error) {
	if desc == "" {
		return Type{}, fmt.Errorf("empty descriptor")
	}
	if desc[0] == '(' {
		if _, _, err := ParseMethod(desc); err != nil {
			return Type{}, err
		}
		return Type{Method, desc}, nil
	}
	t, n, err := scan(desc, 0, true)
	if err != nil {
		return Type{}, err
	}
	if n != len(desc) {
		return Type{}, fmt.Errorf("trailing characters in descriptor %q", desc)
	}
	return t, nil
}

// ParseField validates a non-void field descriptor.
func ParseField(desc string) (Type, error) {
	t, err := Parse(desc)
	if err != nil {
		return Type{}, err
	}
	if t.sort == Void || t.sort == Method {
		return Type{}, fmt.Errorf("%q is not a field descriptor", desc)
	}
	return t, nil
}

// MustParse is Parse for descriptors known to be valid.
func MustParse(desc string) Type {
	t, err := Parse(desc)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseMethod splits a method descriptor into argument and return types.
func ParseMethod(desc string) ([]Type, Type, error) {
	if len(desc) < 3 || desc[0] != '(' {
		return nil, Type{}, fmt.Errorf("malformed method descriptor %q", desc)
	}
	var args []Type
	i := 1
	for i < len(desc) && desc[i] != ')' {
		t, n, err := scan(desc, i, false)
		if err != nil {
			return nil, Type{}, fmt.Errorf("method descriptor %q: %w", desc, err)
		}
		args = append(args, t)
		i = n
	}
	if i >= len(desc) {
		return nil, Type{}, fmt.Errorf("method descriptor %q: missing ')'", desc)
	}
	i++
	if i >= len(desc) {
		return nil, Type{}, fmt.Errorf("method descriptor %q: missing return type", desc)
	}
	ret, n, err := scan(desc, i, true)
	if err != nil {
		return nil, Type{}, fmt.Errorf("method descriptor %q: %w", desc, err)
	}
	if n != len(desc) {
		return nil, Type{}, fmt.Errorf("method descriptor %q: trailing characters", desc)
	}
	return args, ret, nil
}

// scan reads one field type (or void when allowed) starting at i and returns
// the end offset.
func scan(desc string, i int, allowVoid bool) (Type, int, error) {
	start := i
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	dims := i - start
	if dims > 255 {
		return Type{}, 0, fmt.Errorf("too many array dimensions")
	}
	if i >= len(desc) {
		return Type{}, 0, fmt.Errorf("truncated descriptor %q", desc)
	}
	switch c := desc[i]; c {
	case 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			return Type{}, 0, fmt.Errorf("unterminated class type in %q", desc)
		}
		name := desc[i+1 : i+end]
		if err := ValidateInternalName(name); err != nil {
			return Type{}, 0, err
		}
		i += end + 1
		if dims > 0 {
			return Type{Array, desc[start:i]}, i, nil
		}
		return Type{Object, desc[start:i]}, i, nil
	default:
		p, ok := primitives[c]
		if !ok {
			return Type{}, 0, fmt.Errorf("unexpected %q in descriptor %q", c, desc)
		}
		if p.sort == Void && (dims > 0 || !allowVoid) {
			return Type{}, 0, fmt.Errorf("void is not allowed here in %q", desc)
		}
		i++
		if dims > 0 {
			return Type{Array, desc[start:i]}, i, nil
		}
		return p, i, nil
	}
}

// ValidateInternalName checks a slash separated class name such as java/lang/String.
func ValidateInternalName(name string) error {
	if name == "" {
		return fmt.Errorf("empty class name")
	}
	for _, r := range name {
		switch r {
		case ';', '[', '.', '(', ')':
			return fmt.Errorf("illegal character %q in class name %q", r, name)
		}
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "//") {
		return fmt.Errorf("malformed class name %q", name)
	}
	return nil
}

// FromInternalName maps an internal name (or an array descriptor) to a Type.
func FromInternalName(name string) (Type, error) {
	if strings.HasPrefix(name, "[") {
		return ParseField(name)
	}
	if err := ValidateInternalName(name); err != nil {
		return Type{}, err
	}
	return Type{Object, "L" + name + ";"}, nil
}

// ObjectOf is FromInternalName for names known to be valid.
func ObjectOf(internalName string) Type {
	if strings.HasPrefix(internalName, "[") {
		return MustParse(internalName)
	}
	return Type{Object, "L" + internalName + ";"}
}

// ArrayOf wraps elem in dims array dimensions.
func ArrayOf(elem Type, dims int) Type {
	if dims <= 0 {
		return elem
	}
	return Type{Array, strings.Repeat("[", dims) + elem.desc}
}

func (t Type) Sort() Sort         { return t.sort }
func (t Type) Descriptor() string { return t.desc }
func (t Type) IsZero() bool       { return t.sort == NoSort }

func (t Type) String() string {
	if t.sort == NoSort {
		return "<none>"
	}
	return t.desc
}

// Size is the number of stack/local slots a value of this type occupies.
func (t Type) Size() int {
	switch t.sort {
	case NoSort, Void:
		return 0
	case Long, Double:
		return 2
	}
	return 1
}

func (t Type) IsPrimitive() bool {
	return t.sort >= Boolean && t.sort <= Double
}

func (t Type) IsReference() bool {
	return t.sort == Object || t.sort == Array
}

// IsIntLike reports the sorts the verifier treats as int.
func (t Type) IsIntLike() bool {
	return t.sort >= Boolean && t.sort <= Int
}

// InternalName is the slash separated class name for objects and the
// descriptor for arrays.
func (t Type) InternalName() string {
	switch t.sort {
	case Object:
		return t.desc[1 : len(t.desc)-1]
	case Array:
		return t.desc
	}
	return ""
}

// Dimensions returns the array depth.
func (t Type) Dimensions() int {
	n := 0
	for n < len(t.desc) && t.desc[n] == '[' {
		n++
	}
	if t.sort != Array {
		return 0
	}
	return n
}

// ElementType strips every array dimension.
func (t Type) ElementType() Type {
	if t.sort != Array {
		return t
	}
	return MustParse(t.desc[t.Dimensions():])
}

// ComponentType strips one array dimension.
func (t Type) ComponentType() Type {
	if t.sort != Array {
		return Type{}
	}
	return MustParse(t.desc[1:])
}

// Arguments returns argument types of a method descriptor.
func (t Type) Arguments() []Type {
	if t.sort != Method {
		return nil
	}
	args, _, _ := ParseMethod(t.desc)
	return args
}

// Return returns the return type of a method descriptor.
func (t Type) Return() Type {
	if t.sort != Method {
		return Type{}
	}
	_, ret, _ := ParseMethod(t.desc)
	return ret
}

// ArgumentsSize counts the slots the arguments occupy (receiver excluded).
func ArgumentsSize(args []Type) int {
	n := 0
	for _, a := range args {
		n += a.Size()
	}
	return n
}

// Computational normalises int-like sorts to int.
func (t Type) Computational() Type {
	if t.IsIntLike() {
		return IntType
	}
	return t
}
