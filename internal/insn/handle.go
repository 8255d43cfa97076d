package insn

import (
	"fmt"
	"strings"
)

// HandleTag is the reference kind of a method handle.
type HandleTag uint8

const (
	HGetField HandleTag = iota + 1
	HGetStatic
	HPutField
	HPutStatic
	HInvokeVirtual
	HInvokeStatic
	HInvokeSpecial
	HNewInvokeSpecial
	HInvokeInterface
)

var handleTagNames = [...]string{
	HGetField:         "H_GETFIELD",
	HGetStatic:        "H_GETSTATIC",
	HPutField:         "H_PUTFIELD",
	HPutStatic:        "H_PUTSTATIC",
	HInvokeVirtual:    "H_INVOKEVIRTUAL",
	HInvokeStatic:     "H_INVOKESTATIC",
	HInvokeSpecial:    "H_INVOKESPECIAL",
	HNewInvokeSpecial: "H_NEWINVOKESPECIAL",
	HInvokeInterface:  "H_INVOKEINTERFACE",
}

func (t HandleTag) String() string {
	if t >= HGetField && t <= HInvokeInterface {
		return handleTagNames[t]
	}
	return fmt.Sprintf("H_%d", t)
}

// ParseHandleTag resolves names such as H_INVOKESTATIC.
func ParseHandleTag(s string) (HandleTag, bool) {
	s = strings.ToUpper(s)
	for t := HGetField; t <= HInvokeInterface; t++ {
		if handleTagNames[t] == s {
			return t, true
		}
	}
	return 0, false
}

// IsField reports the field access kinds, whose Desc is a field descriptor.
func (t HandleTag) IsField() bool {
	return t >= HGetField && t <= HPutStatic
}

// Handle references a field or method for constants and bootstrap methods.
type Handle struct {
	Tag   HandleTag `msgpack:"tag" json:"tag"`
	Owner string    `msgpack:"owner" json:"owner"`
	Name  string    `msgpack:"name" json:"name"`
	Desc  string    `msgpack:"desc" json:"desc"`
	Itf   bool      `msgpack:"itf,omitempty" json:"itf,omitempty"`
}

// MetaFactory is the bootstrap handle javac emits for lambdas and method references.
var MetaFactory = Handle{
	Tag:   HInvokeStatic,
	Owner: "java/lang/invoke/LambdaMetafactory",
	Name:  "metafactory",
	Desc: "(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;" +
		"Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)" +
		"Ljava/lang/invoke/CallSite;",
}
