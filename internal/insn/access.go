package insn

import (
	"strings"
)

// Access is a member access/property bit set.
type Access uint16

const (
	AccPublic       Access = 0x0001
	AccPrivate      Access = 0x0002
	AccProtected    Access = 0x0004
	AccStatic       Access = 0x0008
	AccFinal        Access = 0x0010
	AccSynchronized Access = 0x0020
	AccVolatile     Access = 0x0040
	AccBridge       Access = 0x0040
	AccTransient    Access = 0x0080
	AccVarargs      Access = 0x0080
	AccNative       Access = 0x0100
	AccInterface    Access = 0x0200
	AccAbstract     Access = 0x0400
	AccStrict       Access = 0x0800
	AccSynthetic    Access = 0x1000
	AccAnnotation   Access = 0x2000
	AccEnum         Access = 0x4000
	AccMandated     Access = 0x8000
)

var modifierBits = map[string]Access{
	"public":       AccPublic,
	"private":      AccPrivate,
	"protected":    AccProtected,
	"static":       AccStatic,
	"final":        AccFinal,
	"synchronized": AccSynchronized,
	"volatile":     AccVolatile,
	"bridge":       AccBridge,
	"transient":    AccTransient,
	"varargs":      AccVarargs,
	"native":       AccNative,
	"interface":    AccInterface,
	"abstract":     AccAbstract,
	"strict":       AccStrict,
	"synthetic":    AccSynthetic,
	"annotation":   AccAnnotation,
	"enum":         AccEnum,
	"mandated":     AccMandated,
}

// ParseModifier resolves a modifier keyword case-insensitively.
func ParseModifier(name string) (Access, bool) {
	acc, ok := modifierBits[strings.ToLower(name)]
	return acc, ok
}

// printing order; 0x40 and 0x80 are spelled per member kind.
var modifierOrder = []struct {
	bit    Access
	field  string
	method string
}{
	{AccPublic, "public", "public"},
	{AccPrivate, "private", "private"},
	{AccProtected, "protected", "protected"},
	{AccStatic, "static", "static"},
	{AccFinal, "final", "final"},
	{AccSynchronized, "", "synchronized"},
	{AccVolatile, "volatile", "bridge"},
	{AccTransient, "transient", "varargs"},
	{AccNative, "", "native"},
	{AccInterface, "interface", "interface"},
	{AccAbstract, "abstract", "abstract"},
	{AccStrict, "", "strict"},
	{AccSynthetic, "synthetic", "synthetic"},
	{AccAnnotation, "annotation", "annotation"},
	{AccEnum, "enum", "enum"},
	{AccMandated, "mandated", "mandated"},
}

// Modifiers lists the keywords for acc in canonical order.
func (acc Access) Modifiers(kind Kind) []string {
	var out []string
	for _, m := range modifierOrder {
		if acc&m.bit == 0 {
			continue
		}
		name := m.method
		if kind == KindField {
			name = m.field
		}
		if name == "" {
			name = m.method
		}
		out = append(out, name)
	}
	return out
}

func (acc Access) Has(bits Access) bool {
	return acc&bits == bits
}
