package vars

import (
	"jasm/internal/hierarchy"
	"jasm/internal/types"
)

const objectDesc = "Ljava/lang/Object;"

// Infer picks one descriptor for a local that holds each of descs over its
// lifetime. Primitives must agree; references widen to their nearest common
// ancestor, and arrays of differing depth widen to Object.
func Infer(o hierarchy.Oracle, descs ...string) string {
	out := ""
	for _, d := range descs {
		if d == "" {
			continue
		}
		if out == "" {
			out = d
			continue
		}
		out = merge(o, out, d)
	}
	return out
}

func merge(o hierarchy.Oracle, a, b string) string {
	if a == b {
		return a
	}
	ta, errA := types.ParseField(a)
	tb, errB := types.ParseField(b)
	if errA != nil || errB != nil {
		return objectDesc
	}
	if !ta.IsReference() || !tb.IsReference() {
		if ta.Computational() == tb.Computational() {
			return ta.Computational().Descriptor()
		}
		return objectDesc
	}
	if ta.Dimensions() != tb.Dimensions() {
		return objectDesc
	}
	if o == nil {
		return objectDesc
	}
	name, _ := o.CommonAncestor(ta.InternalName(), tb.InternalName())
	if name == "" {
		return objectDesc
	}
	t, err := types.FromInternalName(name)
	if err != nil {
		return objectDesc
	}
	return t.Descriptor()
}
