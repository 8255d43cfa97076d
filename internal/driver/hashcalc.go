package driver

import (
	"cmp"
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"

	"jasm/internal/insn"
)

// combineDigest: H(content || part1 || part2 ...). parts уже в детерминированном порядке.
func combineDigest(content Digest, parts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cacheKey folds everything that changes the compiled member into the key.
// The oracle itself cannot be hashed; callers describe it through Salt.
func cacheKey(content Digest, opts *AssembleOptions) Digest {
	static := "-"
	if opts.Static != nil {
		static = fmt.Sprint(*opts.Static)
	}
	head := fmt.Sprintf("schema=%d verify=%t owner=%s static=%s\n", diskCacheSchemaVersion, opts.Verify, opts.Owner, static)
	parts := [][]byte{[]byte(head), baselineDigest(opts.Baseline), opts.Salt}
	return combineDigest(content, parts...)
}

func baselineDigest(baseline []insn.LocalVariable) []byte {
	if len(baseline) == 0 {
		return nil
	}
	sorted := slices.Clone(baseline)
	slices.SortFunc(sorted, func(a, b insn.LocalVariable) int {
		return cmp.Or(cmp.Compare(a.Index, b.Index), strings.Compare(a.Name, b.Name))
	})
	h := sha256.New()
	for _, lv := range sorted {
		_, _ = fmt.Fprintf(h, "%d %s %s\n", lv.Index, lv.Name, lv.Desc)
	}
	return h.Sum(nil)
}
