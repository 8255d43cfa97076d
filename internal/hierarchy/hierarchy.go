// Package hierarchy answers the two class hierarchy questions the verifier
// asks: is A an ancestor of B, and what is their nearest common ancestor.
// Classes the graph has never seen yield "no information" rather than an
// error.
package hierarchy

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/tidwall/tinylru"
)

// Oracle is the read-only hierarchy view the verifier depends on.
// Implementations must be safe for concurrent queries.
type Oracle interface {
	// IsAncestor reports whether ancestor is child or one of its supertypes.
	// known is false when the answer could not be decided.
	IsAncestor(ancestor, child string) (is, known bool)
	// CommonAncestor returns the nearest shared superclass; ok is false when
	// part of either chain is unknown.
	CommonAncestor(a, b string) (string, bool)
}

// ClassInfo is one node of the graph. Names are internal names.
type ClassInfo struct {
	Name       string   `toml:"name"`
	Super      string   `toml:"super"`
	Interfaces []string `toml:"interfaces"`
	Interface  bool     `toml:"interface"`
}

const defaultCacheSize = 512

// Graph is a concurrent class table with a memo of common ancestor answers.
type Graph struct {
	classes cmap.ConcurrentMap[string, ClassInfo]
	cache   tinylru.LRU
	// gen invalidates cached answers whenever the table changes
	gen atomic.Uint64
}

// New returns a graph seeded with the common platform classes.
func New() *Graph {
	g := Empty()
	for _, c := range builtins {
		g.classes.Set(c.Name, c)
	}
	return g
}

// Empty returns a graph that knows nothing but java/lang/Object.
func Empty() *Graph {
	g := &Graph{classes: cmap.New[ClassInfo]()}
	g.cache.Resize(defaultCacheSize)
	g.classes.Set(objectName, ClassInfo{Name: objectName})
	return g
}

// Add registers or replaces classes.
func (g *Graph) Add(classes ...ClassInfo) {
	for _, c := range classes {
		if c.Super == "" && c.Name != objectName {
			c.Super = objectName
		}
		g.classes.Set(c.Name, c)
	}
	g.gen.Add(1)
}

// Lookup returns what the graph knows about name.
func (g *Graph) Lookup(name string) (ClassInfo, bool) {
	return g.classes.Get(name)
}

// Len is the number of known classes.
func (g *Graph) Len() int {
	return g.classes.Count()
}

type tableFile struct {
	Class []ClassInfo `toml:"class"`
}

// LoadFile merges a TOML class table:
//
//	[[class]]
//	name = "com/example/Base"
//	super = "java/lang/Object"
//	interfaces = ["java/lang/Runnable"]
func (g *Graph) LoadFile(path string) error {
	var tf tableFile
	md, err := toml.DecodeFile(path, &tf)
	if err != nil {
		return fmt.Errorf("hierarchy %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("hierarchy %s: unknown keys %v", path, undecoded)
	}
	for i, c := range tf.Class {
		if c.Name == "" {
			return fmt.Errorf("hierarchy %s: class #%d has no name", path, i+1)
		}
	}
	g.Add(tf.Class...)
	return nil
}

// LoadString is LoadFile for in-memory tables.
func (g *Graph) LoadString(data string) error {
	var tf tableFile
	md, err := toml.Decode(data, &tf)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys %v", undecoded)
	}
	g.Add(tf.Class...)
	return nil
}

// IsInterface reports whether name is a known interface.
func (g *Graph) IsInterface(name string) (bool, bool) {
	info, ok := g.classes.Get(name)
	if !ok {
		return false, false
	}
	return info.Interface, true
}

func isArray(name string) bool { return strings.HasPrefix(name, "[") }

// component strips one array dimension; ok is false for primitive components.
func component(desc string) (string, bool) {
	c := desc[1:]
	switch {
	case strings.HasPrefix(c, "["):
		return c, true
	case strings.HasPrefix(c, "L") && strings.HasSuffix(c, ";"):
		return c[1 : len(c)-1], true
	}
	return c, false
}

func (g *Graph) IsAncestor(ancestor, child string) (bool, bool) {
	if ancestor == child || ancestor == objectName {
		return true, true
	}
	if isArray(child) {
		switch ancestor {
		case "java/lang/Cloneable", "java/io/Serializable":
			return true, true
		}
		if !isArray(ancestor) {
			return false, true
		}
		ac, aref := component(ancestor)
		cc, cref := component(child)
		if !aref || !cref {
			return ac == cc, true
		}
		return g.IsAncestor(ac, cc)
	}
	if isArray(ancestor) {
		return false, true
	}
	return g.walk(ancestor, child)
}

// walk searches the supertypes of child breadth first.
func (g *Graph) walk(ancestor, child string) (bool, bool) {
	known := true
	seen := map[string]bool{child: true}
	queue := []string{child}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		info, ok := g.classes.Get(name)
		if !ok {
			known = false
			continue
		}
		next := info.Interfaces
		if info.Super != "" {
			next = append([]string{info.Super}, next...)
		}
		for _, s := range next {
			if s == ancestor {
				return true, true
			}
			if !seen[s] {
				seen[s] = true
				queue = append(queue, s)
			}
		}
	}
	return false, known
}

// superChain lists name and its superclasses up to java/lang/Object.
func (g *Graph) superChain(name string) ([]string, bool) {
	var chain []string
	seen := map[string]bool{}
	for name != "" && !seen[name] {
		seen[name] = true
		chain = append(chain, name)
		if name == objectName {
			return chain, true
		}
		info, ok := g.classes.Get(name)
		if !ok {
			return chain, false
		}
		name = info.Super
		if name == "" {
			name = objectName
		}
	}
	return chain, name == "" || name == objectName
}

func (g *Graph) CommonAncestor(a, b string) (string, bool) {
	if a == b {
		return a, true
	}
	key := fmt.Sprintf("%d\x00%s\x00%s", g.gen.Load(), a, b)
	if v, ok := g.cache.Get(key); ok {
		r := v.(cached)
		return r.name, r.known
	}
	name, known := g.commonAncestor(a, b)
	g.cache.Set(key, cached{name: name, known: known})
	return name, known
}

type cached struct {
	name  string
	known bool
}

func (g *Graph) commonAncestor(a, b string) (string, bool) {
	if isArray(a) || isArray(b) {
		if !isArray(a) || !isArray(b) {
			return objectName, true
		}
		ac, aref := component(a)
		bc, bref := component(b)
		if !aref || !bref {
			return objectName, true
		}
		common, known := g.CommonAncestor(ac, bc)
		if isArray(common) {
			return "[" + common, known
		}
		return "[L" + common + ";", known
	}
	if is, known := g.IsAncestor(a, b); is && known {
		return a, true
	}
	if is, known := g.IsAncestor(b, a); is && known {
		return b, true
	}
	ai, aok := g.classes.Get(a)
	bi, bok := g.classes.Get(b)
	if (aok && ai.Interface) || (bok && bi.Interface) {
		return objectName, aok && bok
	}
	chainA, knownA := g.superChain(a)
	chainB, knownB := g.superChain(b)
	inB := make(map[string]bool, len(chainB))
	for _, n := range chainB {
		inB[n] = true
	}
	for _, n := range chainA {
		if inB[n] && n != objectName {
			return n, true
		}
	}
	return objectName, knownA && knownB
}
