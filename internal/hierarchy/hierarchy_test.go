package hierarchy

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAncestorBuiltins(t *testing.T) {
	g := New()
	cases := []struct {
		ancestor, child string
		is, known       bool
	}{
		{"java/lang/Object", "java/lang/String", true, true},
		{"java/lang/Throwable", "java/io/FileNotFoundException", true, true},
		{"java/lang/CharSequence", "java/lang/StringBuilder", true, true},
		{"java/lang/AutoCloseable", "java/io/PrintStream", true, true},
		{"java/lang/String", "java/lang/Object", false, true},
		{"java/lang/Integer", "java/lang/Long", false, true},
		{"java/lang/Exception", "com/example/Unknown", false, false},
		{"java/lang/Object", "[I", true, true},
		{"java/lang/Cloneable", "[Ljava/lang/String;", true, true},
		{"[Ljava/lang/Object;", "[Ljava/lang/String;", true, true},
		{"[Ljava/lang/String;", "[Ljava/lang/Object;", false, true},
		{"[I", "[J", false, true},
		{"[Ljava/lang/String;", "java/lang/String", false, true},
	}
	for _, c := range cases {
		is, known := g.IsAncestor(c.ancestor, c.child)
		assert.Equal(t, c.is, is, "%s <- %s", c.ancestor, c.child)
		assert.Equal(t, c.known, known, "%s <- %s", c.ancestor, c.child)
	}
}

func TestCommonAncestor(t *testing.T) {
	g := New()
	cases := []struct {
		a, b, want string
		known      bool
	}{
		{"java/lang/Integer", "java/lang/Long", "java/lang/Number", true},
		{"java/lang/IllegalArgumentException", "java/lang/NullPointerException", "java/lang/RuntimeException", true},
		{"java/io/IOException", "java/lang/RuntimeException", "java/lang/Exception", true},
		{"java/lang/String", "java/lang/Integer", "java/lang/Object", true},
		{"java/lang/Exception", "java/lang/RuntimeException", "java/lang/Exception", true},
		{"java/util/List", "java/util/ArrayList", "java/util/List", true},
		{"java/util/List", "java/util/Set", "java/lang/Object", true},
		{"[Ljava/lang/Integer;", "[Ljava/lang/Long;", "[Ljava/lang/Number;", true},
		{"[I", "[J", "java/lang/Object", true},
		{"[I", "java/lang/String", "java/lang/Object", true},
		{"com/example/A", "java/lang/String", "java/lang/Object", false},
	}
	for _, c := range cases {
		got, known := g.CommonAncestor(c.a, c.b)
		assert.Equal(t, c.want, got, "%s ^ %s", c.a, c.b)
		assert.Equal(t, c.known, known, "%s ^ %s", c.a, c.b)
		// second lookup is served from the cache
		again, _ := g.CommonAncestor(c.a, c.b)
		assert.Equal(t, got, again)
	}
}

func TestAddInvalidatesCache(t *testing.T) {
	g := New()
	got, known := g.CommonAncestor("com/example/A", "com/example/B")
	assert.Equal(t, "java/lang/Object", got)
	assert.False(t, known)

	g.Add(
		ClassInfo{Name: "com/example/Base", Super: "java/lang/Exception"},
		ClassInfo{Name: "com/example/A", Super: "com/example/Base"},
		ClassInfo{Name: "com/example/B", Super: "com/example/Base"},
	)
	got, known = g.CommonAncestor("com/example/A", "com/example/B")
	assert.Equal(t, "com/example/Base", got)
	assert.True(t, known)
	is, known := g.IsAncestor("java/lang/Throwable", "com/example/A")
	assert.True(t, is)
	assert.True(t, known)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classes.toml")
	data := `
[[class]]
name = "com/example/Shape"
interface = true

[[class]]
name = "com/example/Circle"
super = "java/lang/Object"
interfaces = ["com/example/Shape"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	g := New()
	require.NoError(t, g.LoadFile(path))

	info, ok := g.Lookup("com/example/Shape")
	require.True(t, ok)
	assert.True(t, info.Interface)
	is, known := g.IsAncestor("com/example/Shape", "com/example/Circle")
	assert.True(t, is)
	assert.True(t, known)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[class]]\nname = \"x/Y\"\nparent = \"z\"\n"), 0o600))
	assert.ErrorContains(t, g.LoadFile(bad), "unknown keys")
}

func TestConcurrentQueries(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				g.Add(ClassInfo{Name: "gen/C" + string(rune('A'+i)), Super: "java/lang/Exception"})
			}
			for j := 0; j < 100; j++ {
				got, _ := g.CommonAncestor("java/lang/Integer", "java/lang/Double")
				assert.Equal(t, "java/lang/Number", got)
			}
		}(i)
	}
	wg.Wait()
	assert.Greater(t, g.Len(), len(builtins))
}

func TestIsInterface(t *testing.T) {
	g := New()
	is, known := g.IsInterface("java/lang/Runnable")
	assert.True(t, known)
	assert.True(t, is)
	is, known = g.IsInterface("java/lang/String")
	assert.True(t, known)
	assert.False(t, is)
	_, known = g.IsInterface("com/example/Missing")
	assert.False(t, known)
}
