package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasm/internal/buildpipeline"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/source"
	"jasm/internal/trace"
)

const addListing = `DEFINE static add(I a, I b)I
ILOAD a
ILOAD b
IADD
IRETURN
`

func writeListing(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestAssembleFile(t *testing.T) {
	path := writeListing(t, t.TempDir(), "add.jasm", addListing)

	res, err := AssembleFile(context.Background(), source.NewFileSet(), path, AssembleOptions{Verify: true})
	require.NoError(t, err)
	require.False(t, res.Failed(), "%v", res.Bag.Items())

	m := res.Member()
	assert.Equal(t, 2, m.MaxStack)
	assert.Equal(t, 2, m.MaxLocals)
	assert.Equal(t, "method add(II)I: 6 insns, max_stack=2, max_locals=2, 2 locals, 0 handlers", Describe(m))
	assert.True(t, res.Timings.Has(buildpipeline.StageParse))
	assert.True(t, res.Timings.Has(buildpipeline.StageVerify))
}

func TestAssembleReportsSyntaxErrors(t *testing.T) {
	fs := source.NewFileSet()
	res := AssembleText(context.Background(), fs, "bad.jasm", "DEFINE static m()V\nFROB 1\nRETURN\nGOTO\n", AssembleOptions{})

	require.True(t, res.Failed())
	items := res.Bag.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Line())
	assert.Equal(t, diag.SynUnknownInstruction, items[0].Code)
	assert.Equal(t, 4, items[1].Line())
	assert.Equal(t, res.FileID, items[0].Primary.File)
}

func TestAssembleReportsVerificationErrors(t *testing.T) {
	res := AssembleText(context.Background(), source.NewFileSet(), "m.jasm", "DEFINE static m()I\nICONST_0\nLCONST_0\nIADD\nIRETURN\n", AssembleOptions{Verify: true})

	require.True(t, res.Failed())
	require.Len(t, res.Bag.Items(), 1)
	d := res.Bag.Items()[0]
	assert.Equal(t, 4, d.Line())
	assert.Equal(t, diag.SevError, d.Severity)
	assert.Equal(t, "VER", d.Code.ID()[:3])
}

func TestAssembleMissingFile(t *testing.T) {
	fs := source.NewFileSet()
	path := filepath.Join(t.TempDir(), "nope.jasm")
	res, err := AssembleFile(context.Background(), fs, path, AssembleOptions{})
	require.NoError(t, err)

	require.True(t, res.Failed())
	d := res.Bag.Items()[0]
	assert.Equal(t, diag.IOLoadFileError, d.Code)
	assert.Equal(t, filepath.ToSlash(path), fs.Get(d.Primary.File).Path)
}

func TestAssembleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AssembleFile(ctx, source.NewFileSet(), "x.jasm", AssembleOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssembleDir(t *testing.T) {
	dir := t.TempDir()
	writeListing(t, dir, "a/add.jasm", addListing)
	writeListing(t, dir, "b/bad.jasm", "DEFINE static m()V\nGOTO nowhere\n")
	writeListing(t, dir, "c.jasm", "DEFINE static c()V\nRETURN\n")
	writeListing(t, dir, "notes.txt", "ignored")
	out := t.TempDir()

	rec := &buildpipeline.Recorder{}
	batch, err := AssembleDir(context.Background(), dir, 2, AssembleOptions{
		Verify:   true,
		Progress: rec,
		Write: func(res *AssembleResult) error {
			return WriteMember(OutputPath(res.Path, out, FormatMsgpack), res.Member(), FormatMsgpack)
		},
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, 1, batch.Failed())
	assert.True(t, strings.HasSuffix(batch.Results[1].Path, "b/bad.jasm"))
	assert.Equal(t, diag.AsmUnresolvedLabel, batch.Results[1].Bag.Items()[0].Code)
	assert.True(t, batch.Timings.Has(buildpipeline.StageWrite))

	last, ok := rec.Last(batch.Results[0].Path)
	require.True(t, ok)
	assert.Equal(t, buildpipeline.StatusDone, last.Status)
	last, _ = rec.Last(batch.Results[1].Path)
	assert.Equal(t, buildpipeline.StatusError, last.Status)

	m, err := LoadMember(filepath.Join(out, "add.mp"))
	require.NoError(t, err)
	assert.Equal(t, Describe(batch.Results[0].Member()), Describe(m))
	_, err = os.Stat(filepath.Join(out, "bad.mp"))
	assert.True(t, os.IsNotExist(err))
}

func TestAssembleDirEmpty(t *testing.T) {
	batch, err := AssembleDir(context.Background(), t.TempDir(), 0, AssembleOptions{})
	require.NoError(t, err)
	assert.Empty(t, batch.Results)
	assert.Zero(t, batch.Failed())
}

func TestDiskCacheShortCuts(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)
	path := writeListing(t, t.TempDir(), "add.jasm", addListing)
	opts := AssembleOptions{Verify: true, Cache: cache}

	first, err := AssembleFile(context.Background(), source.NewFileSet(), path, opts)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := AssembleFile(context.Background(), source.NewFileSet(), path, opts)
	require.NoError(t, err)
	require.True(t, second.Cached)
	assert.Equal(t, Describe(first.Member()), Describe(second.Member()))
	assert.Equal(t, first.Output.Lines, second.Output.Lines)
	assert.Equal(t, first.Member().Locals, second.Member().Locals)

	opts.Verify = false
	third, err := AssembleFile(context.Background(), source.NewFileSet(), path, opts)
	require.NoError(t, err)
	assert.False(t, third.Cached, "options are part of the key")

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(addListing, "IADD", "ISUB", 1)), 0o600))
	opts.Verify = true
	fourth, err := AssembleFile(context.Background(), source.NewFileSet(), path, opts)
	require.NoError(t, err)
	assert.False(t, fourth.Cached, "content is part of the key")
}

func TestDiskCache(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	require.NoError(t, err)
	key := combineDigest(Digest{1}, []byte("x"))

	var got DiskPayload
	hit, err := cache.Get(key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	m := &insn.Member{Kind: insn.KindMethod, Name: "m", Desc: "()V", Instructions: []insn.Instruction{{Op: 0xb1}}}
	require.NoError(t, cache.Put(key, &DiskPayload{Path: "m.jasm", Member: m, Lines: []int{2}}))
	hit, err = cache.Get(key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "m.jasm", got.Path)
	assert.Equal(t, []int{2}, got.Lines)

	require.NoError(t, cache.DropAll())
	hit, err = cache.Get(key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	var none *DiskCache
	require.NoError(t, none.Put(key, &DiskPayload{}))
	hit, err = none.Get(key, &got)
	assert.False(t, hit)
	assert.NoError(t, err)
}

func TestCacheKey(t *testing.T) {
	yes, no := true, false
	base := cacheKey(Digest{}, &AssembleOptions{})
	assert.Equal(t, base, cacheKey(Digest{}, &AssembleOptions{Logger: nil}))
	for name, opts := range map[string]AssembleOptions{
		"verify":   {Verify: true},
		"owner":    {Owner: "a/B"},
		"static":   {Static: &yes},
		"instance": {Static: &no},
		"salt":     {Salt: []byte("classes.toml")},
		"baseline": {Baseline: []insn.LocalVariable{{Name: "x", Index: 1, Desc: "I"}}},
	} {
		assert.NotEqual(t, base, cacheKey(Digest{}, &opts), name)
	}
	a := []insn.LocalVariable{{Name: "x", Index: 1}, {Name: "y", Index: 2}}
	b := []insn.LocalVariable{{Name: "y", Index: 2}, {Name: "x", Index: 1}}
	assert.Equal(t, baselineDigest(a), baselineDigest(b))
}

func TestMemberFiles(t *testing.T) {
	res := AssembleText(context.Background(), source.NewFileSet(), "m.jasm", addListing, AssembleOptions{Verify: true})
	require.False(t, res.Failed())
	dir := t.TempDir()

	for _, format := range []MemberFormat{FormatMsgpack, FormatJSON} {
		path := OutputPath("src/add.jasm", dir, format)
		require.NoError(t, WriteMember(path, res.Member(), format))
		m, err := LoadMember(path)
		require.NoError(t, err, format)
		assert.Equal(t, res.Member().Locals, m.Locals, format)
		assert.Equal(t, len(res.Member().Instructions), len(m.Instructions), format)
	}
	assert.Equal(t, filepath.Join(dir, "add.json"), OutputPath("src/add.jasm", dir, FormatJSON))
	assert.Equal(t, "src/add.mp", OutputPath("src/add.jasm", "", FormatMsgpack))

	f, err := ParseMemberFormat("MP")
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, f)
	_, err = ParseMemberFormat("xml")
	assert.Error(t, err)
}

func TestDisassembleFile(t *testing.T) {
	res := AssembleText(context.Background(), source.NewFileSet(), "m.jasm", addListing, AssembleOptions{Verify: true})
	require.False(t, res.Failed())
	path := filepath.Join(t.TempDir(), "add.json")
	require.NoError(t, WriteMember(path, res.Member(), FormatJSON))

	out := DisassembleFile(context.Background(), source.NewFileSet(), path, DisassembleOptions{IndyAlias: true})
	require.False(t, out.Bag.HasErrors(), "%v", out.Bag.Items())
	assert.Equal(t, "DEFINE static add(I a, I b)I\nA:\nILOAD a\nILOAD b\nIADD\nIRETURN\nB:\n", out.Text)

	broken := filepath.Join(t.TempDir(), "broken.mp")
	require.NoError(t, os.WriteFile(broken, []byte{0xc1}, 0o600))
	fs := source.NewFileSet()
	out = DisassembleFile(context.Background(), fs, broken, DisassembleOptions{})
	require.True(t, out.Bag.HasErrors())
	d := out.Bag.Items()[0]
	assert.Equal(t, diag.IODecodeMember, d.Code)
	assert.Equal(t, filepath.ToSlash(broken), fs.Get(d.Primary.File).Path)
}

func TestWriteFrames(t *testing.T) {
	res := AssembleText(context.Background(), source.NewFileSet(), "m.jasm", addListing, AssembleOptions{Verify: true})
	require.False(t, res.Failed())

	var buf bytes.Buffer
	require.NoError(t, WriteFrames(&buf, res.Output))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[3], "   4   IADD"), lines[3])
	assert.Contains(t, lines[3], "stack [")

	assert.Error(t, WriteFrames(&buf, nil))
}

func TestParse(t *testing.T) {
	path := writeListing(t, t.TempDir(), "m.jasm", "DEFINE static m()V\nFROB\nRETURN\n")
	res, err := Parse(context.Background(), path, 10)
	require.NoError(t, err)
	assert.False(t, res.Result.Success())
	require.Equal(t, 1, res.Bag.Len())
	assert.Equal(t, 2, res.Bag.Items()[0].Line())
	assert.Len(t, res.Result.Root.Nodes, 2)

	_, err = Parse(context.Background(), filepath.Join(t.TempDir(), "missing.jasm"), 10)
	assert.Error(t, err)

	text := ParseText(context.Background(), "<stdin>", "DEFINE static m()V\nRETURN\n", 0)
	assert.True(t, text.Result.Success())
	assert.Equal(t, "<stdin>", text.File.Path)
}

func TestObservingTracerForwardsWhatInnerAccepts(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelPhase)
	var events []PhaseEvent
	ctx := trace.WithTracer(context.Background(), observe(ring, func(ev PhaseEvent) { events = append(events, ev) }))

	mctx, member := trace.Start(ctx, trace.ScopeMember, "m")
	_, pass := trace.Start(mctx, trace.ScopePass, "verify")
	pass.End("")
	member.End("")

	require.Len(t, events, 2)
	assert.Equal(t, PhaseEvent{Name: "verify", Status: PhaseStart}, events[0])
	assert.Equal(t, PhaseEnd, events[1].Status)
	// the member span is below the ring's level
	for _, ev := range ring.Snapshot() {
		assert.Equal(t, trace.ScopePass, ev.Scope)
	}
	assert.Len(t, ring.Snapshot(), 2)
}
