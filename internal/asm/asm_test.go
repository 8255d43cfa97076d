package asm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasm/internal/analysis"
	"jasm/internal/diag"
	"jasm/internal/hierarchy"
	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/parser"
	"jasm/internal/trace"
)

func compile(t *testing.T, text string, opts Options) *Output {
	t.Helper()
	out, err := Compile(context.Background(), parser.Parse(text, parser.Options{}), opts)
	require.NoError(t, err)
	return out
}

func compileErr(t *testing.T, text string, opts Options) *CompileError {
	t.Helper()
	_, err := Compile(context.Background(), parser.Parse(text, parser.Options{}), opts)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	return ce
}

func ops(m *insn.Member) []opcode.Opcode {
	out := make([]opcode.Opcode, len(m.Instructions))
	for i := range m.Instructions {
		out[i] = m.Instructions[i].Op
	}
	return out
}

func TestCompileConstantReturn(t *testing.T) {
	out := compile(t, "DEFINE public static one()I\niconst_1\nireturn", Options{Verify: true})
	m := out.Member
	assert.Equal(t, "one", m.Name)
	assert.Equal(t, "()I", m.Desc)
	assert.Equal(t, insn.AccPublic|insn.AccStatic, m.Access)
	assert.Equal(t, []opcode.Opcode{opcode.Iconst1, opcode.Ireturn}, ops(m))
	assert.Equal(t, 0, m.MaxLocals)
	assert.Equal(t, 1, m.MaxStack)
	assert.Empty(t, m.Locals)
	assert.Equal(t, []int{2, 3}, out.Lines)
	require.NoError(t, m.Validate())
}

func TestWithoutVerifyMaxStackStaysZero(t *testing.T) {
	out := compile(t, "DEFINE static one()I\niconst_1\nireturn", Options{})
	assert.Equal(t, 0, out.Member.MaxStack)
	assert.Nil(t, out.Frames)
}

func TestUnresolvedJumpLabel(t *testing.T) {
	_, err := Compile(context.Background(), parser.Parse("DEFINE static m()V\ngoto MISSING\nreturn", parser.Options{}), Options{})
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, diag.AsmUnresolvedLabel, ce.Code)
	assert.Equal(t, 2, ce.Line)
	assert.Contains(t, ce.Message, "MISSING")

	diags := Diagnostics(err, 1)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Primary.Line)
}

func TestVerificationErrorPointsAtLine(t *testing.T) {
	text := "DEFINE static m()Ljava/lang/Object;\naload 0\nireturn"
	_, err := Compile(context.Background(), parser.Parse(text, parser.Options{}), Options{Verify: true})
	require.Error(t, err)
	var ve *analysis.VerificationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 3, ve.Line)
	assert.Equal(t, diag.VerTypeMismatch, ve.Code)

	diags := Diagnostics(err, 1)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.VerTypeMismatch, diags[0].Code)
}

func TestParseFailureCarriesProblems(t *testing.T) {
	ce := compileErr(t, "DEFINE static m()V\nbogus\nreturn", Options{})
	assert.Equal(t, diag.AsmParseFailed, ce.Code)
	require.Len(t, ce.Problems, 1)
	assert.Equal(t, 2, ce.Problems[0].Line)

	diags := Diagnostics(ce, 3)
	require.Len(t, diags, 1)
	assert.Equal(t, ce.Problems[0].Code, diags[0].Code)
	assert.Equal(t, 2, diags[0].Primary.Line)
}

func TestDefinitionCount(t *testing.T) {
	ce := compileErr(t, "iconst_1\nireturn", Options{})
	assert.Equal(t, diag.AsmNoDefinition, ce.Code)
	assert.Equal(t, -1, ce.Line)

	ce = compileErr(t, "DEFINE static a()V\nDEFINE static b()V\nreturn", Options{})
	assert.Equal(t, diag.AsmMultipleDefs, ce.Code)
	assert.Equal(t, 2, ce.Line)
}

func TestDuplicateLabel(t *testing.T) {
	ce := compileErr(t, "DEFINE static m()V\nA:\nnop\nA:\nreturn", Options{})
	assert.Equal(t, diag.AsmDuplicateLabel, ce.Code)
	assert.Equal(t, 4, ce.Line)
}

func TestTryCatchNeedsLabels(t *testing.T) {
	ce := compileErr(t, "DEFINE static m()V\nTRY A B CATCH(*) C\nA:\nreturn", Options{})
	assert.Equal(t, diag.AsmUnresolvedLabel, ce.Code)
	assert.Equal(t, 2, ce.Line)

	out := compile(t, `DEFINE static m()V
TRY A B CATCH(java/io/IOException) C
A:
nop
B:
return
C:
athrow`, Options{Verify: true})
	require.Len(t, out.Member.TryCatches, 1)
	tc := out.Member.TryCatches[0]
	assert.Equal(t, "java/io/IOException", tc.Type)
	pos := out.Member.LabelPositions()
	assert.Less(t, pos[tc.Start], pos[tc.End])
	assert.Less(t, pos[tc.End], pos[tc.Handler])
}

func TestEmptyAndAbstractBodies(t *testing.T) {
	ce := compileErr(t, "DEFINE static m()V", Options{})
	assert.Equal(t, diag.AsmEmptyBody, ce.Code)
	assert.Equal(t, 1, ce.Line)

	out := compile(t, "DEFINE public abstract m()V", Options{})
	assert.Empty(t, out.Member.Instructions)
	assert.True(t, out.Member.IsAbstract())
}

func TestFields(t *testing.T) {
	out := compile(t, "DEFINE static final J MAX\nVALUE 9000000000L\nSIGNATURE J", Options{})
	m := out.Member
	assert.Equal(t, insn.KindField, m.Kind)
	require.NotNil(t, m.Value)
	assert.Equal(t, insn.LongConst(9000000000), *m.Value)
	assert.Equal(t, "J", m.Signature)

	cases := []struct {
		text string
		code diag.Code
		line int
	}{
		{"DEFINE static I count\nreturn", diag.AsmFieldHasCode, 2},
		{"DEFINE static J big\nVALUE 5", diag.AsmBadDefaultValue, 2},
		{"DEFINE static B small\nVALUE 300", diag.AsmBadDefaultValue, 2},
		{"DEFINE static Z flag\nVALUE 2", diag.AsmBadDefaultValue, 2},
		{"DEFINE static Ljava/lang/Object; o\nVALUE \"x\"", diag.AsmBadDefaultValue, 2},
		{"DEFINE static m()V\nVALUE 1\nreturn", diag.AsmBadDefaultValue, 2},
	}
	for _, tc := range cases {
		ce := compileErr(t, tc.text, Options{})
		assert.Equal(t, tc.code, ce.Code, tc.text)
		assert.Equal(t, tc.line, ce.Line, tc.text)
	}

	out = compile(t, "DEFINE static Ljava/lang/String; name\nVALUE \"x\"", Options{})
	assert.Equal(t, insn.StringConst("x"), *out.Member.Value)
}

func TestMetadata(t *testing.T) {
	out := compile(t, `DEFINE public static m()V
SIGNATURE ()V
THROWS java/io/IOException
THROWS java/lang/InterruptedException
return`, Options{})
	assert.Equal(t, "()V", out.Member.Signature)
	assert.Equal(t, []string{"java/io/IOException", "java/lang/InterruptedException"}, out.Member.Exceptions)
}

func TestCommentsKeyedByInstruction(t *testing.T) {
	out := compile(t, `DEFINE static m()V
// first
// second
nop
return
// tail`, Options{})
	assert.Equal(t, map[int]string{0: "first\nsecond", 2: "tail"}, out.Member.Comments)
}

func TestLineNumbersAndExpr(t *testing.T) {
	out := compile(t, "DEFINE static m()V\nA:\nLINE A 7\nEXPR ICONST_1; POP\nRETURN", Options{Verify: true})
	m := out.Member
	assert.Equal(t, []opcode.Opcode{opcode.Label, opcode.Line, opcode.Iconst1, opcode.Pop, opcode.Return}, ops(m))
	assert.Equal(t, int32(7), m.Instructions[1].Int)
	assert.Equal(t, m.Instructions[0].Label, m.Instructions[1].Label)
	assert.Equal(t, []int{2, 3, 4, 4, 5}, out.Lines)
}

func TestLookupSwitchSortsKeys(t *testing.T) {
	out := compile(t, `DEFINE static m(I k)V
iload k
LOOKUPSWITCH mapping[10=A, -1=B] default[C]
A:
B:
C:
RETURN`, Options{Verify: true})
	var sw *insn.Instruction
	for i := range out.Member.Instructions {
		if out.Member.Instructions[i].Op == opcode.Lookupswitch {
			sw = &out.Member.Instructions[i]
		}
	}
	require.NotNil(t, sw)
	assert.Equal(t, []int32{-1, 10}, sw.Keys)
	// A, B and C are declared in that order
	assert.Equal(t, []insn.LabelID{1, 0}, sw.Targets)
	assert.Equal(t, insn.LabelID(2), sw.Default)
}

func TestLocalTable(t *testing.T) {
	out := compile(t, `DEFINE public static sum(I a, I b)I
iload a
iload b
iadd
istore total
iload total
ireturn`, Options{Verify: true})
	m := out.Member
	require.NoError(t, m.Validate())
	assert.Equal(t, 3, m.MaxLocals)
	assert.Equal(t, opcode.Label, m.Instructions[0].Op)
	assert.Equal(t, opcode.Label, m.Instructions[len(m.Instructions)-1].Op)
	begin, end := m.Instructions[0].Label, m.Instructions[len(m.Instructions)-1].Label

	require.Len(t, m.Locals, 3)
	assert.Equal(t, insn.LocalVariable{Name: "a", Desc: "I", Start: begin, End: end, Index: 0}, m.Locals[0])
	assert.Equal(t, insn.LocalVariable{Name: "b", Desc: "I", Start: begin, End: end, Index: 1}, m.Locals[1])
	assert.Equal(t, insn.LocalVariable{Name: "total", Desc: "I", Start: begin, End: end, Index: 2}, m.Locals[2])
	assert.Len(t, out.Lines, len(m.Instructions))
}

func TestLocalRangeFollowsLabels(t *testing.T) {
	out := compile(t, `DEFINE static m()V
nop
START:
iconst_1
istore x
iinc x 1
END:
return`, Options{})
	m := out.Member
	require.NoError(t, m.Validate())
	require.Len(t, m.Locals, 1)
	lv := m.Locals[0]
	assert.Equal(t, "x", lv.Name)
	// START and END are declared first, the boundaries are synthesised after
	assert.Equal(t, insn.LabelID(0), lv.Start)
	assert.Equal(t, insn.LabelID(1), lv.End)
	assert.Equal(t, 4, m.Labels)
}

func TestReferenceLocalTypeFromFrames(t *testing.T) {
	out := compile(t, `DEFINE public static pick(I flag)Ljava/lang/Number;
iload flag
ifeq OTHER
iconst_1
invokestatic java/lang/Integer.valueOf(I)Ljava/lang/Integer;
astore n
goto DONE
OTHER:
lconst_1
invokestatic java/lang/Long.valueOf(J)Ljava/lang/Long;
astore n
DONE:
aload n
areturn`, Options{Verify: true, Oracle: hierarchy.New()})
	m := out.Member
	require.Len(t, m.Locals, 2)
	assert.Equal(t, "n", m.Locals[1].Name)
	assert.Equal(t, "Ljava/lang/Number;", m.Locals[1].Desc)
	assert.Equal(t, 2, m.MaxLocals)
	assert.Equal(t, 2, m.MaxStack)
}

func TestReferenceLocalWithoutFramesIsObject(t *testing.T) {
	out := compile(t, "DEFINE static m()V\naconst_null\nastore o\nreturn", Options{})
	require.Len(t, out.Member.Locals, 1)
	assert.Equal(t, "Ljava/lang/Object;", out.Member.Locals[0].Desc)
}

func TestReceiverEntry(t *testing.T) {
	out := compile(t, "DEFINE public get()I\naload this\npop\niconst_0\nireturn", Options{Owner: "demo/Box", Verify: true})
	require.Len(t, out.Member.Locals, 1)
	assert.Equal(t, "this", out.Member.Locals[0].Name)
	assert.Equal(t, "Ldemo/Box;", out.Member.Locals[0].Desc)
	assert.Equal(t, 1, out.Member.MaxLocals)
}

func TestBaselineKeepsSlots(t *testing.T) {
	first := compile(t, "DEFINE static m()V\niconst_1\nistore x\niconst_2\nistore y\nreturn", Options{})
	require.Len(t, first.Member.Locals, 2)

	second := compile(t, "DEFINE static m()V\niconst_2\nistore y\nreturn", Options{Baseline: first.Member.Locals})
	y, ok := second.Vars.Index("y")
	require.True(t, ok)
	assert.Equal(t, 1, y)
	assert.Equal(t, 2, second.Member.MaxLocals)
}

func TestAllocatorErrorsBecomeCompileErrors(t *testing.T) {
	ce := compileErr(t, "DEFINE public m()V\niload this\nreturn", Options{})
	assert.Equal(t, diag.AsmBadOperandType, ce.Code)
	assert.Equal(t, 2, ce.Line)
}

func TestStaticOverride(t *testing.T) {
	static := true
	out := compile(t, "DEFINE public m()V\nreturn", Options{Static: &static})
	assert.True(t, out.Member.IsStatic())
	assert.Equal(t, 0, out.Member.MaxLocals)
}

func TestCompileEmitsSpans(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	_, err := Compile(ctx, parser.Parse("DEFINE static one()I\niconst_1\nireturn", parser.Options{}), Options{Verify: true})
	require.NoError(t, err)

	var member uint64
	passes := map[string]uint64{}
	for _, ev := range ring.Snapshot() {
		if ev.Kind != trace.KindSpanBegin {
			continue
		}
		switch ev.Scope {
		case trace.ScopeMember:
			member = ev.SpanID
		case trace.ScopePass:
			passes[ev.Name] = ev.ParentID
		}
	}
	require.NotZero(t, member)
	assert.Equal(t, map[string]uint64{"allocate": member, "lower": member, "verify": member}, passes)
}

func TestVerifierStepsAreTracedAtDebug(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	_, err := Compile(ctx, parser.Parse("DEFINE static one()I\niconst_1\nireturn", parser.Options{}), Options{Verify: true})
	require.NoError(t, err)

	var ops []string
	var lines []int
	for _, ev := range ring.Snapshot() {
		if ev.Scope == trace.ScopeInsn {
			require.NotNil(t, ev.Insn)
			ops = append(ops, ev.Insn.Op)
			lines = append(lines, ev.Insn.Line)
		}
	}
	assert.Equal(t, []string{"ICONST_1", "IRETURN"}, ops)
	assert.Equal(t, []int{2, 3}, lines)
}
