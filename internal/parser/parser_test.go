package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/opcode"
)

func mustParse(t *testing.T, text string) *ast.Root {
	t.Helper()
	res := Parse(text, Options{})
	require.True(t, res.Success(), "problems: %v", res.Err())
	return res.Root
}

func singleInsn(t *testing.T, line string) *ast.Instruction {
	t.Helper()
	root := mustParse(t, line)
	require.Len(t, root.Nodes, 1)
	in, ok := root.Nodes[0].(*ast.Instruction)
	require.True(t, ok, "got %T", root.Nodes[0])
	return in
}

func TestParseMethodDefinition(t *testing.T) {
	root := mustParse(t, "DEFINE PUBLIC static sum(J a, I b)J\n")
	def := root.Definitions()[0]
	assert.Equal(t, insn.KindMethod, def.Kind)
	assert.Equal(t, "sum", def.Name)
	assert.Equal(t, "(JI)J", def.Desc())
	assert.Equal(t, insn.AccPublic|insn.AccStatic, def.Access())
	require.Len(t, def.Args, 2)
	assert.Equal(t, "a", def.Args[0].Name)
	assert.Equal(t, "public", def.Modifiers[0].Name)
	assert.Equal(t, 1, def.Line())
}

func TestParseDefinitionForms(t *testing.T) {
	root := mustParse(t, "DEFINE static main([Ljava/lang/String; args)V")
	assert.Equal(t, "([Ljava/lang/String;)V", root.Definitions()[0].Desc())

	root = mustParse(t, "DEFINE <init>()V")
	assert.Equal(t, "<init>", root.Definitions()[0].Name)
	assert.Empty(t, root.Definitions()[0].Args)

	root = mustParse(t, "DEFINE private final [I values")
	def := root.Definitions()[0]
	assert.Equal(t, insn.KindField, def.Kind)
	assert.Equal(t, "[I", def.Type)
	assert.Equal(t, "values", def.Name)
	assert.Nil(t, def.Args)

	root = mustParse(t, "DEFINE m(I, J)V")
	assert.Equal(t, "0", root.Definitions()[0].Args[0].Name)
	assert.Equal(t, "1", root.Definitions()[0].Args[1].Name)
}

func TestParseDefinitionErrors(t *testing.T) {
	cases := map[string]diag.Code{
		"DEFINE sealed m()V":  diag.SynBadModifier,
		"DEFINE m(Q x)V":      diag.SynBadDescriptor,
		"DEFINE m()":          diag.SynBadDefinition,
		"DEFINE V count":      diag.SynBadDescriptor,
		"DEFINE":              diag.SynBadDefinition,
		"DEFINE m(I a b)V":    diag.SynBadDefinition,
		"DEFINE static count": diag.SynBadDescriptor,
	}
	for text, code := range cases {
		res := Parse(text, Options{})
		require.Len(t, res.Problems, 1, text)
		assert.Equal(t, code, res.Problems[0].Code, text)
		assert.Equal(t, 1, res.Problems[0].Line, text)
	}
}

func TestParseDirectives(t *testing.T) {
	text := `DEFINE static m()V
SIGNATURE <T:Ljava/lang/Object;>()V
THROWS java/io/IOException
TRY A B CATCH(java/io/IOException) C
TRY A B CATCH(*) C
A:
LINE A 42
// a comment
NOP // trailing
B:
RETURN
C:
ATHROW
`
	root := mustParse(t, text)
	sig := ast.Collect[*ast.Signature](root)
	require.Len(t, sig, 1)
	assert.Equal(t, "<T:Ljava/lang/Object;>()V", sig[0].Text)
	assert.Equal(t, "java/io/IOException", ast.Collect[*ast.Throws](root)[0].Type)

	tcs := ast.Collect[*ast.TryCatch](root)
	require.Len(t, tcs, 2)
	assert.Equal(t, "java/io/IOException", tcs[0].Type)
	assert.Equal(t, "", tcs[1].Type)
	assert.Equal(t, "C", tcs[1].Handler)

	ln := ast.Collect[*ast.LineNumber](root)[0]
	assert.Equal(t, "A", ln.Label)
	assert.Equal(t, int32(42), ln.Number)

	comments := ast.Collect[*ast.Comment](root)
	require.Len(t, comments, 1)
	assert.Equal(t, "a comment", comments[0].Text)
	assert.Equal(t, 8, comments[0].Line())

	assert.Len(t, ast.Collect[*ast.Label](root), 3)
	assert.Len(t, root.Instructions(), 3)
}

func TestParseFieldValue(t *testing.T) {
	root := mustParse(t, "DEFINE static final J MAX\nVALUE 9000000000L")
	v := ast.Collect[*ast.DefaultValue](root)[0]
	assert.Equal(t, insn.LongConst(9000000000), v.Value)
}

func TestAliases(t *testing.T) {
	text := `ALIAS owner "java/lang/System"
ALIAS out "${owner}.out"
GETSTATIC ${out} Ljava/io/PrintStream;
`
	root := mustParse(t, text)
	aliases := ast.Collect[*ast.Alias](root)
	require.Len(t, aliases, 2)
	assert.Equal(t, "java/lang/System.out", aliases[1].Value)

	in := root.Instructions()[0]
	f := in.Operand.(*ast.FieldOperand)
	assert.Equal(t, "java/lang/System", f.Owner)
	assert.Equal(t, "out", f.Name)
}

func TestAliasDefinedLaterStillResolves(t *testing.T) {
	root := mustParse(t, "LDC ${x}\nALIAS x \"5\"")
	assert.Equal(t, insn.IntConst(5), root.Instructions()[0].Operand.(*ast.LdcOperand).Value)
}

func TestUnknownAlias(t *testing.T) {
	res := Parse("LDC ${nope}", Options{})
	require.Len(t, res.Problems, 1)
	assert.Equal(t, diag.SynUnknownAlias, res.Problems[0].Code)
}

func TestMetaAliasIsPredefined(t *testing.T) {
	in := singleInsn(t, "INVOKEDYNAMIC run ()Ljava/lang/Runnable; ${H_META} args[()V, handle[H_INVOKESTATIC a/B.lambda$0()V], ()V]")
	op := in.Operand.(*ast.InvokeDynamicOperand)
	assert.Equal(t, insn.MetaFactory, op.Bootstrap)
	require.Len(t, op.Args, 3)
	assert.Equal(t, insn.ConstHandle, op.Args[1].Kind)
	assert.Equal(t, "lambda$0", op.Args[1].Handle.Name)
	assert.Equal(t, insn.MethodTypeConst("()V"), op.Args[2])
}

func TestInstructionOperands(t *testing.T) {
	in := singleInsn(t, "bipush -128")
	assert.Equal(t, opcode.Bipush, in.Op)
	assert.Equal(t, int32(-128), in.Operand.(*ast.IntOperand).Value)

	in = singleInsn(t, "SIPUSH 300")
	assert.Equal(t, int32(300), in.Operand.(*ast.IntOperand).Value)

	in = singleInsn(t, "NEWARRAY int")
	assert.Equal(t, int32(10), in.Operand.(*ast.IntOperand).Value)
	in = singleInsn(t, "NEWARRAY Z")
	assert.Equal(t, int32(4), in.Operand.(*ast.IntOperand).Value)

	in = singleInsn(t, "ILOAD count")
	assert.Equal(t, ast.NamedVar("count"), in.Operand.(*ast.VarOperand).Var)
	in = singleInsn(t, "ASTORE 3")
	v := in.Operand.(*ast.VarOperand).Var
	assert.True(t, v.IsRaw())
	assert.Equal(t, 3, v.Index)

	in = singleInsn(t, "IINC i -5")
	assert.Equal(t, int32(-5), in.Operand.(*ast.IincOperand).Delta)

	in = singleInsn(t, "ANEWARRAY [I")
	assert.Equal(t, "[I", in.Operand.(*ast.TypeOperand).Type)

	in = singleInsn(t, "INVOKEVIRTUAL java/io/PrintStream.println(Ljava/lang/String;)V")
	m := in.Operand.(*ast.MethodOperand)
	assert.Equal(t, "java/io/PrintStream", m.Owner)
	assert.Equal(t, "println", m.Name)
	assert.Equal(t, "(Ljava/lang/String;)V", m.Desc)
	assert.False(t, m.Itf)

	in = singleInsn(t, "INVOKESTATIC a/B.m ([I)[Z itf")
	m = in.Operand.(*ast.MethodOperand)
	assert.Equal(t, "([I)[Z", m.Desc)
	assert.True(t, m.Itf)

	in = singleInsn(t, "INVOKEINTERFACE java/util/List.size()I")
	assert.True(t, in.Operand.(*ast.MethodOperand).Itf)

	in = singleInsn(t, "GETSTATIC 1.5f I")
	f := in.Operand.(*ast.FieldOperand)
	assert.Equal(t, "1", f.Owner)
	assert.Equal(t, "5f", f.Name)

	in = singleInsn(t, "GOTO LOOP")
	assert.Equal(t, "LOOP", in.Operand.(*ast.JumpOperand).Label)

	in = singleInsn(t, "MULTIANEWARRAY [[[I 2")
	assert.Equal(t, int32(2), in.Operand.(*ast.MultiArrayOperand).Dims)
}

func TestSwitches(t *testing.T) {
	in := singleInsn(t, "TABLESWITCH range[1:3] labels[A, B, C] default[D]")
	ts := in.Operand.(*ast.TableSwitchOperand)
	assert.Equal(t, int32(1), ts.Min)
	assert.Equal(t, int32(3), ts.Max)
	assert.Equal(t, []string{"A", "B", "C"}, ts.Labels)
	assert.Equal(t, "D", ts.Default)
	assert.Equal(t, []string{"D", "A", "B", "C"}, in.LabelRefs())

	in = singleInsn(t, "TABLESWITCH range[0:0] offsets[A] default[B]")
	assert.Equal(t, []string{"A"}, in.Operand.(*ast.TableSwitchOperand).Labels)

	in = singleInsn(t, "LOOKUPSWITCH mapping[10=A, -1=B] default[C]")
	ls := in.Operand.(*ast.LookupSwitchOperand)
	assert.Equal(t, []int32{10, -1}, ls.Keys)
	assert.Equal(t, []string{"A", "B"}, ls.Labels)

	in = singleInsn(t, "LOOKUPSWITCH mapping[] default[C]")
	assert.Empty(t, in.Operand.(*ast.LookupSwitchOperand).Keys)
}

func TestConstants(t *testing.T) {
	cases := map[string]insn.Constant{
		"100":                      insn.IntConst(100),
		"-100":                     insn.IntConst(-100),
		"0xA":                      insn.IntConst(10),
		"0xFFFFFFFF":               insn.IntConst(-1),
		"0x900000000L":             insn.LongConst(0x900000000),
		"100000000000L":            insn.LongConst(100000000000),
		"5.5":                      insn.DoubleConst(5.5),
		"127.":                     insn.DoubleConst(127),
		"2.5F":                     insn.FloatConst(2.5),
		"1D":                       insn.DoubleConst(1),
		"1e3":                      insn.DoubleConst(1000),
		"-InfinityF":               insn.FloatConst(float32(math.Inf(-1))),
		"'A'":                      insn.IntConst('A'),
		`"a b\nA"`:            insn.StringConst("a b\nA"),
		"Ljava/lang/String;":       insn.TypeConst("Ljava/lang/String;"),
		"[I":                       insn.TypeConst("[I"),
		"(I)V":                     insn.MethodTypeConst("(I)V"),
		"handle[H_GETSTATIC a/B.f I]": insn.HandleConst(insn.Handle{Tag: insn.HGetStatic, Owner: "a/B", Name: "f", Desc: "I"}),
	}
	for text, want := range cases {
		in := singleInsn(t, "LDC "+text)
		got := in.Operand.(*ast.LdcOperand).Value
		assert.True(t, want.Equal(got), "%s: want %v, got %v", text, want, got)
	}

	in := singleInsn(t, "LDC NaN")
	assert.True(t, math.IsNaN(in.Operand.(*ast.LdcOperand).Value.Double))
}

func TestOperandErrors(t *testing.T) {
	cases := map[string]diag.Code{
		"BIPUSH 128":                    diag.SynOperandRange,
		"SIPUSH 40000":                  diag.SynOperandRange,
		"IINC x 70000":                  diag.SynOperandRange,
		"ILOAD 70000":                   diag.SynOperandRange,
		"LDC 3000000000":                diag.SynOperandRange,
		"MULTIANEWARRAY [I 2":           diag.SynOperandRange,
		"MULTIANEWARRAY I 1":            diag.SynBadDescriptor,
		"NEWARRAY Foo":                  diag.SynBadOperand,
		"IADD 1":                        diag.SynBadOperand,
		"GETSTATIC a/B I":               diag.SynBadOperand,
		"INVOKESTATIC a/B.m(Q)V":        diag.SynBadDescriptor,
		"TABLESWITCH range[0:2] labels[A] default[B]": diag.SynBadOperand,
		"LOOKUPSWITCH mapping[1=A, 1=B] default[C]":   diag.SynBadOperand,
		"FROBNICATE":                    diag.SynUnknownInstruction,
		"LDC \"open":                    diag.SynBadOperand,
		"LDC \"bad\\q\"":                diag.SynBadString,
	}
	for text, code := range cases {
		res := Parse(text, Options{})
		require.Len(t, res.Problems, 1, text)
		assert.Equal(t, code, res.Problems[0].Code, text)
	}
}

func TestFaultIsolation(t *testing.T) {
	text := "DEFINE static m()I\nBOGUS 1\nICONST_1\nBIPUSH 999\nIRETURN\n"
	res := Parse(text, Options{})
	require.Len(t, res.Problems, 2)
	assert.Equal(t, 2, res.Problems[0].Line)
	assert.Equal(t, 4, res.Problems[1].Line)
	assert.False(t, res.Success())
	assert.Error(t, res.Err())
	assert.Len(t, res.Root.Instructions(), 2)
}

func TestMaxErrorsAndReporter(t *testing.T) {
	bag := diag.NewBag(0)
	res := Parse("X\nY\nZ\nW\n", Options{MaxErrors: 2, Reporter: diag.BagReporter{Bag: bag}})
	require.Len(t, res.Problems, 3)
	assert.Equal(t, diag.SynTooManyErrors, res.Problems[2].Code)
	assert.Equal(t, 2, bag.Len())
	assert.Equal(t, 1, bag.Items()[0].Line())
}

func TestExpr(t *testing.T) {
	root := mustParse(t, "EXPR GETSTATIC java/lang/System.out Ljava/io/PrintStream;; LDC \"a; b\"; POP2")
	e := ast.Collect[*ast.Expr](root)[0]
	require.Len(t, e.Body, 3)
	assert.Equal(t, "Ljava/io/PrintStream;", e.Body[0].Operand.(*ast.FieldOperand).Desc)
	assert.Equal(t, insn.StringConst("a; b"), e.Body[1].Operand.(*ast.LdcOperand).Value)
	assert.Equal(t, opcode.Pop2, e.Body[2].Op)
}

func TestFormatRoundTrip(t *testing.T) {
	text := `DEFINE public static run(I n, [Ljava/lang/String; args)V
SIGNATURE (I[Ljava/lang/String;)V
THROWS java/lang/Exception
TRY A B CATCH(*) C
A:
ILOAD n
TABLESWITCH range[0:1] labels[A, B] default[C]
B:
LDC "x\ty"
LDC -2.5F
LDC 7L
INVOKEDYNAMIC get ()Ljava/util/function/Supplier; ${H_META} args[()Ljava/lang/Object;, handle[H_INVOKESTATIC a/B.f()Ljava/lang/Object;], ()Ljava/lang/Object;]
POP
RETURN
C:
ATHROW
`
	first := mustParse(t, text)
	printed := ast.Format(first)
	second := mustParse(t, printed)
	assert.Equal(t, printed, ast.Format(second))
	require.Len(t, second.Nodes, len(first.Nodes))
	for i := range first.Nodes {
		assert.Equal(t, ast.FormatNode(first.Nodes[i]), ast.FormatNode(second.Nodes[i]))
	}
}
