package ast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/types"
)

func TestDefinitionDescAndAccess(t *testing.T) {
	def := &Definition{
		Pos:  At(1),
		Kind: insn.KindMethod,
		Modifiers: []*Modifier{
			{Pos: At(1), Name: "public", Flag: insn.AccPublic},
			{Pos: At(1), Name: "static", Flag: insn.AccStatic},
		},
		Name: "sum",
		Type: "J",
		Args: []*Arg{{Desc: "J", Name: "a"}, {Desc: "I", Name: "b"}},
	}
	assert.Equal(t, "(JI)J", def.Desc())
	assert.Equal(t, insn.AccPublic|insn.AccStatic, def.Access())
	assert.True(t, def.IsStatic())
	assert.Equal(t, "DEFINE public static sum(J a, I b)J", FormatNode(def))

	field := &Definition{Kind: insn.KindField, Name: "count", Type: "I"}
	assert.Equal(t, "I", field.Desc())
	assert.Equal(t, "DEFINE I count", FormatNode(field))
}

func TestCollectAndInstructions(t *testing.T) {
	r := &Root{}
	r.Add(&Definition{Pos: At(1), Kind: insn.KindMethod, Name: "m", Type: "V"})
	r.Add(&Label{Pos: At(2), Name: "A"})
	r.Add(&Instruction{Pos: At(3), Op: opcode.Nop})
	r.Add(&Expr{Pos: At(4), Body: []*Instruction{
		{Pos: At(4), Op: opcode.Iconst1},
		{Pos: At(4), Op: opcode.Pop},
	}})
	r.Add(&Instruction{Pos: At(5), Op: opcode.Return})

	assert.Len(t, r.Definitions(), 1)
	assert.Len(t, Collect[*Label](r), 1)
	ins := r.Instructions()
	assert.Len(t, ins, 4)
	assert.Equal(t, opcode.Return, ins[3].Op)
	assert.Equal(t, 5, ins[3].Line())
}

func TestFormatInstructions(t *testing.T) {
	cases := []struct {
		in   *Instruction
		want string
	}{
		{&Instruction{Op: opcode.Iadd}, "IADD"},
		{&Instruction{Op: opcode.Bipush, Operand: &IntOperand{Value: -5}}, "BIPUSH -5"},
		{&Instruction{Op: opcode.Iload, Operand: &VarOperand{Var: NamedVar("count")}}, "ILOAD count"},
		{&Instruction{Op: opcode.Astore, Operand: &VarOperand{Var: RawVar(3)}}, "ASTORE 3"},
		{&Instruction{Op: opcode.Iinc, Operand: &IincOperand{Var: NamedVar("i"), Delta: -1}}, "IINC i -1"},
		{&Instruction{Op: opcode.New, Operand: &TypeOperand{Type: "java/lang/Object"}}, "NEW java/lang/Object"},
		{
			&Instruction{Op: opcode.Getstatic, Operand: &FieldOperand{Owner: "java/lang/System", Name: "out", Desc: "Ljava/io/PrintStream;"}},
			"GETSTATIC java/lang/System.out Ljava/io/PrintStream;",
		},
		{
			&Instruction{Op: opcode.Invokeinterface, Operand: &MethodOperand{Owner: "java/util/List", Name: "size", Desc: "()I", Itf: true}},
			"INVOKEINTERFACE java/util/List.size()I itf",
		},
		{&Instruction{Op: opcode.Goto, Operand: &JumpOperand{Label: "LOOP"}}, "GOTO LOOP"},
		{
			&Instruction{Op: opcode.Tableswitch, Operand: &TableSwitchOperand{Min: 0, Max: 1, Labels: []string{"A", "B"}, Default: "C"}},
			"TABLESWITCH range[0:1] labels[A, B] default[C]",
		},
		{
			&Instruction{Op: opcode.Lookupswitch, Operand: &LookupSwitchOperand{Keys: []int32{1, 10}, Labels: []string{"A", "B"}, Default: "C"}},
			"LOOKUPSWITCH mapping[1=A, 10=B] default[C]",
		},
		{&Instruction{Op: opcode.Multianewarray, Operand: &MultiArrayOperand{Desc: "[[I", Dims: 2}}, "MULTIANEWARRAY [[I 2"},
		{&Instruction{Op: opcode.Newarray, Operand: &IntOperand{Value: types.TInt}}, "NEWARRAY I"},
		{
			&Instruction{Op: opcode.Invokedynamic, Operand: &InvokeDynamicOperand{
				Name: "run", Desc: "()Ljava/lang/Runnable;", Bootstrap: insn.MetaFactory, BootstrapAlias: "H_META",
				Args: []insn.Constant{insn.MethodTypeConst("()V")},
			}},
			"INVOKEDYNAMIC run ()Ljava/lang/Runnable; ${H_META} args[()V]",
		},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatNode(c.in))
	}
}

func TestFormatDirectives(t *testing.T) {
	assert.Equal(t, "TRY A B CATCH(*) C", FormatNode(&TryCatch{Start: "A", End: "B", Handler: "C"}))
	assert.Equal(t, "TRY A B CATCH(java/io/IOException) C",
		FormatNode(&TryCatch{Start: "A", End: "B", Handler: "C", Type: "java/io/IOException"}))
	assert.Equal(t, `ALIAS x "1"`, FormatNode(&Alias{Name: "x", Value: "1"}))
	assert.Equal(t, "VALUE 5L", FormatNode(&DefaultValue{Value: insn.LongConst(5)}))
	assert.Equal(t, "LINE A 12", FormatNode(&LineNumber{Label: "A", Number: 12}))
	assert.Equal(t, "// hi", FormatNode(&Comment{Text: "hi"}))
	assert.Equal(t, "EXPR ICONST_0; POP", FormatNode(&Expr{Body: []*Instruction{{Op: opcode.Iconst0}, {Op: opcode.Pop}}}))
}

func TestFormatConstant(t *testing.T) {
	assert.Equal(t, "42", FormatConstant(insn.IntConst(42)))
	assert.Equal(t, "-7L", FormatConstant(insn.LongConst(-7)))
	assert.Equal(t, "2.5F", FormatConstant(insn.FloatConst(2.5)))
	assert.Equal(t, "1.0D", FormatConstant(insn.DoubleConst(1)))
	assert.Equal(t, "1e+20D", FormatConstant(insn.DoubleConst(1e20)))
	assert.Equal(t, "NaND", FormatConstant(insn.DoubleConst(math.NaN())))
	assert.Equal(t, "-InfinityF", FormatConstant(insn.FloatConst(float32(math.Inf(-1)))))
	assert.Equal(t, `"a\n\"b\"\\"`, FormatConstant(insn.StringConst("a\n\"b\"\\")))
	assert.Equal(t, "Ljava/lang/String;", FormatConstant(insn.TypeConst("Ljava/lang/String;")))
	assert.Equal(t, "handle[H_GETSTATIC a/B.f I]",
		FormatConstant(insn.HandleConst(insn.Handle{Tag: insn.HGetStatic, Owner: "a/B", Name: "f", Desc: "I"})))
	assert.Equal(t, "handle[H_INVOKEINTERFACE a/B.m()V itf]",
		FormatConstant(insn.HandleConst(insn.Handle{Tag: insn.HInvokeInterface, Owner: "a/B", Name: "m", Desc: "()V", Itf: true})))
}

func TestQuoteControlChars(t *testing.T) {
	assert.Equal(t, `"\u0001x"`, Quote("\x01x"))
	assert.Equal(t, `"юникод"`, Quote("юникод"))
}

func TestQuoteKeepsAliasOpenerLiteral(t *testing.T) {
	assert.Equal(t, `"\u0024{x} $y $"`, Quote("${x} $y $"))
}
