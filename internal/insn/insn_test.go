package insn

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasm/internal/opcode"
)

func sampleMember() *Member {
	m := &Member{Kind: KindMethod, Access: AccPublic | AccStatic, Name: "pick", Desc: "(I)Ljava/lang/Object;"}
	start, end, handler, dflt, one := m.NewLabel(), m.NewLabel(), m.NewLabel(), m.NewLabel(), m.NewLabel()
	m.Instructions = []Instruction{
		Mark(start),
		LineAt(start, 7),
		VarInsn(opcode.Iload, 0),
		TableSwitch(1, 1, dflt, one),
		Mark(one),
		Ldc(DoubleConst(math.NaN())),
		Simple(opcode.Pop2),
		Mark(dflt),
		InvokeDynamic("get", "()Ljava/util/function/Supplier;", MetaFactory,
			MethodTypeConst("()Ljava/lang/Object;"),
			HandleConst(Handle{Tag: HInvokeStatic, Owner: "a/B", Name: "f", Desc: "()Ljava/lang/Object;"}),
			MethodTypeConst("()Ljava/lang/Object;")),
		Mark(end),
		Simple(opcode.Areturn),
		Mark(handler),
		Simple(opcode.Athrow),
	}
	m.TryCatches = []TryCatch{{Start: start, End: end, Handler: handler}}
	m.Locals = []LocalVariable{{Name: "x", Desc: "I", Start: start, End: end, Index: 0}}
	m.Comments = map[int]string{2: "load"}
	return m
}

func TestModifiers(t *testing.T) {
	acc, ok := ParseModifier("PUBLIC")
	require.True(t, ok)
	assert.Equal(t, AccPublic, acc)
	_, ok = ParseModifier("sealed")
	assert.False(t, ok)

	flags := AccPublic | AccStatic | AccBridge | AccVarargs
	assert.Equal(t, []string{"public", "static", "bridge", "varargs"}, flags.Modifiers(KindMethod))
	assert.Equal(t, []string{"public", "static", "volatile", "transient"}, flags.Modifiers(KindField))
}

func TestHandleTags(t *testing.T) {
	tag, ok := ParseHandleTag("h_invokeinterface")
	require.True(t, ok)
	assert.Equal(t, HInvokeInterface, tag)
	assert.Equal(t, "H_GETSTATIC", HGetStatic.String())
	assert.True(t, HPutStatic.IsField())
	assert.False(t, HInvokeVirtual.IsField())
	_, ok = ParseHandleTag("H_BOGUS")
	assert.False(t, ok)
}

func TestConstantEqual(t *testing.T) {
	assert.True(t, DoubleConst(math.NaN()).Equal(DoubleConst(math.NaN())))
	assert.False(t, DoubleConst(0).Equal(DoubleConst(math.Copysign(0, -1))))
	assert.False(t, IntConst(1).Equal(LongConst(1)))
	assert.True(t, HandleConst(MetaFactory).Equal(HandleConst(MetaFactory)))
	assert.True(t, LongConst(3).IsWide())
	assert.False(t, StringConst("x").IsNumeric())
}

func TestValidate(t *testing.T) {
	m := sampleMember()
	require.NoError(t, m.Validate())

	broken := m.Clone()
	broken.Instructions = append(broken.Instructions, Jump(opcode.Goto, 42))
	assert.Error(t, broken.Validate())

	twice := m.Clone()
	twice.Instructions = append(twice.Instructions, Mark(0))
	assert.ErrorContains(t, twice.Validate(), "placed twice")

	field := &Member{Kind: KindField, Name: "x", Desc: "I", Instructions: []Instruction{Simple(opcode.Nop)}}
	assert.ErrorContains(t, field.Validate(), "has code")

	bad := &Member{Kind: KindMethod, Name: "m", Desc: "(X)V"}
	assert.Error(t, bad.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	m := sampleMember()
	c := m.Clone()
	c.Instructions[3].Targets[0] = 99
	c.Instructions[8].Bootstrap.Name = "other"
	c.Comments[2] = "changed"
	assert.Equal(t, LabelID(4), m.Instructions[3].Targets[0])
	assert.Equal(t, "metafactory", m.Instructions[8].Bootstrap.Name)
	assert.Equal(t, "load", m.Comments[2])
}

func TestSuccessors(t *testing.T) {
	in := TableSwitch(0, 1, 5, 6, 7)
	assert.Equal(t, []LabelID{5, 6, 7}, in.Successors())
	j := Jump(opcode.Ifeq, 3)
	assert.Equal(t, []LabelID{3}, j.Successors())
	ret := Simple(opcode.Return)
	assert.Nil(t, ret.Successors())
}

func TestMsgpackCodec(t *testing.T) {
	m := sampleMember()
	var buf bytes.Buffer
	require.NoError(t, EncodeMember(&buf, m))
	got, err := DecodeMember(&buf)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, m.Name, got.Name)
	assert.Len(t, got.Instructions, len(m.Instructions))
	assert.True(t, math.IsNaN(got.Instructions[5].Const.Double))
	assert.Equal(t, *m.Instructions[8].Bootstrap, *got.Instructions[8].Bootstrap)
}

func TestJSONCodecKeepsNaN(t *testing.T) {
	m := sampleMember()
	data, err := MarshalMemberJSON(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"NaN"`)
	got, err := UnmarshalMemberJSON(data)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Instructions[5].Const.Double))
	assert.Equal(t, "load", got.Comments[2])
}
