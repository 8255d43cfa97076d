package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasm/internal/types"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	for _, m := range []string{"iconst_1", "ICONST_1", "Iconst_1"} {
		op, ok := Lookup(m)
		require.True(t, ok, m)
		assert.Equal(t, Iconst1, op)
	}
	_, ok := Lookup("ILOAD_0")
	assert.False(t, ok)
	_, ok = Lookup("LABEL")
	assert.False(t, ok)
}

func TestShapes(t *testing.T) {
	tests := []struct {
		op    Opcode
		shape Shape
	}{
		{Nop, ShapeNone},
		{Bipush, ShapeInt},
		{Newarray, ShapeInt},
		{Astore, ShapeVar},
		{Ret, ShapeVar},
		{Checkcast, ShapeType},
		{Getstatic, ShapeField},
		{Invokeinterface, ShapeMethod},
		{IfAcmpne, ShapeJump},
		{Ldc, ShapeLdc},
		{Iinc, ShapeIinc},
		{Tableswitch, ShapeTableSwitch},
		{Lookupswitch, ShapeLookupSwitch},
		{Multianewarray, ShapeMultiArray},
		{Invokedynamic, ShapeInvokeDynamic},
		{Label, ShapeLabel},
		{Line, ShapeLine},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.shape, tt.op.Shape())
		})
	}
}

func TestTableRoundTrip(t *testing.T) {
	count := 0
	for op := Opcode(0); op < 256; op++ {
		if !op.Valid() {
			continue
		}
		count++
		back, ok := Lookup(op.String())
		require.True(t, ok, op.String())
		assert.Equal(t, op, back)
	}
	assert.Equal(t, 157, count)
	assert.False(t, Opcode(186+100).Valid())
}

func TestClassification(t *testing.T) {
	assert.True(t, Dload.IsLoad())
	assert.True(t, Astore.IsStore())
	assert.True(t, Return.IsReturn())
	assert.True(t, Ifnonnull.IsConditional())
	assert.False(t, Goto.IsConditional())
	assert.True(t, Athrow.EndsBlock())
	assert.False(t, Jsr.EndsBlock())
	assert.Equal(t, types.Long, Lstore.VarSort())
	assert.Equal(t, types.Int, Iinc.VarSort())
	assert.Equal(t, types.ObjectType, Aload.VarType())
}
