package analysis

import (
	"fmt"

	"jasm/internal/diag"
	"jasm/internal/hierarchy"
	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/types"
)

// interpreter executes one instruction over a frame. Stack shape and local
// bounds are checked by execute and abort the analysis; operand types are
// checked by the operation hooks, which record a problem for the current
// instruction and carry on with the best guess for the result.
type interpreter struct {
	oracle  hierarchy.Oracle
	ret     types.Type
	problem string
}

func (it *interpreter) fail(format string, args ...any) {
	if it.problem == "" {
		it.problem = fmt.Sprintf(format, args...)
	}
}

func (it *interpreter) expect(in *insn.Instruction, want types.Type, v Value) {
	if !assignable(it.oracle, want, v) {
		it.fail("%s expects %s, found %s", in.Op, typeName(want), v)
	}
}

func (it *interpreter) expectRef(in *insn.Instruction, v Value) {
	if v.kind == Primitive || v.kind == ReturnAddress {
		it.fail("%s expects a reference, found %s", in.Op, v)
	}
}

func (it *interpreter) typeOf(in *insn.Instruction, desc string) types.Type {
	t, err := types.ParseField(desc)
	if err != nil {
		it.fail("%s: %v", in.Op, err)
		return types.Type{}
	}
	return t
}

func (it *interpreter) ownerOf(in *insn.Instruction) types.Type {
	t, err := types.FromInternalName(in.Owner)
	if err != nil {
		it.fail("%s: owner %q: %v", in.Op, in.Owner, err)
		return types.ObjectType
	}
	return t
}

// newOperation pushes a value without consuming any.
func (it *interpreter) newOperation(in *insn.Instruction) Value {
	switch op := in.Op; op {
	case opcode.AconstNull:
		return NullRef
	case opcode.IconstM1, opcode.Iconst0, opcode.Iconst1, opcode.Iconst2,
		opcode.Iconst3, opcode.Iconst4, opcode.Iconst5:
		return Int(int32(op - opcode.Iconst0))
	case opcode.Lconst0, opcode.Lconst1:
		return Long(int64(op - opcode.Lconst0))
	case opcode.Fconst0, opcode.Fconst1, opcode.Fconst2:
		return Float(float32(op - opcode.Fconst0))
	case opcode.Dconst0, opcode.Dconst1:
		return Double(float64(op - opcode.Dconst0))
	case opcode.Bipush, opcode.Sipush:
		return Int(in.Int)
	case opcode.Ldc:
		if in.Const == nil {
			it.fail("LDC without a constant")
			return Unset
		}
		return Literal(*in.Const)
	case opcode.New:
		return ObjectOf(in.Type)
	case opcode.Getstatic:
		return Of(it.typeOf(in, in.Desc))
	case opcode.Jsr:
		return RetAddr
	}
	return Unset
}

// copyOperation moves a value between the stack and a local.
func (it *interpreter) copyOperation(in *insn.Instruction, v Value) Value {
	want := in.Op.VarSort()
	if want == types.Object {
		switch {
		case v.kind == Primitive:
			it.fail("%s expects a reference, found %s", in.Op, v)
		case v.kind == ReturnAddress && in.Op == opcode.Aload:
			it.fail("ALOAD of a return address")
		}
		return v
	}
	if !v.Is(want) {
		it.fail("%s expects %s, found %s", in.Op, want, v)
		return Of(in.Op.VarType())
	}
	return v
}

var conversions = map[opcode.Opcode][2]types.Type{
	opcode.I2l: {types.IntType, types.LongType},
	opcode.I2f: {types.IntType, types.FloatType},
	opcode.I2d: {types.IntType, types.DoubleType},
	opcode.L2i: {types.LongType, types.IntType},
	opcode.L2f: {types.LongType, types.FloatType},
	opcode.L2d: {types.LongType, types.DoubleType},
	opcode.F2i: {types.FloatType, types.IntType},
	opcode.F2l: {types.FloatType, types.LongType},
	opcode.F2d: {types.FloatType, types.DoubleType},
	opcode.D2i: {types.DoubleType, types.IntType},
	opcode.D2l: {types.DoubleType, types.LongType},
	opcode.D2f: {types.DoubleType, types.FloatType},
	opcode.I2b: {types.IntType, types.ByteType},
	opcode.I2c: {types.IntType, types.CharType},
	opcode.I2s: {types.IntType, types.ShortType},
}

var numeric = [4]types.Type{types.IntType, types.LongType, types.FloatType, types.DoubleType}

// unaryOperation consumes one value; the result is Unset when nothing is pushed.
func (it *interpreter) unaryOperation(in *insn.Instruction, v Value) Value {
	switch op := in.Op; {
	case op >= opcode.Ineg && op <= opcode.Dneg:
		t := numeric[op-opcode.Ineg]
		it.expect(in, t, v)
		if !v.Is(t.Sort()) {
			return Of(t)
		}
		return Negate(v)
	case op == opcode.Iinc:
		it.expect(in, types.IntType, v)
		if !v.Is(types.Int) {
			return Of(types.IntType)
		}
		return Fold(OpAdd, v, Int(in.Int))
	case conversions[op] != [2]types.Type{}:
		c := conversions[op]
		it.expect(in, c[0], v)
		if !v.Is(c[0].Sort()) {
			return Of(c[1])
		}
		return Convert(v, c[1])
	case op >= opcode.Ifeq && op <= opcode.Ifle,
		op == opcode.Tableswitch, op == opcode.Lookupswitch:
		it.expect(in, types.IntType, v)
	case op == opcode.Ifnull, op == opcode.Ifnonnull,
		op == opcode.Monitorenter, op == opcode.Monitorexit:
		it.expectRef(in, v)
	case op >= opcode.Ireturn && op <= opcode.Areturn:
		it.returnOperation(in, v)
	case op == opcode.Putstatic:
		it.expect(in, it.typeOf(in, in.Desc), v)
	case op == opcode.Getfield:
		it.receiver(in, v)
		return Of(it.typeOf(in, in.Desc))
	case op == opcode.Newarray:
		it.expect(in, types.IntType, v)
		elem, ok := types.NewArrayElement(in.Int)
		if !ok {
			it.fail("NEWARRAY: unknown element code %d", in.Int)
			return Of(types.ObjectType)
		}
		return Of(types.ArrayOf(elem, 1))
	case op == opcode.Anewarray:
		it.expect(in, types.IntType, v)
		elem, err := types.FromInternalName(in.Type)
		if err != nil {
			it.fail("ANEWARRAY: %v", err)
			return Of(types.ObjectType)
		}
		return Of(types.ArrayOf(elem, 1))
	case op == opcode.Arraylength:
		if v.kind == Reference && v.typ.Sort() != types.Array || v.kind == Primitive || v.kind == ReturnAddress {
			it.fail("ARRAYLENGTH expects an array, found %s", v)
		}
		return Of(types.IntType)
	case op == opcode.Athrow:
		it.expect(in, types.ThrowableType, v)
	case op == opcode.Checkcast:
		it.expectRef(in, v)
		if v.kind == Null {
			return NullRef
		}
		return ObjectOf(in.Type)
	case op == opcode.Instanceof:
		it.expectRef(in, v)
		return Of(types.IntType)
	}
	return Unset
}

// returnOperation checks a returned value against the method's return type.
func (it *interpreter) returnOperation(in *insn.Instruction, v Value) {
	want := it.ret
	if want.Sort() == types.Void {
		it.fail("%s in a method returning void", in.Op)
		return
	}
	var kind types.Type
	switch in.Op {
	case opcode.Ireturn:
		kind = types.IntType
	case opcode.Lreturn:
		kind = types.LongType
	case opcode.Freturn:
		kind = types.FloatType
	case opcode.Dreturn:
		kind = types.DoubleType
	case opcode.Areturn:
		kind = types.ObjectType
	}
	if want.Computational() != kind && !(kind == types.ObjectType && want.IsReference()) {
		it.fail("%s in a method returning %s", in.Op, typeName(want))
		return
	}
	it.expect(in, want, v)
}

// receiver checks the object a field or instance method is accessed on.
func (it *interpreter) receiver(in *insn.Instruction, v Value) {
	if v.kind == Null && !(in.Owner == "java/lang/Throwable" && in.Name == "addSuppressed") {
		it.fail("%s %s.%s on a null reference", in.Op, in.Owner, in.Name)
		return
	}
	it.expect(in, it.ownerOf(in), v)
}

type arrayAccess struct {
	elem  types.Type
	alt   types.Type
	value types.Type
}

var arrayOps = map[opcode.Opcode]arrayAccess{
	opcode.Iaload: {elem: types.IntType, value: types.IntType},
	opcode.Laload: {elem: types.LongType, value: types.LongType},
	opcode.Faload: {elem: types.FloatType, value: types.FloatType},
	opcode.Daload: {elem: types.DoubleType, value: types.DoubleType},
	opcode.Aaload: {elem: types.ObjectType, value: types.ObjectType},
	opcode.Baload: {elem: types.ByteType, alt: types.BooleanType, value: types.IntType},
	opcode.Caload: {elem: types.CharType, value: types.IntType},
	opcode.Saload: {elem: types.ShortType, value: types.IntType},

	opcode.Iastore: {elem: types.IntType, value: types.IntType},
	opcode.Lastore: {elem: types.LongType, value: types.LongType},
	opcode.Fastore: {elem: types.FloatType, value: types.FloatType},
	opcode.Dastore: {elem: types.DoubleType, value: types.DoubleType},
	opcode.Aastore: {elem: types.ObjectType, value: types.ObjectType},
	opcode.Bastore: {elem: types.ByteType, alt: types.BooleanType, value: types.IntType},
	opcode.Castore: {elem: types.CharType, value: types.IntType},
	opcode.Sastore: {elem: types.ShortType, value: types.IntType},
}

// array checks an array operand and returns its component type when known.
func (it *interpreter) array(in *insn.Instruction, arr Value) (types.Type, bool) {
	acc := arrayOps[in.Op]
	switch arr.kind {
	case Null, Uninitialized:
		return types.Type{}, false
	case Reference:
		if arr.typ.Sort() == types.Array {
			break
		}
		fallthrough
	default:
		it.fail("%s expects an array, found %s", in.Op, arr)
		return types.Type{}, false
	}
	comp := arr.typ.ComponentType()
	switch {
	case acc.elem == types.ObjectType:
		if !comp.IsReference() {
			it.fail("%s on %s", in.Op, arr)
		}
	case comp != acc.elem && comp != acc.alt:
		it.fail("%s on %s", in.Op, arr)
	}
	return comp, true
}

// binaryOperation consumes two values, a pushed before b.
func (it *interpreter) binaryOperation(in *insn.Instruction, a, b Value) Value {
	switch op := in.Op; {
	case op >= opcode.Iadd && op <= opcode.Drem:
		t := numeric[(op-opcode.Iadd)%4]
		return it.arith(in, ArithOp((op-opcode.Iadd)/4), t, t, a, b)
	case op >= opcode.Ishl && op <= opcode.Lushr:
		t := numeric[(op-opcode.Ishl)%2]
		return it.arith(in, OpShl+ArithOp((op-opcode.Ishl)/2), t, types.IntType, a, b)
	case op >= opcode.Iand && op <= opcode.Lxor:
		t := numeric[(op-opcode.Iand)%2]
		return it.arith(in, OpAnd+ArithOp((op-opcode.Iand)/2), t, t, a, b)
	case op == opcode.Lcmp:
		it.expect(in, types.LongType, a)
		it.expect(in, types.LongType, b)
		return Compare(a, b, 0)
	case op == opcode.Fcmpl, op == opcode.Fcmpg:
		it.expect(in, types.FloatType, a)
		it.expect(in, types.FloatType, b)
		if op == opcode.Fcmpl {
			return Compare(a, b, -1)
		}
		return Compare(a, b, 1)
	case op == opcode.Dcmpl, op == opcode.Dcmpg:
		it.expect(in, types.DoubleType, a)
		it.expect(in, types.DoubleType, b)
		if op == opcode.Dcmpl {
			return Compare(a, b, -1)
		}
		return Compare(a, b, 1)
	case op >= opcode.IfIcmpeq && op <= opcode.IfIcmple:
		it.expect(in, types.IntType, a)
		it.expect(in, types.IntType, b)
	case op == opcode.IfAcmpeq, op == opcode.IfAcmpne:
		it.expectRef(in, a)
		it.expectRef(in, b)
	case op >= opcode.Iaload && op <= opcode.Saload:
		it.expect(in, types.IntType, b)
		comp, ok := it.array(in, a)
		acc := arrayOps[op]
		if op == opcode.Aaload {
			if ok && comp.IsReference() {
				return Of(comp)
			}
			return Of(types.ObjectType)
		}
		return Of(acc.value)
	case op == opcode.Putfield:
		it.receiver(in, a)
		it.expect(in, it.typeOf(in, in.Desc), b)
	}
	return Unset
}

func (it *interpreter) arith(in *insn.Instruction, op ArithOp, ta, tb types.Type, a, b Value) Value {
	it.expect(in, ta, a)
	it.expect(in, tb, b)
	if !a.Is(ta.Sort()) || !b.Is(tb.Sort()) {
		return Of(ta)
	}
	return Fold(op, a, b)
}

// ternaryOperation is the array store: arrayref, index, value.
func (it *interpreter) ternaryOperation(in *insn.Instruction, arr, idx, v Value) {
	it.expect(in, types.IntType, idx)
	it.array(in, arr)
	acc := arrayOps[in.Op]
	if in.Op == opcode.Aastore {
		it.expectRef(in, v)
		return
	}
	it.expect(in, acc.value, v)
}

// naryOperation covers invocations and MULTIANEWARRAY. vs holds the
// receiver first for instance invocations.
func (it *interpreter) naryOperation(in *insn.Instruction, vs []Value) Value {
	switch in.Op {
	case opcode.Multianewarray:
		for _, v := range vs {
			it.expect(in, types.IntType, v)
		}
		return Of(it.typeOf(in, in.Type))
	}
	args, ret, err := types.ParseMethod(in.Desc)
	if err != nil {
		it.fail("%s: %v", in.Op, err)
		return Unset
	}
	if in.Op != opcode.Invokestatic && in.Op != opcode.Invokedynamic {
		it.receiver(in, vs[0])
		vs = vs[1:]
	}
	for i, t := range args {
		if !assignable(it.oracle, t, vs[i]) {
			it.fail("%s %s argument %d expects %s, found %s", in.Op, in.Name, i+1, typeName(t), vs[i])
		}
	}
	return Of(ret)
}

func (it *interpreter) pop1(f *Frame, in *insn.Instruction) (Value, error) {
	v, err := f.Pop()
	if err != nil {
		return v, err
	}
	if v.Size() != 1 {
		return v, abort(diag.VerBadOperand, "%s on a two-slot value", in.Op)
	}
	return v, nil
}

// argCount is the number of stack values an invocation consumes.
func argCount(in *insn.Instruction) (int, error) {
	if in.Op == opcode.Multianewarray {
		return int(in.Int), nil
	}
	args, _, err := types.ParseMethod(in.Desc)
	if err != nil {
		return 0, abort(diag.VerBadOperand, "%s: %v", in.Op, err)
	}
	n := len(args)
	if in.Op != opcode.Invokestatic && in.Op != opcode.Invokedynamic {
		n++
	}
	return n, nil
}

// execute runs in over f in place.
func (it *interpreter) execute(f *Frame, in *insn.Instruction) error {
	op := in.Op
	switch {
	case op == opcode.Nop, op.IsPseudo(), op == opcode.Goto, op == opcode.Return:
		if op == opcode.Return && it.ret.Sort() != types.Void {
			it.fail("RETURN in a method returning %s", typeName(it.ret))
		}
		return nil

	case op.IsLoad():
		v, err := f.Local(in.Var)
		if err != nil {
			return abort(diag.VerBadLocal, "%s: %v", op, err)
		}
		if sz := op.VarType().Size(); in.Var+sz > len(f.Locals) {
			return abort(diag.VerBadLocal, "%s: local %d is outside the frame of %d slots", op, in.Var, len(f.Locals))
		}
		f.Push(it.copyOperation(in, v))

	case op.IsStore():
		v, err := f.Pop()
		if err != nil {
			return err
		}
		if err := f.SetLocal(in.Var, it.copyOperation(in, v)); err != nil {
			return abort(diag.VerBadLocal, "%s: %v", op, err)
		}

	case op == opcode.Iinc:
		v, err := f.Local(in.Var)
		if err != nil {
			return abort(diag.VerBadLocal, "%s: %v", op, err)
		}
		_ = f.SetLocal(in.Var, it.unaryOperation(in, v))

	case op == opcode.Ret:
		v, err := f.Local(in.Var)
		if err != nil {
			return abort(diag.VerBadLocal, "%s: %v", op, err)
		}
		if v.kind != ReturnAddress {
			it.fail("RET expects a return address, found %s", v)
		}

	case op == opcode.Pop:
		if _, err := it.pop1(f, in); err != nil {
			return err
		}
	case op == opcode.Pop2:
		v, err := f.Pop()
		if err != nil {
			return err
		}
		if v.Size() == 1 {
			if _, err := it.pop1(f, in); err != nil {
				return err
			}
		}
	case op >= opcode.Dup && op <= opcode.Swap:
		return it.shuffle(f, in)

	case op == opcode.AconstNull, op >= opcode.IconstM1 && op <= opcode.Ldc,
		op == opcode.New, op == opcode.Getstatic, op == opcode.Jsr:
		f.Push(it.newOperation(in))

	case op >= opcode.Iaload && op <= opcode.Saload,
		op >= opcode.Iadd && op <= opcode.Drem,
		op >= opcode.Ishl && op <= opcode.Lxor,
		op >= opcode.Lcmp && op <= opcode.Dcmpg,
		op >= opcode.IfIcmpeq && op <= opcode.IfAcmpne,
		op == opcode.Putfield:
		vs, err := f.PopN(2)
		if err != nil {
			return err
		}
		if v := it.binaryOperation(in, vs[0], vs[1]); op != opcode.Putfield && !op.IsConditional() {
			f.Push(v)
		}

	case op >= opcode.Iastore && op <= opcode.Sastore:
		vs, err := f.PopN(3)
		if err != nil {
			return err
		}
		it.ternaryOperation(in, vs[0], vs[1], vs[2])

	case op.Shape() == opcode.ShapeMethod, op == opcode.Invokedynamic, op == opcode.Multianewarray:
		n, err := argCount(in)
		if err != nil {
			return err
		}
		vs, err := f.PopN(n)
		if err != nil {
			return err
		}
		v := it.naryOperation(in, vs)
		if op == opcode.Multianewarray || returnsValue(in.Desc) {
			f.Push(v)
		}

	default:
		v, err := f.Pop()
		if err != nil {
			return err
		}
		r := it.unaryOperation(in, v)
		if pushes(op) {
			f.Push(r)
		}
	}
	return nil
}

func returnsValue(desc string) bool {
	_, ret, err := types.ParseMethod(desc)
	return err == nil && ret.Sort() != types.Void
}

// pushes reports the single-input instructions that leave a result.
func pushes(op opcode.Opcode) bool {
	switch {
	case op >= opcode.Ineg && op <= opcode.Dneg, op >= opcode.I2l && op <= opcode.I2s:
		return true
	}
	switch op {
	case opcode.Getfield, opcode.Newarray, opcode.Anewarray, opcode.Arraylength,
		opcode.Checkcast, opcode.Instanceof:
		return true
	}
	return false
}

// shuffle implements the DUP family and SWAP by value category.
func (it *interpreter) shuffle(f *Frame, in *insn.Instruction) error {
	pop1 := func() (Value, error) { return it.pop1(f, in) }
	push := func(vs ...Value) {
		for _, v := range vs {
			f.Push(v)
		}
	}
	switch in.Op {
	case opcode.Dup:
		v1, err := pop1()
		if err != nil {
			return err
		}
		push(v1, v1)
	case opcode.DupX1:
		v1, err := pop1()
		if err != nil {
			return err
		}
		v2, err := pop1()
		if err != nil {
			return err
		}
		push(v1, v2, v1)
	case opcode.DupX2:
		v1, err := pop1()
		if err != nil {
			return err
		}
		v2, err := f.Pop()
		if err != nil {
			return err
		}
		if v2.Size() == 2 {
			push(v1, v2, v1)
			return nil
		}
		v3, err := pop1()
		if err != nil {
			return err
		}
		push(v1, v3, v2, v1)
	case opcode.Dup2:
		v1, err := f.Pop()
		if err != nil {
			return err
		}
		if v1.Size() == 2 {
			push(v1, v1)
			return nil
		}
		v2, err := pop1()
		if err != nil {
			return err
		}
		push(v2, v1, v2, v1)
	case opcode.Dup2X1:
		v1, err := f.Pop()
		if err != nil {
			return err
		}
		if v1.Size() == 2 {
			v2, err := pop1()
			if err != nil {
				return err
			}
			push(v1, v2, v1)
			return nil
		}
		v2, err := pop1()
		if err != nil {
			return err
		}
		v3, err := pop1()
		if err != nil {
			return err
		}
		push(v2, v1, v3, v2, v1)
	case opcode.Dup2X2:
		v1, err := f.Pop()
		if err != nil {
			return err
		}
		if v1.Size() == 2 {
			v2, err := f.Pop()
			if err != nil {
				return err
			}
			if v2.Size() == 2 {
				push(v1, v2, v1)
				return nil
			}
			v3, err := pop1()
			if err != nil {
				return err
			}
			push(v1, v3, v2, v1)
			return nil
		}
		v2, err := pop1()
		if err != nil {
			return err
		}
		v3, err := f.Pop()
		if err != nil {
			return err
		}
		if v3.Size() == 2 {
			push(v2, v1, v3, v2, v1)
			return nil
		}
		v4, err := pop1()
		if err != nil {
			return err
		}
		push(v2, v1, v4, v3, v2, v1)
	case opcode.Swap:
		v1, err := pop1()
		if err != nil {
			return err
		}
		v2, err := pop1()
		if err != nil {
			return err
		}
		push(v1, v2)
	}
	return nil
}
