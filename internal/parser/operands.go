package parser

import (
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/opcode"
	"jasm/internal/types"
)

// parseInstruction resolves the mnemonic and hands the operands to the
// sub-parser its shape selects.
func parseInstruction(line int, text string) (*ast.Instruction, *lineError) {
	head, rest := splitHead(text)
	op, ok := opcode.Lookup(head)
	if !ok || op.IsPseudo() {
		return nil, errf(diag.SynUnknownInstruction, "unknown instruction or directive %q", head)
	}
	args, ferr := fields(rest)
	if ferr != nil {
		return nil, errf(diag.SynBadOperand, "%s: %v", op, ferr)
	}
	operand, err := parseOperand(op, args)
	if err != nil {
		return nil, errf(err.code, "%s: %s", op, err.msg)
	}
	return &ast.Instruction{Pos: ast.At(line), Op: op, Operand: operand}, nil
}

func parseOperand(op opcode.Opcode, args []string) (ast.Operand, *lineError) {
	want := func(n int, form string) *lineError {
		if len(args) != n {
			return errf(diag.SynBadOperand, "expected %s", form)
		}
		return nil
	}
	switch op.Shape() {
	case opcode.ShapeNone:
		if len(args) != 0 {
			return nil, errf(diag.SynBadOperand, "takes no operands")
		}
		return nil, nil
	case opcode.ShapeInt:
		if err := want(1, "one integer operand"); err != nil {
			return nil, err
		}
		return parseIntOperand(op, args[0])
	case opcode.ShapeVar:
		if err := want(1, "a variable name or slot"); err != nil {
			return nil, err
		}
		v, err := parseVar(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.VarOperand{Var: v}, nil
	case opcode.ShapeIinc:
		if err := want(2, "a variable and an increment"); err != nil {
			return nil, err
		}
		v, err := parseVar(args[0])
		if err != nil {
			return nil, err
		}
		delta, err := parseRanged[int16](args[1], "increment")
		if err != nil {
			return nil, err
		}
		return &ast.IincOperand{Var: v, Delta: int32(delta)}, nil
	case opcode.ShapeType:
		if err := want(1, "a class name or array descriptor"); err != nil {
			return nil, err
		}
		if err := checkClassRef(args[0]); err != nil {
			return nil, err
		}
		return &ast.TypeOperand{Type: args[0]}, nil
	case opcode.ShapeField:
		return parseFieldRef(args)
	case opcode.ShapeMethod:
		itf := false
		if n := len(args); n > 0 && strings.EqualFold(args[n-1], "itf") {
			itf = true
			args = args[:n-1]
		}
		m, err := parseMethodRef(args)
		if err != nil {
			return nil, err
		}
		m.Itf = itf || op == opcode.Invokeinterface
		return m, nil
	case opcode.ShapeJump:
		if err := want(1, "a label"); err != nil {
			return nil, err
		}
		if !isName(args[0]) {
			return nil, errf(diag.SynBadLabel, "invalid label name %q", args[0])
		}
		return &ast.JumpOperand{Label: args[0]}, nil
	case opcode.ShapeLdc:
		if err := want(1, "one constant"); err != nil {
			return nil, err
		}
		c, err := parseConstant(args[0])
		if err != nil {
			return nil, err
		}
		return &ast.LdcOperand{Value: c}, nil
	case opcode.ShapeTableSwitch:
		return parseTableSwitch(args)
	case opcode.ShapeLookupSwitch:
		return parseLookupSwitch(args)
	case opcode.ShapeMultiArray:
		return parseMultiArray(args)
	case opcode.ShapeInvokeDynamic:
		return parseInvokeDynamic(args)
	}
	return nil, errf(diag.SynUnknownInstruction, "no operand grammar")
}

func parseIntOperand(op opcode.Opcode, tok string) (ast.Operand, *lineError) {
	switch op {
	case opcode.Bipush:
		v, err := parseRanged[int8](tok, "byte")
		if err != nil {
			return nil, err
		}
		return &ast.IntOperand{Value: int32(v)}, nil
	case opcode.Sipush:
		v, err := parseRanged[int16](tok, "short")
		if err != nil {
			return nil, err
		}
		return &ast.IntOperand{Value: int32(v)}, nil
	case opcode.Newarray:
		if code, ok := types.NewArrayCode(tok); ok {
			return &ast.IntOperand{Value: code}, nil
		}
		if code, ok := types.NewArrayCode(strings.ToLower(tok)); ok {
			return &ast.IntOperand{Value: code}, nil
		}
		if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
			if _, ok := types.NewArrayElement(int32(n)); ok {
				return &ast.IntOperand{Value: int32(n)}, nil
			}
		}
		return nil, errf(diag.SynBadOperand, "unknown primitive array type %q", tok)
	}
	v, err := parseRanged[int32](tok, "int")
	if err != nil {
		return nil, err
	}
	return &ast.IntOperand{Value: v}, nil
}

type ranged interface {
	~int8 | ~int16 | ~int32 | ~uint16
}

// parseRanged reads a decimal integer and narrows it to T.
func parseRanged[T ranged](tok, what string) (T, *lineError) {
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, errf(diag.SynBadNumber, "bad %s literal %q", what, tok)
	}
	n, cerr := safecast.Conv[T](v)
	if cerr != nil {
		return 0, errf(diag.SynOperandRange, "%s operand %d out of range", what, v)
	}
	return n, nil
}

func parseVar(tok string) (ast.VarRef, *lineError) {
	if isDigits(tok) {
		slot, err := parseRanged[uint16](tok, "slot")
		if err != nil {
			return ast.VarRef{}, err
		}
		return ast.RawVar(int(slot)), nil
	}
	if !isName(tok) {
		return ast.VarRef{}, errf(diag.SynBadOperand, "invalid variable name %q", tok)
	}
	return ast.NamedVar(tok), nil
}

func checkClassRef(tok string) *lineError {
	if strings.HasPrefix(tok, "[") {
		if _, err := types.ParseField(tok); err != nil {
			return errf(diag.SynBadDescriptor, "%v", err)
		}
		return nil
	}
	if err := types.ValidateInternalName(tok); err != nil {
		return errf(diag.SynBadDescriptor, "%v", err)
	}
	return nil
}

// splitOwner cuts `owner.name` at the last dot.
func splitOwner(ref string) (string, string, *lineError) {
	dot := strings.LastIndexByte(ref, '.')
	if dot <= 0 || dot == len(ref)-1 {
		return "", "", errf(diag.SynBadOperand, "expected owner.name, got %q", ref)
	}
	owner, name := ref[:dot], ref[dot+1:]
	if err := checkClassRef(owner); err != nil {
		return "", "", err
	}
	return owner, name, nil
}

// parseFieldRef reads `owner.name desc`.
func parseFieldRef(args []string) (*ast.FieldOperand, *lineError) {
	if len(args) != 2 {
		return nil, errf(diag.SynBadOperand, "expected owner.name descriptor")
	}
	owner, name, err := splitOwner(args[0])
	if err != nil {
		return nil, err
	}
	if _, perr := types.ParseField(args[1]); perr != nil {
		return nil, errf(diag.SynBadDescriptor, "%v", perr)
	}
	return &ast.FieldOperand{Owner: owner, Name: name, Desc: args[1]}, nil
}

// parseMethodRef reads `owner.name(desc)ret`, also accepting a space
// before the descriptor.
func parseMethodRef(args []string) (*ast.MethodOperand, *lineError) {
	var ref string
	switch {
	case len(args) == 1:
		ref = args[0]
	case len(args) == 2 && strings.HasPrefix(args[1], "("):
		ref = args[0] + args[1]
	default:
		return nil, errf(diag.SynBadOperand, "expected owner.name(descriptor)")
	}
	open := strings.IndexByte(ref, '(')
	if open < 0 {
		return nil, errf(diag.SynBadOperand, "missing method descriptor in %q", ref)
	}
	owner, name, err := splitOwner(ref[:open])
	if err != nil {
		return nil, err
	}
	desc := ref[open:]
	if _, _, perr := types.ParseMethod(desc); perr != nil {
		return nil, errf(diag.SynBadDescriptor, "%v", perr)
	}
	return &ast.MethodOperand{Owner: owner, Name: name, Desc: desc}, nil
}

// parseTableSwitch reads `range[lo:hi] labels[...] default[L]`.
func parseTableSwitch(args []string) (ast.Operand, *lineError) {
	if len(args) != 3 {
		return nil, errf(diag.SynBadOperand, "expected range[lo:hi] labels[...] default[label]")
	}
	rng, ok := bracketed(args[0], "range")
	if !ok {
		return nil, errf(diag.SynBadOperand, "expected range[lo:hi], got %s", args[0])
	}
	loTok, hiTok, ok := strings.Cut(rng, ":")
	if !ok {
		return nil, errf(diag.SynBadOperand, "range needs lo:hi")
	}
	lo, err := parseRanged[int32](strings.TrimSpace(loTok), "range")
	if err != nil {
		return nil, err
	}
	hi, err := parseRanged[int32](strings.TrimSpace(hiTok), "range")
	if err != nil {
		return nil, err
	}
	if hi < lo {
		return nil, errf(diag.SynOperandRange, "empty range [%d:%d]", lo, hi)
	}
	inner, ok := bracketed(args[1], "labels")
	if !ok {
		inner, ok = bracketed(args[1], "offsets")
	}
	if !ok {
		return nil, errf(diag.SynBadOperand, "expected labels[...], got %s", args[1])
	}
	labels := list(inner)
	if int64(len(labels)) != int64(hi)-int64(lo)+1 {
		return nil, errf(diag.SynBadOperand, "range [%d:%d] needs %d labels, got %d",
			lo, hi, int64(hi)-int64(lo)+1, len(labels))
	}
	if err := checkLabels(labels); err != nil {
		return nil, err
	}
	dflt, err := parseDefault(args[2])
	if err != nil {
		return nil, err
	}
	return &ast.TableSwitchOperand{Min: lo, Max: hi, Labels: labels, Default: dflt}, nil
}

// parseLookupSwitch reads `mapping[key=L, ...] default[L]`.
func parseLookupSwitch(args []string) (ast.Operand, *lineError) {
	if len(args) != 2 {
		return nil, errf(diag.SynBadOperand, "expected mapping[key=label, ...] default[label]")
	}
	inner, ok := bracketed(args[0], "mapping")
	if !ok {
		return nil, errf(diag.SynBadOperand, "expected mapping[...], got %s", args[0])
	}
	out := &ast.LookupSwitchOperand{}
	for _, pair := range list(inner) {
		k, l, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errf(diag.SynBadOperand, "mapping entry %q needs key=label", pair)
		}
		key, err := parseRanged[int32](strings.TrimSpace(k), "key")
		if err != nil {
			return nil, err
		}
		if slices.Contains(out.Keys, key) {
			return nil, errf(diag.SynBadOperand, "duplicate key %d", key)
		}
		out.Keys = append(out.Keys, key)
		out.Labels = append(out.Labels, strings.TrimSpace(l))
	}
	if err := checkLabels(out.Labels); err != nil {
		return nil, err
	}
	dflt, err := parseDefault(args[1])
	if err != nil {
		return nil, err
	}
	out.Default = dflt
	return out, nil
}

func parseDefault(tok string) (string, *lineError) {
	l, ok := bracketed(tok, "default")
	if !ok {
		return "", errf(diag.SynBadOperand, "expected default[label], got %s", tok)
	}
	l = strings.TrimSpace(l)
	if !isName(l) {
		return "", errf(diag.SynBadLabel, "invalid label name %q", l)
	}
	return l, nil
}

func checkLabels(labels []string) *lineError {
	for _, l := range labels {
		if !isName(l) {
			return errf(diag.SynBadLabel, "invalid label name %q", l)
		}
	}
	return nil
}

// parseMultiArray reads `desc dims`; dims may not exceed the array depth.
func parseMultiArray(args []string) (ast.Operand, *lineError) {
	if len(args) != 2 {
		return nil, errf(diag.SynBadOperand, "expected array descriptor and dimensions")
	}
	t, perr := types.ParseField(args[0])
	if perr != nil || t.Sort() != types.Array {
		return nil, errf(diag.SynBadDescriptor, "%q is not an array descriptor", args[0])
	}
	dims, err := parseRanged[int16](args[1], "dimensions")
	if err != nil {
		return nil, err
	}
	if dims < 1 || dims > 255 || int(dims) > t.Dimensions() {
		return nil, errf(diag.SynOperandRange, "dimensions %d outside 1..%d", dims, t.Dimensions())
	}
	return &ast.MultiArrayOperand{Desc: args[0], Dims: int32(dims)}, nil
}

// parseInvokeDynamic reads `name desc handle[...] [args[...]]`.
func parseInvokeDynamic(args []string) (ast.Operand, *lineError) {
	if len(args) != 3 && len(args) != 4 {
		return nil, errf(diag.SynBadOperand, "expected name descriptor handle[...] args[...]")
	}
	if !isName(args[0]) {
		return nil, errf(diag.SynBadOperand, "invalid call site name %q", args[0])
	}
	if _, _, err := types.ParseMethod(args[1]); err != nil {
		return nil, errf(diag.SynBadDescriptor, "%v", err)
	}
	bsm, err := parseHandle(args[2])
	if err != nil {
		return nil, err
	}
	out := &ast.InvokeDynamicOperand{Name: args[0], Desc: args[1], Bootstrap: bsm}
	if len(args) == 4 {
		inner, ok := bracketed(args[3], "args")
		if !ok {
			return nil, errf(diag.SynBadOperand, "expected args[...], got %s", args[3])
		}
		for _, a := range list(inner) {
			c, err := parseConstant(a)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, c)
		}
	}
	return out, nil
}
