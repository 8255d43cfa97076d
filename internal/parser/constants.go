package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/types"
)

// parseConstant reads an LDC operand, a bootstrap argument or a VALUE.
func parseConstant(tok string) (insn.Constant, *lineError) {
	if tok == "" {
		return insn.Constant{}, errf(diag.SynBadOperand, "missing constant")
	}
	switch {
	case tok[0] == '"':
		s, err := unquote(tok, '"')
		if err != nil {
			return insn.Constant{}, err
		}
		return insn.StringConst(s), nil
	case tok[0] == '\'':
		s, err := unquote(tok, '\'')
		if err != nil {
			return insn.Constant{}, err
		}
		if utf8.RuneCountInString(s) != 1 {
			return insn.Constant{}, errf(diag.SynBadString, "char literal %s must hold one character", tok)
		}
		r, _ := utf8.DecodeRuneInString(s)
		if r > 0xffff {
			return insn.Constant{}, errf(diag.SynBadString, "char literal %s does not fit in 16 bits", tok)
		}
		return insn.IntConst(int32(r)), nil
	case hasPrefixFold(tok, "handle["):
		h, err := parseHandle(tok)
		if err != nil {
			return insn.Constant{}, err
		}
		return insn.HandleConst(h), nil
	case tok[0] == '(':
		if _, _, err := types.ParseMethod(tok); err != nil {
			return insn.Constant{}, errf(diag.SynBadDescriptor, "%v", err)
		}
		return insn.MethodTypeConst(tok), nil
	case tok[0] == '[' || (tok[0] == 'L' && strings.HasSuffix(tok, ";")):
		if _, err := types.ParseField(tok); err != nil {
			return insn.Constant{}, errf(diag.SynBadDescriptor, "%v", err)
		}
		return insn.TypeConst(tok), nil
	}
	return parseNumber(tok)
}

// parseNumber handles int, long (L), float (F) and double (D or a fraction
// or exponent) literals, including hex integers and NaN/Infinity.
func parseNumber(tok string) (insn.Constant, *lineError) {
	body := strings.TrimLeft(tok, "+-")
	neg := strings.HasPrefix(tok, "-")
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		return parseHex(tok, body[2:], neg)
	}
	last := tok[len(tok)-1]
	switch last {
	case 'L', 'l':
		v, err := strconv.ParseInt(tok[:len(tok)-1], 10, 64)
		if err != nil {
			return insn.Constant{}, errf(diag.SynBadNumber, "bad long literal %s", tok)
		}
		return insn.LongConst(v), nil
	case 'F', 'f':
		v, ok := parseFloat(tok[:len(tok)-1], 32)
		if !ok {
			return insn.Constant{}, errf(diag.SynBadNumber, "bad float literal %s", tok)
		}
		return insn.FloatConst(float32(v)), nil
	case 'D', 'd':
		v, ok := parseFloat(tok[:len(tok)-1], 64)
		if !ok {
			return insn.Constant{}, errf(diag.SynBadNumber, "bad double literal %s", tok)
		}
		return insn.DoubleConst(v), nil
	}
	if strings.ContainsAny(body, ".eE") || body == "NaN" || body == "Infinity" {
		v, ok := parseFloat(tok, 64)
		if !ok {
			return insn.Constant{}, errf(diag.SynBadNumber, "bad double literal %s", tok)
		}
		return insn.DoubleConst(v), nil
	}
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		if isDigits(body) {
			return insn.Constant{}, errf(diag.SynOperandRange, "int literal %s out of range, add an L suffix for long", tok)
		}
		return insn.Constant{}, errf(diag.SynBadOperand, "unrecognized constant %s", tok)
	}
	return insn.IntConst(int32(v)), nil
}

func parseHex(tok, digits string, neg bool) (insn.Constant, *lineError) {
	long := strings.HasSuffix(digits, "L") || strings.HasSuffix(digits, "l")
	if long {
		digits = digits[:len(digits)-1]
	}
	u, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return insn.Constant{}, errf(diag.SynBadNumber, "bad hex literal %s", tok)
	}
	if long {
		v := int64(u)
		if neg {
			v = -v
		}
		return insn.LongConst(v), nil
	}
	// 0xFFFFFFFF is a valid int literal with value -1
	u32, cerr := safecast.Conv[uint32](u)
	if cerr != nil {
		return insn.Constant{}, errf(diag.SynOperandRange, "hex literal %s out of int range", tok)
	}
	v := int32(u32)
	if neg {
		v = -v
	}
	return insn.IntConst(v), nil
}

func parseFloat(s string, bits int) (float64, bool) {
	switch strings.TrimPrefix(s, "+") {
	case "NaN":
		return math.NaN(), true
	case "Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseHandle reads handle[TAG owner.name desc [itf]]; a method descriptor
// may be glued to the name.
func parseHandle(tok string) (insn.Handle, *lineError) {
	inner, ok := bracketed(tok, "handle")
	if !ok {
		return insn.Handle{}, errf(diag.SynBadOperand, "expected handle[...], got %s", tok)
	}
	parts, ferr := fields(inner)
	if ferr != nil {
		return insn.Handle{}, errf(diag.SynBadOperand, "handle: %v", ferr)
	}
	if len(parts) < 2 {
		return insn.Handle{}, errf(diag.SynBadOperand, "handle needs a tag and a member reference")
	}
	tag, ok := insn.ParseHandleTag(parts[0])
	if !ok {
		return insn.Handle{}, errf(diag.SynBadOperand, "unknown handle tag %s", parts[0])
	}
	h := insn.Handle{Tag: tag}
	rest := parts[1:]
	if n := len(rest); n > 0 && strings.EqualFold(rest[n-1], "itf") {
		h.Itf = true
		rest = rest[:n-1]
	}
	ref := strings.Join(rest, " ")
	if tag.IsField() {
		f, err := parseFieldRef(rest)
		if err != nil {
			return insn.Handle{}, err
		}
		h.Owner, h.Name, h.Desc = f.Owner, f.Name, f.Desc
		return h, nil
	}
	m, err := parseMethodRef(rest)
	if err != nil {
		return insn.Handle{}, errf(err.code, "handle %s: %s", ref, err.msg)
	}
	h.Owner, h.Name, h.Desc = m.Owner, m.Name, m.Desc
	return h, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
