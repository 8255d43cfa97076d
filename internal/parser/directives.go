package parser

import (
	"strconv"
	"strings"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/types"
)

func parseLabel(line int, head string) (ast.Node, *lineError) {
	name := strings.TrimSuffix(head, ":")
	if !isName(name) {
		return nil, errf(diag.SynBadLabel, "invalid label name %q", name)
	}
	return &ast.Label{Pos: ast.At(line), Name: name}, nil
}

// parseDefinition reads `mods... name(desc arg, ...)ret` or `mods... desc name`.
func parseDefinition(line int, rest string) (ast.Node, *lineError) {
	toks, ferr := fields(rest)
	if ferr != nil {
		return nil, errf(diag.SynBadDefinition, "%v", ferr)
	}
	if len(toks) == 0 {
		return nil, errf(diag.SynBadDefinition, "DEFINE needs a member")
	}
	def := &ast.Definition{Pos: ast.At(line)}
	var modTokens []string
	last := toks[len(toks)-1]
	if strings.Contains(last, "(") {
		def.Kind = insn.KindMethod
		modTokens = toks[:len(toks)-1]
		if err := parseMethodHeader(def, last); err != nil {
			return nil, err
		}
	} else {
		if len(toks) < 2 {
			return nil, errf(diag.SynBadDefinition, "field definition needs a descriptor and a name")
		}
		def.Kind = insn.KindField
		modTokens = toks[:len(toks)-2]
		def.Type, def.Name = toks[len(toks)-2], last
		if _, err := types.ParseField(def.Type); err != nil {
			return nil, errf(diag.SynBadDescriptor, "field %s: %v", def.Name, err)
		}
		if !isName(def.Name) {
			return nil, errf(diag.SynBadDefinition, "invalid field name %q", def.Name)
		}
	}
	for _, tok := range modTokens {
		if strings.Contains(tok, "(") {
			return nil, errf(diag.SynBadDefinition, "unexpected %q before the member name", tok)
		}
		flag, ok := insn.ParseModifier(tok)
		if !ok {
			return nil, errf(diag.SynBadModifier, "unknown modifier %q", tok)
		}
		def.Modifiers = append(def.Modifiers, &ast.Modifier{
			Pos:  ast.At(line),
			Name: strings.ToLower(tok),
			Flag: flag,
		})
	}
	return def, nil
}

func parseMethodHeader(def *ast.Definition, tok string) *lineError {
	open := strings.IndexByte(tok, '(')
	closing := strings.LastIndexByte(tok, ')')
	if open <= 0 || closing < open {
		return errf(diag.SynBadDefinition, "malformed method header %q", tok)
	}
	def.Name = tok[:open]
	def.Type = tok[closing+1:]
	if def.Type == "" {
		return errf(diag.SynBadDefinition, "method %s has no return type", def.Name)
	}
	ret, err := types.Parse(def.Type)
	if err != nil || ret.Sort() == types.Method {
		return errf(diag.SynBadDescriptor, "method %s: bad return type %q", def.Name, def.Type)
	}
	def.Args = []*ast.Arg{}
	for i, item := range list(tok[open+1 : closing]) {
		parts := strings.Fields(item)
		var arg ast.Arg
		switch len(parts) {
		case 1:
			// безымянный параметр получает свой номер
			arg = ast.Arg{Desc: parts[0], Name: strconv.Itoa(i)}
		case 2:
			arg = ast.Arg{Desc: parts[0], Name: parts[1]}
		default:
			return errf(diag.SynBadDefinition, "parameter %q: expected `descriptor name`", item)
		}
		if _, err := types.ParseField(arg.Desc); err != nil {
			return errf(diag.SynBadDescriptor, "parameter %s: %v", arg.Name, err)
		}
		if !isName(arg.Name) {
			return errf(diag.SynBadDefinition, "invalid parameter name %q", arg.Name)
		}
		def.Args = append(def.Args, &arg)
	}
	return nil
}

// parseTry reads `start end CATCH(type) handler`; CATCH(*) catches anything.
func parseTry(line int, rest string) (ast.Node, *lineError) {
	toks, ferr := fields(rest)
	if ferr != nil {
		return nil, errf(diag.SynBadDirective, "%v", ferr)
	}
	if len(toks) != 4 {
		return nil, errf(diag.SynBadDirective, "expected TRY start end CATCH(type) handler")
	}
	catch := toks[2]
	if !hasPrefixFold(catch, "CATCH(") || !strings.HasSuffix(catch, ")") {
		return nil, errf(diag.SynBadDirective, "expected CATCH(type), got %s", catch)
	}
	typ := strings.TrimSpace(catch[len("CATCH(") : len(catch)-1])
	if typ == "*" {
		typ = ""
	} else if err := types.ValidateInternalName(typ); err != nil {
		return nil, errf(diag.SynBadDescriptor, "catch type: %v", err)
	}
	for _, l := range []string{toks[0], toks[1], toks[3]} {
		if !isName(l) {
			return nil, errf(diag.SynBadLabel, "invalid label name %q", l)
		}
	}
	return &ast.TryCatch{
		Pos:     ast.At(line),
		Start:   toks[0],
		End:     toks[1],
		Handler: toks[3],
		Type:    typ,
	}, nil
}

// parseAlias reads `ALIAS name "value"`. Only the outer quotes are removed:
// the value is pasted verbatim wherever ${name} appears.
func parseAlias(text string) (*ast.Alias, *lineError) {
	_, rest := splitHead(text)
	name, value := splitHead(rest)
	if !isName(name) || strings.ContainsAny(name, "${}") {
		return nil, errf(diag.SynBadDirective, "invalid alias name %q", name)
	}
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return nil, errf(diag.SynBadDirective, "alias %s: value must be quoted", name)
	}
	return &ast.Alias{Name: name, Value: value[1 : len(value)-1]}, nil
}

func parseThrows(line int, rest string) (ast.Node, *lineError) {
	if err := types.ValidateInternalName(rest); err != nil || strings.ContainsAny(rest, " \t") {
		return nil, errf(diag.SynBadDescriptor, "THROWS needs a class name, got %q", rest)
	}
	return &ast.Throws{Pos: ast.At(line), Type: rest}, nil
}

func parseLineNumber(line int, rest string) (ast.Node, *lineError) {
	toks := strings.Fields(rest)
	if len(toks) != 2 {
		return nil, errf(diag.SynBadDirective, "expected LINE label number")
	}
	if !isName(toks[0]) {
		return nil, errf(diag.SynBadLabel, "invalid label name %q", toks[0])
	}
	n, err := strconv.ParseUint(toks[1], 10, 16)
	if err != nil {
		return nil, errf(diag.SynOperandRange, "line number %q out of range", toks[1])
	}
	return &ast.LineNumber{Pos: ast.At(line), Label: toks[0], Number: int32(n)}, nil
}

// parseExpr reads `EXPR insn; insn; ...`. The separator is a semicolon
// followed by whitespace, so a trailing descriptor is written `Lx;;`.
func parseExpr(line int, rest string) (ast.Node, *lineError) {
	expr := &ast.Expr{Pos: ast.At(line)}
	for _, part := range splitExpr(rest) {
		if part == "" {
			continue
		}
		head, _ := splitHead(part)
		if strings.HasSuffix(head, ":") {
			return nil, errf(diag.SynBadDirective, "labels are not allowed inside EXPR")
		}
		n, err := parseInstruction(line, part)
		if err != nil {
			return nil, err
		}
		expr.Body = append(expr.Body, n)
	}
	if len(expr.Body) == 0 {
		return nil, errf(diag.SynBadDirective, "EXPR needs at least one instruction")
	}
	return expr, nil
}

func splitExpr(s string) []string {
	var (
		out  []string
		st   scanState
		last int
	)
	for i, r := range s {
		if st.topLevel() && r == ';' && i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t') {
			out = append(out, strings.TrimSpace(s[last:i]))
			last = i + 1
			continue
		}
		_ = st.feed(s, i, r, strings.TrimSpace(s[last:i]) == "")
	}
	return append(out, strings.TrimSpace(s[last:]))
}
