// Package parser turns a member listing into an ast.Root, one node per
// line. A line that fails its grammar yields an Error for that line only;
// the remaining lines are still parsed.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/source"
)

// MetaAlias is the alias predefined for the lambda metafactory handle.
const MetaAlias = "H_META"

type Options struct {
	// MaxErrors stops parsing after that many problems; 0 means no limit.
	MaxErrors uint
	// Reporter, when set, also receives every problem as a diagnostic.
	Reporter diag.Reporter
	// File is the span file id used for Reporter.
	File source.FileID
	// Aliases are predefined in addition to H_META.
	Aliases map[string]string
}

// Enough - достигнут ли лимит ошибок
func (o *Options) Enough(n int) bool {
	return o.MaxErrors != 0 && uint(n) >= o.MaxErrors
}

// Error is a problem with one line.
type Error struct {
	Line    int
	Code    diag.Code
	Message string
}

func (e *Error) Error() string {
	if e.Line <= 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Result is the tree plus the problems met on the way. Root is populated
// with every line that parsed, even when Problems is not empty.
type Result struct {
	Root     *ast.Root
	Problems []*Error
}

func (r *Result) Success() bool {
	return len(r.Problems) == 0
}

// Err joins the problems into one error, or returns nil.
func (r *Result) Err() error {
	if r.Success() {
		return nil
	}
	msgs := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Errorf("%d syntax error(s): %s", len(r.Problems), strings.Join(msgs, "; "))
}

// lineError is a sub-parser failure before a line number is attached.
type lineError struct {
	code diag.Code
	msg  string
}

func errf(code diag.Code, format string, args ...any) *lineError {
	return &lineError{code: code, msg: fmt.Sprintf(format, args...)}
}

// Parser — состояние разбора одного листинга
type Parser struct {
	opts    Options
	aliases map[string]string
	res     *Result
}

// Parse parses listing text.
func Parse(text string, opts Options) *Result {
	return ParseLines(source.SplitLines(text), opts)
}

// ParseFile parses a loaded listing and reports against its file id.
func ParseFile(f *source.File, opts Options) *Result {
	opts.File = f.ID
	return ParseLines(f.Lines(), opts)
}

// ParseLines runs both passes over pre-split lines.
func ParseLines(lines []source.Line, opts Options) *Result {
	p := &Parser{
		opts:    opts,
		aliases: map[string]string{MetaAlias: ast.FormatHandle(insn.MetaFactory)},
		res:     &Result{Root: &ast.Root{}},
	}
	for k, v := range opts.Aliases {
		p.aliases[k] = v
	}
	p.collectAliases(lines)
	for _, ln := range lines {
		if p.opts.Enough(len(p.res.Problems)) {
			p.res.Problems = append(p.res.Problems, &Error{
				Line:    ln.Number,
				Code:    diag.SynTooManyErrors,
				Message: "too many errors, parsing stopped",
			})
			break
		}
		p.parseLine(ln)
	}
	return p.res
}

var aliasRef = regexp.MustCompile(`\$\{([^}]*)\}`)

// collectAliases is the first pass: it records ALIAS lines in order, so an
// alias may use the ones defined above it.
func (p *Parser) collectAliases(lines []source.Line) {
	for _, ln := range lines {
		text := strings.TrimSpace(ln.Text)
		if !hasKeyword(text, "ALIAS") {
			continue
		}
		text, _ = p.expand(text)
		if a, err := parseAlias(text); err == nil {
			p.aliases[a.Name] = a.Value
		}
	}
}

// expand substitutes ${name} references and returns the first unknown name.
func (p *Parser) expand(text string) (string, string) {
	if !strings.Contains(text, "${") {
		return text, ""
	}
	unknown := ""
	out := aliasRef.ReplaceAllStringFunc(text, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := p.aliases[name]; ok {
			return v
		}
		if unknown == "" {
			unknown = name
		}
		return m
	})
	return out, unknown
}

func (p *Parser) fail(line int, e *lineError) {
	p.res.Problems = append(p.res.Problems, &Error{Line: line, Code: e.code, Message: e.msg})
	if p.opts.Reporter != nil {
		diag.ReportError(p.opts.Reporter, e.code, source.At(p.opts.File, line), e.msg).Emit()
	}
}

func (p *Parser) parseLine(ln source.Line) {
	text := strings.TrimSpace(ln.Text)
	if text == "" {
		return
	}
	if rest, ok := strings.CutPrefix(text, "//"); ok {
		p.res.Root.Add(&ast.Comment{Pos: ast.At(ln.Number), Text: strings.TrimSpace(rest)})
		return
	}
	text, unknown := p.expand(text)
	if unknown != "" {
		p.fail(ln.Number, errf(diag.SynUnknownAlias, "unknown alias ${%s}", unknown))
		return
	}
	if !hasKeyword(text, "ALIAS") && !hasKeyword(text, "SIGNATURE") {
		text = stripComment(text)
	}
	node, err := p.parseConstruct(ln.Number, text)
	if err != nil {
		p.fail(ln.Number, err)
		return
	}
	p.res.Root.Add(node)
}

// parseConstruct dispatches on the first token: label, directive, or mnemonic.
func (p *Parser) parseConstruct(line int, text string) (ast.Node, *lineError) {
	head, rest := splitHead(text)
	if strings.HasSuffix(head, ":") && rest == "" {
		return parseLabel(line, head)
	}
	switch strings.ToUpper(head) {
	case "DEFINE":
		return parseDefinition(line, rest)
	case "TRY":
		return parseTry(line, rest)
	case "ALIAS":
		a, err := parseAlias(text)
		if err != nil {
			return nil, err
		}
		a.Pos = ast.At(line)
		return a, nil
	case "SIGNATURE":
		if rest == "" {
			return nil, errf(diag.SynBadDirective, "SIGNATURE needs a signature")
		}
		return &ast.Signature{Pos: ast.At(line), Text: rest}, nil
	case "THROWS":
		return parseThrows(line, rest)
	case "VALUE":
		c, err := parseConstant(rest)
		if err != nil {
			return nil, err
		}
		return &ast.DefaultValue{Pos: ast.At(line), Value: c}, nil
	case "LINE":
		return parseLineNumber(line, rest)
	case "EXPR":
		return parseExpr(line, rest)
	}
	in, err := parseInstruction(line, text)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// hasKeyword reports whether text starts with the directive kw followed by
// whitespace or the end of the line.
func hasKeyword(text, kw string) bool {
	if !hasPrefixFold(text, kw) {
		return false
	}
	return len(text) == len(kw) || text[len(kw)] == ' ' || text[len(kw)] == '\t'
}

// splitHead cuts the first whitespace separated token off text.
func splitHead(text string) (string, string) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}
