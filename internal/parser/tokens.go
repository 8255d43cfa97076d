package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"jasm/internal/diag"
)

// groupKeywords may open a bracket group; any other '[' is an array
// descriptor.
var groupKeywords = []string{"range", "labels", "offsets", "mapping", "default", "handle", "args"}

// scanState tracks quotes and paren/bracket groups while walking a line.
type scanState struct {
	stack []byte
	quote rune
	esc   bool
}

func (st *scanState) inQuote() bool  { return st.quote != 0 }
func (st *scanState) topLevel() bool { return st.quote == 0 && len(st.stack) == 0 }

// feed consumes r found at byte offset i of s. itemStart says whether r
// begins a new token, which is where a char literal may open.
func (st *scanState) feed(s string, i int, r rune, itemStart bool) error {
	if st.quote != 0 {
		switch {
		case st.esc:
			st.esc = false
		case r == '\\':
			st.esc = true
		case r == st.quote:
			st.quote = 0
		}
		return nil
	}
	switch {
	case r == '"' || (r == '\'' && itemStart):
		st.quote = r
	case r == '(':
		st.stack = append(st.stack, '(')
	case r == '[' && opensGroup(s, i):
		st.stack = append(st.stack, '[')
	case r == ')' || (r == ']' && len(st.stack) > 0):
		want := byte('(')
		if r == ']' {
			want = '['
		}
		if n := len(st.stack); n == 0 || st.stack[n-1] != want {
			return fmt.Errorf("unbalanced %q", r)
		}
		st.stack = st.stack[:len(st.stack)-1]
	}
	return nil
}

func (st *scanState) finish() error {
	if st.quote != 0 {
		return fmt.Errorf("unterminated quote")
	}
	if len(st.stack) != 0 {
		return fmt.Errorf("unbalanced brackets")
	}
	return nil
}

// opensGroup reports whether the '[' at i follows one of groupKeywords.
func opensGroup(s string, i int) bool {
	j := i
	for j > 0 && isLetter(s[j-1]) {
		j--
	}
	if j > 0 && !strings.ContainsRune(" \t,[(", rune(s[j-1])) {
		return false
	}
	word := s[j:i]
	for _, kw := range groupKeywords {
		if strings.EqualFold(word, kw) {
			return true
		}
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// fields splits a line on whitespace. Quoted strings, parens and keyword
// bracket groups stay in one token, so `labels[A, B]` and `m(I a, J b)V`
// survive.
func fields(line string) ([]string, error) {
	var (
		out   []string
		st    scanState
		start = -1
	)
	for i, r := range line {
		if st.topLevel() && unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, line[start:i])
				start = -1
			}
			continue
		}
		if err := st.feed(line, i, r, start < 0); err != nil {
			return nil, err
		}
		if start < 0 {
			start = i
		}
	}
	if err := st.finish(); err != nil {
		return nil, err
	}
	if start >= 0 {
		out = append(out, line[start:])
	}
	return out, nil
}

// splitTop splits s on sep where sep is outside quotes and groups.
func splitTop(s string, sep rune) []string {
	var (
		out  []string
		st   scanState
		last int
	)
	for i, r := range s {
		if st.topLevel() && r == sep {
			out = append(out, strings.TrimSpace(s[last:i]))
			last = i + utf8.RuneLen(r)
			continue
		}
		_ = st.feed(s, i, r, strings.TrimSpace(s[last:i]) == "")
	}
	return append(out, strings.TrimSpace(s[last:]))
}

// list parses the inside of a bracket group as a comma separated list.
// An empty group yields no items.
func list(inner string) []string {
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	return splitTop(inner, ',')
}

// bracketed strips `keyword[` ... `]` case-insensitively.
func bracketed(tok, keyword string) (string, bool) {
	if len(tok) < len(keyword)+2 || !strings.EqualFold(tok[:len(keyword)], keyword) {
		return "", false
	}
	rest := tok[len(keyword):]
	if rest[0] != '[' || rest[len(rest)-1] != ']' {
		return "", false
	}
	return rest[1 : len(rest)-1], true
}

// stripComment drops a trailing `//` comment that is outside any quotes.
func stripComment(line string) string {
	var st scanState
	for i, r := range line {
		if !st.inQuote() && r == '/' && strings.HasPrefix(line[i:], "//") {
			return strings.TrimRightFunc(line[:i], unicode.IsSpace)
		}
		_ = st.feed(line, i, r, i == 0 || unicode.IsSpace(rune(line[i-1])))
	}
	return line
}

// unquote reads a quoted literal, delimited by q, and resolves escapes.
func unquote(tok string, q byte) (string, *lineError) {
	if len(tok) < 2 || tok[0] != q || tok[len(tok)-1] != q {
		return "", errf(diag.SynBadString, "expected %c-quoted literal, got %s", q, tok)
	}
	return unescape(tok[1 : len(tok)-1])
}

func unescape(s string) (string, *lineError) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errf(diag.SynBadString, "dangling escape at end of string")
		}
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '"', '\'', '\\':
			sb.WriteByte(s[i])
		case 'u':
			r, n, err := hexRune(s[i+1:])
			if err != nil {
				return "", err
			}
			i += n
			if utf16.IsSurrogate(r) {
				// пара суррогатов записывается двумя \u
				if strings.HasPrefix(s[i+1:], `\u`) {
					if r2, n2, err2 := hexRune(s[i+3:]); err2 == nil {
						if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
							r = dec
							i += 2 + n2
						}
					}
				}
			}
			sb.WriteRune(r)
		default:
			return "", errf(diag.SynBadString, "unknown escape \\%c", s[i])
		}
	}
	return sb.String(), nil
}

func hexRune(s string) (rune, int, *lineError) {
	if len(s) < 4 {
		return 0, 0, errf(diag.SynBadString, "truncated \\u escape")
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, errf(diag.SynBadString, "bad \\u escape %q", s[:4])
	}
	return rune(v), 4, nil
}

// isName accepts label and variable names: no whitespace and none of the
// characters the grammar uses as punctuation.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || strings.ContainsRune(`:;,"'()[]{}=`, r) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
