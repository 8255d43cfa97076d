package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"jasm/internal/diag"
	"jasm/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>: <SEV> <CODE>: <Message>
// затем строку листинга с подчёркиванием ^~~~ и, по опции, Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := location(d.Primary, fs, opts.PathMode)
		header := fmt.Sprintf("%s: %s %s: %s",
			p.path.Sprint(loc),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		fmt.Fprintln(w, header)
		writeContext(w, p, d.Primary, fs, opts)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s: %s\n", p.info.Sprint("note:"), location(n.Span, fs, opts.PathMode), n.Msg)
			}
		}
	}
}

func location(span source.Span, fs *source.FileSet, mode PathMode) string {
	path := "<input>"
	if fs != nil {
		if f := fs.Get(span.File); f != nil {
			path = f.FormatPath(mode.name(), fs.BaseDir())
		}
	}
	if !span.HasLine() {
		return path
	}
	return fmt.Sprintf("%s:%d", path, span.Line)
}

// writeContext печатает строку ошибки и opts.Context строк вокруг неё.
func writeContext(w io.Writer, p palette, span source.Span, fs *source.FileSet, opts PrettyOpts) {
	if fs == nil || !span.HasLine() {
		return
	}
	f := fs.Get(span.File)
	if f == nil || span.Line > f.LineCount() {
		return
	}
	from := max(1, span.Line-opts.Context)
	to := min(f.LineCount(), span.Line+opts.Context)
	digits := len(fmt.Sprint(to))
	for n := from; n <= to; n++ {
		text := clip(strings.ReplaceAll(f.GetLine(n), "\t", "    "), opts.Width, digits)
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", digits, n), text)
		if n != span.Line {
			continue
		}
		trimmed := strings.TrimLeft(text, " ")
		if trimmed == "" {
			continue
		}
		indent := runewidth.StringWidth(text) - runewidth.StringWidth(trimmed)
		underline := "^" + strings.Repeat("~", max(0, runewidth.StringWidth(strings.TrimRight(trimmed, " "))-1))
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprint(strings.Repeat(" ", digits)+" |"), strings.Repeat(" ", indent), p.caret.Sprint(underline))
	}
}

func clip(text string, width, digits int) string {
	if width <= 0 {
		return text
	}
	room := width - digits - 4
	if room <= 3 || runewidth.StringWidth(text) <= room {
		return text
	}
	return runewidth.Truncate(text, room, "...")
}
