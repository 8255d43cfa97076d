package driver

import (
	"fmt"
	"io"

	"jasm/internal/asm"
	"jasm/internal/ast"
	"jasm/internal/disasm"
	"jasm/internal/opcode"
)

// WriteFrames prints every instruction of a verified member with the frame
// the analyzer computed before it. Unreachable instructions show no frame.
func WriteFrames(w io.Writer, out *asm.Output) error {
	if out == nil || out.Member == nil {
		return fmt.Errorf("nothing to print")
	}
	// имена меток и операнды берём у дизассемблера, чтобы текст совпадал с листингом
	res, err := disasm.Disassemble(out.Member, disasm.Options{})
	if err != nil {
		return err
	}
	code := out.Member.Instructions
	if len(res.Body) != len(code) {
		return fmt.Errorf("listing has %d instructions, member %d", len(res.Body), len(code))
	}
	for i, n := range res.Body {
		line := 0
		if i < len(out.Lines) {
			line = out.Lines[i]
		}
		frame := "unreachable"
		if i < len(out.Frames) && out.Frames[i] != nil {
			frame = out.Frames[i].String()
		}
		text := ast.FormatNode(n)
		if code[i].Op != opcode.Label {
			text = "  " + text
		}
		if _, err := fmt.Fprintf(w, "%4d %-32s %s\n", line, text, frame); err != nil {
			return err
		}
	}
	return nil
}
