// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"context"
	"fmt"

	"jasm/internal/asm"
	"jasm/internal/disasm"
	"jasm/internal/insn"
	"jasm/internal/parser"
)

// CheckRoundTrip assembles text, disassembles the member and assembles the
// listing it got back:
// 1) the disassembled listing assembles without errors
// 2) disassembling the second member yields the same listing
// 3) both members have the same header, opcodes, handlers and locals count
func CheckRoundTrip(text string, opts asm.Options) error {
	first, err := compile(text, opts)
	if err != nil {
		return fmt.Errorf("listing does not assemble: %w", err)
	}
	listing, err := disassemble(first.Member)
	if err != nil {
		return err
	}
	second, err := compile(listing, opts)
	if err != nil {
		return fmt.Errorf("disassembled listing does not assemble: %w\n%s", err, listing)
	}
	again, err := disassemble(second.Member)
	if err != nil {
		return err
	}
	if again != listing {
		return fmt.Errorf("listing is not stable:\n--- first\n%s--- second\n%s", listing, again)
	}
	return sameShape(first.Member, second.Member)
}

func compile(text string, opts asm.Options) (*asm.Output, error) {
	return asm.Compile(context.Background(), parser.Parse(text, parser.Options{}), opts)
}

func disassemble(m *insn.Member) (string, error) {
	res, err := disasm.Disassemble(m, disasm.Options{IndyAlias: true})
	if err != nil {
		return "", fmt.Errorf("disassemble: %w", err)
	}
	return res.Text(), nil
}

func sameShape(a, b *insn.Member) error {
	if a.Kind != b.Kind || a.Access != b.Access || a.Name != b.Name || a.Desc != b.Desc {
		return fmt.Errorf("header %s%s differs from %s%s", a.Name, a.Desc, b.Name, b.Desc)
	}
	if len(a.Instructions) != len(b.Instructions) {
		return fmt.Errorf("instruction count %d != %d", len(a.Instructions), len(b.Instructions))
	}
	for i := range a.Instructions {
		if a.Instructions[i].Op != b.Instructions[i].Op {
			return fmt.Errorf("instruction %d: %v != %v", i, a.Instructions[i].Op, b.Instructions[i].Op)
		}
	}
	if len(a.TryCatches) != len(b.TryCatches) {
		return fmt.Errorf("handler count %d != %d", len(a.TryCatches), len(b.TryCatches))
	}
	if len(a.Locals) != len(b.Locals) {
		return fmt.Errorf("local count %d != %d", len(a.Locals), len(b.Locals))
	}
	if a.MaxLocals != b.MaxLocals || a.MaxStack != b.MaxStack {
		return fmt.Errorf("max_locals/max_stack %d/%d != %d/%d", a.MaxLocals, a.MaxStack, b.MaxLocals, b.MaxStack)
	}
	return nil
}
