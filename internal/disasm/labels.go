package disasm

import (
	"strconv"

	"jasm/internal/insn"
	"jasm/internal/opcode"
)

// nameLabels names try/catch labels EX_START, EX_END and EX_HANDLER (with a
// _n suffix when there are several blocks) and every other label A, B, ...,
// Z, AA, AB in order of appearance.
func (d *disassembler) nameLabels() {
	many := len(d.m.TryCatches) > 1
	for i, tc := range d.m.TryCatches {
		suffix := ""
		if many {
			suffix = "_" + strconv.Itoa(i+1)
		}
		d.nameOnce(tc.Start, "EX_START"+suffix)
		d.nameOnce(tc.End, "EX_END"+suffix)
		d.nameOnce(tc.Handler, "EX_HANDLER"+suffix)
	}
	n := 0
	for i := range d.m.Instructions {
		in := &d.m.Instructions[i]
		if in.Op != opcode.Label {
			continue
		}
		if _, ok := d.labels[in.Label]; !ok {
			d.labels[in.Label] = alphaName(n)
			n++
		}
	}
}

func (d *disassembler) nameOnce(id insn.LabelID, name string) {
	if _, ok := d.labels[id]; !ok {
		d.labels[id] = name
	}
}

// alphaName is the bijective base-26 spelling of n: 0 is A, 26 is AA.
func alphaName(n int) string {
	var buf []byte
	for n++; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('A'+(n-1)%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
