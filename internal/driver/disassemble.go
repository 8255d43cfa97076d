package driver

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"jasm/internal/diag"
	"jasm/internal/disasm"
	"jasm/internal/source"
	"jasm/internal/trace"
)

type DisassembleOptions struct {
	IndyAlias bool
	Logger    *zerolog.Logger
}

// DisassembleResult carries the text plus the repairs as warnings. Bag
// spans point at the member file as a whole.
type DisassembleResult struct {
	Text string
	Bag  *diag.Bag
}

// DisassembleFile loads a member file and turns it back into a listing.
// fs receives an entry for path so diagnostics can name it.
func DisassembleFile(ctx context.Context, fs *source.FileSet, path string, opts DisassembleOptions) *DisassembleResult {
	res := &DisassembleResult{Bag: diag.NewBag(0)}
	id := fs.AddVirtual(path, nil)
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("file", path).Logger()

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "disassemble "+path)
	defer span.End("")
	start := time.Now()

	m, err := LoadMember(path)
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IODecodeMember, source.At(id, -1), err.Error()))
		return res
	}
	mctx, member := trace.StartMember(ctx, m.Kind.String(), m.Name, m.Desc)
	_, pass := trace.StartPass(mctx, trace.PassDisassemble)
	out, err := disasm.Disassemble(m, disasm.Options{IndyAlias: opts.IndyAlias, Logger: &log})
	pass.End("")
	member.End("")
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IODecodeMember, source.At(id, -1), err.Error()))
		return res
	}
	for _, r := range out.Repairs {
		res.Bag.Add(diag.NewWarning(r.Code, source.At(id, -1), r.Message))
	}
	res.Text = out.Text()
	log.Debug().Int("repairs", len(out.Repairs)).Dur("took", time.Since(start)).Msg("disassembled")
	return res
}
