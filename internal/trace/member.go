package trace

import (
	"context"
	"time"
)

// Pass names a stage the assembler runs over one member.
type Pass string

const (
	PassParse       Pass = "parse"
	PassAllocate    Pass = "allocate"
	PassLower       Pass = "lower"
	PassVerify      Pass = "verify"
	PassDisassemble Pass = "disassemble"
)

// InsnRef locates an instruction of the member being traced.
type InsnRef struct {
	Index int    `json:"index"`
	Line  int    `json:"line"` // -1 when the instruction has no source line
	Op    string `json:"op"`
}

// StartMember opens the span of one field or method, named "member:" plus
// name and descriptor.
func StartMember(ctx context.Context, kind, name, desc string) (context.Context, *Span) {
	ctx, span := Start(ctx, ScopeMember, "member:"+name+desc)
	span.WithExtra("kind", kind)
	return ctx, span
}

// StartPass opens a pass span under the current member.
func StartPass(ctx context.Context, p Pass) (context.Context, *Span) {
	return Start(ctx, ScopePass, string(p))
}

// InsnEnabled reports whether instruction events would be kept. Callers
// check it before building an expensive detail string.
func InsnEnabled(ctx context.Context) bool {
	t := FromContext(ctx)
	return t.Enabled() && t.Level().ShouldEmit(ScopeInsn)
}

// Insn records one instruction under the current span, e.g. a verifier
// visit with the incoming frame as detail.
func Insn(ctx context.Context, ref InsnRef, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(ScopeInsn) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    ScopeInsn,
		ParentID: CurrentSpan(ctx).SpanID,
		GID:      getGoroutineID(),
		Name:     ref.Op,
		Detail:   detail,
		Insn:     &ref,
	})
}
