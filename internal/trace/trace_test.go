package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"off", LevelOff, true},
		{"PHASE", LevelPhase, true},
		{"Detail", LevelDetail, true},
		{"debug", LevelDebug, true},
		{"loud", LevelOff, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestShouldEmit(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeMember) {
		t.Fatal("phase level must stop at passes")
	}
	if !LevelDetail.ShouldEmit(ScopeMember) || LevelDetail.ShouldEmit(ScopeInsn) {
		t.Fatal("detail level must stop at members")
	}
	if !LevelDebug.ShouldEmit(ScopeInsn) {
		t.Fatal("debug level must emit instructions")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatal("off must emit nothing")
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, outer := Start(ctx, ScopePass, "lower")
	_, inner := Start(ctx, ScopeMember, "member:sum")
	inner.WithExtra("insns", "3").WithExtra("a", "b").End("ok")
	_, hidden := Start(ctx, ScopeInsn, "insn")
	hidden.End("")
	outer.End("")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("want 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "  → member:sum") {
		t.Fatalf("nested span not indented: %q", lines[1])
	}
	if !strings.Contains(lines[2], "(ok) {a=b, insns=3}") {
		t.Fatalf("end line = %q", lines[2])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	span := Begin(tr, ScopeDriver, "assemble", 0)
	span.End("done")

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("bad json %q: %v", line, err)
		}
		if ev["name"] != "assemble" || ev["scope"] != "driver" {
			t.Fatalf("unexpected event %v", ev)
		}
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeInsn, name, "", 0)
	}
	got := r.Snapshot()
	if len(got) != 3 || got[0].Name != "c" || got[2].Name != "e" {
		t.Fatalf("snapshot = %+v", got)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump = %q", buf.String())
	}
}

func TestNewErrorLevelKeepsRing(t *testing.T) {
	tr, err := New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatal(err)
	}
	if RingOf(tr) == nil {
		t.Fatalf("error level should trace into a ring, got %T", tr)
	}
	both, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatal(err)
	}
	if RingOf(both) == nil {
		t.Fatal("both mode should expose its ring")
	}
}

func TestNopContext(t *testing.T) {
	ctx, span := Start(context.Background(), ScopePass, "parse")
	if span.ID() != 0 {
		t.Fatal("nop span must have no id")
	}
	if CurrentSpan(ctx).SpanID != 0 {
		t.Fatal("nop span must not become current")
	}
	if span.End("") != 0 {
		t.Fatal("nop span has no duration")
	}
}

func TestHeartbeat(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("disabled tracer must not get a heartbeat")
	}
	r := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()

	got := r.Snapshot()
	if len(got) == 0 {
		t.Fatal("no heartbeat emitted")
	}
	if got[0].Kind != KindHeartbeat || !strings.HasPrefix(got[0].Detail, "#1 goroutines=") {
		t.Fatalf("unexpected event %+v", got[0])
	}
}

func TestMemberPassAndInsnEvents(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)

	mctx, member := StartMember(ctx, "method", "sum", "(II)I")
	pctx, pass := StartPass(mctx, PassVerify)
	if !InsnEnabled(pctx) {
		t.Fatal("debug level must enable instruction events")
	}
	Insn(pctx, InsnRef{Index: 2, Line: 4, Op: "IADD"}, "[I I] []")
	pass.End("")
	member.End("")

	out := buf.String()
	for _, want := range []string{"→ member:sum(II)I", "→ verify", "• #2 L4 IADD ([I I] [])", "{kind=method}"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestInsnEventsNeedDebugLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelDetail)
	ctx := WithTracer(context.Background(), ring)
	if InsnEnabled(ctx) {
		t.Fatal("detail level must not enable instruction events")
	}
	Insn(ctx, InsnRef{Index: 0, Op: "NOP"}, "")
	if n := len(ring.Snapshot()); n != 0 {
		t.Fatalf("ring holds %d events", n)
	}
}

func TestInsnNDJSON(t *testing.T) {
	ev := &Event{Kind: KindPoint, Scope: ScopeInsn, Name: "IADD", Insn: &InsnRef{Index: 1, Line: 7, Op: "IADD"}}
	var got struct {
		Insn InsnRef `json:"insn"`
	}
	if err := json.Unmarshal(FormatEvent(ev, FormatNDJSON), &got); err != nil {
		t.Fatal(err)
	}
	if got.Insn != (InsnRef{Index: 1, Line: 7, Op: "IADD"}) {
		t.Fatalf("insn = %+v", got.Insn)
	}
}
