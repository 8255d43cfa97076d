package driver

import (
	"time"

	"jasm/internal/trace"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation pass has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a pass boundary inside asm.Compile.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives pass events of one listing.
type PhaseObserver func(PhaseEvent)

// observingTracer turns the pass spans of the assembler into PhaseEvents and
// forwards to inner whatever inner would have accepted on its own. It lives
// for one listing, so it needs no locking of its own.
type observingTracer struct {
	inner   trace.Tracer
	observe PhaseObserver
	started map[uint64]time.Time
}

func observe(inner trace.Tracer, fn PhaseObserver) *observingTracer {
	if inner == nil {
		inner = trace.Nop
	}
	return &observingTracer{inner: inner, observe: fn, started: make(map[uint64]time.Time)}
}

func (t *observingTracer) Emit(ev *trace.Event) {
	if ev.Scope == trace.ScopePass {
		switch ev.Kind {
		case trace.KindSpanBegin:
			t.started[ev.SpanID] = ev.Time
			t.observe(PhaseEvent{Name: ev.Name, Status: PhaseStart})
		case trace.KindSpanEnd:
			elapsed := ev.Time.Sub(t.started[ev.SpanID])
			delete(t.started, ev.SpanID)
			t.observe(PhaseEvent{Name: ev.Name, Status: PhaseEnd, Elapsed: elapsed})
		}
	}
	if t.inner.Enabled() && t.inner.Level().ShouldEmit(ev.Scope) {
		t.inner.Emit(ev)
	}
}

func (t *observingTracer) Flush() error { return nil }
func (t *observingTracer) Close() error { return nil }

// Level is at least LevelPhase so pass spans are always opened.
func (t *observingTracer) Level() trace.Level {
	return max(t.inner.Level(), trace.LevelPhase)
}

func (t *observingTracer) Enabled() bool { return true }
