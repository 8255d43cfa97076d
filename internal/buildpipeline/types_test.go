package buildpipeline

import (
	"testing"
	"time"
)

func TestTimingsAccumulate(t *testing.T) {
	var total Timings
	if total.Has(StageParse) || total.Sum(Stages...) != 0 {
		t.Fatal("zero Timings must be empty")
	}

	var a, b Timings
	a.Add(StageParse, 2*time.Millisecond)
	a.Add(StageParse, 3*time.Millisecond)
	b.Add(StageVerify, 4*time.Millisecond)
	total.Merge(a)
	total.Merge(b)

	if got := total.Duration(StageParse); got != 5*time.Millisecond {
		t.Errorf("parse = %v", got)
	}
	if !total.Has(StageVerify) || total.Has(StageWrite) {
		t.Error("Has disagrees with what was added")
	}
	if got := total.Sum(Stages...); got != 9*time.Millisecond {
		t.Errorf("sum = %v", got)
	}

	var nilTimings *Timings
	nilTimings.Add(StageParse, time.Second)
}

func TestStatusFinished(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusWorking, false},
		{StatusCached, true},
		{StatusDone, true},
		{StatusError, true},
	}
	for _, tt := range tests {
		if got := tt.status.Finished(); got != tt.want {
			t.Errorf("%s.Finished() = %v", tt.status, got)
		}
	}
}

func TestSinks(t *testing.T) {
	ch := make(chan Event, 4)
	EmitQueued(ChannelSink{Ch: ch}, []string{"a.jasm", "b.jasm"})
	Emit(ChannelSink{Ch: ch}, Event{File: "a.jasm", Stage: StageAssemble, Status: StatusWorking})
	Emit(nil, Event{File: "ignored"})
	close(ch)

	rec := &Recorder{}
	for ev := range ch {
		rec.OnEvent(ev)
	}
	if n := len(rec.Events()); n != 3 {
		t.Fatalf("recorded %d events, want 3", n)
	}
	last, ok := rec.Last("a.jasm")
	if !ok || last.Stage != StageAssemble || last.Status != StatusWorking {
		t.Errorf("last a.jasm event = %+v", last)
	}
	if _, ok := rec.Last("c.jasm"); ok {
		t.Error("unknown file has an event")
	}
}
