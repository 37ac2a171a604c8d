package profiler

import (
	"testing"
	"time"
)

func TestRecordAccumulatesStats(t *testing.T) {
	p := New(nil)
	p.Record("vegetation", 10*time.Millisecond)
	p.Record("vegetation", 30*time.Millisecond)

	snap := p.Snapshot()
	s := snap["vegetation"]
	if s.CallCount != 2 {
		t.Fatalf("expected 2 calls, got %d", s.CallCount)
	}
	if s.TotalDuration != 40*time.Millisecond {
		t.Fatalf("expected total 40ms, got %v", s.TotalDuration)
	}
	if s.MaxDuration != 30*time.Millisecond || s.MinDuration != 10*time.Millisecond {
		t.Fatalf("expected min/max 10ms/30ms, got %v/%v", s.MinDuration, s.MaxDuration)
	}
	if s.LastDuration != 30*time.Millisecond {
		t.Fatalf("expected last duration 30ms, got %v", s.LastDuration)
	}
}

func TestMaybeReportFiresOnIntervalAndResets(t *testing.T) {
	p := New(nil)
	p.Record("planner", 5*time.Millisecond)

	if _, fired := p.MaybeReport(10); fired {
		t.Fatal("expected no report off the interval boundary")
	}

	report, fired := p.MaybeReport(ReportIntervalTicks)
	if !fired {
		t.Fatal("expected a report at the interval boundary")
	}
	if report.Stats["planner"].CallCount != 1 {
		t.Fatalf("expected the pre-reset snapshot to retain the call count, got %+v", report.Stats["planner"])
	}

	snap := p.Snapshot()
	s := snap["planner"]
	if s.CallCount != 0 || s.TotalDuration != 0 {
		t.Fatalf("expected accumulators reset after report, got %+v", s)
	}
	if s.LastDuration != 5*time.Millisecond {
		t.Fatal("expected last_duration to survive the reset")
	}
}

func TestBracketTimesTheGivenFunc(t *testing.T) {
	p := New(nil)
	p.Bracket("movement", func() { time.Sleep(time.Millisecond) })
	snap := p.Snapshot()
	if snap["movement"].CallCount != 1 {
		t.Fatal("expected Bracket to record exactly one call")
	}
}
