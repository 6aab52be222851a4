package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReportsElapsedDurationPerPhase(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("frontend")
	time.Sleep(time.Millisecond)
	timer.End(idx, "3 unit(s)")

	report := timer.Report()
	if len(report.Phases) != 1 {
		t.Fatalf("expected one phase, got %d", len(report.Phases))
	}
	phase := report.Phases[0]
	if phase.Name != "frontend" || phase.Note != "3 unit(s)" {
		t.Fatalf("unexpected phase: %+v", phase)
	}
	if phase.DurationMS <= 0 {
		t.Fatalf("expected a positive duration, got %f", phase.DurationMS)
	}
	if report.TotalMS < phase.DurationMS {
		t.Fatalf("expected total to be at least the single phase's duration")
	}
}

func TestTimerEndIgnoresOutOfRangeIndex(t *testing.T) {
	timer := NewTimer()
	timer.End(5, "should be ignored")
	timer.End(-1, "should be ignored")

	if report := timer.Report(); len(report.Phases) != 0 {
		t.Fatalf("expected no phases to be recorded, got %+v", report.Phases)
	}
}

func TestTimerSummaryIncludesEveryPhaseAndTotal(t *testing.T) {
	timer := NewTimer()
	a := timer.Begin("frontend")
	timer.End(a, "")
	b := timer.Begin("analyze")
	timer.End(b, "2 diagnostic(s)")

	summary := timer.Summary()
	if !strings.Contains(summary, "frontend") || !strings.Contains(summary, "analyze") {
		t.Fatalf("expected both phase names in summary, got %q", summary)
	}
	if !strings.Contains(summary, "2 diagnostic(s)") {
		t.Fatalf("expected the analyze phase's note in summary, got %q", summary)
	}
	if !strings.Contains(summary, "total") {
		t.Fatalf("expected a total line in summary, got %q", summary)
	}
}

func TestTimerReportOnEmptyTimerIsZeroValue(t *testing.T) {
	timer := NewTimer()
	report := timer.Report()
	if report.TotalMS != 0 || len(report.Phases) != 0 {
		t.Fatalf("expected a zero-value report for an empty timer, got %+v", report)
	}
}
