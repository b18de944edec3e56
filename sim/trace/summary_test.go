package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	// GIVEN no trace at all
	// WHEN summarized
	summary := Summarize(nil)

	// THEN all counts are zero
	if summary.Admissions != 0 || summary.Released != 0 || summary.IdleTicks != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.MeanGateHold != 0 || summary.MaxGateHold != 0 {
		t.Error("expected 0 gate hold values")
	}
	if len(summary.TransitionsByPair) != 0 {
		t.Error("expected empty transition distribution")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with admissions, gate passes and idle ticks
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelTransitions})
	st.RecordAdmission(AdmissionRecord{Release: "R-1", QueueDepth: 1, OwnCompile: 60, CompileDuration: 60})
	st.RecordAdmission(AdmissionRecord{Release: "R-2", QueueDepth: 2, OwnCompile: 50, CompileDuration: 110})
	st.RecordTransition(TransitionRecord{Release: "R-1", From: "waiting", To: "compiling"})
	st.RecordTransition(TransitionRecord{Release: "R-2", From: "waiting", To: "compiling"})
	st.RecordTransition(TransitionRecord{Release: "R-1", From: "compiling", To: "testing"})
	st.RecordGate(GateRecord{Release: "R-1", GateHold: 0})
	st.RecordIdle(IdleRecord{Clock: 0})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.Admissions != 2 {
		t.Errorf("expected 2 admissions, got %d", summary.Admissions)
	}
	if summary.PeakQueueDepth != 2 {
		t.Errorf("expected peak queue depth 2, got %d", summary.PeakQueueDepth)
	}
	if summary.TotalRebase != 60 {
		t.Errorf("expected total rebase 60, got %d", summary.TotalRebase)
	}
	if summary.Released != 1 || summary.IdleTicks != 1 {
		t.Errorf("expected 1 released and 1 idle, got %d and %d", summary.Released, summary.IdleTicks)
	}
	if summary.TransitionsByPair["waiting->compiling"] != 2 {
		t.Errorf("expected 2 waiting->compiling, got %d", summary.TransitionsByPair["waiting->compiling"])
	}
}

func TestSummarize_GateHoldStatistics_CorrectMeanAndMax(t *testing.T) {
	// GIVEN gate records with known holds
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	st.RecordGate(GateRecord{Release: "R-1", GateHold: 0})
	st.RecordGate(GateRecord{Release: "R-2", GateHold: 30})
	st.RecordGate(GateRecord{Release: "R-3", GateHold: 15})

	// WHEN summarized
	summary := Summarize(st)

	// THEN mean hold = (0 + 30 + 15) / 3 = 15
	if summary.MeanGateHold != 15 {
		t.Errorf("expected mean gate hold 15, got %.4f", summary.MeanGateHold)
	}

	// THEN max hold = 30 and two releases were held
	if summary.MaxGateHold != 30 {
		t.Errorf("expected max gate hold 30, got %d", summary.MaxGateHold)
	}
	if summary.HeldReleases != 2 {
		t.Errorf("expected 2 held releases, got %d", summary.HeldReleases)
	}
}
