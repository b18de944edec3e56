package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Admissions        int
	Released          int
	Transitions       int
	IdleTicks         int
	PeakQueueDepth    int
	TotalRebase       int64 // extra compile ticks carried by rebased releases
	MeanGateHold      float64
	MaxGateHold       int64
	HeldReleases      int            // releases that waited at the gate at least one tick
	TransitionsByPair map[string]int // "from->to" → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TransitionsByPair: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.Admissions = len(st.Admissions)
	for _, a := range st.Admissions {
		summary.TotalRebase += a.CompileDuration - a.OwnCompile
		if a.QueueDepth > summary.PeakQueueDepth {
			summary.PeakQueueDepth = a.QueueDepth
		}
	}

	summary.Released = len(st.Gates)
	if len(st.Gates) > 0 {
		var totalHold int64
		for _, g := range st.Gates {
			totalHold += g.GateHold
			if g.GateHold > summary.MaxGateHold {
				summary.MaxGateHold = g.GateHold
			}
			if g.GateHold > 0 {
				summary.HeldReleases++
			}
		}
		summary.MeanGateHold = float64(totalHold) / float64(len(st.Gates))
	}

	summary.Transitions = len(st.Transitions)
	for _, tr := range st.Transitions {
		summary.TransitionsByPair[tr.From+"->"+tr.To]++
	}

	summary.IdleTicks = len(st.Idles)

	return summary
}
