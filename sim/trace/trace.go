package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures admissions, gate passes and idle ticks.
	TraceLevelEvents TraceLevel = "events"
	// TraceLevelTransitions additionally captures every release phase change.
	TraceLevelTransitions TraceLevel = "transitions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:        true,
	TraceLevelEvents:      true,
	TraceLevelTransitions: true,
	"":                    true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects event records during one simulation run.
// A nil *SimulationTrace is valid and records nothing.
type SimulationTrace struct {
	Config      TraceConfig
	Admissions  []AdmissionRecord
	Transitions []TransitionRecord
	Gates       []GateRecord
	Idles       []IdleRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil for TraceLevelNone so callers can pass the result straight through.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == TraceLevelNone || config.Level == "" {
		return nil
	}
	return &SimulationTrace{
		Config:      config,
		Admissions:  make([]AdmissionRecord, 0),
		Transitions: make([]TransitionRecord, 0),
		Gates:       make([]GateRecord, 0),
		Idles:       make([]IdleRecord, 0),
	}
}

// RecordAdmission appends an admission record.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	if st == nil {
		return
	}
	st.Admissions = append(st.Admissions, record)
}

// RecordTransition appends a phase transition record. Dropped below TraceLevelTransitions.
func (st *SimulationTrace) RecordTransition(record TransitionRecord) {
	if st == nil || st.Config.Level != TraceLevelTransitions {
		return
	}
	st.Transitions = append(st.Transitions, record)
}

// RecordGate appends a release gate record.
func (st *SimulationTrace) RecordGate(record GateRecord) {
	if st == nil {
		return
	}
	st.Gates = append(st.Gates, record)
}

// RecordIdle appends an idle tick record.
func (st *SimulationTrace) RecordIdle(record IdleRecord) {
	if st == nil {
		return
	}
	st.Idles = append(st.Idles, record)
}
