// Package trace provides structured event recording for a single simulation run.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// AdmissionRecord captures a changeset entering a scheduler as a new release.
type AdmissionRecord struct {
	Release         string
	Clock           int64
	Policy          string
	QueueDepth      int   // active releases after admission, including this one
	OwnCompile      int64 // compile duration of the changeset as submitted
	CompileDuration int64 // compile duration after rebasing over releases ahead
	TestDuration    int64
	ChangedModules  []string
	TestedModules   []string
}

// TransitionRecord captures a release moving between lifecycle phases.
type TransitionRecord struct {
	Release string
	Clock   int64
	From    string
	To      string
}

// GateRecord captures a release passing the release gate.
type GateRecord struct {
	Release       string
	Clock         int64
	QueuedTime    int64
	CompletedTime int64
	GateHold      int64 // ticks spent done but blocked behind the queue head
}

// IdleRecord captures a tick processed with an empty active queue.
type IdleRecord struct {
	Clock  int64
	Policy string
}
