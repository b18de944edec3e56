// Defines the Release struct that models one changeset's journey through the pipeline.
// Tracks queueing, compile, test, completion and release timestamps in ticks.

package sim

import (
	"fmt"
)

// Phase represents the lifecycle state of a release.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseCompiling Phase = "compiling"
	PhaseTesting   Phase = "testing"
	PhaseDone      Phase = "done"
)

// Release is the stateful record of one changeset progressing through
// compile -> test -> done. Timestamps are only meaningful once Phase has
// moved past the corresponding state; tick 0 is a valid timestamp.
type Release struct {
	Name string // Unique identifier for the release

	Changeset Changeset // Work this release performs (rebased for the pipelined policy)
	Origin    Changeset // Changeset as submitted, before any rebase

	phase Phase

	QueuedTime    int64 // Tick the release was admitted
	CompileStart  int64 // Tick compilation started
	CompileEnd    int64 // Tick compilation ended
	TestStart     int64 // Tick testing started
	TestEnd       int64 // Tick testing ended
	CompletedTime int64 // Tick all work finished
	ReleasedTime  int64 // Tick the release passed the release gate
}

// NewRelease creates a waiting release. origin is the changeset as submitted;
// cs is the work the release actually performs.
func NewRelease(name string, origin, cs Changeset, queuedTime int64) *Release {
	return &Release{
		Name:       name,
		Changeset:  cs,
		Origin:     origin,
		phase:      PhaseWaiting,
		QueuedTime: queuedTime,
	}
}

// Phase returns the current lifecycle state.
func (r *Release) Phase() Phase {
	if r.phase == "" {
		return PhaseWaiting
	}
	return r.phase
}

// Complete reports whether all compile and test work is done.
func (r *Release) Complete() bool {
	return r.Phase() == PhaseDone
}

// ProcessTick advances the state machine to tick and reports whether the phase changed.
//
// A waiting release starts compiling immediately. Compilation and testing end once
// their duration has elapsed; testing starts on the tick compilation ends. Guards
// that already hold on entry (zero-duration phases) fall through in the same call.
func (r *Release) ProcessTick(tick int64) bool {
	start := r.Phase()
	for r.step(tick) {
	}
	return r.Phase() != start
}

func (r *Release) step(tick int64) bool {
	switch r.Phase() {
	case PhaseWaiting:
		r.CompileStart = tick
		r.phase = PhaseCompiling
		return true
	case PhaseCompiling:
		if tick >= r.CompileStart+r.Changeset.CompileDuration() {
			r.CompileEnd = tick
			r.TestStart = tick
			r.phase = PhaseTesting
			return true
		}
	case PhaseTesting:
		if tick >= r.TestStart+r.Changeset.TestDuration() {
			r.TestEnd = tick
			r.CompletedTime = tick
			r.phase = PhaseDone
			return true
		}
	}
	return false
}

// markReleased stamps the tick the release passed the release gate.
func (r *Release) markReleased(tick int64) {
	if !r.Complete() {
		panic(fmt.Sprintf("markReleased: release %s is %s, not done", r.Name, r.Phase()))
	}
	r.ReleasedTime = tick
}

// CompileTime returns CompileEnd - CompileStart.
func (r *Release) CompileTime() int64 { return r.CompileEnd - r.CompileStart }

// TestTime returns TestEnd - TestStart.
func (r *Release) TestTime() int64 { return r.TestEnd - r.TestStart }

// WaitTime is the number of ticks between admission and compile start.
func (r *Release) WaitTime() int64 { return r.CompileStart - r.QueuedTime }

// LeadTime is the number of ticks between admission and release.
func (r *Release) LeadTime() int64 { return r.ReleasedTime - r.QueuedTime }

// GateHold is the number of ticks a finished release waited at the release gate.
func (r *Release) GateHold() int64 { return r.ReleasedTime - r.CompletedTime }

// RebaseOverhead is the extra compile cost carried over from releases queued ahead.
func (r *Release) RebaseOverhead() int64 {
	return r.Changeset.CompileDuration() - r.Origin.CompileDuration()
}

// This method returns a human-readable string representation of a Release.
func (r *Release) String() string {
	return fmt.Sprintf("Release: (Name: %s, Phase: %s, Queued: %d, Compile: %d-%d, Test: %d-%d, Released: %d)",
		r.Name, r.Phase(), r.QueuedTime, r.CompileStart, r.CompileEnd, r.TestStart, r.TestEnd, r.ReleasedTime)
}
