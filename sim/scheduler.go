package sim

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ExalDraen/queuesim/sim/trace"
)

// Scheduler owns the queue of in-flight releases and decides admission,
// progress and release for one queueing policy.
type Scheduler interface {
	// AcceptChangeset admits cs as a new release queued at the current clock.
	AcceptChangeset(cs Changeset) error
	// ProcessTick advances the scheduler to tick. Ticks must not go backwards,
	// and phase durations are only exact when the caller visits every tick.
	ProcessTick(tick int64)
	// Idle reports whether the active queue is empty.
	Idle() bool
	// Results returns a copy of the released releases in release order.
	Results() []*Release
	// Clock returns the tick of the most recent ProcessTick call.
	Clock() int64
	// QueueLen returns the number of active releases.
	QueueLen() int
	// Policy returns the canonical policy name.
	Policy() string
}

const (
	PolicySerial    = "sq"
	PolicyPipelined = "pq"
)

// validSchedulers maps accepted scheduler names to canonical policy names.
var validSchedulers = map[string]string{
	"":          PolicySerial,
	"sq":        PolicySerial,
	"serial":    PolicySerial,
	"pq":        PolicyPipelined,
	"pipelined": PolicyPipelined,
}

// IsValidScheduler returns true if name selects a known policy.
func IsValidScheduler(name string) bool {
	_, ok := validSchedulers[name]
	return ok
}

// ValidSchedulerNames returns the accepted non-empty scheduler names.
func ValidSchedulerNames() []string {
	return []string{"sq", "serial", "pq", "pipelined"}
}

// NewScheduler creates a Scheduler by name.
// Valid names: "sq"/"serial" (default), "pq"/"pipelined".
// tr may be nil. Panics on unrecognized names.
func NewScheduler(name string, tr *trace.SimulationTrace) Scheduler {
	policy, ok := validSchedulers[name]
	if !ok {
		panic(fmt.Sprintf("unknown scheduler %q", name))
	}
	switch policy {
	case PolicySerial:
		return NewSerialScheduler(tr)
	case PolicyPipelined:
		return NewPipelinedScheduler(tr)
	default:
		panic(fmt.Sprintf("unhandled scheduler %q", name))
	}
}

// releaseGate holds the state both policies share: the FIFO active queue,
// the completed list, the clock, and the rule that only the head is released.
type releaseGate struct {
	policy string
	active ReleaseQueue
	done   []*Release
	clock  int64
	trace  *trace.SimulationTrace
}

func newReleaseName() string {
	return "R-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (g *releaseGate) Idle() bool          { return g.active.Len() == 0 }
func (g *releaseGate) Results() []*Release { return append([]*Release(nil), g.done...) }
func (g *releaseGate) Clock() int64        { return g.clock }
func (g *releaseGate) QueueLen() int       { return g.active.Len() }
func (g *releaseGate) Policy() string      { return g.policy }

// admit queues a release that performs cs on behalf of origin.
func (g *releaseGate) admit(origin, cs Changeset) *Release {
	r := NewRelease(newReleaseName(), origin, cs, g.clock)
	g.active.Enqueue(r)
	g.trace.RecordAdmission(trace.AdmissionRecord{
		Release:         r.Name,
		Clock:           g.clock,
		Policy:          g.policy,
		QueueDepth:      g.active.Len(),
		OwnCompile:      origin.CompileDuration(),
		CompileDuration: cs.CompileDuration(),
		TestDuration:    cs.TestDuration(),
		ChangedModules:  cs.ChangedModules().Names(),
		TestedModules:   cs.ModulesToTest().Names(),
	})
	return r
}

// advanceClock moves the clock to tick, enforcing monotonic time.
func (g *releaseGate) advanceClock(tick int64) {
	if tick < g.clock {
		panic(fmt.Sprintf("ProcessTick: tick %d is before current clock %d", tick, g.clock))
	}
	g.clock = tick
}

// idleTick reports and records a tick with nothing queued.
func (g *releaseGate) idleTick(tick int64) {
	logrus.Infof("[tick %07d] %s: active queue empty, nothing to do", tick, g.policy)
	g.trace.RecordIdle(trace.IdleRecord{Clock: tick, Policy: g.policy})
}

// progress advances r to tick and records any phase change.
func (g *releaseGate) progress(r *Release, tick int64) {
	from := r.Phase()
	if r.ProcessTick(tick) {
		g.trace.RecordTransition(trace.TransitionRecord{
			Release: r.Name,
			Clock:   tick,
			From:    string(from),
			To:      string(r.Phase()),
		})
	}
}

// releaseHead moves the queue head to the completed list if it is done.
func (g *releaseGate) releaseHead(tick int64) {
	head := g.active.Peek()
	if head == nil || !head.Complete() {
		return
	}
	g.active.Dequeue()
	head.markReleased(tick)
	g.done = append(g.done, head)
	logrus.Infof("[tick %07d] Release %s complete, moving to done list", tick, head.Name)
	g.trace.RecordGate(trace.GateRecord{
		Release:       head.Name,
		Clock:         tick,
		QueuedTime:    head.QueuedTime,
		CompletedTime: head.CompletedTime,
		GateHold:      head.GateHold(),
	})
}

func (g *releaseGate) logProcessed(tick int64) {
	logrus.Debugf("[tick %07d] %s: processed tick. Remaining active releases: %d, Done: %d",
		tick, g.policy, g.active.Len(), len(g.done))
}

// SerialScheduler is the naive single-queue policy: only the head of the queue
// makes progress, so the next changeset cannot start compiling until the
// previous release has been compiled, tested and released.
type SerialScheduler struct {
	releaseGate
}

// NewSerialScheduler creates a SerialScheduler. tr may be nil.
func NewSerialScheduler(tr *trace.SimulationTrace) *SerialScheduler {
	return &SerialScheduler{releaseGate{policy: PolicySerial, trace: tr}}
}

// AcceptChangeset queues cs unchanged behind every active release.
func (s *SerialScheduler) AcceptChangeset(cs Changeset) error {
	logrus.Debugf("[tick %07d] sq: accepting changeset: %s", s.clock, cs)
	s.admit(cs, cs)
	return nil
}

// ProcessTick progresses only the head release and releases it once done.
func (s *SerialScheduler) ProcessTick(tick int64) {
	s.advanceClock(tick)
	if s.Idle() {
		s.idleTick(tick)
		return
	}
	s.progress(s.active.Peek(), tick)
	s.releaseHead(tick)
	s.logProcessed(tick)
}

// PipelinedScheduler lets every queued release compile and test in parallel,
// but only the head of the queue may be released. Because nothing can jump
// the queue, each new release is rebased over every release queued ahead of it.
type PipelinedScheduler struct {
	releaseGate
}

// NewPipelinedScheduler creates a PipelinedScheduler. tr may be nil.
func NewPipelinedScheduler(tr *trace.SimulationTrace) *PipelinedScheduler {
	return &PipelinedScheduler{releaseGate{policy: PolicyPipelined, trace: tr}}
}

// AcceptChangeset queues cs rebased over the changes of every active release.
func (p *PipelinedScheduler) AcceptChangeset(cs Changeset) error {
	rebased, err := cs.Rebase(p.active.Changesets()...)
	if err != nil {
		return fmt.Errorf("pq: accept changeset at tick %d: %w", p.clock, err)
	}
	logrus.Debugf("[tick %07d] pq: incoming changeset: %s, queued changeset: %s", p.clock, cs, rebased)
	p.admit(cs, rebased)
	return nil
}

// ProcessTick progresses every active release, then releases the head if done.
func (p *PipelinedScheduler) ProcessTick(tick int64) {
	p.advanceClock(tick)
	if p.Idle() {
		p.idleTick(tick)
		return
	}
	// Every release progresses before the gate is checked, so a release that
	// finishes alongside the head still waits its turn.
	for _, r := range p.active.Items() {
		p.progress(r, tick)
	}
	p.releaseHead(tick)
	p.logProcessed(tick)
}
