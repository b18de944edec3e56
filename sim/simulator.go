// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ExalDraen/queuesim/sim/trace"
)

// Source produces changesets keyed by arrival tick.
type Source interface {
	// Draw removes and returns the changesets arriving at tick (empty if none).
	Draw(tick int64) []Changeset
	// Empty reports whether no further arrivals remain.
	Empty() bool
}

// SimConfig groups the optional driver settings.
type SimConfig struct {
	// MaxTicks caps the number of ticks Run may advance. 0 means unbounded.
	MaxTicks int64
	// Trace receives structured events for this run. May be nil.
	Trace *trace.SimulationTrace
}

// Simulator is the driver that holds simulation time and feeds a scheduler
// from a changeset source, one tick per Advance.
type Simulator struct {
	Clock     int64
	Source    Source
	Scheduler Scheduler
	MaxTicks  int64
	Trace     *trace.SimulationTrace
	// QueueDepths holds the active queue length sampled after each tick.
	QueueDepths []int
}

// NewSimulator creates a Simulator at tick 0. The scheduler should be built
// with the same trace passed in cfg so both record into one run.
func NewSimulator(src Source, sched Scheduler, cfg SimConfig) *Simulator {
	if src == nil {
		panic("NewSimulator: source must not be nil")
	}
	if sched == nil {
		panic("NewSimulator: scheduler must not be nil")
	}
	return &Simulator{
		Clock:       0,
		Source:      src,
		Scheduler:   sched,
		MaxTicks:    cfg.MaxTicks,
		Trace:       cfg.Trace,
		QueueDepths: make([]int, 0),
	}
}

// Advance moves the world state forward by one tick: admit the changesets
// arriving now, let the scheduler process the tick, then increment the clock.
func (sim *Simulator) Advance() error {
	logrus.Debugf("[tick %07d] Advancing world state %d -> %d", sim.Clock, sim.Clock, sim.Clock+1)
	for _, cs := range sim.Source.Draw(sim.Clock) {
		if err := sim.Scheduler.AcceptChangeset(cs); err != nil {
			return fmt.Errorf("tick %d: %w", sim.Clock, err)
		}
	}
	sim.Scheduler.ProcessTick(sim.Clock)
	sim.QueueDepths = append(sim.QueueDepths, sim.Scheduler.QueueLen())
	sim.Clock++
	return nil
}

// IsComplete reports whether there is nothing further to simulate.
func (sim *Simulator) IsComplete() bool {
	return sim.Source.Empty() && sim.Scheduler.Idle()
}

// Run advances until IsComplete. With MaxTicks set, it stops with an error
// wrapping ErrTickLimitExceeded once the clock reaches the cap unfinished.
func (sim *Simulator) Run() error {
	logrus.Infof("[tick %07d] Starting simulation with %s scheduler", sim.Clock, sim.Scheduler.Policy())
	for !sim.IsComplete() {
		if sim.MaxTicks > 0 && sim.Clock >= sim.MaxTicks {
			logrus.Warnf("[tick %07d] Tick limit reached with %d active releases", sim.Clock, sim.Scheduler.QueueLen())
			return fmt.Errorf("%w: %d ticks, %d releases still active", ErrTickLimitExceeded, sim.MaxTicks, sim.Scheduler.QueueLen())
		}
		if err := sim.Advance(); err != nil {
			return err
		}
	}
	logrus.Infof("[tick %07d] Simulation ended", sim.Clock)
	return nil
}

// Metrics summarizes the scheduler's completed releases.
func (sim *Simulator) Metrics() *Metrics {
	m := NewMetrics(sim.Scheduler.Policy(), sim.Scheduler.Results(), sim.Clock)
	m.QueueDepths = append(m.QueueDepths, sim.QueueDepths...)
	for _, d := range sim.QueueDepths {
		m.PeakQueueDepth = max(m.PeakQueueDepth, d)
	}
	return m
}
