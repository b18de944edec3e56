package workload

import "github.com/ExalDraen/queuesim/sim"

// Pool is a sim.Source backed by a pre-generated arrival list.
// Changesets sharing a tick are drawn in arrival-list order.
type Pool struct {
	byTick    map[int64][]sim.Changeset
	remaining int
}

// NewPool indexes arrivals by tick.
func NewPool(arrivals []Arrival) *Pool {
	p := &Pool{byTick: make(map[int64][]sim.Changeset)}
	for _, a := range arrivals {
		p.byTick[a.Tick] = append(p.byTick[a.Tick], a.Changeset)
	}
	p.remaining = len(arrivals)
	return p
}

// Draw removes and returns the changesets arriving at tick.
func (p *Pool) Draw(tick int64) []sim.Changeset {
	drawn, ok := p.byTick[tick]
	if !ok {
		return nil
	}
	delete(p.byTick, tick)
	p.remaining -= len(drawn)
	return drawn
}

// Empty reports whether every arrival has been drawn.
func (p *Pool) Empty() bool { return p.remaining == 0 }

// Len returns the number of changesets not yet drawn.
func (p *Pool) Len() int { return p.remaining }

var _ sim.Source = (*Pool)(nil)
