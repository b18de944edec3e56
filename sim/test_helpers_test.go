package sim

import "testing"

// mustModule builds a valid module or fails the test.
func mustModule(t *testing.T, name string, compile, test int64) Module {
	t.Helper()
	m, err := NewModule(name, compile, test)
	if err != nil {
		t.Fatalf("NewModule(%q): %v", name, err)
	}
	return m
}

// mustChangeset builds a valid changeset or fails the test.
func mustChangeset(t *testing.T, changed, tested []Module) Changeset {
	t.Helper()
	cs, err := NewChangeset(changed, tested)
	if err != nil {
		t.Fatalf("NewChangeset: %v", err)
	}
	return cs
}

// mapSource is an in-memory Source keyed by arrival tick.
type mapSource struct {
	pool  map[int64][]Changeset
	draws int
}

func newMapSource(arrivals map[int64][]Changeset) *mapSource {
	pool := make(map[int64][]Changeset, len(arrivals))
	for tick, cs := range arrivals {
		pool[tick] = cs
	}
	return &mapSource{pool: pool}
}

func (s *mapSource) Draw(tick int64) []Changeset {
	s.draws++
	cs := s.pool[tick]
	delete(s.pool, tick)
	return cs
}

func (s *mapSource) Empty() bool {
	return len(s.pool) == 0
}

// runTicks calls ProcessTick for every tick in [from, to].
func runTicks(s Scheduler, from, to int64) {
	for tick := from; tick <= to; tick++ {
		s.ProcessTick(tick)
	}
}

func releaseNames(rs []*Release) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// activeReleases exposes a scheduler's active queue to in-package tests.
func activeReleases(s Scheduler) []*Release {
	switch v := s.(type) {
	case *SerialScheduler:
		return v.active.Items()
	case *PipelinedScheduler:
		return v.active.Items()
	}
	return nil
}
