package workload

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ExalDraen/queuesim/sim"
)

// Arrival is one changeset arriving at a tick.
type Arrival struct {
	Tick      int64
	Changeset sim.Changeset
}

// GenerateArrivals builds the arrival list described by spec.
// Deterministic given the same spec and seed; the result is sorted by tick,
// with arrivals sharing a tick kept in generation order.
func GenerateArrivals(spec *WorkloadSpec) ([]Arrival, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload spec: %w", err)
	}
	if spec.Explicit() {
		return explicitArrivals(spec)
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	pool, err := buildModulePool(spec, rng)
	if err != nil {
		return nil, err
	}

	arrivalRNG := rng.ForSubsystem(sim.SubsystemArrivals)
	changeRNG := rng.ForSubsystem(sim.SubsystemChanges)
	sampler := NewArrivalSampler(spec.Arrival)

	arrivals := make([]Arrival, 0, spec.NumChangesets)
	prev := spec.Arrival.MinTick
	for i := 0; i < spec.NumChangesets; i++ {
		tick := sampler.SampleArrival(arrivalRNG, prev)
		prev = tick

		perm := changeRNG.Perm(len(pool))
		numChanged := 1 + changeRNG.Intn(spec.Changes.MaxChangedModules)
		numTested := numChanged + changeRNG.Intn(spec.Changes.ExtraTestedModules+1)
		if numTested > len(pool) {
			numTested = len(pool)
		}
		tested := make([]sim.Module, numTested)
		for j := 0; j < numTested; j++ {
			tested[j] = pool[perm[j]]
		}
		cs, err := sim.NewChangeset(tested[:numChanged], tested)
		if err != nil {
			return nil, fmt.Errorf("changeset %d: %w", i, err)
		}
		arrivals = append(arrivals, Arrival{Tick: tick, Changeset: cs})
	}
	sortArrivals(arrivals)
	logrus.Debugf("Generated %d arrivals over a pool of %d modules (seed %d)", len(arrivals), len(pool), spec.Seed)
	return arrivals, nil
}

// buildModulePool returns the explicit pool when one is declared, otherwise
// samples module costs uniformly from the configured ranges.
func buildModulePool(spec *WorkloadSpec, rng *sim.PartitionedRNG) ([]sim.Module, error) {
	if len(spec.Pool) > 0 {
		return explicitPool(spec.Pool)
	}
	moduleRNG := rng.ForSubsystem(sim.SubsystemModules)
	width := len(fmt.Sprint(spec.Modules.Count - 1))
	if width < 2 {
		width = 2
	}
	pool := make([]sim.Module, spec.Modules.Count)
	for i := range pool {
		compile := spec.Modules.Compile.Min + moduleRNG.Int63n(spec.Modules.Compile.Max-spec.Modules.Compile.Min)
		test := spec.Modules.Test.Min + moduleRNG.Int63n(spec.Modules.Test.Max-spec.Modules.Test.Min)
		m, err := sim.NewModule(fmt.Sprintf("%s_%0*d", spec.Modules.NamePrefix, width, i), compile, test)
		if err != nil {
			return nil, err
		}
		pool[i] = m
	}
	return pool, nil
}

func explicitPool(specs []ModuleSpec) ([]sim.Module, error) {
	pool := make([]sim.Module, len(specs))
	for i, ms := range specs {
		m, err := sim.NewModule(ms.Name, ms.Compile, ms.Test)
		if err != nil {
			return nil, fmt.Errorf("pool[%d]: %w", i, err)
		}
		pool[i] = m
	}
	return pool, nil
}

func explicitArrivals(spec *WorkloadSpec) ([]Arrival, error) {
	pool, err := explicitPool(spec.Pool)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]sim.Module, len(pool))
	for _, m := range pool {
		byName[m.Name] = m
	}
	lookup := func(names []string) []sim.Module {
		mods := make([]sim.Module, 0, len(names))
		for _, n := range names {
			mods = append(mods, byName[n])
		}
		return mods
	}

	arrivals := make([]Arrival, 0, len(spec.Changesets))
	for i, c := range spec.Changesets {
		cs, err := sim.NewChangeset(lookup(c.Changed), lookup(c.Tested))
		if err != nil {
			return nil, fmt.Errorf("changesets[%d]: %w", i, err)
		}
		arrivals = append(arrivals, Arrival{Tick: c.Arrival, Changeset: cs})
	}
	sortArrivals(arrivals)
	return arrivals, nil
}

func sortArrivals(arrivals []Arrival) {
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].Tick < arrivals[j].Tick
	})
}
