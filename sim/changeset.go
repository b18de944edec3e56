package sim

import "fmt"

// Changeset describes a body of work: the modules it changes (to compile) and
// the modules it must validate (to test). Changesets are values; combining
// them always yields a new Changeset.
type Changeset struct {
	changed ModuleSet
	tested  ModuleSet
}

// NewChangeset builds a Changeset. Either list may be empty.
func NewChangeset(changed, tested []Module) (Changeset, error) {
	changedSet, err := NewModuleSet(changed...)
	if err != nil {
		return Changeset{}, fmt.Errorf("changed modules: %w", err)
	}
	testedSet, err := NewModuleSet(tested...)
	if err != nil {
		return Changeset{}, fmt.Errorf("modules to test: %w", err)
	}
	return Changeset{changed: changedSet, tested: testedSet}, nil
}

// ChangedModules returns the modules this changeset recompiles.
func (cs Changeset) ChangedModules() ModuleSet { return cs.changed }

// ModulesToTest returns the modules this changeset validates.
func (cs Changeset) ModulesToTest() ModuleSet { return cs.tested }

// CompileDuration is the total compile cost of the changed modules.
func (cs Changeset) CompileDuration() int64 { return cs.changed.CompileDuration() }

// TestDuration is the total test cost of the modules to test.
func (cs Changeset) TestDuration() int64 { return cs.tested.TestDuration() }

// Rebase returns a changeset carrying the changes of every changeset queued
// ahead of cs. Changed modules are unioned; the test scope stays cs's own,
// since changes ahead in the queue are validated by their own releases.
func (cs Changeset) Rebase(ahead ...Changeset) (Changeset, error) {
	changed := cs.changed
	for _, other := range ahead {
		var err error
		changed, err = changed.Union(other.changed)
		if err != nil {
			return Changeset{}, fmt.Errorf("rebase: %w", err)
		}
	}
	return Changeset{changed: changed, tested: cs.tested}, nil
}

func (cs Changeset) String() string {
	return fmt.Sprintf("Changeset: (changed: %v, test: %v, compile: %d, test: %d)",
		cs.changed, cs.tested, cs.CompileDuration(), cs.TestDuration())
}
