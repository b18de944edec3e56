// Defines Module, the unit of code a changeset compiles and tests,
// and ModuleSet, the name-keyed collection changesets are built from.

package sim

import (
	"fmt"
	"sort"
)

// Module is a named unit of code with a fixed compile and test cost (in ticks).
// Two modules with the same Name are the same module.
type Module struct {
	Name            string
	CompileDuration int64
	TestDuration    int64
}

// NewModule validates and returns a Module.
func NewModule(name string, compileDuration, testDuration int64) (Module, error) {
	m := Module{Name: name, CompileDuration: compileDuration, TestDuration: testDuration}
	if err := m.Validate(); err != nil {
		return Module{}, err
	}
	return m, nil
}

// Validate returns an error wrapping ErrInvalidModule if the module is malformed.
func (m Module) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidModule)
	}
	if m.CompileDuration <= 0 {
		return fmt.Errorf("%w: %q compile duration must be > 0, got %d", ErrInvalidModule, m.Name, m.CompileDuration)
	}
	if m.TestDuration <= 0 {
		return fmt.Errorf("%w: %q test duration must be > 0, got %d", ErrInvalidModule, m.Name, m.TestDuration)
	}
	return nil
}

func (m Module) String() string {
	return fmt.Sprintf("%s(c=%d,t=%d)", m.Name, m.CompileDuration, m.TestDuration)
}

// ModuleSet is an immutable set of modules keyed by name.
// The zero value is an empty set.
type ModuleSet struct {
	byName map[string]Module
}

// NewModuleSet builds a set from mods. Repeated modules collapse; a repeated name
// with different costs is rejected.
func NewModuleSet(mods ...Module) (ModuleSet, error) {
	byName := make(map[string]Module, len(mods))
	for _, m := range mods {
		if err := m.Validate(); err != nil {
			return ModuleSet{}, err
		}
		if err := insertModule(byName, m); err != nil {
			return ModuleSet{}, err
		}
	}
	return ModuleSet{byName: byName}, nil
}

func insertModule(byName map[string]Module, m Module) error {
	if existing, ok := byName[m.Name]; ok {
		if existing != m {
			return fmt.Errorf("%w: %s vs %s", ErrConflictingModule, existing, m)
		}
		return nil
	}
	byName[m.Name] = m
	return nil
}

// Union returns a new set holding the modules of both sets.
func (s ModuleSet) Union(other ModuleSet) (ModuleSet, error) {
	byName := make(map[string]Module, len(s.byName)+len(other.byName))
	for _, m := range s.byName {
		byName[m.Name] = m
	}
	for _, m := range other.byName {
		if err := insertModule(byName, m); err != nil {
			return ModuleSet{}, err
		}
	}
	return ModuleSet{byName: byName}, nil
}

// Len returns the number of modules in the set.
func (s ModuleSet) Len() int {
	return len(s.byName)
}

// Contains reports whether a module with the given name is in the set.
func (s ModuleSet) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// IsSuperset reports whether every module of other is also in s.
func (s ModuleSet) IsSuperset(other ModuleSet) bool {
	for name := range other.byName {
		if !s.Contains(name) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same module names.
func (s ModuleSet) Equal(other ModuleSet) bool {
	return s.Len() == other.Len() && s.IsSuperset(other)
}

// Names returns the module names in ascending order.
func (s ModuleSet) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Modules returns a copy of the modules sorted by name.
func (s ModuleSet) Modules() []Module {
	mods := make([]Module, 0, len(s.byName))
	for _, name := range s.Names() {
		mods = append(mods, s.byName[name])
	}
	return mods
}

// CompileDuration is the sum of compile costs over the set.
func (s ModuleSet) CompileDuration() int64 {
	var total int64
	for _, m := range s.byName {
		total += m.CompileDuration
	}
	return total
}

// TestDuration is the sum of test costs over the set.
func (s ModuleSet) TestDuration() int64 {
	var total int64
	for _, m := range s.byName {
		total += m.TestDuration
	}
	return total
}

func (s ModuleSet) String() string {
	return fmt.Sprint(s.Names())
}
