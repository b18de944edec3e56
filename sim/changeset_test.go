package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeset_DerivedDurations(t *testing.T) {
	// GIVEN modules A and B
	a := mustModule(t, "A", 60, 120)
	b := mustModule(t, "B", 50, 90)

	// WHEN a changeset changes both and tests only B
	cs := mustChangeset(t, []Module{a, b}, []Module{b})

	// THEN compile sums over changed and test sums over tested
	assert.Equal(t, int64(110), cs.CompileDuration())
	assert.Equal(t, int64(90), cs.TestDuration())
}

func TestNewChangeset_Empty_ZeroDuration(t *testing.T) {
	cs := mustChangeset(t, nil, nil)
	assert.Equal(t, int64(0), cs.CompileDuration())
	assert.Equal(t, int64(0), cs.TestDuration())
}

func TestNewChangeset_ConflictingModules_Rejected(t *testing.T) {
	a1 := mustModule(t, "A", 60, 120)
	a2 := mustModule(t, "A", 70, 120)

	_, err := NewChangeset([]Module{a1, a2}, nil)
	assert.ErrorIs(t, err, ErrConflictingModule)

	_, err = NewChangeset(nil, []Module{a1, a2})
	assert.ErrorIs(t, err, ErrConflictingModule)
}

func TestChangeset_Rebase_UnionsChangedKeepsTestScope(t *testing.T) {
	// GIVEN C1 changing A and C2 changing B, each testing its own module
	a := mustModule(t, "A", 60, 120)
	b := mustModule(t, "B", 50, 90)
	c1 := mustChangeset(t, []Module{a}, []Module{a})
	c2 := mustChangeset(t, []Module{b}, []Module{b})

	// WHEN C2 is rebased over C1
	merged, err := c2.Rebase(c1)
	require.NoError(t, err)

	// THEN changed modules are the union and the test scope is C2's exactly
	assert.Equal(t, []string{"A", "B"}, merged.ChangedModules().Names())
	assert.True(t, merged.ModulesToTest().Equal(c2.ModulesToTest()))
	assert.Equal(t, int64(110), merged.CompileDuration())
	assert.Equal(t, int64(90), merged.TestDuration())

	// AND the inputs are untouched
	assert.Equal(t, []string{"B"}, c2.ChangedModules().Names())
	assert.Equal(t, []string{"A"}, c1.ChangedModules().Names())
}

func TestChangeset_Rebase_OverlappingModules_CountedOnce(t *testing.T) {
	a := mustModule(t, "A", 60, 120)
	c1 := mustChangeset(t, []Module{a}, []Module{a})
	c2 := mustChangeset(t, []Module{a}, []Module{a})

	merged, err := c2.Rebase(c1, c1)
	require.NoError(t, err)
	assert.Equal(t, int64(60), merged.CompileDuration())
}

func TestChangeset_Rebase_ConflictingModule_Errors(t *testing.T) {
	c1 := mustChangeset(t, []Module{mustModule(t, "A", 60, 120)}, nil)
	c2 := mustChangeset(t, []Module{mustModule(t, "A", 30, 120)}, nil)

	_, err := c2.Rebase(c1)
	assert.ErrorIs(t, err, ErrConflictingModule)
}

func TestChangeset_String_IncludesDurations(t *testing.T) {
	a := mustModule(t, "A", 60, 120)
	cs := mustChangeset(t, []Module{a}, []Module{a})
	s := cs.String()
	assert.Contains(t, s, "compile: 60")
	assert.Contains(t, s, "[A]")
}
