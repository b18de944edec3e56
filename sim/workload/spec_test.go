package workload

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadWorkloadSpec_ValidYAML_LoadsCorrectly(t *testing.T) {
	path := writeSpecFile(t, "spec.yaml", `
version: "1"
seed: 42
num_changesets: 25
arrival:
  process: poisson
  min_tick: 10
  mean_interval: 30
modules:
  count: 8
  name_prefix: svc
  compile: {min: 10, max: 20}
  test: {min: 30, max: 40}
changes:
  max_changed_modules: 3
  extra_tested_modules: 2
`)

	spec, err := LoadWorkloadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), spec.Seed)
	assert.Equal(t, 25, spec.NumChangesets)
	assert.Equal(t, "poisson", spec.Arrival.Process)
	assert.Equal(t, int64(10), spec.Arrival.MinTick)
	assert.Equal(t, 30.0, spec.Arrival.MeanInterval)
	assert.Equal(t, "svc", spec.Modules.NamePrefix)
	assert.Equal(t, TickRange{Min: 30, Max: 40}, spec.Modules.Test)
	assert.Equal(t, 3, spec.Changes.MaxChangedModules)
	assert.Equal(t, 2, spec.Changes.ExtraTestedModules)
}

func TestLoadWorkloadSpec_UnknownKey_Rejected(t *testing.T) {
	// GIVEN a YAML file with a typo in a field name
	path := writeSpecFile(t, "typo.yaml", `
seed: 1
num_changeset: 5
`)

	// WHEN loaded
	_, err := LoadWorkloadSpec(path)

	// THEN strict decoding rejects it
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_changeset")
}

func TestLoadWorkloadSpec_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadWorkloadSpec(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadWorkloadSpec_EmptyYAML_GetsDefaults(t *testing.T) {
	path := writeSpecFile(t, "empty.yaml", "seed: 9\n")

	spec, err := LoadWorkloadSpec(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkloadSpec(9), spec)
}

func TestLoadWorkloadSpec_IntervalProcessWithoutWindow_DerivesPositiveMean(t *testing.T) {
	for _, process := range []string{"poisson", "gamma"} {
		t.Run(process, func(t *testing.T) {
			// GIVEN an interval-based arrival process with only min_tick set
			path := writeSpecFile(t, process+".yaml", "arrival:\n  process: "+process+"\n  min_tick: 5\n")

			// WHEN the spec is loaded
			spec, err := LoadWorkloadSpec(path)

			// THEN the mean interval spans the default window width
			require.NoError(t, err)
			want := float64(DefaultArrivalMax-DefaultArrivalMin) / float64(DefaultNumChangesets)
			assert.InDelta(t, want, spec.Arrival.MeanInterval, 1e-9)

			// AND every generated arrival lands after min_tick
			arrivals, err := GenerateArrivals(spec)
			require.NoError(t, err)
			require.Len(t, arrivals, DefaultNumChangesets)
			for _, a := range arrivals {
				assert.Greater(t, a.Tick, int64(5))
			}
		})
	}
}

func TestLoadWorkloadSpec_HCL_EvaluatesTickUnits(t *testing.T) {
	// GIVEN an HCL workload using minute/hour constants
	path := writeSpecFile(t, "spec.hcl", `
seed           = 7
num_changesets = 12

arrival {
  process       = "gamma"
  min_tick      = 1
  mean_interval = 2 * minute
  cv            = 1.5
}

modules {
  count = 5
  compile {
    min = minute
    max = 2 * minute
  }
  test {
    min = 2 * minute
    max = hour
  }
}

changes {
  max_changed_modules = 2
}
`)

	// WHEN loaded
	spec, err := LoadWorkloadSpec(path)

	// THEN expressions are evaluated in ticks
	require.NoError(t, err)
	assert.Equal(t, int64(7), spec.Seed)
	assert.Equal(t, 12, spec.NumChangesets)
	assert.Equal(t, "gamma", spec.Arrival.Process)
	assert.Equal(t, 120.0, spec.Arrival.MeanInterval)
	assert.Equal(t, 1.5, spec.Arrival.CV)
	assert.Equal(t, TickRange{Min: 60, Max: 120}, spec.Modules.Compile)
	assert.Equal(t, TickRange{Min: 120, Max: 3600}, spec.Modules.Test)
	assert.Equal(t, 2, spec.Changes.MaxChangedModules)
	assert.Equal(t, DefaultNamePrefix, spec.Modules.NamePrefix)
}

func TestLoadWorkloadSpec_HCLExplicitChangesets(t *testing.T) {
	path := writeSpecFile(t, "explicit.hcl", `
module "A" {
  compile = 10
  test    = 60
}
module "B" {
  compile = 100
  test    = 20
}

changeset {
  arrival = 0
  changed = ["A"]
  tested  = ["A"]
}
changeset {
  arrival = 1
  changed = ["B"]
  tested  = ["B"]
}
`)

	spec, err := LoadWorkloadSpec(path)
	require.NoError(t, err)
	assert.True(t, spec.Explicit())
	require.Len(t, spec.Pool, 2)
	assert.Equal(t, ModuleSpec{Name: "B", Compile: 100, Test: 20}, spec.Pool[1])
	require.Len(t, spec.Changesets, 2)
	assert.Equal(t, int64(1), spec.Changesets[1].Arrival)
	assert.Equal(t, []string{"B"}, spec.Changesets[1].Changed)
}

func TestLoadWorkloadSpec_HCLUnknownAttribute_Rejected(t *testing.T) {
	path := writeSpecFile(t, "bad.hcl", `
seed    = 1
bananas = 3
`)
	_, err := LoadWorkloadSpec(path)
	assert.Error(t, err)
}

func TestLoadWorkloadSpec_HCLSyntaxError_Rejected(t *testing.T) {
	path := writeSpecFile(t, "broken.hcl", "arrival {\n")
	_, err := LoadWorkloadSpec(path)
	assert.Error(t, err)
}

func TestParseHCLWorkloadSpec_InMemory(t *testing.T) {
	spec, err := parseHCLWorkloadSpec([]byte(`num_changesets = 3 * 4`), "inline.hcl")
	require.NoError(t, err)
	assert.Equal(t, 12, spec.NumChangesets)
}

func TestDefaultWorkloadSpec_ReferenceValues(t *testing.T) {
	spec := DefaultWorkloadSpec(0)

	assert.Equal(t, DefaultNumChangesets, spec.NumChangesets)
	assert.Equal(t, "uniform", spec.Arrival.Process)
	assert.Equal(t, int64(DefaultArrivalMin), spec.Arrival.MinTick)
	assert.Equal(t, int64(DefaultArrivalMax), spec.Arrival.MaxTick)
	assert.Equal(t, TickRange{Min: DefaultCompileMin, Max: DefaultCompileMax}, spec.Modules.Compile)
	assert.Equal(t, TickRange{Min: DefaultTestMin, Max: DefaultTestMax}, spec.Modules.Test)
	assert.Equal(t, 1, spec.Changes.MaxChangedModules)
	assert.NoError(t, spec.Validate())
}

func TestWorkloadSpec_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *WorkloadSpec)
		errSub string
	}{
		{"unknown process", func(s *WorkloadSpec) { s.Arrival.Process = "weibull" }, "unknown arrival process"},
		{"negative min tick", func(s *WorkloadSpec) { s.Arrival.MinTick = -1 }, "min_tick"},
		{"empty uniform window", func(s *WorkloadSpec) { s.Arrival.MaxTick = s.Arrival.MinTick }, "max_tick"},
		{"NaN interval", func(s *WorkloadSpec) {
			s.Arrival.Process = "poisson"
			s.Arrival.MeanInterval = math.NaN()
		}, "finite"},
		{"zero module count", func(s *WorkloadSpec) { s.Modules.Count = -1 }, "modules.count"},
		{"zero compile cost", func(s *WorkloadSpec) { s.Modules.Compile.Min = 0 }, "modules.compile.min"},
		{"inverted test range", func(s *WorkloadSpec) { s.Modules.Test = TickRange{Min: 50, Max: 40} }, "modules.test.max"},
		{"too many changed", func(s *WorkloadSpec) { s.Changes.MaxChangedModules = s.Modules.Count + 1 }, "max_changed_modules"},
		{"negative extra", func(s *WorkloadSpec) { s.Changes.ExtraTestedModules = -1 }, "extra_tested_modules"},
		{"duplicate pool module", func(s *WorkloadSpec) {
			s.Pool = []ModuleSpec{{Name: "A", Compile: 1, Test: 1}, {Name: "A", Compile: 1, Test: 1}}
		}, "duplicate module"},
		{"non-positive pool cost", func(s *WorkloadSpec) {
			s.Pool = []ModuleSpec{{Name: "A", Compile: 0, Test: 1}}
		}, "must be positive"},
		{"explicit without pool", func(s *WorkloadSpec) {
			s.Changesets = []ChangesetSpec{{Arrival: 0}}
		}, "require a module pool"},
		{"explicit unknown module", func(s *WorkloadSpec) {
			s.Pool = []ModuleSpec{{Name: "A", Compile: 1, Test: 1}}
			s.Changesets = []ChangesetSpec{{Arrival: 0, Changed: []string{"Z"}}}
		}, `unknown module "Z"`},
		{"explicit negative arrival", func(s *WorkloadSpec) {
			s.Pool = []ModuleSpec{{Name: "A", Compile: 1, Test: 1}}
			s.Changesets = []ChangesetSpec{{Arrival: -3, Changed: []string{"A"}}}
		}, "arrival must be non-negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := DefaultWorkloadSpec(1)
			tc.mutate(spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSub)
		})
	}
}
