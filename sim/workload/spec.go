package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WorkloadSpec is the top-level workload configuration.
// Loaded from YAML or HCL via LoadWorkloadSpec(path).
//
// Either the random fields (arrival, modules, changes) drive generation, or
// Changesets lists every arrival explicitly against the modules in Pool.
type WorkloadSpec struct {
	Version       string          `yaml:"version"`
	Seed          int64           `yaml:"seed"`
	NumChangesets int             `yaml:"num_changesets"`
	Arrival       ArrivalSpec     `yaml:"arrival"`
	Modules       ModulePoolSpec  `yaml:"modules"`
	Changes       ChangeSpec      `yaml:"changes"`
	Pool          []ModuleSpec    `yaml:"pool,omitempty"`
	Changesets    []ChangesetSpec `yaml:"changesets,omitempty"`
}

// ArrivalSpec configures when changesets arrive.
// "uniform" draws each arrival tick independently from [min_tick, max_tick);
// "poisson" and "gamma" accumulate inter-arrival gaps starting at min_tick.
type ArrivalSpec struct {
	Process      string  `yaml:"process"`
	MinTick      int64   `yaml:"min_tick"`
	MaxTick      int64   `yaml:"max_tick"`
	MeanInterval float64 `yaml:"mean_interval,omitempty"`
	CV           float64 `yaml:"cv,omitempty"` // gamma only; >1 is bursty
}

// TickRange is a half-open [min, max) range of ticks.
type TickRange struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// ModulePoolSpec configures the randomly generated module pool.
type ModulePoolSpec struct {
	Count      int       `yaml:"count"`
	NamePrefix string    `yaml:"name_prefix,omitempty"`
	Compile    TickRange `yaml:"compile"`
	Test       TickRange `yaml:"test"`
}

// ChangeSpec configures how many modules each generated changeset touches.
// Each changeset changes 1..max_changed_modules modules, tests those, and
// tests 0..extra_tested_modules further modules from the pool.
type ChangeSpec struct {
	MaxChangedModules  int `yaml:"max_changed_modules"`
	ExtraTestedModules int `yaml:"extra_tested_modules"`
}

// ModuleSpec declares one module of an explicit pool.
type ModuleSpec struct {
	Name    string `yaml:"name"`
	Compile int64  `yaml:"compile"`
	Test    int64  `yaml:"test"`
}

// ChangesetSpec declares one explicit arrival by module name.
type ChangesetSpec struct {
	Arrival int64    `yaml:"arrival"`
	Changed []string `yaml:"changed"`
	Tested  []string `yaml:"tested"`
}

// Defaults reproduce the reference random workload: ten changesets arriving
// uniformly over the first 720 ticks, each changing one module that costs
// 60-120 ticks to compile and 120-360 ticks to test.
const (
	DefaultNumChangesets = 10
	DefaultArrivalMin    = 1
	DefaultArrivalMax    = 720
	DefaultModuleCount   = 20
	DefaultCompileMin    = 60
	DefaultCompileMax    = 120
	DefaultTestMin       = 120
	DefaultTestMax       = 360
	DefaultNamePrefix    = "module"
)

// Valid value registries.
var validArrivalProcesses = map[string]bool{
	"uniform": true, "poisson": true, "gamma": true,
}

// DefaultWorkloadSpec returns the reference random workload for seed.
func DefaultWorkloadSpec(seed int64) *WorkloadSpec {
	spec := &WorkloadSpec{Seed: seed}
	spec.ApplyDefaults()
	return spec
}

// ApplyDefaults fills every unset (zero) field with its default.
// NumChangesets is left alone when an explicit changeset list is present.
func (s *WorkloadSpec) ApplyDefaults() {
	if s.Version == "" {
		s.Version = "1"
	}
	if s.NumChangesets == 0 && len(s.Changesets) == 0 {
		s.NumChangesets = DefaultNumChangesets
	}
	if s.Arrival.Process == "" {
		s.Arrival.Process = "uniform"
	}
	if s.Arrival.MinTick == 0 && s.Arrival.MaxTick == 0 {
		s.Arrival.MinTick, s.Arrival.MaxTick = DefaultArrivalMin, DefaultArrivalMax
	}
	if s.Arrival.MeanInterval == 0 && s.NumChangesets > 0 {
		// Interval processes may set only min_tick; spread over the default window width then.
		width := s.Arrival.MaxTick - s.Arrival.MinTick
		if width <= 0 {
			width = DefaultArrivalMax - DefaultArrivalMin
		}
		s.Arrival.MeanInterval = float64(width) / float64(s.NumChangesets)
	}
	if s.Arrival.Process == "gamma" && s.Arrival.CV == 0 {
		s.Arrival.CV = 1.0
	}
	if s.Modules.Count == 0 {
		s.Modules.Count = DefaultModuleCount
	}
	if s.Modules.NamePrefix == "" {
		s.Modules.NamePrefix = DefaultNamePrefix
	}
	if s.Modules.Compile == (TickRange{}) {
		s.Modules.Compile = TickRange{Min: DefaultCompileMin, Max: DefaultCompileMax}
	}
	if s.Modules.Test == (TickRange{}) {
		s.Modules.Test = TickRange{Min: DefaultTestMin, Max: DefaultTestMax}
	}
	if s.Changes.MaxChangedModules == 0 {
		s.Changes.MaxChangedModules = 1
	}
}

// LoadWorkloadSpec reads a workload specification file, dispatching on the
// extension: ".hcl" files are decoded as HCL, anything else as strict YAML.
// Defaults are applied and the result is validated.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	var (
		spec *WorkloadSpec
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		spec, err = loadHCLWorkloadSpec(path)
	} else {
		spec, err = loadYAMLWorkloadSpec(path)
	}
	if err != nil {
		return nil, err
	}
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workload spec %s: %w", path, err)
	}
	return spec, nil
}

// loadYAMLWorkloadSpec uses strict parsing: unrecognized keys (typos) are rejected.
func loadYAMLWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	return &spec, nil
}

// Explicit reports whether the spec lists its changesets instead of sampling them.
func (s *WorkloadSpec) Explicit() bool {
	return len(s.Changesets) > 0
}

// Validate checks that all fields in the spec are valid. Call after ApplyDefaults.
func (s *WorkloadSpec) Validate() error {
	if err := s.validatePool(); err != nil {
		return err
	}
	if s.Explicit() {
		return s.validateChangesets()
	}
	if s.NumChangesets < 0 {
		return fmt.Errorf("num_changesets must be non-negative, got %d", s.NumChangesets)
	}
	if err := s.validateArrival(); err != nil {
		return err
	}
	poolSize := len(s.Pool)
	if poolSize == 0 {
		if s.Modules.Count <= 0 {
			return fmt.Errorf("modules.count must be positive, got %d", s.Modules.Count)
		}
		if err := validateRange("modules.compile", s.Modules.Compile); err != nil {
			return err
		}
		if err := validateRange("modules.test", s.Modules.Test); err != nil {
			return err
		}
		poolSize = s.Modules.Count
	}
	if s.Changes.MaxChangedModules < 1 || s.Changes.MaxChangedModules > poolSize {
		return fmt.Errorf("changes.max_changed_modules must be in [1, %d], got %d", poolSize, s.Changes.MaxChangedModules)
	}
	if s.Changes.ExtraTestedModules < 0 {
		return fmt.Errorf("changes.extra_tested_modules must be non-negative, got %d", s.Changes.ExtraTestedModules)
	}
	return nil
}

func (s *WorkloadSpec) validateArrival() error {
	a := s.Arrival
	if !validArrivalProcesses[a.Process] {
		return fmt.Errorf("unknown arrival process %q; valid: uniform, poisson, gamma", a.Process)
	}
	if a.MinTick < 0 {
		return fmt.Errorf("arrival.min_tick must be non-negative, got %d", a.MinTick)
	}
	switch a.Process {
	case "uniform":
		if a.MaxTick <= a.MinTick {
			return fmt.Errorf("arrival.max_tick (%d) must exceed arrival.min_tick (%d)", a.MaxTick, a.MinTick)
		}
	case "poisson", "gamma":
		if s.NumChangesets > 0 {
			if err := validateFinitePositive("arrival.mean_interval", a.MeanInterval); err != nil {
				return err
			}
		}
		if a.Process == "gamma" {
			if err := validateFinitePositive("arrival.cv", a.CV); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *WorkloadSpec) validatePool() error {
	seen := make(map[string]bool, len(s.Pool))
	for i, m := range s.Pool {
		if m.Name == "" {
			return fmt.Errorf("pool[%d]: name required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("pool[%d]: duplicate module %q", i, m.Name)
		}
		seen[m.Name] = true
		if m.Compile <= 0 || m.Test <= 0 {
			return fmt.Errorf("pool[%d]: module %q costs must be positive, got compile=%d test=%d", i, m.Name, m.Compile, m.Test)
		}
	}
	return nil
}

func (s *WorkloadSpec) validateChangesets() error {
	if len(s.Pool) == 0 {
		return fmt.Errorf("explicit changesets require a module pool")
	}
	known := make(map[string]bool, len(s.Pool))
	for _, m := range s.Pool {
		known[m.Name] = true
	}
	for i, c := range s.Changesets {
		prefix := fmt.Sprintf("changesets[%d]", i)
		if c.Arrival < 0 {
			return fmt.Errorf("%s: arrival must be non-negative, got %d", prefix, c.Arrival)
		}
		for _, name := range append(append([]string{}, c.Changed...), c.Tested...) {
			if !known[name] {
				return fmt.Errorf("%s: unknown module %q", prefix, name)
			}
		}
	}
	return nil
}

func validateRange(name string, r TickRange) error {
	if r.Min <= 0 {
		return fmt.Errorf("%s.min must be positive, got %d", name, r.Min)
	}
	if r.Max <= r.Min {
		return fmt.Errorf("%s.max (%d) must exceed %s.min (%d)", name, r.Max, name, r.Min)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
