package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ExalDraen/queuesim/sim/workload"
)

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version   string                           `yaml:"version"`
	Workloads map[string]workload.WorkloadSpec `yaml:"workloads"`
}

// loadDefaultsConfig parses defaults.yaml into a Config struct.
// Unknown keys anywhere in the file are rejected.
func loadDefaultsConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read defaults file %s: %w", path, err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse defaults YAML %s: %w", path, err)
	}
	return cfg, nil
}

// PresetNames lists the workload presets in cfg, sorted.
func (cfg Config) PresetNames() []string {
	names := make([]string, 0, len(cfg.Workloads))
	for name := range cfg.Workloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a defaulted, validated copy of the named workload preset.
func (cfg Config) Preset(name string) (*workload.WorkloadSpec, error) {
	preset, ok := cfg.Workloads[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload preset %q; available: %v", name, cfg.PresetNames())
	}
	spec := preset
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return &spec, nil
}
