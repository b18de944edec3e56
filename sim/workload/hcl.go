package workload

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclWorkloadFile is the top-level structure of an HCL workload file:
//
//	seed           = 42
//	num_changesets = 25
//	arrival { process = "poisson" min_tick = 1 mean_interval = 2 * minute }
//	modules { count = 30 compile { min = minute max = 2 * minute } }
//	module "core" { compile = 90 test = 4 * minute }
//	changeset { arrival = 0 changed = ["core"] tested = ["core"] }
type hclWorkloadFile struct {
	Version       string               `hcl:"version,optional"`
	Seed          int64                `hcl:"seed,optional"`
	NumChangesets int                  `hcl:"num_changesets,optional"`
	Arrival       *hclArrivalBlock     `hcl:"arrival,block"`
	Modules       *hclModulesBlock     `hcl:"modules,block"`
	Changes       *hclChangesBlock     `hcl:"changes,block"`
	Pool          []*hclModuleBlock    `hcl:"module,block"`
	Changesets    []*hclChangesetBlock `hcl:"changeset,block"`
}

type hclArrivalBlock struct {
	Process      string  `hcl:"process,optional"`
	MinTick      int64   `hcl:"min_tick,optional"`
	MaxTick      int64   `hcl:"max_tick,optional"`
	MeanInterval float64 `hcl:"mean_interval,optional"`
	CV           float64 `hcl:"cv,optional"`
}

type hclRangeBlock struct {
	Min int64 `hcl:"min"`
	Max int64 `hcl:"max"`
}

type hclModulesBlock struct {
	Count      int            `hcl:"count,optional"`
	NamePrefix string         `hcl:"name_prefix,optional"`
	Compile    *hclRangeBlock `hcl:"compile,block"`
	Test       *hclRangeBlock `hcl:"test,block"`
}

type hclChangesBlock struct {
	MaxChangedModules  int `hcl:"max_changed_modules,optional"`
	ExtraTestedModules int `hcl:"extra_tested_modules,optional"`
}

type hclModuleBlock struct {
	Name    string `hcl:"name,label"`
	Compile int64  `hcl:"compile"`
	Test    int64  `hcl:"test"`
}

type hclChangesetBlock struct {
	Arrival int64    `hcl:"arrival"`
	Changed []string `hcl:"changed,optional"`
	Tested  []string `hcl:"tested,optional"`
}

// Tick unit constants available to HCL expressions. One tick is one second.
var hclTickUnits = map[string]cty.Value{
	"second": cty.NumberIntVal(1),
	"minute": cty.NumberIntVal(60),
	"hour":   cty.NumberIntVal(3600),
}

// hclEvalContext returns the evaluation context used to decode workload files.
func hclEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{Variables: hclTickUnits}
}

// loadHCLWorkloadSpec parses a single HCL workload file into a WorkloadSpec.
func loadHCLWorkloadSpec(path string) (*WorkloadSpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodeHCLWorkload(file.Body, path)
}

// parseHCLWorkloadSpec parses HCL source held in memory; filename is used in diagnostics.
func parseHCLWorkloadSpec(src []byte, filename string) (*WorkloadSpec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodeHCLWorkload(file.Body, filename)
}

func decodeHCLWorkload(body hcl.Body, filename string) (*WorkloadSpec, error) {
	var parsed hclWorkloadFile
	if diags := gohcl.DecodeBody(body, hclEvalContext(), &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return parsed.toSpec(), nil
}

func (f *hclWorkloadFile) toSpec() *WorkloadSpec {
	spec := &WorkloadSpec{
		Version:       f.Version,
		Seed:          f.Seed,
		NumChangesets: f.NumChangesets,
	}
	if a := f.Arrival; a != nil {
		spec.Arrival = ArrivalSpec{
			Process:      a.Process,
			MinTick:      a.MinTick,
			MaxTick:      a.MaxTick,
			MeanInterval: a.MeanInterval,
			CV:           a.CV,
		}
	}
	if m := f.Modules; m != nil {
		spec.Modules.Count = m.Count
		spec.Modules.NamePrefix = m.NamePrefix
		if m.Compile != nil {
			spec.Modules.Compile = TickRange{Min: m.Compile.Min, Max: m.Compile.Max}
		}
		if m.Test != nil {
			spec.Modules.Test = TickRange{Min: m.Test.Min, Max: m.Test.Max}
		}
	}
	if c := f.Changes; c != nil {
		spec.Changes = ChangeSpec{
			MaxChangedModules:  c.MaxChangedModules,
			ExtraTestedModules: c.ExtraTestedModules,
		}
	}
	for _, m := range f.Pool {
		spec.Pool = append(spec.Pool, ModuleSpec{Name: m.Name, Compile: m.Compile, Test: m.Test})
	}
	for _, c := range f.Changesets {
		spec.Changesets = append(spec.Changesets, ChangesetSpec{Arrival: c.Arrival, Changed: c.Changed, Tested: c.Tested})
	}
	return spec
}
