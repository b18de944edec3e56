// Package testutil provides shared test infrastructure for the queuesim packages.
// It holds the golden dataset types and assertion helpers used by sim/ sub-package tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one fixed workload replayed against one scheduler.
type GoldenTestCase struct {
	Name       string            `json:"name"`
	Policy     string            `json:"policy"`
	Pool       []GoldenModule    `json:"pool"`
	Changesets []GoldenChangeset `json:"changesets"`
	Metrics    GoldenMetrics     `json:"metrics"`
}

// GoldenModule declares a module and its costs in ticks.
type GoldenModule struct {
	Name    string `json:"name"`
	Compile int64  `json:"compile"`
	Test    int64  `json:"test"`
}

// GoldenChangeset declares one arrival by module name.
type GoldenChangeset struct {
	Arrival int64    `json:"arrival"`
	Changed []string `json:"changed"`
	Tested  []string `json:"tested"`
}

// GoldenMetrics represents the expected metrics from a golden test case.
type GoldenMetrics struct {
	// Exact match metrics (integers)
	CompletedReleases  int   `json:"completed_releases"`
	ElapsedTicks       int64 `json:"elapsed_ticks"`
	LastReleaseTick    int64 `json:"last_release_tick"`
	TotalRebaseTicks   int64 `json:"total_rebase_ticks"`
	TotalGateHoldTicks int64 `json:"total_gate_hold_ticks"`

	// Per-release release ticks, in release order
	ReleasedTimes []int64 `json:"released_times"`

	LeadTimeMean float64 `json:"lead_time_mean"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
