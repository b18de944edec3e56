package sim

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doneRelease builds a released Release with the given timestamps.
func doneRelease(queued, compileStart, compileEnd, testEnd, released int64) *Release {
	var cs Changeset
	return &Release{
		Name:          "R",
		Changeset:     cs,
		Origin:        cs,
		phase:         PhaseDone,
		QueuedTime:    queued,
		CompileStart:  compileStart,
		CompileEnd:    compileEnd,
		TestStart:     compileEnd,
		TestEnd:       testEnd,
		CompletedTime: testEnd,
		ReleasedTime:  released,
	}
}

func TestNewMetrics_Aggregates(t *testing.T) {
	// GIVEN two released releases
	releases := []*Release{
		doneRelease(0, 0, 60, 180, 180),
		doneRelease(0, 1, 111, 201, 210),
	}

	// WHEN summarized over 211 elapsed ticks
	m := NewMetrics(PolicyPipelined, releases, 211)

	// THEN totals are the sums of phase lengths
	assert.Equal(t, 2, m.CompletedReleases)
	assert.Equal(t, int64(60+110), m.TotalCompileTime)
	assert.Equal(t, int64(120+90), m.TotalTestTime)
	assert.Equal(t, int64(210), m.LastReleaseTick)
	assert.Equal(t, int64(9), m.TotalGateHold)
	assert.Equal(t, []int64{180, 210}, m.LeadTimes)
	assert.Equal(t, []int64{0, 1}, m.WaitTimes)
	assert.InDelta(t, 195.0, m.MeanLeadTime(), 1e-9)
	assert.InDelta(t, 0.5, m.MeanWaitTime(), 1e-9)
	assert.InDelta(t, 2.0/211.0*1000, m.Throughput(), 1e-9)
}

func TestNewMetrics_Empty_ZeroValues(t *testing.T) {
	m := NewMetrics(PolicySerial, nil, 0)
	assert.Equal(t, 0, m.CompletedReleases)
	assert.Equal(t, 0.0, m.MeanLeadTime())
	assert.Equal(t, 0.0, m.LeadTimePercentile(90))
	assert.Equal(t, 0.0, m.Throughput())
}

func TestMetrics_LeadTimePercentile_SortsCopy(t *testing.T) {
	m := &Metrics{LeadTimes: []int64{40, 10, 30, 20, 50}}

	assert.Equal(t, 30.0, m.LeadTimePercentile(50))
	assert.Equal(t, 50.0, m.LeadTimePercentile(100))
	assert.Equal(t, 10.0, m.LeadTimePercentile(0))
	assert.InDelta(t, 46.0, m.LeadTimePercentile(90), 1e-9)
	assert.Equal(t, []int64{40, 10, 30, 20, 50}, m.LeadTimes, "input order must be preserved")
}

func TestMetrics_Print_IncludesHeaderAndTotals(t *testing.T) {
	m := NewMetrics(PolicySerial, []*Release{doneRelease(0, 0, 60, 180, 180)}, 181)

	var buf bytes.Buffer
	m.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Simulation Metrics (sq) ===")
	assert.Contains(t, out, "Total Compile Time   : 60 ticks")
	assert.Contains(t, out, "Last Release Tick    : 180")
}

func TestMetrics_SaveResults_WritesJSON(t *testing.T) {
	// GIVEN metrics for one release
	m := NewMetrics(PolicySerial, []*Release{doneRelease(0, 0, 60, 180, 180)}, 181)
	path := filepath.Join(t.TempDir(), "results.json")

	// WHEN saved
	require.NoError(t, m.SaveResults(path))

	// THEN the JSON round-trips the headline numbers
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out MetricsOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "sq", out.Policy)
	assert.Equal(t, 1, out.CompletedReleases)
	assert.Equal(t, int64(180), out.LastReleaseTick)
	assert.Equal(t, 180.0, out.LeadTimeMean)
}

func TestMetrics_SaveResults_BadPath_Errors(t *testing.T) {
	m := NewMetrics(PolicySerial, nil, 0)
	err := m.SaveResults(filepath.Join(t.TempDir(), "missing", "results.json"))
	assert.Error(t, err)
}
