// Tracks run-wide and per-release pipeline metrics such as:
// total compile/test time, last release tick, lead time percentiles and queue depth.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
)

// Metrics aggregates statistics about the completed releases of one run
// for final reporting. It only reads scheduler state.
type Metrics struct {
	Policy            string
	CompletedReleases int   // Number of releases that passed the release gate
	ElapsedTicks      int64 // Ticks simulated
	TotalCompileTime  int64 // Sum of CompileEnd - CompileStart
	TotalTestTime     int64 // Sum of TestEnd - TestStart
	TotalRebaseTime   int64 // Extra compile ticks inherited from releases queued ahead
	TotalGateHold     int64 // Ticks finished releases spent waiting at the gate
	LastReleaseTick   int64 // ReleasedTime of the last release

	LeadTimes      []int64 // per release, release order: ReleasedTime - QueuedTime
	WaitTimes      []int64 // per release, release order: CompileStart - QueuedTime
	QueueDepths    []int   // active queue length after each tick
	PeakQueueDepth int
}

// NewMetrics summarizes releases (in release order) for a run that lasted elapsed ticks.
func NewMetrics(policy string, releases []*Release, elapsed int64) *Metrics {
	m := &Metrics{
		Policy:       policy,
		ElapsedTicks: elapsed,
		LeadTimes:    make([]int64, 0, len(releases)),
		WaitTimes:    make([]int64, 0, len(releases)),
		QueueDepths:  make([]int, 0),
	}
	for _, r := range releases {
		m.CompletedReleases++
		m.TotalCompileTime += r.CompileTime()
		m.TotalTestTime += r.TestTime()
		m.TotalRebaseTime += r.RebaseOverhead()
		m.TotalGateHold += r.GateHold()
		m.LastReleaseTick = max(m.LastReleaseTick, r.ReleasedTime)
		m.LeadTimes = append(m.LeadTimes, r.LeadTime())
		m.WaitTimes = append(m.WaitTimes, r.WaitTime())
	}
	return m
}

// MeanLeadTime returns the average admission-to-release time in ticks.
func (m *Metrics) MeanLeadTime() float64 {
	return CalculateMean(m.LeadTimes)
}

// LeadTimePercentile returns the p-th percentile (0-100) of lead time in ticks.
func (m *Metrics) LeadTimePercentile(p float64) float64 {
	if len(m.LeadTimes) == 0 {
		return 0
	}
	sorted := append([]int64(nil), m.LeadTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return CalculatePercentile(sorted, p)
}

// MeanWaitTime returns the average admission-to-compile-start time in ticks.
func (m *Metrics) MeanWaitTime() float64 {
	return CalculateMean(m.WaitTimes)
}

// MeanQueueDepth returns the average active queue length over the run.
func (m *Metrics) MeanQueueDepth() float64 {
	return CalculateMean(m.QueueDepths)
}

// Throughput returns releases per 1000 ticks.
func (m *Metrics) Throughput() float64 {
	if m.ElapsedTicks <= 0 {
		return 0
	}
	return float64(m.CompletedReleases) / float64(m.ElapsedTicks) * 1000
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Simulation Metrics (%s) ===\n", m.Policy)
	fmt.Fprintf(w, "Completed Releases   : %d\n", m.CompletedReleases)
	fmt.Fprintf(w, "Elapsed Ticks        : %d\n", m.ElapsedTicks)
	fmt.Fprintf(w, "Total Compile Time   : %d ticks\n", m.TotalCompileTime)
	fmt.Fprintf(w, "Total Test Time      : %d ticks\n", m.TotalTestTime)
	fmt.Fprintf(w, "Last Release Tick    : %d\n", m.LastReleaseTick)
	if m.CompletedReleases > 0 {
		fmt.Fprintf(w, "Mean Lead Time       : %.2f ticks\n", m.MeanLeadTime())
		fmt.Fprintf(w, "P90 Lead Time        : %.2f ticks\n", m.LeadTimePercentile(90))
		fmt.Fprintf(w, "Mean Wait Time       : %.2f ticks\n", m.MeanWaitTime())
		fmt.Fprintf(w, "Rebase Overhead      : %d ticks\n", m.TotalRebaseTime)
		fmt.Fprintf(w, "Gate Hold            : %d ticks\n", m.TotalGateHold)
		fmt.Fprintf(w, "Throughput           : %.3f releases/1000 ticks\n", m.Throughput())
		fmt.Fprintf(w, "Peak Queue Depth     : %d\n", m.PeakQueueDepth)
	}
}

// MetricsOutput is the JSON form of Metrics written by SaveResults.
type MetricsOutput struct {
	Policy            string  `json:"policy"`
	CompletedReleases int     `json:"completed_releases"`
	ElapsedTicks      int64   `json:"elapsed_ticks"`
	TotalCompileTime  int64   `json:"total_compile_ticks"`
	TotalTestTime     int64   `json:"total_test_ticks"`
	TotalRebaseTime   int64   `json:"total_rebase_ticks"`
	TotalGateHold     int64   `json:"total_gate_hold_ticks"`
	LastReleaseTick   int64   `json:"last_release_tick"`
	LeadTimeMean      float64 `json:"lead_time_mean"`
	LeadTimeP50       float64 `json:"lead_time_p50"`
	LeadTimeP90       float64 `json:"lead_time_p90"`
	LeadTimeP99       float64 `json:"lead_time_p99"`
	WaitTimeMean      float64 `json:"wait_time_mean"`
	QueueDepthMean    float64 `json:"queue_depth_mean"`
	PeakQueueDepth    int     `json:"peak_queue_depth"`
	Throughput        float64 `json:"releases_per_1000_ticks"`
}

// Output converts the metrics to their JSON form.
func (m *Metrics) Output() MetricsOutput {
	return MetricsOutput{
		Policy:            m.Policy,
		CompletedReleases: m.CompletedReleases,
		ElapsedTicks:      m.ElapsedTicks,
		TotalCompileTime:  m.TotalCompileTime,
		TotalTestTime:     m.TotalTestTime,
		TotalRebaseTime:   m.TotalRebaseTime,
		TotalGateHold:     m.TotalGateHold,
		LastReleaseTick:   m.LastReleaseTick,
		LeadTimeMean:      m.MeanLeadTime(),
		LeadTimeP50:       m.LeadTimePercentile(50),
		LeadTimeP90:       m.LeadTimePercentile(90),
		LeadTimeP99:       m.LeadTimePercentile(99),
		WaitTimeMean:      m.MeanWaitTime(),
		QueueDepthMean:    m.MeanQueueDepth(),
		PeakQueueDepth:    m.PeakQueueDepth,
		Throughput:        m.Throughput(),
	}
}

// SaveResults writes the metrics as indented JSON to path.
func (m *Metrics) SaveResults(path string) error {
	data, err := json.MarshalIndent(m.Output(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	logrus.Infof("Metrics written to: %s", path)
	return nil
}
