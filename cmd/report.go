package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	sim "github.com/ExalDraen/queuesim/sim"
	"github.com/ExalDraen/queuesim/sim/trace"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#5B8DEF"))
	reportLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#AAAAAA")).
				PaddingRight(2)
	reportHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Align(lipgloss.Right).
				PaddingLeft(2)
	reportValueStyle = lipgloss.NewStyle().
				Align(lipgloss.Right).
				PaddingLeft(2)
	reportBestStyle = reportValueStyle.
			Foreground(lipgloss.Color("#6BCB77"))
	reportBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	reportNoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// better says which direction of a metric wins the comparison.
type better int

const (
	neither better = iota
	lower
	higher
)

type comparisonRow struct {
	label  string
	format string
	better better
	value  func(m *sim.Metrics) float64
}

var comparisonRows = []comparisonRow{
	{"Releases", "%.0f", higher, func(m *sim.Metrics) float64 { return float64(m.CompletedReleases) }},
	{"Last release tick", "%.0f", lower, func(m *sim.Metrics) float64 { return float64(m.LastReleaseTick) }},
	{"Mean lead time", "%.1f", lower, (*sim.Metrics).MeanLeadTime},
	{"P90 lead time", "%.1f", lower, func(m *sim.Metrics) float64 { return m.LeadTimePercentile(90) }},
	{"Mean wait", "%.1f", lower, (*sim.Metrics).MeanWaitTime},
	{"Compile ticks", "%.0f", neither, func(m *sim.Metrics) float64 { return float64(m.TotalCompileTime) }},
	{"Rebase ticks", "%.0f", neither, func(m *sim.Metrics) float64 { return float64(m.TotalRebaseTime) }},
	{"Gate hold ticks", "%.0f", lower, func(m *sim.Metrics) float64 { return float64(m.TotalGateHold) }},
	{"Peak queue depth", "%.0f", neither, func(m *sim.Metrics) float64 { return float64(m.PeakQueueDepth) }},
	{"Releases / 1000 ticks", "%.2f", higher, (*sim.Metrics).Throughput},
}

// renderComparison lays the metrics of each policy side by side, highlighting
// the winning value of each row.
func renderComparison(numChangesets int, seed int64, results []*sim.Metrics) string {
	labels := []string{reportLabelStyle.Render("Policy")}
	for _, row := range comparisonRows {
		labels = append(labels, reportLabelStyle.Render(row.label))
	}
	columns := []string{lipgloss.JoinVertical(lipgloss.Left, labels...)}

	best := make([]int, len(comparisonRows))
	for i, row := range comparisonRows {
		best[i] = bestIndex(row, results)
	}
	for j, m := range results {
		cells := []string{reportHeaderStyle.Render(m.Policy)}
		for i, row := range comparisonRows {
			style := reportValueStyle
			if best[i] == j {
				style = reportBestStyle
			}
			cells = append(cells, style.Render(fmt.Sprintf(row.format, row.value(m))))
		}
		columns = append(columns, lipgloss.JoinVertical(lipgloss.Right, cells...))
	}

	title := reportTitleStyle.Render(fmt.Sprintf("Scheduler comparison: %d changesets, seed %d", numChangesets, seed))
	note := reportNoteStyle.Render("times in ticks")
	table := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return reportBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table, note))
}

// bestIndex returns the index of the winning policy for row, or -1 when the
// row has no direction or the policies tie.
func bestIndex(row comparisonRow, results []*sim.Metrics) int {
	if row.better == neither || len(results) < 2 {
		return -1
	}
	idx := 0
	tie := false
	for j := 1; j < len(results); j++ {
		a, b := row.value(results[j]), row.value(results[idx])
		switch {
		case a == b:
			tie = true
		case (row.better == lower) == (a < b):
			idx, tie = j, false
		}
	}
	if tie {
		return -1
	}
	return idx
}

func printTraceSummary(w io.Writer, policy string, s *trace.TraceSummary) {
	fmt.Fprintf(w, "=== Trace Summary (%s) ===\n", policy)
	fmt.Fprintf(w, "Admissions: %d\n", s.Admissions)
	fmt.Fprintf(w, "Released: %d\n", s.Released)
	fmt.Fprintf(w, "Idle ticks: %d\n", s.IdleTicks)
	fmt.Fprintf(w, "Peak queue depth at admission: %d\n", s.PeakQueueDepth)
	fmt.Fprintf(w, "Total rebase ticks: %d\n", s.TotalRebase)
	fmt.Fprintf(w, "Gate hold: mean %.1f, max %d, held releases %d\n", s.MeanGateHold, s.MaxGateHold, s.HeldReleases)
	if len(s.TransitionsByPair) > 0 {
		fmt.Fprintf(w, "Transitions: %d\n", s.Transitions)
		pairs := make([]string, 0, len(s.TransitionsByPair))
		for pair := range s.TransitionsByPair {
			pairs = append(pairs, pair)
		}
		sort.Strings(pairs)
		for _, pair := range pairs {
			fmt.Fprintf(w, "  %s: %d\n", pair, s.TransitionsByPair[pair])
		}
	}
}
