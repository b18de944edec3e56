package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	sim "github.com/ExalDraen/queuesim/sim"
	"github.com/ExalDraen/queuesim/sim/trace"
	"github.com/ExalDraen/queuesim/sim/workload"
)

// policyResult is everything one simulated policy produced.
type policyResult struct {
	Policy  string
	Metrics *sim.Metrics
	Trace   *trace.SimulationTrace
}

// runPolicy simulates one scheduler over arrivals. Each call builds its own
// Pool, so the same arrivals can be replayed against several policies.
func runPolicy(policy string, arrivals []workload.Arrival, level trace.TraceLevel, maxTicks int64) (*policyResult, error) {
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: level})
	sched := sim.NewScheduler(policy, tr)
	s := sim.NewSimulator(workload.NewPool(arrivals), sched, sim.SimConfig{MaxTicks: maxTicks, Trace: tr})
	if err := s.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", sched.Policy(), err)
	}
	return &policyResult{Policy: sched.Policy(), Metrics: s.Metrics(), Trace: tr}, nil
}

// comparePolicies runs the serial then the pipelined scheduler over arrivals.
func comparePolicies(arrivals []workload.Arrival, level trace.TraceLevel, maxTicks int64) ([]*policyResult, error) {
	results := make([]*policyResult, 0, 2)
	for _, policy := range []string{sim.PolicySerial, sim.PolicyPipelined} {
		logrus.Infof("Simulating %d changesets with %s scheduler", len(arrivals), policy)
		r, err := runPolicy(policy, arrivals, level, maxTicks)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// saveComparison writes one metrics object per policy as an indented JSON array.
func saveComparison(path string, metrics []*sim.Metrics) error {
	outputs := make([]sim.MetricsOutput, len(metrics))
	for i, m := range metrics {
		outputs[i] = m.Output()
	}
	data, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal comparison: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write comparison to %s: %w", path, err)
	}
	logrus.Infof("Comparison written to: %s", path)
	return nil
}
