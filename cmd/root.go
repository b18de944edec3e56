package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/ExalDraen/queuesim/sim"
	"github.com/ExalDraen/queuesim/sim/trace"
	"github.com/ExalDraen/queuesim/sim/workload"
)

var (
	// CLI flags for the simulation run
	seed             int64  // Seed for random workload generation
	schedulerName    string // Scheduling policy for `run`
	logLevel         string // Log verbosity level
	maxTicks         int64  // Tick cap; 0 means unbounded
	traceLevel       string // Trace verbosity (none, events, transitions)
	summarizeTrace   bool   // Print a trace summary after the run
	resultsPath      string // File to save metrics JSON to
	workloadSpecPath string // YAML or HCL workload file
	preset           string // Named workload from defaults.yaml
	defaultsFilePath string // Path to defaults.yaml

	// CLI flags for random workload generation
	numChangesets      int    // Number of changesets to generate
	arrivalProcess     string // uniform, poisson or gamma
	arrivalMin         int64  // First tick arrivals may land on
	arrivalMax         int64  // Arrivals land before this tick (uniform)
	moduleCount        int    // Size of the generated module pool
	compileMin         int64  // Min per-module compile cost
	compileMax         int64  // Max per-module compile cost (exclusive)
	testMin            int64  // Min per-module test cost
	testMax            int64  // Max per-module test cost (exclusive)
	maxChangedModules  int    // Max modules changed per changeset
	extraTestedModules int    // Max extra modules tested per changeset
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "queuesim",
	Short: "Tick-based simulator for build-and-release pipelines",
}

// runCmd simulates one scheduling policy over a workload
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the release pipeline simulation with one scheduler",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if !sim.IsValidScheduler(schedulerName) {
			logrus.Fatalf("Unknown scheduler %q. Valid: %v", schedulerName, sim.ValidSchedulerNames())
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, events, transitions", traceLevel)
		}

		spec, err := resolveWorkloadSpec(cmd)
		if err != nil {
			logrus.Fatalf("Failed to resolve workload: %v", err)
		}
		arrivals, err := workload.GenerateArrivals(spec)
		if err != nil {
			logrus.Fatalf("Failed to generate workload: %v", err)
		}
		logrus.Infof("Starting simulation: %d changesets, scheduler=%s, seed=%d", len(arrivals), schedulerName, spec.Seed)

		result, err := runPolicy(schedulerName, arrivals, trace.TraceLevel(traceLevel), maxTicks)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		result.Metrics.Print(os.Stdout)
		if summarizeTrace {
			printTraceSummary(os.Stdout, result.Policy, trace.Summarize(result.Trace))
		}
		if resultsPath != "" {
			if err := result.Metrics.SaveResults(resultsPath); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
		}
		logrus.Info("Simulation complete.")
	},
}

// compareCmd runs both policies over the identical workload
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the serial and pipelined schedulers on the same workload and compare them",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, events, transitions", traceLevel)
		}

		spec, err := resolveWorkloadSpec(cmd)
		if err != nil {
			logrus.Fatalf("Failed to resolve workload: %v", err)
		}
		arrivals, err := workload.GenerateArrivals(spec)
		if err != nil {
			logrus.Fatalf("Failed to generate workload: %v", err)
		}

		results, err := comparePolicies(arrivals, trace.TraceLevel(traceLevel), maxTicks)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		metrics := make([]*sim.Metrics, len(results))
		for i, r := range results {
			metrics[i] = r.Metrics
		}
		fmt.Fprintln(os.Stdout, renderComparison(len(arrivals), spec.Seed, metrics))
		if summarizeTrace {
			for _, r := range results {
				printTraceSummary(os.Stdout, r.Policy, trace.Summarize(r.Trace))
			}
		}
		if resultsPath != "" {
			if err := saveComparison(resultsPath, metrics); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
		}
		logrus.Info("Comparison complete.")
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveWorkloadSpec picks the workload source: a spec file, then a preset,
// then the random-generation flags. An explicit --seed always wins over a
// seed stored in a file or preset.
func resolveWorkloadSpec(cmd *cobra.Command) (*workload.WorkloadSpec, error) {
	if workloadSpecPath != "" && preset != "" {
		return nil, fmt.Errorf("--workload-spec and --preset are mutually exclusive")
	}

	var spec *workload.WorkloadSpec
	switch {
	case workloadSpecPath != "":
		loaded, err := workload.LoadWorkloadSpec(workloadSpecPath)
		if err != nil {
			return nil, err
		}
		logrus.Infof("Loaded workload spec from %s", workloadSpecPath)
		spec = loaded
	case preset != "":
		cfg, err := loadDefaultsConfig(defaultsFilePath)
		if err != nil {
			return nil, err
		}
		p, err := cfg.Preset(preset)
		if err != nil {
			return nil, err
		}
		logrus.Infof("Using workload preset %q from %s", preset, defaultsFilePath)
		spec = p
	default:
		return specFromFlags()
	}

	if cmd.Flags().Changed("seed") {
		spec.Seed = seed
	}
	return spec, nil
}

// specFromFlags builds a random workload spec from the generation flags.
func specFromFlags() (*workload.WorkloadSpec, error) {
	spec := &workload.WorkloadSpec{
		Seed:          seed,
		NumChangesets: numChangesets,
		Arrival: workload.ArrivalSpec{
			Process: arrivalProcess,
			MinTick: arrivalMin,
			MaxTick: arrivalMax,
		},
		Modules: workload.ModulePoolSpec{
			Count:   moduleCount,
			Compile: workload.TickRange{Min: compileMin, Max: compileMax},
			Test:    workload.TickRange{Min: testMin, Max: testMax},
		},
		Changes: workload.ChangeSpec{
			MaxChangedModules:  maxChangedModules,
			ExtraTestedModules: extraTestedModules,
		},
	}
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func registerSharedFlags(c *cobra.Command) {
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for random workload generation")
	c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().Int64Var(&maxTicks, "max-ticks", 0, "Stop with an error after this many ticks (0 = unbounded)")
	c.Flags().StringVar(&traceLevel, "trace-level", "none", "Trace verbosity (none, events, transitions)")
	c.Flags().BoolVar(&summarizeTrace, "summarize-trace", false, "Print a summary of the recorded trace")
	c.Flags().StringVar(&resultsPath, "results-path", "", "Save metrics JSON to this file")

	// Workload source
	c.Flags().StringVar(&workloadSpecPath, "workload-spec", "", "Workload spec file (.yaml or .hcl)")
	c.Flags().StringVar(&preset, "preset", "", "Named workload preset from the defaults file")
	c.Flags().StringVar(&defaultsFilePath, "defaults-filepath", "defaults.yaml", "Path to the defaults file holding workload presets")

	// Random workload generation
	c.Flags().IntVar(&numChangesets, "changesets", workload.DefaultNumChangesets, "Number of changesets to generate")
	c.Flags().StringVar(&arrivalProcess, "arrival-process", "uniform", "Arrival process (uniform, poisson, gamma)")
	c.Flags().Int64Var(&arrivalMin, "arrival-min", workload.DefaultArrivalMin, "First tick a changeset may arrive on")
	c.Flags().Int64Var(&arrivalMax, "arrival-max", workload.DefaultArrivalMax, "Changesets arrive before this tick (uniform)")
	c.Flags().IntVar(&moduleCount, "modules", workload.DefaultModuleCount, "Number of modules in the generated pool")
	c.Flags().Int64Var(&compileMin, "compile-min", workload.DefaultCompileMin, "Min per-module compile ticks")
	c.Flags().Int64Var(&compileMax, "compile-max", workload.DefaultCompileMax, "Max per-module compile ticks (exclusive)")
	c.Flags().Int64Var(&testMin, "test-min", workload.DefaultTestMin, "Min per-module test ticks")
	c.Flags().Int64Var(&testMax, "test-max", workload.DefaultTestMax, "Max per-module test ticks (exclusive)")
	c.Flags().IntVar(&maxChangedModules, "max-changed-modules", 1, "Max modules changed per changeset")
	c.Flags().IntVar(&extraTestedModules, "extra-tested-modules", 0, "Max extra modules tested per changeset")
}

func init() {
	registerSharedFlags(runCmd)
	registerSharedFlags(compareCmd)
	runCmd.Flags().StringVar(&schedulerName, "scheduler", sim.PolicySerial, "Scheduling policy (sq, pq)")

	// Attach `run` and `compare` as subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
