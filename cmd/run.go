package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/simranmultani197/Simforge-sub000/sim"
	"github.com/simranmultani197/Simforge-sub000/sim/scenario"
	"github.com/simranmultani197/Simforge-sub000/sim/sink"
	"github.com/simranmultani197/Simforge-sub000/sim/trace"
)

// RunReport is the outcome of one `run` invocation. It is what --json prints.
type RunReport struct {
	RunID      string                `json:"runId"`
	Scenario   string                `json:"scenario"`
	Config     sim.SimulationConfig  `json:"config"`
	Status     sim.Status            `json:"status"`
	Metrics    sim.SimulationMetrics `json:"metrics"`
	Nodes      []sim.NodeReport      `json:"nodes"`
	Trace      *trace.TraceSummary   `json:"trace,omitempty"`
	WallTimeMs float64               `json:"wallTimeMs"`
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run a scenario to completion and report its metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("scenario")
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no scenario given: pass --scenario or a file argument")
			}
			report, err := runScenario(v, path, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if v.GetBool("json") {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Scenario file (simulation config + topology)")
	cmd.Flags().Int64("seed", 42, "Seed for the simulation RNG")
	cmd.Flags().Float64("max-time", 10000, "Simulated time limit in milliseconds")
	cmd.Flags().Int("max-events", 1000000, "Processed event limit")
	cmd.Flags().Float64("rate", 100, "Request arrivals per second")
	cmd.Flags().String("distribution", string(sim.ArrivalConstant), "Arrival process (constant, poisson)")
	cmd.Flags().Float64("metrics-interval", 100, "Metrics sampling interval in milliseconds")
	cmd.Flags().String("samples-out", "", "Write every metrics sample to this file (.csv for CSV, JSON Lines otherwise)")
	cmd.Flags().Bool("progress", false, "Print every metrics sample to stderr while running")
	cmd.Flags().Bool("trace", false, "Record drop and routing decisions and summarize them")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

// applyOverrides copies explicitly set keys over the scenario's config.
func applyOverrides(v *viper.Viper, cfg *sim.SimulationConfig) {
	if v.IsSet("seed") {
		cfg.Seed = v.GetInt64("seed")
	}
	if v.IsSet("max-time") {
		cfg.MaxTimeMs = v.GetFloat64("max-time")
	}
	if v.IsSet("max-events") {
		cfg.MaxEvents = v.GetInt("max-events")
	}
	if v.IsSet("rate") {
		cfg.RequestRateRps = v.GetFloat64("rate")
	}
	if v.IsSet("distribution") {
		cfg.RequestDistribution = sim.ArrivalProcess(v.GetString("distribution"))
	}
	if v.IsSet("metrics-interval") {
		cfg.MetricsIntervalMs = v.GetFloat64("metrics-interval")
	}
	if v.IsSet("trace") {
		cfg.TraceLevel = trace.TraceLevelNone
		if v.GetBool("trace") {
			cfg.TraceLevel = trace.TraceLevelDecisions
		}
	}
}

func runScenario(v *viper.Viper, path string, progress io.Writer) (*RunReport, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	applyOverrides(v, &sc.Simulation)
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var (
		sinks   sink.Multi
		sinkErr error
	)
	onSample := func(sample sim.MetricsSample) {
		if err := sinks.Write(sample); err != nil && sinkErr == nil {
			sinkErr = err
		}
	}
	s, err := sc.NewSimulator(sim.WithSampleCallback(onSample))
	if err != nil {
		return nil, err
	}
	if out := v.GetString("samples-out"); out != "" {
		fs, err := sink.Open(out)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fs)
	}
	if v.GetBool("progress") {
		sinks = append(sinks, sink.NewText(progress))
	}

	report := &RunReport{RunID: uuid.NewString(), Scenario: sc.Name, Config: sc.Simulation}
	if report.Scenario == "" {
		report.Scenario = path
	}
	log := logrus.WithFields(logrus.Fields{"run": report.RunID, "scenario": report.Scenario})
	log.Infof("running %d nodes, %d edges", len(sc.Topology.Nodes), len(sc.Topology.Edges))

	start := time.Now()
	metrics, runErr := s.Run()
	report.WallTimeMs = float64(time.Since(start).Microseconds()) / 1000
	if err := errors.Join(runErr, sinkErr, sinks.Close()); err != nil {
		return nil, err
	}
	report.Status = s.Status()
	report.Metrics = metrics
	report.Nodes = s.NodeReports()
	if sc.Simulation.TraceLevel.Enabled() {
		report.Trace = trace.Summarize(s.Trace())
	}
	log.WithField("wall_ms", report.WallTimeMs).Info("run finished")
	return report, nil
}
