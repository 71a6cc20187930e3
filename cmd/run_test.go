package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simranmultani197/Simforge-sub000/sim"
	"github.com/simranmultani197/Simforge-sub000/sim/trace"
)

const singleService = "../examples/single-service.yaml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, args ...string) RunReport {
	t.Helper()
	out, err := execute(t, append([]string{"run", "--json"}, args...)...)
	require.NoError(t, err, out)
	var report RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	return report
}

func TestRun_SingleService_JSONReport(t *testing.T) {
	// GIVEN the single-service example (100 rps for 1000ms, 5ms latency)
	// WHEN run with JSON output
	report := runJSON(t, "--scenario", singleService)

	// THEN every arrival that can finish in time completes
	assert.Equal(t, "single-service", report.Scenario)
	assert.Equal(t, sim.StatusCompleted, report.Status)
	assert.Equal(t, 100, report.Metrics.CompletedRequests)
	assert.Equal(t, 0, report.Metrics.DroppedRequests)
	assert.Equal(t, 5.0, report.Metrics.AvgLatencyMs)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Nodes, 1)
	assert.Equal(t, "api", report.Nodes[0].ID)
	assert.Nil(t, report.Trace)
}

func TestRun_PositionalScenarioAndDeterminism(t *testing.T) {
	a := runJSON(t, "../examples/web-tier.yaml", "--max-time", "2000")
	b := runJSON(t, "../examples/web-tier.yaml", "--max-time", "2000")

	assert.Equal(t, a.Metrics, b.Metrics)
	assert.NotEqual(t, a.RunID, b.RunID)
	require.NotNil(t, a.Trace, "web-tier enables decision tracing")
	assert.Positive(t, a.Trace.TotalRoutings)
}

func TestRun_FlagsOverrideScenario(t *testing.T) {
	// GIVEN overrides for seed, time, rate and tracing
	report := runJSON(t, "--scenario", singleService,
		"--seed", "9", "--max-time", "500", "--rate", "20", "--distribution", "poisson", "--trace")

	// THEN they replace the scenario's values and keep the rest
	assert.Equal(t, int64(9), report.Config.Seed)
	assert.Equal(t, 500.0, report.Config.MaxTimeMs)
	assert.Equal(t, 20.0, report.Config.RequestRateRps)
	assert.Equal(t, sim.ArrivalPoisson, report.Config.RequestDistribution)
	assert.Equal(t, trace.TraceLevelDecisions, report.Config.TraceLevel)
	assert.Equal(t, 100.0, report.Config.MetricsIntervalMs)
	assert.NotNil(t, report.Trace)
}

func TestRun_EnvBelowFlagsAboveConfigFile(t *testing.T) {
	// GIVEN a config file, and env vars for some of the same keys
	cfg := filepath.Join(t.TempDir(), "simforge.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("rate: 50\nseed: 3\nmax-time: 400\n"), 0o644))
	t.Setenv("SIMFORGE_SEED", "7")
	t.Setenv("SIMFORGE_MAX_TIME", "300")

	// WHEN run with a flag for one of them
	report := runJSON(t, "--config", cfg, "--scenario", singleService, "--max-time", "200")

	// THEN flag > env > file
	assert.Equal(t, 200.0, report.Config.MaxTimeMs)
	assert.Equal(t, int64(7), report.Config.Seed)
	assert.Equal(t, 50.0, report.Config.RequestRateRps)
}

func TestRun_ScenarioFromConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "simforge.yaml")
	abs, err := filepath.Abs(singleService)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg, []byte("scenario: "+abs+"\n"), 0o644))

	report := runJSON(t, "--config", cfg)
	assert.Equal(t, "single-service", report.Scenario)
}

func TestRun_SamplesOut_WritesEverySample(t *testing.T) {
	// GIVEN a JSONL samples file
	out := filepath.Join(t.TempDir(), "samples.jsonl")

	// WHEN the run finishes
	report := runJSON(t, "--scenario", singleService, "--samples-out", out)

	// THEN the file holds one line per sample the aggregate was built from
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	lines := 0
	completed := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var s sim.MetricsSample
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &s))
		completed += s.Completed
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, report.Metrics.Samples, lines)
	assert.Equal(t, report.Metrics.CompletedRequests, completed)
}

func TestRun_HumanReport(t *testing.T) {
	out, err := execute(t, "run", "../examples/web-tier.yaml", "--max-time", "1000", "--progress")
	require.NoError(t, err)

	assert.Contains(t, out, "=== Simulation Metrics ===")
	assert.Contains(t, out, "=== Nodes ===")
	assert.Contains(t, out, "=== Decision Trace ===")
	assert.Contains(t, out, "gateway (api-gateway)")
	assert.Contains(t, out, "t=   250.0ms", "progress lines are printed per sample")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no scenario", []string{"run"}, "no scenario given"},
		{"missing file", []string{"run", "--scenario", "nope.yaml"}, "reading scenario"},
		{"bad distribution", []string{"run", singleService, "--distribution", "bursty"}, "invalid configuration"},
		{"negative time", []string{"run", singleService, "--max-time", "-1"}, "max_time_ms"},
		{"infinite time", []string{"run", singleService, "--max-time", "inf"}, "max_time_ms must be finite"},
		{"NaN rate", []string{"run", singleService, "--rate", "NaN"}, "request_rate_rps must be finite"},
		{"missing config file", []string{"--config", "nope.yaml", "run", singleService}, "reading config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
