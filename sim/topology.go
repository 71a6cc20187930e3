package sim

import (
	"fmt"
	"math"

	"github.com/simranmultani197/Simforge-sub000/sim/trace"
)

// Position is the canvas position of a node. It has no effect on simulation.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// SimNode is one component in a topology. Config carries the kind.
type SimNode struct {
	ID       string
	Config   ComponentConfig
	Position Position
	Metadata map[string]any
}

// Kind returns the node's component kind, or "" if it has no config.
func (n SimNode) Kind() NodeKind {
	if n.Config == nil {
		return ""
	}
	return n.Config.Kind()
}

// EdgeConfig describes traversal characteristics of an edge. Latency and
// failure are sampled independently on every traversal.
type EdgeConfig struct {
	LatencyMs     Distribution `yaml:"latency_ms" json:"latencyMs"`
	BandwidthMbps float64      `yaml:"bandwidth_mbps,omitempty" json:"bandwidthMbps,omitempty"`
	FailureRate   float64      `yaml:"failure_rate,omitempty" json:"failureRate,omitempty"`
}

// SimEdge is a directed connection between two nodes.
type SimEdge struct {
	ID     string     `yaml:"id" json:"id"`
	Source string     `yaml:"source" json:"source"`
	Target string     `yaml:"target" json:"target"`
	Config EdgeConfig `yaml:"config" json:"config"`
}

// Topology is the authoring-surface view of a system: nodes and edges.
type Topology struct {
	Nodes []SimNode `yaml:"nodes" json:"nodes"`
	Edges []SimEdge `yaml:"edges" json:"edges"`
}

// Validate checks node and edge configurations. Structural checks (entry
// nodes, dangling edges) happen in BuildGraph.
func (t Topology) Validate() error {
	for i, n := range t.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node[%d] has no id", ErrInvalidConfig, i)
		}
		if n.Config == nil {
			return fmt.Errorf("%w: node %q has no config", ErrInvalidConfig, n.ID)
		}
		if err := n.Config.Validate(); err != nil {
			return fmt.Errorf("node %q (%s): %w", n.ID, n.Kind(), err)
		}
	}
	for i, e := range t.Edges {
		if err := validateProbability("failure_rate", e.Config.FailureRate); err != nil {
			return fmt.Errorf("edge[%d] %q: %w", i, e.ID, err)
		}
		if err := e.Config.LatencyMs.Validate(); err != nil {
			return fmt.Errorf("edge[%d] %q: %w", i, e.ID, err)
		}
	}
	return nil
}

// ArrivalProcess selects how the request generator spaces arrivals.
type ArrivalProcess string

const (
	ArrivalConstant ArrivalProcess = "constant"
	ArrivalPoisson  ArrivalProcess = "poisson"
)

// SimulationConfig drives RNG seeding, arrivals and run termination. It is
// immutable for the lifetime of a run.
type SimulationConfig struct {
	Seed                int64            `yaml:"seed" json:"seed"`
	MaxTimeMs           float64          `yaml:"max_time_ms" json:"maxTimeMs"`
	// MaxEvents of 0 disables the event cap; MaxTimeMs still bounds the run.
	MaxEvents           int              `yaml:"max_events" json:"maxEvents"`
	RequestRateRps      float64          `yaml:"request_rate_rps" json:"requestRateRps"`
	RequestDistribution ArrivalProcess   `yaml:"request_distribution" json:"requestDistribution"`
	MetricsIntervalMs   float64          `yaml:"metrics_interval_ms" json:"metricsIntervalMs"`
	TraceLevel          trace.TraceLevel `yaml:"trace_level,omitempty" json:"traceLevel,omitempty"`
}

// DefaultSimulationConfig returns the configuration used when a scenario
// leaves fields unspecified.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Seed:                42,
		MaxTimeMs:           10000,
		MaxEvents:           1000000,
		RequestRateRps:      100,
		RequestDistribution: ArrivalConstant,
		MetricsIntervalMs:   100,
		TraceLevel:          trace.TraceLevelNone,
	}
}

// Limits returns the engine run limits implied by the config.
func (c SimulationConfig) Limits() RunLimits {
	return RunLimits{MaxTimeMs: c.MaxTimeMs, MaxEvents: c.MaxEvents}
}

// Validate checks that the configuration can drive a run.
func (c SimulationConfig) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"max_time_ms", c.MaxTimeMs},
		{"request_rate_rps", c.RequestRateRps},
		{"metrics_interval_ms", c.MetricsIntervalMs},
	} {
		if math.IsInf(f.value, 0) || math.IsNaN(f.value) {
			return fmt.Errorf("%w: %s must be finite, got %g", ErrInvalidConfig, f.name, f.value)
		}
	}
	if c.MaxTimeMs < 0 {
		return fmt.Errorf("%w: max_time_ms must be non-negative, got %g", ErrInvalidConfig, c.MaxTimeMs)
	}
	if c.MaxEvents < 0 {
		return fmt.Errorf("%w: max_events must be non-negative, got %d", ErrInvalidConfig, c.MaxEvents)
	}
	if c.RequestRateRps < 0 {
		return fmt.Errorf("%w: request_rate_rps must be non-negative, got %g", ErrInvalidConfig, c.RequestRateRps)
	}
	switch c.RequestDistribution {
	case ArrivalConstant, ArrivalPoisson, "":
	default:
		return fmt.Errorf("%w: unknown request_distribution %q; valid: constant, poisson", ErrInvalidConfig, c.RequestDistribution)
	}
	if c.MetricsIntervalMs <= 0 {
		return fmt.Errorf("%w: metrics_interval_ms must be positive, got %g", ErrInvalidConfig, c.MetricsIntervalMs)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("%w: unknown trace_level %q", ErrInvalidConfig, c.TraceLevel)
	}
	return nil
}
