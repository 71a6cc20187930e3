package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingScheduler captures scheduled events instead of queueing them.
type recordingScheduler struct {
	now    float64
	events []Event
}

func (r *recordingScheduler) Schedule(ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingScheduler) Now() float64 { return r.now }

func (r *recordingScheduler) ofType(t EventType) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestEnv(seed int64) (Env, *recordingScheduler) {
	sched := &recordingScheduler{}
	return Env{Sched: sched, RNG: NewRNG(NewSimulationKey(seed))}, sched
}

func arrival(id string, node string, at float64) Event {
	return Event{
		Time:    at,
		Type:    EventRequestArrive,
		NodeID:  node,
		Payload: ArrivePayload{RequestMeta: RequestMeta{RequestID: id, StartTime: at, HasStart: true}},
	}
}

func node(id string, cfg ComponentConfig) SimNode {
	return SimNode{ID: id, Config: cfg}
}

func edge(id, source, target string, latency Distribution) SimEdge {
	return SimEdge{ID: id, Source: source, Target: target, Config: EdgeConfig{LatencyMs: latency}}
}

func testConfig(maxTimeMs, rps float64) SimulationConfig {
	cfg := DefaultSimulationConfig()
	cfg.MaxTimeMs = maxTimeMs
	cfg.RequestRateRps = rps
	return cfg
}

// chainTopology is client -> lb -> {svc-a, svc-b} -> db.
func chainTopology() Topology {
	svc := ServiceConfig{LatencyMs: Uniform(5, 15), FailureRate: 0.01, MaxConcurrency: 50}
	return Topology{
		Nodes: []SimNode{
			node("client", ClientConfig{}),
			node("lb", LoadBalancerConfig{Algorithm: LBRoundRobin, MaxConnections: 10000}),
			node("svc-a", svc),
			node("svc-b", svc),
			node("db", DatabaseConfig{
				QueryLatencyMs:     Exponential(0.2),
				WriteLatencyMs:     Constant(12),
				ConnectionPoolSize: 20,
				ReplicationFactor:  2,
			}),
		},
		Edges: []SimEdge{
			edge("e1", "client", "lb", Constant(1)),
			edge("e2", "lb", "svc-a", Constant(1)),
			edge("e3", "lb", "svc-b", Constant(1)),
			edge("e4", "svc-a", "db", Normal(2, 0.5)),
			edge("e5", "svc-b", "db", Normal(2, 0.5)),
		},
	}
}

func mustSimulator(t *testing.T, topo Topology, cfg SimulationConfig, opts ...Option) *Simulator {
	t.Helper()
	s, err := NewSimulator(topo, cfg, opts...)
	require.NoError(t, err)
	return s
}
