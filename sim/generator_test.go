package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Constant_EvenlySpacedFromZero(t *testing.T) {
	// GIVEN 100 rps for 1000ms over one entry
	cfg := testConfig(1000, 100)
	g := NewRequestGenerator(cfg, []string{"client"}, NewRNG(NewSimulationKey(42)))

	// WHEN generated
	events := g.Generate()

	// THEN arrivals are at 0, 10, ..., 1000 inclusive
	require.Len(t, events, 101)
	for i, ev := range events {
		assert.InDelta(t, float64(i)*10, ev.Time, 1e-9)
		assert.Equal(t, EventRequestArrive, ev.Type)
		assert.Equal(t, "client", ev.NodeID)
	}
	assert.Equal(t, "req-1", events[0].RequestID())
	assert.Equal(t, "req-101", events[100].RequestID())
}

func TestGenerator_RoundRobinOverEntries(t *testing.T) {
	g := NewRequestGenerator(testConfig(50, 100), []string{"a", "b", "c"}, NewRNG(NewSimulationKey(1)))
	var nodes []string
	for _, ev := range g.Generate() {
		nodes = append(nodes, ev.NodeID)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, nodes)
}

func TestGenerator_Poisson_DeterministicAndBounded(t *testing.T) {
	cfg := testConfig(5000, 200)
	cfg.RequestDistribution = ArrivalPoisson
	a := NewRequestGenerator(cfg, []string{"c"}, NewRNG(NewSimulationKey(42))).Generate()
	b := NewRequestGenerator(cfg, []string{"c"}, NewRNG(NewSimulationKey(42))).Generate()

	assert.Equal(t, a, b)
	assert.InDelta(t, 1000, len(a), 150)
	prev := -1.0
	for _, ev := range a {
		assert.GreaterOrEqual(t, ev.Time, prev)
		assert.LessOrEqual(t, ev.Time, 5000.0)
		prev = ev.Time
	}
}

func TestGenerator_ZeroRate_NoArrivals(t *testing.T) {
	g := NewRequestGenerator(testConfig(1000, 0), []string{"c"}, NewRNG(NewSimulationKey(1)))
	assert.Empty(t, g.Generate())
}

func TestGenerator_IDsAreInstanceScoped(t *testing.T) {
	a := NewRequestGenerator(testConfig(0, 1), []string{"c"}, NewRNG(NewSimulationKey(1)))
	b := NewRequestGenerator(testConfig(0, 1), []string{"c"}, NewRNG(NewSimulationKey(1)))
	assert.Equal(t, "req-1", a.NextRequestID())
	assert.Equal(t, "req-2", a.NextRequestID())
	assert.Equal(t, "req-1", b.NextRequestID())
}
