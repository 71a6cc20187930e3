package sim

import "math/rand"

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical topology and
// configuration MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// RNG is the single source of randomness for one Simulator. Behaviors,
// distributions, edge failure rolls and the request generator all draw from
// the same stream, so the draw order (fixed by event-processing order)
// determines every outcome.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type RNG struct {
	key SimulationKey
	r   *rand.Rand
}

// NewRNG creates an RNG seeded from key.
func NewRNG(key SimulationKey) *RNG {
	return &RNG{key: key, r: rand.New(rand.NewSource(int64(key)))}
}

// Next returns a float in [0,1) with 53 bits of precision.
func (g *RNG) Next() float64 {
	return g.r.Float64()
}

// NextInt returns an integer uniformly drawn from [min,max] inclusive.
// It consumes exactly one draw. If max < min the bounds are swapped.
func (g *RNG) NextInt(min, max int) int {
	if max < min {
		min, max = max, min
	}
	span := max - min + 1
	idx := int(g.Next() * float64(span))
	if idx >= span {
		idx = span - 1
	}
	return min + idx
}

// Key returns the SimulationKey used to seed this RNG.
func (g *RNG) Key() SimulationKey {
	return g.key
}

// Reseed restarts the stream from key, as if freshly constructed.
func (g *RNG) Reseed(key SimulationKey) {
	g.key = key
	g.r = rand.New(rand.NewSource(int64(key)))
}
