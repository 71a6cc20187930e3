package sim

import (
	"fmt"
	"math"
)

// RequestGenerator produces the initial arrival stream. It owns the request
// id counter, so independent simulators never share id state.
type RequestGenerator struct {
	cfg     SimulationConfig
	entries []string
	rng     *RNG
	nextID  int64
}

// NewRequestGenerator creates a generator that spreads arrivals round-robin
// over entries.
func NewRequestGenerator(cfg SimulationConfig, entries []string, rng *RNG) *RequestGenerator {
	return &RequestGenerator{cfg: cfg, entries: entries, rng: rng}
}

// NextRequestID returns a fresh, monotonically increasing request id.
func (g *RequestGenerator) NextRequestID() string {
	g.nextID++
	return fmt.Sprintf("req-%d", g.nextID)
}

// Generate walks simulated time from 0 and returns one request.arrive per
// arrival until the arrival time would exceed MaxTimeMs. Gaps are
// 1000/RequestRateRps ms, or exponential draws with that mean for poisson
// (one RNG draw per gap). A non-positive rate yields no arrivals.
func (g *RequestGenerator) Generate() []Event {
	if g.cfg.RequestRateRps <= 0 || len(g.entries) == 0 {
		return nil
	}
	meanGap := 1000 / g.cfg.RequestRateRps
	var events []Event
	for t, i := 0.0, 0; t <= g.cfg.MaxTimeMs; i++ {
		entry := g.entries[i%len(g.entries)]
		events = append(events, Event{
			Time:   t,
			Type:   EventRequestArrive,
			NodeID: entry,
			Payload: ArrivePayload{
				RequestMeta: RequestMeta{RequestID: g.NextRequestID(), StartTime: t, HasStart: true},
			},
		})
		t += g.gap(meanGap)
	}
	return events
}

func (g *RequestGenerator) gap(mean float64) float64 {
	if g.cfg.RequestDistribution == ArrivalPoisson {
		return -math.Log(1-g.rng.Next()) * mean
	}
	return mean
}
