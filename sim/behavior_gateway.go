package sim

import "math"

// apiGatewayBehavior authenticates requests behind a token bucket.
type apiGatewayBehavior struct {
	id    string
	cfg   APIGatewayConfig
	state APIGatewayState
}

func newAPIGatewayBehavior(id string, cfg APIGatewayConfig) *apiGatewayBehavior {
	return &apiGatewayBehavior{id: id, cfg: cfg, state: APIGatewayState{Tokens: cfg.BurstSize}}
}

func (b *apiGatewayBehavior) Kind() NodeKind   { return KindAPIGateway }
func (b *apiGatewayBehavior) State() NodeState { return b.state }

// HandleRequest checks, in order: failure roll, token bucket (refilled
// first), concurrency limit.
func (b *apiGatewayBehavior) HandleRequest(env Env, ev Event, targets []string) error {
	if failureRoll(env, b.cfg.FailureRate) {
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropFailure)
	}
	b.refill(ev.Time)
	if b.state.Tokens < 1 {
		b.state.TotalRateLimited++
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropRateLimited)
	}
	if b.state.ActiveRequests >= b.cfg.MaxConcurrency {
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropOverloaded)
	}
	b.state.Tokens--
	b.state.ActiveRequests++
	b.state.TotalRouted++
	delay := sampleDelay(b.cfg.AuthLatencyMs, env.RNG)
	return complete(env, ev, b.id, delay, CompletePayload{OutEdges: targets})
}

func (b *apiGatewayBehavior) refill(now float64) {
	elapsed := now - b.state.LastRefillTime
	if elapsed > 0 {
		b.state.Tokens = math.Min(b.cfg.BurstSize, b.state.Tokens+elapsed*b.cfg.RateLimitRps/1000)
	}
	b.state.LastRefillTime = now
}

func (b *apiGatewayBehavior) HandleComplete(Event) {
	decrement(&b.state.ActiveRequests)
}
