package sim

// cacheBehavior never rejects. Hits terminate the request locally; misses
// continue along the node's outgoing edges.
type cacheBehavior struct {
	id    string
	cfg   CacheConfig
	state CacheState
}

func (b *cacheBehavior) Kind() NodeKind   { return KindCache }
func (b *cacheBehavior) State() NodeState { return b.state }

func (b *cacheBehavior) HandleRequest(env Env, ev Event, targets []string) error {
	b.state.ActiveRequests++
	if env.RNG.Next() < b.cfg.HitRate {
		b.state.TotalHits++
		delay := sampleDelay(b.cfg.HitLatencyMs, env.RNG)
		return complete(env, ev, b.id, delay, CompletePayload{OutEdges: []string{}, CacheHit: true})
	}
	b.state.TotalMisses++
	delay := sampleDelay(b.cfg.MissLatencyMs, env.RNG)
	return complete(env, ev, b.id, delay, CompletePayload{OutEdges: targets})
}

func (b *cacheBehavior) HandleComplete(Event) {
	decrement(&b.state.ActiveRequests)
}
