package sim

// loadBalancerBehavior forwards each request to one of its targets with no
// latency of its own.
//
// Per-target connection counts are incremented on routing and never
// decremented; nothing in the request lifecycle reports back to the
// balancer. Over long runs the counts only grow, which eventually trips
// MaxConnections and flattens least-connections into declaration order.
type loadBalancerBehavior struct {
	id    string
	cfg   LoadBalancerConfig
	state LoadBalancerState
}

func newLoadBalancerBehavior(id string, cfg LoadBalancerConfig) *loadBalancerBehavior {
	return &loadBalancerBehavior{
		id:    id,
		cfg:   cfg,
		state: LoadBalancerState{ActiveConnections: make(map[string]int)},
	}
}

func (b *loadBalancerBehavior) Kind() NodeKind   { return KindLoadBalancer }
func (b *loadBalancerBehavior) State() NodeState { return b.state.clone() }

func (b *loadBalancerBehavior) HandleRequest(env Env, ev Event, targets []string) error {
	if len(targets) == 0 {
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropNoTargets)
	}
	if b.state.InFlight() >= b.cfg.MaxConnections {
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropMaxConnections)
	}
	target := b.selectTarget(env, targets)
	b.state.ActiveConnections[target]++
	b.state.TotalRouted++
	return env.Sched.Schedule(Event{
		Time:   ev.Time,
		Type:   EventRequestArrive,
		NodeID: target,
		Payload: ArrivePayload{
			RequestMeta: requestMeta(ev),
			FromNode:    b.id,
			RoutedBy:    b.id,
		},
	})
}

func (b *loadBalancerBehavior) selectTarget(env Env, targets []string) string {
	switch b.cfg.Algorithm {
	case LBRandom:
		return targets[env.RNG.NextInt(0, len(targets)-1)]
	case LBLeastConnections:
		best := targets[0]
		bestCount := b.state.ActiveConnections[best]
		for _, t := range targets[1:] {
			if c := b.state.ActiveConnections[t]; c < bestCount {
				best, bestCount = t, c
			}
		}
		return best
	default:
		t := targets[b.state.CurrentIndex%len(targets)]
		b.state.CurrentIndex = (b.state.CurrentIndex + 1) % len(targets)
		return t
	}
}
