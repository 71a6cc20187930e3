package sim

import "github.com/sirupsen/logrus"

// serviceBehavior models a stateless service with bounded concurrency.
type serviceBehavior struct {
	id    string
	cfg   ServiceConfig
	state ServiceState
}

func (b *serviceBehavior) Kind() NodeKind   { return KindService }
func (b *serviceBehavior) State() NodeState { return b.state }

// HandleRequest checks, in order: failure roll, concurrency limit.
func (b *serviceBehavior) HandleRequest(env Env, ev Event, targets []string) error {
	if failureRoll(env, b.cfg.FailureRate) {
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropFailure)
	}
	if b.state.ActiveRequests >= b.cfg.MaxConcurrency {
		b.state.TotalDropped++
		logrus.Debugf("[t=%.3f] service %s overloaded (%d active)", ev.Time, b.id, b.state.ActiveRequests)
		return reject(env, ev, b.id, DropOverloaded)
	}
	b.state.ActiveRequests++
	delay := sampleDelay(b.cfg.LatencyMs, env.RNG)
	return complete(env, ev, b.id, delay, CompletePayload{OutEdges: targets})
}

func (b *serviceBehavior) HandleComplete(Event) {
	decrement(&b.state.ActiveRequests)
	b.state.TotalProcessed++
}
