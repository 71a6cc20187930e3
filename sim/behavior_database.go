package sim

// writeFraction is the share of queries treated as writes.
const writeFraction = 0.2

// databaseBehavior models a connection-pooled database with a fixed
// read/write mix. Writes pay the write latency once per replica.
type databaseBehavior struct {
	id    string
	cfg   DatabaseConfig
	state DatabaseState
}

func (b *databaseBehavior) Kind() NodeKind   { return KindDatabase }
func (b *databaseBehavior) State() NodeState { return b.state }

// HandleRequest checks, in order: failure roll, pool exhaustion.
func (b *databaseBehavior) HandleRequest(env Env, ev Event, targets []string) error {
	if failureRoll(env, b.cfg.FailureRate) {
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropFailure)
	}
	if b.state.ActiveConnections >= b.cfg.ConnectionPoolSize {
		b.state.TotalDropped++
		return reject(env, ev, b.id, DropPoolExhausted)
	}
	b.state.ActiveConnections++
	b.state.TotalQueries++
	isWrite := env.RNG.Next() < writeFraction
	var delay float64
	if isWrite {
		b.state.TotalWrites++
		delay = sampleDelay(b.cfg.WriteLatencyMs, env.RNG) * float64(b.cfg.ReplicationFactor)
	} else {
		delay = sampleDelay(b.cfg.QueryLatencyMs, env.RNG)
	}
	return complete(env, ev, b.id, delay, CompletePayload{OutEdges: targets, IsWrite: isWrite})
}

func (b *databaseBehavior) HandleComplete(Event) {
	decrement(&b.state.ActiveConnections)
}
