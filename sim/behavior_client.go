package sim

// clientBehavior passes every request straight through.
type clientBehavior struct {
	id    string
	state ClientState
}

func (b *clientBehavior) Kind() NodeKind   { return KindClient }
func (b *clientBehavior) State() NodeState { return b.state }

func (b *clientBehavior) HandleRequest(env Env, ev Event, targets []string) error {
	b.state.RequestsForwarded++
	return complete(env, ev, b.id, 0, CompletePayload{OutEdges: targets})
}
