package sim

import "fmt"

// Env gives a behavior access to the engine and the run's RNG.
type Env struct {
	Sched Scheduler
	RNG   *RNG
}

// Behavior is the per-kind state machine of one node. It owns the node's
// mutable state record; only its own handlers mutate it.
type Behavior interface {
	Kind() NodeKind
	// HandleRequest admits or rejects the request carried by ev. targets are
	// the node's resolved outgoing target ids.
	HandleRequest(env Env, ev Event, targets []string) error
	// State returns a snapshot of the node's state record.
	State() NodeState
}

// Completer is implemented by behaviors that release capacity when their
// own request.complete event fires.
type Completer interface {
	HandleComplete(ev Event)
}

// NodeState is a snapshot of one node's state record. The concrete type
// matches the node kind (ServiceState, QueueState, ...).
type NodeState interface {
	Kind() NodeKind
}

// QueueDepther is implemented by states that hold buffered requests.
type QueueDepther interface {
	QueueDepth() int
}

// InFlighter is implemented by states that track active connections or
// requests.
type InFlighter interface {
	InFlight() int
}

// NewBehavior creates the behavior and fresh state for a node.
func NewBehavior(id string, cfg ComponentConfig) (Behavior, error) {
	switch c := cfg.(type) {
	case ClientConfig:
		return &clientBehavior{id: id}, nil
	case ServiceConfig:
		return &serviceBehavior{id: id, cfg: c}, nil
	case LoadBalancerConfig:
		return newLoadBalancerBehavior(id, c), nil
	case QueueConfig:
		return &queueBehavior{id: id, cfg: c}, nil
	case DatabaseConfig:
		return &databaseBehavior{id: id, cfg: c}, nil
	case CacheConfig:
		return &cacheBehavior{id: id, cfg: c}, nil
	case APIGatewayConfig:
		return newAPIGatewayBehavior(id, c), nil
	case nil:
		return nil, fmt.Errorf("%w: node %q has no config", ErrInvalidConfig, id)
	}
	return nil, fmt.Errorf("%w: node %q has config %T", ErrUnknownKind, id, cfg)
}

func requestMeta(ev Event) RequestMeta {
	if ev.Payload == nil {
		return RequestMeta{}
	}
	return ev.Payload.Request()
}

// reject schedules a drop of ev's request at the same time.
func reject(env Env, ev Event, nodeID string, reason DropReason) error {
	return env.Sched.Schedule(Event{
		Time:    ev.Time,
		Type:    EventRequestDropped,
		NodeID:  nodeID,
		Payload: DropPayload{RequestMeta: requestMeta(ev), Reason: reason},
	})
}

// complete schedules request.complete for ev's request after delay.
func complete(env Env, ev Event, nodeID string, delay float64, p CompletePayload) error {
	p.RequestMeta = requestMeta(ev)
	return env.Sched.Schedule(Event{
		Time:    ev.Time + delay,
		Type:    EventRequestComplete,
		NodeID:  nodeID,
		Payload: p,
	})
}

// failureRoll consumes one draw regardless of the rate, so the draw count
// per admission is independent of configuration.
func failureRoll(env Env, rate float64) bool {
	return env.RNG.Next() < rate
}

func decrement(n *int) {
	if *n > 0 {
		*n--
	}
}

// Dequeuer is implemented by behaviors that drain a buffer on queue.dequeue.
type Dequeuer interface {
	HandleDequeue(env Env, ev Event, targets []string) error
}
