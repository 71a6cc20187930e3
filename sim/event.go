package sim

import "fmt"

// EventType names the kind of an Event. Each type has at most one handler
// registered on the Engine.
type EventType string

const (
	EventRequestArrive   EventType = "request.arrive"
	EventRequestComplete EventType = "request.complete"
	EventRequestDropped  EventType = "request.dropped"
	EventQueueDequeue    EventType = "queue.dequeue"
	EventQueueDeadLetter EventType = "queue.deadletter"
	EventMetricsSample   EventType = "metrics.sample"
)

// DropReason tags why a request was rejected.
type DropReason string

const (
	DropFailure        DropReason = "failure"
	DropOverloaded     DropReason = "overloaded"
	DropNoTargets      DropReason = "no_targets"
	DropMaxConnections DropReason = "max_connections"
	DropQueueFull      DropReason = "queue_full"
	DropPoolExhausted  DropReason = "pool_exhausted"
	DropRateLimited    DropReason = "rate_limited"
	DropEdgeFailure    DropReason = "edge_failure"
)

// Event is a timestamped instruction addressed to one node. Events are
// values; once scheduled they are never mutated.
type Event struct {
	Time    float64   // Simulation time in milliseconds
	Type    EventType // Selects the handler
	NodeID  string    // Addressed node ("" for simulator-wide events)
	Payload Payload   // Type-specific data, may be nil
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%.3f[%s]", e.Type, e.Time, e.NodeID)
}

// RequestID returns the id of the request the event belongs to, or "".
func (e Event) RequestID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Request().RequestID
}

// Payload is implemented by every typed event payload.
type Payload interface {
	Request() RequestMeta
}

// RequestMeta is the cross-cutting metadata carried by request-scoped
// payloads. StartTime is only meaningful when HasStart is set; some hops
// (queue dequeue) do not forward it and rely on the simulator's
// in-flight bookkeeping instead.
type RequestMeta struct {
	RequestID string  `json:"requestId"`
	StartTime float64 `json:"startTime,omitempty"`
	HasStart  bool    `json:"-"`
}

func (m RequestMeta) Request() RequestMeta { return m }

// ArrivePayload accompanies request.arrive.
type ArrivePayload struct {
	RequestMeta
	FromNode string // Upstream node, "" for generated arrivals
	EdgeID   string // Traversed edge, "" for generated or routed arrivals
	RoutedBy string // Load balancer that forwarded the request directly
}

// CompletePayload accompanies request.complete. A nil OutEdges means "all
// real outgoing edges"; a non-nil slice (possibly empty) restricts forwarding
// to the listed target ids.
type CompletePayload struct {
	RequestMeta
	OutEdges []string
	CacheHit bool
	IsWrite  bool
}

// DropPayload accompanies request.dropped and queue.deadletter.
type DropPayload struct {
	RequestMeta
	Reason DropReason
}

// DequeuePayload accompanies queue.dequeue. It carries no request: the
// queue pops whatever sits at the head of its buffer.
type DequeuePayload struct{}

func (DequeuePayload) Request() RequestMeta { return RequestMeta{} }

// SamplePayload accompanies metrics.sample.
type SamplePayload struct{}

func (SamplePayload) Request() RequestMeta { return RequestMeta{} }

// EventRecord is a flat, serialisable view of an Event used by observers
// that cross a process or transport boundary.
type EventRecord struct {
	Time      float64    `json:"time"`
	Type      EventType  `json:"type"`
	NodeID    string     `json:"nodeId,omitempty"`
	RequestID string     `json:"requestId,omitempty"`
	Reason    DropReason `json:"reason,omitempty"`
	CacheHit  bool       `json:"cacheHit,omitempty"`
}

// Record flattens the event.
func (e Event) Record() EventRecord {
	r := EventRecord{Time: e.Time, Type: e.Type, NodeID: e.NodeID, RequestID: e.RequestID()}
	switch p := e.Payload.(type) {
	case DropPayload:
		r.Reason = p.Reason
	case CompletePayload:
		r.CacheHit = p.CacheHit
	}
	return r
}
