package sim

import (
	"encoding/json"
	"fmt"
	"maps"
)

// ClientState is the state record of a client node.
type ClientState struct {
	RequestsForwarded int `json:"requestsForwarded"`
}

// ServiceState is the state record of a service node.
type ServiceState struct {
	ActiveRequests int `json:"activeRequests"`
	TotalProcessed int `json:"totalProcessed"`
	TotalDropped   int `json:"totalDropped"`
}

// LoadBalancerState is the state record of a load-balancer node.
type LoadBalancerState struct {
	CurrentIndex      int            `json:"currentIndex"`
	ActiveConnections map[string]int `json:"activeConnections"`
	TotalRouted       int            `json:"totalRouted"`
	TotalDropped      int            `json:"totalDropped"`
}

// QueueState is the state record of a queue node. Buffer holds request ids
// in arrival order.
type QueueState struct {
	Buffer        []string `json:"buffer"`
	TotalEnqueued int      `json:"totalEnqueued"`
	TotalDequeued int      `json:"totalDequeued"`
	TotalDropped  int      `json:"totalDropped"`
	IsProcessing  bool     `json:"isProcessing"`
}

// DatabaseState is the state record of a database node.
type DatabaseState struct {
	ActiveConnections int `json:"activeConnections"`
	TotalQueries      int `json:"totalQueries"`
	TotalWrites       int `json:"totalWrites"`
	TotalDropped      int `json:"totalDropped"`
}

// CacheState is the state record of a cache node.
type CacheState struct {
	TotalHits      int `json:"totalHits"`
	TotalMisses    int `json:"totalMisses"`
	ActiveRequests int `json:"activeRequests"`
}

// APIGatewayState is the state record of an api-gateway node.
type APIGatewayState struct {
	Tokens           float64 `json:"tokens"`
	LastRefillTime   float64 `json:"lastRefillTime"`
	ActiveRequests   int     `json:"activeRequests"`
	TotalRouted      int     `json:"totalRouted"`
	TotalRateLimited int     `json:"totalRateLimited"`
	TotalDropped     int     `json:"totalDropped"`
}

func (ClientState) Kind() NodeKind       { return KindClient }
func (ServiceState) Kind() NodeKind      { return KindService }
func (LoadBalancerState) Kind() NodeKind { return KindLoadBalancer }
func (QueueState) Kind() NodeKind        { return KindQueue }
func (DatabaseState) Kind() NodeKind     { return KindDatabase }
func (CacheState) Kind() NodeKind        { return KindCache }
func (APIGatewayState) Kind() NodeKind   { return KindAPIGateway }

func (s ServiceState) InFlight() int    { return s.ActiveRequests }
func (s DatabaseState) InFlight() int   { return s.ActiveConnections }
func (s CacheState) InFlight() int      { return s.ActiveRequests }
func (s APIGatewayState) InFlight() int { return s.ActiveRequests }

// InFlight is the sum of per-target connection counts.
func (s LoadBalancerState) InFlight() int {
	total := 0
	for _, c := range s.ActiveConnections {
		total += c
	}
	return total
}

func (s QueueState) QueueDepth() int { return len(s.Buffer) }

func (s LoadBalancerState) clone() LoadBalancerState {
	s.ActiveConnections = maps.Clone(s.ActiveConnections)
	return s
}

func (s QueueState) clone() QueueState {
	s.Buffer = append([]string(nil), s.Buffer...)
	return s
}

// UnmarshalJSON decodes a report whose state shape is selected by its kind.
func (r *NodeReport) UnmarshalJSON(data []byte) error {
	var w struct {
		ID    string          `json:"id"`
		Kind  NodeKind        `json:"kind"`
		State json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var (
		state NodeState
		err   error
	)
	switch w.Kind {
	case KindClient:
		state, err = decodeState[ClientState](w.State)
	case KindService:
		state, err = decodeState[ServiceState](w.State)
	case KindLoadBalancer:
		state, err = decodeState[LoadBalancerState](w.State)
	case KindQueue:
		state, err = decodeState[QueueState](w.State)
	case KindDatabase:
		state, err = decodeState[DatabaseState](w.State)
	case KindCache:
		state, err = decodeState[CacheState](w.State)
	case KindAPIGateway:
		state, err = decodeState[APIGatewayState](w.State)
	default:
		return fmt.Errorf("node %q: %w: %q", w.ID, ErrUnknownKind, w.Kind)
	}
	if err != nil {
		return fmt.Errorf("node %q state: %w", w.ID, err)
	}
	*r = NodeReport{ID: w.ID, Kind: w.Kind, State: state}
	return nil
}

func decodeState[S NodeState](raw json.RawMessage) (NodeState, error) {
	var s S
	if len(raw) == 0 {
		return s, nil
	}
	err := json.Unmarshal(raw, &s)
	return s, err
}
