// Package trace provides decision-trace recording for topology simulations.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// DropRecord captures a single rejected request.
type DropRecord struct {
	RequestID  string  `json:"requestId"`
	Clock      float64 `json:"clock"`
	NodeID     string  `json:"nodeId"`
	Reason     string  `json:"reason"`
	DeadLetter bool    `json:"deadLetter,omitempty"` // routed to a dead-letter queue instead of dropped
}

// RoutingRecord captures a single load-balancer forwarding decision.
type RoutingRecord struct {
	RequestID string  `json:"requestId"`
	Clock     float64 `json:"clock"`
	Router    string  `json:"router"`
	Target    string  `json:"target"`
}
