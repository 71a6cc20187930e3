// Package worker relays commands to a Simulator running on its own
// goroutine and streams its progress back as events. Commands and events
// travel as JSON messages over an in-process watermill bus.
package worker

import (
	"encoding/json"

	"github.com/simranmultani197/Simforge-sub000/sim"
)

// CommandType names a command.
type CommandType string

const (
	CmdInit      CommandType = "init"
	CmdStart     CommandType = "start"
	CmdPause     CommandType = "pause"
	CmdStep      CommandType = "step"
	CmdReset     CommandType = "reset"
	CmdConfigure CommandType = "configure"
)

// Command is a request to the worker.
//
// For init, Config is overlaid on sim.DefaultSimulationConfig. For
// configure, Config is a partial object overlaid on the current config;
// the simulator is then rebuilt from scratch.
type Command struct {
	Type     CommandType     `json:"type"`
	Topology *sim.Topology   `json:"topology,omitempty"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// MessageType names an event sent by the worker.
type MessageType string

const (
	MsgStatus   MessageType = "status"
	MsgEvents   MessageType = "events"
	MsgMetrics  MessageType = "metrics"
	MsgError    MessageType = "error"
	MsgComplete MessageType = "complete"
)

// MaxEventBatch bounds the number of raw events in one events message.
const MaxEventBatch = 256

// Message is an event sent by the worker. Only the fields of its Type are set.
type Message struct {
	Type    MessageType `json:"type"`
	Session string      `json:"session"`

	Status          sim.Status             `json:"status,omitempty"`
	Events          []sim.EventRecord      `json:"events,omitempty"`
	Sample          *sim.MetricsSample     `json:"sample,omitempty"`
	Error           string                 `json:"error,omitempty"`
	EventsProcessed int                    `json:"eventsProcessed,omitempty"`
	SimulationTime  float64                `json:"simulationTime,omitempty"`
	Metrics         *sim.SimulationMetrics `json:"metrics,omitempty"`
}
