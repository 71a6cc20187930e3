package sim

import "errors"

var (
	// ErrNoEntryNodes is returned when a topology has no node without incoming edges.
	ErrNoEntryNodes = errors.New("topology has no entry nodes")
	// ErrUnknownNode is returned when an edge or event references a node that does not exist.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownKind is returned for a node kind with no behavior.
	ErrUnknownKind = errors.New("unknown component kind")
	// ErrScheduleInPast is returned when an event is scheduled before the engine's current time.
	ErrScheduleInPast = errors.New("event scheduled in the past")
	// ErrInvalidConfig is returned for unusable configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")
)
