package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Status is the engine lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Handler processes one event. Returning an error aborts the run.
type Handler func(ev Event) error

// Scheduler is the part of the Engine that behaviors need.
type Scheduler interface {
	Schedule(ev Event) error
	Now() float64
}

// RunLimits bounds a run. A non-positive MaxEvents means unlimited.
type RunLimits struct {
	MaxTimeMs float64
	MaxEvents int
}

// Engine is the generic time-stepping loop. It owns the event queue, the
// current time and the type -> handler registry; it knows nothing about
// topologies or requests.
//
// Thread-safety: NOT thread-safe. Pause may be called from a handler or an
// observer callback running inside Step.
type Engine struct {
	queue     *EventQueue
	now       float64
	processed int
	status    Status
	handlers  map[EventType]Handler
	err       error

	// OnEvent is invoked after every processed event.
	OnEvent func(ev Event)
	// OnStatusChange is invoked on every status transition.
	OnStatusChange func(s Status)
}

// NewEngine creates an idle engine with an empty queue.
func NewEngine() *Engine {
	return &Engine{
		queue:    NewEventQueue(),
		status:   StatusIdle,
		handlers: make(map[EventType]Handler),
	}
}

// Register installs h for events of type t. The last registration wins.
func (e *Engine) Register(t EventType, h Handler) {
	e.handlers[t] = h
}

// Schedule queues ev. Scheduling before the current time is a logic error
// in the caller and is rejected rather than reordered.
func (e *Engine) Schedule(ev Event) error {
	if ev.Time < e.now {
		return fmt.Errorf("%w: %s at %.6f, now %.6f", ErrScheduleInPast, ev.Type, ev.Time, e.now)
	}
	e.queue.Push(ev)
	return nil
}

// Step processes the next event. ok is false if the queue was empty.
// A handler error moves the engine to StatusError; the event is still
// counted as processed.
func (e *Engine) Step() (ev Event, ok bool, err error) {
	ev, ok = e.queue.Pop()
	if !ok {
		return ev, false, nil
	}
	e.now = ev.Time
	e.processed++
	if h, found := e.handlers[ev.Type]; found {
		if err = h(ev); err != nil {
			e.fail(fmt.Errorf("handling %s: %w", ev, err))
			return ev, true, e.err
		}
	}
	if e.OnEvent != nil {
		e.OnEvent(ev)
	}
	return ev, true, nil
}

// RunUntil steps while the engine is running and returns the number of
// events processed by this call. The run completes when the queue is
// empty, the next event lies beyond limits.MaxTimeMs (that event stays
// queued), or the total processed count reaches limits.MaxEvents.
func (e *Engine) RunUntil(limits RunLimits) (int, error) {
	return e.run(limits, -1)
}

// RunBatch is RunUntil capped at budget events. When the budget is spent
// before any limit is hit the engine stays running, so callers can
// interleave other work and call RunBatch again.
func (e *Engine) RunBatch(limits RunLimits, budget int) (int, error) {
	return e.run(limits, budget)
}

func (e *Engine) run(limits RunLimits, budget int) (int, error) {
	if e.status == StatusError {
		return 0, e.err
	}
	e.setStatus(StatusRunning)
	n := 0
	for e.status == StatusRunning {
		if budget >= 0 && n >= budget {
			return n, nil
		}
		if limits.MaxEvents > 0 && e.processed >= limits.MaxEvents {
			e.setStatus(StatusCompleted)
			break
		}
		next, ok := e.queue.Peek()
		if !ok || next.Time > limits.MaxTimeMs {
			e.setStatus(StatusCompleted)
			break
		}
		if _, _, err := e.Step(); err != nil {
			return n + 1, err
		}
		n++
	}
	logrus.Debugf("[t=%.3f] engine stopped with status %s after %d events", e.now, e.status, n)
	return n, nil
}

// Pause stops a running loop after the current event. Queued events are
// kept for a later RunUntil or Step. It is a no-op unless running.
func (e *Engine) Pause() {
	if e.status == StatusRunning {
		e.setStatus(StatusPaused)
	}
}

// Reset clears the queue and counters and returns to idle.
func (e *Engine) Reset() {
	e.queue.Clear()
	e.now = 0
	e.processed = 0
	e.err = nil
	e.setStatus(StatusIdle)
}

// Now returns the current simulation time in milliseconds.
func (e *Engine) Now() float64 { return e.now }

// Processed returns the number of events processed since the last reset.
func (e *Engine) Processed() int { return e.processed }

// Status returns the lifecycle state.
func (e *Engine) Status() Status { return e.status }

// Pending returns the number of queued events.
func (e *Engine) Pending() int { return e.queue.Len() }

// Err returns the error that moved the engine to StatusError, if any.
func (e *Engine) Err() error { return e.err }

func (e *Engine) fail(err error) {
	e.err = err
	e.setStatus(StatusError)
}

func (e *Engine) setStatus(s Status) {
	if e.status == s {
		return
	}
	e.status = s
	if e.OnStatusChange != nil {
		e.OnStatusChange(s)
	}
}
