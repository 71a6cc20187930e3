package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simranmultani197/Simforge-sub000/sim"
)

const (
	TopicCommands = "simforge.commands"
	TopicEvents   = "simforge.events"

	// DefaultChunkSize is the number of events run between command checks.
	DefaultChunkSize = 2048
)

// ErrNotInitialized is reported when a command needs a simulator before
// init has been received.
var ErrNotInitialized = errors.New("simulator not initialized")

// Option configures a Worker.
type Option func(*Worker)

// WithChunkSize sets how many events run between command checks.
func WithChunkSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.chunk = n
		}
	}
}

// WithSession overrides the generated session id.
func WithSession(id string) Option {
	return func(w *Worker) { w.session = id }
}

// Worker owns one Simulator. All simulator access happens on the goroutine
// started by Start; Send and Subscribe are safe for concurrent use.
type Worker struct {
	session string
	chunk   int
	bus     *gochannel.GoChannel
	log     *logrus.Entry
	done    chan struct{}

	// Owned by the loop goroutine.
	sim     *sim.Simulator
	topo    sim.Topology
	cfg     sim.SimulationConfig
	running bool
	pending []sim.EventRecord
}

// New creates a worker with its own message bus.
func New(opts ...Option) *Worker {
	w := &Worker{
		session: uuid.NewString(),
		chunk:   DefaultChunkSize,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = logrus.WithField("session", w.session)
	// Publishing waits for the subscriber's ack, which keeps messages in
	// order and applies backpressure to a slow consumer.
	w.bus = gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, newLogrusAdapter(logrus.Fields{"component": "worker-bus", "session": w.session}))
	return w
}

// Session returns the worker's session id.
func (w *Worker) Session() string { return w.session }

// Done is closed when the loop started by Start exits.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Start subscribes to the command topic and runs the worker loop until ctx
// is cancelled or the worker is closed.
func (w *Worker) Start(ctx context.Context) error {
	cmds, err := w.bus.Subscribe(ctx, TopicCommands)
	if err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	go w.loop(ctx, cmds)
	return nil
}

// Send publishes a command to the worker.
func (w *Worker) Send(cmd Command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding %s command: %w", cmd.Type, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session", w.session)
	return w.bus.Publish(TopicCommands, msg)
}

// Subscribe returns a channel of worker events. Subscribe before sending
// commands; events published earlier are not replayed. The channel closes
// when ctx is cancelled or the worker is closed.
func (w *Worker) Subscribe(ctx context.Context) (<-chan Message, error) {
	in, err := w.bus.Subscribe(ctx, TopicEvents)
	if err != nil {
		return nil, fmt.Errorf("subscribing to events: %w", err)
	}
	out := make(chan Message, MaxEventBatch)
	go func() {
		defer close(out)
		for raw := range in {
			var m Message
			if err := json.Unmarshal(raw.Payload, &m); err != nil {
				w.log.WithError(err).Warn("dropping undecodable event")
				raw.Ack()
				continue
			}
			select {
			case out <- m:
				raw.Ack()
			case <-ctx.Done():
				raw.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down, which also ends the loop.
func (w *Worker) Close() error {
	return w.bus.Close()
}

func (w *Worker) loop(ctx context.Context, cmds <-chan *message.Message) {
	defer close(w.done)
	for {
		if w.running {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-cmds:
				if !ok {
					return
				}
				w.receive(raw)
			default:
				w.advance()
			}
			continue
		}
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-cmds:
			if !ok {
				return
			}
			w.receive(raw)
		}
	}
}

func (w *Worker) receive(raw *message.Message) {
	raw.Ack()
	var cmd Command
	if err := json.Unmarshal(raw.Payload, &cmd); err != nil {
		w.fail(fmt.Errorf("decoding command: %w", err))
		return
	}
	w.log.WithField("command", cmd.Type).Debug("command received")
	if err := w.handle(cmd); err != nil {
		w.fail(err)
	}
}

func (w *Worker) handle(cmd Command) error {
	switch cmd.Type {
	case CmdInit:
		if cmd.Topology == nil {
			return fmt.Errorf("init: %w: topology is required", sim.ErrInvalidConfig)
		}
		cfg := sim.DefaultSimulationConfig()
		if err := overlay(&cfg, cmd.Config); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		return w.build(*cmd.Topology, cfg)
	case CmdConfigure:
		if w.sim == nil {
			return fmt.Errorf("configure: %w", ErrNotInitialized)
		}
		cfg := w.cfg
		if err := overlay(&cfg, cmd.Config); err != nil {
			return fmt.Errorf("configure: %w", err)
		}
		return w.build(w.topo, cfg)
	case CmdStart:
		if w.sim == nil {
			return fmt.Errorf("start: %w", ErrNotInitialized)
		}
		w.running = true
		return nil
	case CmdPause:
		if w.sim == nil {
			return fmt.Errorf("pause: %w", ErrNotInitialized)
		}
		w.running = false
		w.sim.Pause()
		if s := w.sim.Status(); s != sim.StatusPaused {
			// Nothing was running; report where the simulator stands.
			w.publish(Message{Type: MsgStatus, Status: s})
		}
		return nil
	case CmdStep:
		if w.sim == nil {
			return fmt.Errorf("step: %w", ErrNotInitialized)
		}
		w.running = false
		_, ok, err := w.sim.Step()
		w.flushEvents()
		if err != nil {
			return err
		}
		if !ok {
			w.publishComplete()
		}
		return nil
	case CmdReset:
		if w.sim == nil {
			return fmt.Errorf("reset: %w", ErrNotInitialized)
		}
		w.running = false
		w.pending = nil
		return w.sim.Reset()
	}
	return fmt.Errorf("unknown command %q", cmd.Type)
}

// build replaces the simulator with a fresh one. A failed build keeps the
// previous simulator.
func (w *Worker) build(topo sim.Topology, cfg sim.SimulationConfig) error {
	s, err := sim.NewSimulator(topo, cfg,
		sim.WithEventObserver(w.onEvent),
		sim.WithSampleCallback(w.onSample),
		sim.WithStatusObserver(w.onStatus),
	)
	if err != nil {
		return err
	}
	w.sim, w.topo, w.cfg = s, topo, cfg
	w.running = false
	w.pending = nil
	w.log.WithFields(logrus.Fields{
		"nodes": len(topo.Nodes),
		"edges": len(topo.Edges),
		"seed":  cfg.Seed,
	}).Info("simulator initialized")
	w.publish(Message{Type: MsgStatus, Status: s.Status()})
	return nil
}

func (w *Worker) advance() {
	if _, err := w.sim.RunBatch(w.chunk); err != nil {
		w.running = false
		w.flushEvents()
		w.fail(err)
		return
	}
	w.flushEvents()
	if w.sim.Status() == sim.StatusCompleted {
		w.running = false
		w.publishComplete()
	}
}

func (w *Worker) onEvent(ev sim.Event) {
	w.pending = append(w.pending, ev.Record())
	if len(w.pending) >= MaxEventBatch {
		w.flushEvents()
	}
}

func (w *Worker) onSample(s sim.MetricsSample) {
	w.flushEvents()
	w.publish(Message{Type: MsgMetrics, Sample: &s})
}

func (w *Worker) onStatus(s sim.Status) {
	w.flushEvents()
	w.publish(Message{Type: MsgStatus, Status: s})
}

func (w *Worker) flushEvents() {
	if len(w.pending) == 0 {
		return
	}
	w.publish(Message{Type: MsgEvents, Events: w.pending})
	w.pending = nil
}

func (w *Worker) publishComplete() {
	m := w.sim.Metrics()
	w.publish(Message{
		Type:            MsgComplete,
		EventsProcessed: w.sim.EventsProcessed(),
		SimulationTime:  w.sim.Time(),
		Metrics:         &m,
	})
}

// fail reports err as an error event; it never crosses the bus as a Go error.
func (w *Worker) fail(err error) {
	w.log.WithError(err).Warn("command failed")
	w.publish(Message{Type: MsgError, Error: err.Error()})
}

func (w *Worker) publish(m Message) {
	m.Session = w.session
	payload, err := json.Marshal(m)
	if err != nil {
		w.log.WithError(err).Errorf("encoding %s event", m.Type)
		return
	}
	if err := w.bus.Publish(TopicEvents, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		w.log.WithError(err).Errorf("publishing %s event", m.Type)
	}
}

// overlay decodes a partial JSON config over cfg.
func overlay(cfg *sim.SimulationConfig, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("%w: config: %v", sim.ErrInvalidConfig, err)
	}
	return nil
}
