// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/simranmultani197/Simforge-sub000/sim/trace"
)

// Option configures a Simulator.
type Option func(*Simulator)

// WithSampleCallback registers fn to receive every metrics sample as it is taken.
func WithSampleCallback(fn func(MetricsSample)) Option {
	return func(s *Simulator) { s.onSample = fn }
}

// WithEventObserver registers fn to observe every processed event.
func WithEventObserver(fn func(Event)) Option {
	return func(s *Simulator) { s.engine.OnEvent = fn }
}

// WithStatusObserver registers fn to observe engine status transitions.
func WithStatusObserver(fn func(Status)) Option {
	return func(s *Simulator) { s.engine.OnStatusChange = fn }
}

// NodeReport pairs a node with a snapshot of its state record.
type NodeReport struct {
	ID    string    `json:"id"`
	Kind  NodeKind  `json:"kind"`
	State NodeState `json:"state"`
}

// Simulator composes the engine, RNG, topology graph, behaviors and metrics
// into one runnable unit. It owns edge traversal, start-time bookkeeping
// across hops and periodic metrics sampling.
//
// Thread-safety: NOT thread-safe. Independent Simulators share nothing and
// may run concurrently.
type Simulator struct {
	topo      Topology
	cfg       SimulationConfig
	graph     *Graph
	engine    *Engine
	rng       *RNG
	generator *RequestGenerator
	behaviors map[string]Behavior
	metrics   *MetricsCollector
	trace     *trace.SimulationTrace
	onSample  func(MetricsSample)

	// inflight maps request id -> start time until the request's first
	// terminal outcome; finished remembers ids already counted so fan-out
	// branches cannot count a request twice.
	inflight map[string]float64
	finished map[string]struct{}
}

// NewSimulator validates the inputs, builds the graph and node states, and
// seeds the engine with the initial arrivals and the first metrics sample.
func NewSimulator(topo Topology, cfg SimulationConfig, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulation config: %w", err)
	}
	if err := topo.Validate(); err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}
	topo = Topology{
		Nodes: append([]SimNode(nil), topo.Nodes...),
		Edges: append([]SimEdge(nil), topo.Edges...),
	}
	graph, err := BuildGraph(topo)
	if err != nil {
		return nil, fmt.Errorf("building topology graph: %w", err)
	}
	s := &Simulator{
		topo:    topo,
		cfg:     cfg,
		graph:   graph,
		engine:  NewEngine(),
		rng:     NewRNG(NewSimulationKey(cfg.Seed)),
		metrics: NewMetricsCollector(),
		trace:   trace.NewSimulationTrace(cfg.TraceLevel),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine.Register(EventRequestArrive, s.handleArrive)
	s.engine.Register(EventRequestComplete, s.handleComplete)
	s.engine.Register(EventRequestDropped, s.handleDropped)
	s.engine.Register(EventQueueDeadLetter, s.handleDropped)
	s.engine.Register(EventQueueDequeue, s.handleDequeue)
	s.engine.Register(EventMetricsSample, s.handleSample)
	if err := s.prime(); err != nil {
		return nil, err
	}
	return s, nil
}

// prime creates fresh node states and schedules the initial events.
func (s *Simulator) prime() error {
	s.behaviors = make(map[string]Behavior, len(s.graph.NodeIDs()))
	for _, id := range s.graph.NodeIDs() {
		n, _ := s.graph.Node(id)
		b, err := NewBehavior(id, n.Config)
		if err != nil {
			return err
		}
		s.behaviors[id] = b
	}
	s.inflight = make(map[string]float64)
	s.finished = make(map[string]struct{})

	s.generator = NewRequestGenerator(s.cfg, s.graph.EntryNodes(), s.rng)
	arrivals := s.generator.Generate()
	for _, ev := range arrivals {
		if err := s.engine.Schedule(ev); err != nil {
			return err
		}
	}
	if s.cfg.MetricsIntervalMs > 0 && s.cfg.MetricsIntervalMs <= s.cfg.MaxTimeMs {
		if err := s.engine.Schedule(Event{Time: s.cfg.MetricsIntervalMs, Type: EventMetricsSample, Payload: SamplePayload{}}); err != nil {
			return err
		}
	}
	logrus.Debugf("primed %d nodes, %d entry nodes, %d arrivals", len(s.behaviors), len(s.graph.EntryNodes()), len(arrivals))
	return nil
}

// Run drives the engine until a limit is reached or the queue drains and
// returns the aggregate metrics. If the run is paused from a callback, the
// metrics so far are returned and a later Run resumes it.
func (s *Simulator) Run() (SimulationMetrics, error) {
	logrus.Infof("Starting simulation: seed=%d, max_time=%.0fms, rate=%.1f rps (%s)",
		s.cfg.Seed, s.cfg.MaxTimeMs, s.cfg.RequestRateRps, s.cfg.RequestDistribution)
	if _, err := s.engine.RunUntil(s.cfg.Limits()); err != nil {
		return SimulationMetrics{}, err
	}
	s.finishIfCompleted()
	logrus.Infof("[t=%.3f] Simulation %s after %d events", s.engine.Now(), s.engine.Status(), s.engine.Processed())
	return s.Metrics(), nil
}

// RunBatch processes at most n events, staying in the running state when
// the budget runs out before a limit is reached.
func (s *Simulator) RunBatch(n int) (int, error) {
	processed, err := s.engine.RunBatch(s.cfg.Limits(), n)
	if err != nil {
		return processed, err
	}
	s.finishIfCompleted()
	return processed, nil
}

// Step processes a single event regardless of run limits.
func (s *Simulator) Step() (Event, bool, error) {
	return s.engine.Step()
}

// Pause stops a run after the current event.
func (s *Simulator) Pause() {
	s.engine.Pause()
}

// Reset restores the simulator to its just-constructed state: the RNG is
// re-seeded, node states rebuilt and all bookkeeping cleared, so a
// following Run reproduces the first one exactly.
func (s *Simulator) Reset() error {
	s.engine.Reset()
	s.rng.Reseed(NewSimulationKey(s.cfg.Seed))
	s.metrics.Reset()
	s.trace.Reset()
	return s.prime()
}

// finishIfCompleted captures outcomes recorded after the last periodic
// sample so the aggregate covers the whole run.
func (s *Simulator) finishIfCompleted() {
	if s.engine.Status() != StatusCompleted || !s.metrics.HasPending() {
		return
	}
	s.takeSample(s.engine.Now())
}

func (s *Simulator) env() Env {
	return Env{Sched: s.engine, RNG: s.rng}
}

func (s *Simulator) handleArrive(ev Event) error {
	b, ok := s.behaviors[ev.NodeID]
	if !ok {
		return fmt.Errorf("%w: arrival for %q", ErrUnknownNode, ev.NodeID)
	}
	p, _ := ev.Payload.(ArrivePayload)
	if _, seen := s.inflight[p.RequestID]; !seen && !s.isFinished(p.RequestID) {
		start := ev.Time
		if p.HasStart {
			start = p.StartTime
		}
		s.inflight[p.RequestID] = start
	}
	if p.RoutedBy != "" {
		s.trace.RecordRouting(trace.RoutingRecord{RequestID: p.RequestID, Clock: ev.Time, Router: p.RoutedBy, Target: ev.NodeID})
	}
	return b.HandleRequest(s.env(), ev, s.graph.OutgoingTargets(ev.NodeID))
}

func (s *Simulator) handleComplete(ev Event) error {
	b, ok := s.behaviors[ev.NodeID]
	if !ok {
		return fmt.Errorf("%w: completion for %q", ErrUnknownNode, ev.NodeID)
	}
	if c, ok := b.(Completer); ok {
		c.HandleComplete(ev)
	}
	p, _ := ev.Payload.(CompletePayload)
	meta := p.RequestMeta
	if start, ok := s.inflight[meta.RequestID]; ok {
		meta.StartTime, meta.HasStart = start, true
	}

	edges := s.resolveEdges(ev.NodeID, p.OutEdges)
	if len(edges) == 0 {
		s.recordCompletion(meta, ev.Time)
		return nil
	}
	for _, e := range edges {
		if s.rng.Next() < e.Config.FailureRate {
			err := s.engine.Schedule(Event{
				Time:    ev.Time,
				Type:    EventRequestDropped,
				NodeID:  ev.NodeID,
				Payload: DropPayload{RequestMeta: meta, Reason: DropEdgeFailure},
			})
			if err != nil {
				return err
			}
			continue
		}
		delay := sampleDelay(e.Config.LatencyMs, s.rng)
		err := s.engine.Schedule(Event{
			Time:   ev.Time + delay,
			Type:   EventRequestArrive,
			NodeID: e.Target,
			Payload: ArrivePayload{
				RequestMeta: meta,
				FromNode:    ev.NodeID,
				EdgeID:      e.ID,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveEdges returns the node's real outgoing edges, restricted to the
// override target ids when override is non-nil.
func (s *Simulator) resolveEdges(nodeID string, override []string) []*SimEdge {
	edges := s.graph.Outgoing(nodeID)
	if override == nil {
		return edges
	}
	allowed := make(map[string]struct{}, len(override))
	for _, id := range override {
		allowed[id] = struct{}{}
	}
	resolved := make([]*SimEdge, 0, len(edges))
	for _, e := range edges {
		if _, ok := allowed[e.Target]; ok {
			resolved = append(resolved, e)
		}
	}
	return resolved
}

func (s *Simulator) handleDropped(ev Event) error {
	p, _ := ev.Payload.(DropPayload)
	if !s.settle(p.RequestID) {
		logrus.Debugf("[t=%.3f] drop of %s at %s ignored: request already terminated", ev.Time, p.RequestID, ev.NodeID)
		return nil
	}
	s.metrics.RecordDrop(p.Reason)
	s.trace.RecordDrop(trace.DropRecord{
		RequestID:  p.RequestID,
		Clock:      ev.Time,
		NodeID:     ev.NodeID,
		Reason:     string(p.Reason),
		DeadLetter: ev.Type == EventQueueDeadLetter,
	})
	logrus.Debugf("[t=%.3f] %s dropped at %s: %s", ev.Time, p.RequestID, ev.NodeID, p.Reason)
	return nil
}

func (s *Simulator) recordCompletion(meta RequestMeta, now float64) {
	if s.isFinished(meta.RequestID) {
		logrus.Debugf("[t=%.3f] completion of %s ignored: request already terminated", now, meta.RequestID)
		return
	}
	if !meta.HasStart {
		logrus.Warnf("[t=%.3f] completion of %s ignored: no start time", now, meta.RequestID)
		return
	}
	s.settle(meta.RequestID)
	latency := now - meta.StartTime
	if latency < 0 {
		latency = 0
	}
	s.metrics.RecordCompletion(latency)
}

// settle marks a request terminated. It returns false if it already was.
func (s *Simulator) settle(requestID string) bool {
	if s.isFinished(requestID) {
		return false
	}
	delete(s.inflight, requestID)
	s.finished[requestID] = struct{}{}
	return true
}

func (s *Simulator) isFinished(requestID string) bool {
	_, done := s.finished[requestID]
	return done
}

func (s *Simulator) handleDequeue(ev Event) error {
	b, ok := s.behaviors[ev.NodeID]
	if !ok {
		return fmt.Errorf("%w: dequeue for %q", ErrUnknownNode, ev.NodeID)
	}
	d, ok := b.(Dequeuer)
	if !ok {
		return fmt.Errorf("dequeue for %s node %q", b.Kind(), ev.NodeID)
	}
	return d.HandleDequeue(s.env(), ev, s.graph.OutgoingTargets(ev.NodeID))
}

func (s *Simulator) handleSample(ev Event) error {
	s.takeSample(ev.Time)
	next := ev.Time + s.cfg.MetricsIntervalMs
	if next > s.cfg.MaxTimeMs {
		return nil
	}
	return s.engine.Schedule(Event{Time: next, Type: EventMetricsSample, Payload: SamplePayload{}})
}

func (s *Simulator) takeSample(now float64) {
	depths := make(map[string]int)
	active := make(map[string]int)
	for _, id := range s.graph.NodeIDs() {
		st := s.behaviors[id].State()
		if q, ok := st.(QueueDepther); ok {
			depths[id] = q.QueueDepth()
		}
		if f, ok := st.(InFlighter); ok {
			active[id] = f.InFlight()
		}
	}
	sample := s.metrics.Sample(now, depths, active)
	if s.onSample != nil {
		s.onSample(sample)
	}
}

// Metrics returns the aggregate metrics for the run so far.
func (s *Simulator) Metrics() SimulationMetrics {
	return s.metrics.Aggregate(s.engine.Now(), s.engine.Processed())
}

// Samples returns the periodic samples taken so far.
func (s *Simulator) Samples() []MetricsSample {
	return s.metrics.Samples()
}

// NodeState returns a snapshot of the node's state record.
func (s *Simulator) NodeState(id string) (NodeState, bool) {
	b, ok := s.behaviors[id]
	if !ok {
		return nil, false
	}
	return b.State(), true
}

// NodeReports returns a snapshot of every node's state in declaration order.
func (s *Simulator) NodeReports() []NodeReport {
	reports := make([]NodeReport, 0, len(s.behaviors))
	for _, id := range s.graph.NodeIDs() {
		b := s.behaviors[id]
		reports = append(reports, NodeReport{ID: id, Kind: b.Kind(), State: b.State()})
	}
	return reports
}

// Trace returns the decision trace (empty unless tracing is enabled).
func (s *Simulator) Trace() *trace.SimulationTrace { return s.trace }

// Graph returns the topology graph.
func (s *Simulator) Graph() *Graph { return s.graph }

// Config returns the simulation config.
func (s *Simulator) Config() SimulationConfig { return s.cfg }

// Topology returns the topology the simulator was built from.
func (s *Simulator) Topology() Topology { return s.topo }

// Time returns the current simulation time in milliseconds.
func (s *Simulator) Time() float64 { return s.engine.Now() }

// Status returns the engine status.
func (s *Simulator) Status() Status { return s.engine.Status() }

// EventsProcessed returns the number of events processed since the last reset.
func (s *Simulator) EventsProcessed() int { return s.engine.Processed() }

// Err returns the error that aborted the run, if any.
func (s *Simulator) Err() error { return s.engine.Err() }
