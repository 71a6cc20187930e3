// Package sim provides the core discrete-event simulation engine for Simforge.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: Event types and payloads that drive the simulation
//   - engine.go: The generic time-stepping loop and handler registry
//   - simulator.go: Topology-driven orchestration of behaviors, edges and metrics
//
// # Architecture
//
// One Simulator owns exactly one Engine, one RNG, one Graph and one behavior
// instance per node. Nothing is shared between Simulators, so independent
// runs (parameter sweeps, seed scans) can execute on separate goroutines
// without synchronization. Within a run the engine is single-threaded: one
// event is in flight at a time and every side effect happens synchronously
// inside its handler.
//
// Sub-packages:
//   - sim/trace/: Decision trace recording (drops, load-balancer routing)
//   - sim/scenario/: Scenario file loading and schema validation
//   - sim/worker/: Command/event relay over an in-process message bus
//   - sim/sink/: Metrics sample writers
//
// # Key Interfaces
//
//   - Behavior: per-kind admission and processing state machine
//   - Completer: behaviors that release capacity on request.complete
//   - Scheduler: the engine surface behaviors schedule follow-up events through
//   - ComponentConfig: kind-tagged node configuration
package sim
