package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures all drops and load-balancer routing decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether level records anything.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelDecisions
}

// SimulationTrace collects decision records during a simulation run.
type SimulationTrace struct {
	Level    TraceLevel
	Drops    []DropRecord
	Routings []RoutingRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:    level,
		Drops:    make([]DropRecord, 0),
		Routings: make([]RoutingRecord, 0),
	}
}

// RecordDrop appends a drop record. No-op on a nil or disabled trace.
func (st *SimulationTrace) RecordDrop(record DropRecord) {
	if st == nil || !st.Level.Enabled() {
		return
	}
	st.Drops = append(st.Drops, record)
}

// RecordRouting appends a routing record. No-op on a nil or disabled trace.
func (st *SimulationTrace) RecordRouting(record RoutingRecord) {
	if st == nil || !st.Level.Enabled() {
		return
	}
	st.Routings = append(st.Routings, record)
}

// Reset discards all records, keeping the level.
func (st *SimulationTrace) Reset() {
	if st == nil {
		return
	}
	st.Drops = st.Drops[:0]
	st.Routings = st.Routings[:0]
}
