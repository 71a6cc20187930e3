// Tracks windowed and whole-run request outcome statistics.

package sim

import (
	"maps"
	"math"
)

// MetricsSample is a point-in-time summary of one sampling window.
type MetricsSample struct {
	Time              float64        `json:"time"`
	WindowMs          float64        `json:"windowMs"`
	ThroughputRps     float64        `json:"throughputRps"`
	P50LatencyMs      float64        `json:"p50LatencyMs"`
	P95LatencyMs      float64        `json:"p95LatencyMs"`
	P99LatencyMs      float64        `json:"p99LatencyMs"`
	QueueDepths       map[string]int `json:"queueDepths"`
	ActiveConnections map[string]int `json:"activeConnections"`
	Completed         int            `json:"completed"`
	Dropped           int            `json:"dropped"`
}

// SimulationMetrics aggregates a whole run. Percentiles are reconstructed
// from the sample sequence (see MetricsCollector.Aggregate); counts,
// average, min and max latency are exact.
type SimulationMetrics struct {
	TotalRequests     int                `json:"totalRequests"`
	CompletedRequests int                `json:"completedRequests"`
	DroppedRequests   int                `json:"droppedRequests"`
	DropRate          float64            `json:"dropRate"`
	AvgLatencyMs      float64            `json:"avgLatencyMs"`
	MinLatencyMs      float64            `json:"minLatencyMs"`
	MaxLatencyMs      float64            `json:"maxLatencyMs"`
	P50LatencyMs      float64            `json:"p50LatencyMs"`
	P95LatencyMs      float64            `json:"p95LatencyMs"`
	P99LatencyMs      float64            `json:"p99LatencyMs"`
	ThroughputRps     float64            `json:"throughputRps"`
	MaxThroughputRps  float64            `json:"maxThroughputRps"`
	DurationMs        float64            `json:"durationMs"`
	EventsProcessed   int                `json:"eventsProcessed"`
	DropsByReason     map[DropReason]int `json:"dropsByReason"`
	Samples           int                `json:"samples"`
}

// MetricsCollector records request outcomes into a rolling window that is
// summarised and reset by Sample.
type MetricsCollector struct {
	window        []float64
	windowDropped int
	windowStart   float64

	totalCompleted int
	totalDropped   int
	latencySum     float64
	minLatency     float64
	maxLatency     float64
	dropsByReason  map[DropReason]int

	samples []MetricsSample
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		dropsByReason: make(map[DropReason]int),
		minLatency:    math.Inf(1),
	}
}

// RecordCompletion records a completed request's end-to-end latency.
func (m *MetricsCollector) RecordCompletion(latencyMs float64) {
	m.window = append(m.window, latencyMs)
	m.totalCompleted++
	m.latencySum += latencyMs
	m.minLatency = math.Min(m.minLatency, latencyMs)
	m.maxLatency = math.Max(m.maxLatency, latencyMs)
}

// RecordDrop records a dropped request.
func (m *MetricsCollector) RecordDrop(reason DropReason) {
	m.windowDropped++
	m.totalDropped++
	m.dropsByReason[reason]++
}

// HasPending reports whether outcomes were recorded since the last sample.
func (m *MetricsCollector) HasPending() bool {
	return len(m.window) > 0 || m.windowDropped > 0
}

// Sample closes the current window at time, appends its summary to the
// sample list and starts a new window.
func (m *MetricsCollector) Sample(time float64, queueDepths, activeConnections map[string]int) MetricsSample {
	windowMs := time - m.windowStart
	s := MetricsSample{
		Time:              time,
		WindowMs:          windowMs,
		QueueDepths:       queueDepths,
		ActiveConnections: activeConnections,
		Completed:         len(m.window),
		Dropped:           m.windowDropped,
	}
	if windowMs > 0 {
		s.ThroughputRps = float64(s.Completed) / windowMs * 1000
	}
	s.P50LatencyMs, s.P95LatencyMs, s.P99LatencyMs = percentiles(m.window)
	m.samples = append(m.samples, s)

	m.window = m.window[:0]
	m.windowDropped = 0
	m.windowStart = time
	return s
}

// Samples returns the samples taken so far, oldest first.
func (m *MetricsCollector) Samples() []MetricsSample {
	return m.samples
}

// Aggregate summarises the run. The latency distribution is rebuilt from
// the samples alone: each sample contributes Completed values, the first
// half at its p50, up to 95% at its p95 and the rest at its p99. This is
// an approximation, but it is a pure function of the sample sequence.
func (m *MetricsCollector) Aggregate(durationMs float64, eventsProcessed int) SimulationMetrics {
	out := SimulationMetrics{
		CompletedRequests: m.totalCompleted,
		DroppedRequests:   m.totalDropped,
		TotalRequests:     m.totalCompleted + m.totalDropped,
		DurationMs:        durationMs,
		EventsProcessed:   eventsProcessed,
		DropsByReason:     maps.Clone(m.dropsByReason),
		Samples:           len(m.samples),
	}
	if out.TotalRequests > 0 {
		out.DropRate = float64(out.DroppedRequests) / float64(out.TotalRequests)
	}
	if m.totalCompleted > 0 {
		out.AvgLatencyMs = m.latencySum / float64(m.totalCompleted)
		out.MinLatencyMs = m.minLatency
		out.MaxLatencyMs = m.maxLatency
	}
	if durationMs > 0 {
		out.ThroughputRps = float64(m.totalCompleted) / durationMs * 1000
	}

	var rebuilt []float64
	for _, s := range m.samples {
		out.MaxThroughputRps = math.Max(out.MaxThroughputRps, s.ThroughputRps)
		for i := 0; i < s.Completed; i++ {
			frac := float64(i+1) / float64(s.Completed)
			switch {
			case frac <= 0.50:
				rebuilt = append(rebuilt, s.P50LatencyMs)
			case frac <= 0.95:
				rebuilt = append(rebuilt, s.P95LatencyMs)
			default:
				rebuilt = append(rebuilt, s.P99LatencyMs)
			}
		}
	}
	out.P50LatencyMs, out.P95LatencyMs, out.P99LatencyMs = percentiles(rebuilt)
	return out
}

// Reset clears all recorded outcomes and samples.
func (m *MetricsCollector) Reset() {
	*m = *NewMetricsCollector()
}
