package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simranmultani197/Simforge-sub000/sim"
	"github.com/simranmultani197/Simforge-sub000/sim/trace"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(22)
	dropStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// printReport writes the human-readable run report.
func printReport(w io.Writer, r *RunReport) {
	m := r.Metrics
	fmt.Fprintln(w, headingStyle.Render("=== Simulation Metrics ==="))
	row(w, "Run", r.RunID)
	row(w, "Scenario", r.Scenario)
	row(w, "Status", okStyle.Render(string(r.Status)))
	row(w, "Simulated time", fmt.Sprintf("%.1f ms", m.DurationMs))
	row(w, "Events processed", fmt.Sprintf("%d", m.EventsProcessed))
	row(w, "Wall time", fmt.Sprintf("%.2f ms", r.WallTimeMs))
	row(w, "Requests", fmt.Sprintf("%d (completed %d)", m.TotalRequests, m.CompletedRequests))
	dropped := fmt.Sprintf("%d (%.2f%%)", m.DroppedRequests, m.DropRate*100)
	if m.DroppedRequests > 0 {
		dropped = dropStyle.Render(dropped)
	}
	row(w, "Dropped", dropped)
	row(w, "Throughput", fmt.Sprintf("%.1f rps (peak %.1f)", m.ThroughputRps, m.MaxThroughputRps))
	row(w, "Latency avg/min/max", fmt.Sprintf("%.2f / %.2f / %.2f ms", m.AvgLatencyMs, m.MinLatencyMs, m.MaxLatencyMs))
	row(w, "Latency p50/p95/p99", fmt.Sprintf("%.2f / %.2f / %.2f ms", m.P50LatencyMs, m.P95LatencyMs, m.P99LatencyMs))
	if len(m.DropsByReason) > 0 {
		row(w, "Drops by reason", formatCounts(stringKeys(m.DropsByReason)))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("=== Nodes ==="))
	for _, n := range r.Nodes {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%s (%s)", n.ID, n.Kind)), describeState(n.State))
	}

	if r.Trace != nil {
		printTraceSummary(w, r.Trace)
	}
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("=== Decision Trace ==="))
	row(w, "Drops", fmt.Sprintf("%d (dead-lettered %d)", s.TotalDrops, s.DeadLettered))
	if len(s.DropsByReason) > 0 {
		row(w, "By reason", formatCounts(s.DropsByReason))
	}
	if len(s.DropsByNode) > 0 {
		row(w, "By node", formatCounts(s.DropsByNode))
	}
	row(w, "Routings", fmt.Sprintf("%d over %d targets", s.TotalRoutings, s.UniqueTargets))
	if s.TotalRoutings > 0 {
		row(w, "Targets", formatCounts(s.TargetDistribution))
		row(w, "Max target share", fmt.Sprintf("%.1f%%", s.MaxTargetShare*100))
	}
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
}

func describeState(s sim.NodeState) string {
	switch st := s.(type) {
	case sim.ClientState:
		return fmt.Sprintf("forwarded=%d", st.RequestsForwarded)
	case sim.ServiceState:
		return fmt.Sprintf("processed=%d dropped=%d active=%d", st.TotalProcessed, st.TotalDropped, st.ActiveRequests)
	case sim.LoadBalancerState:
		return fmt.Sprintf("routed=%d dropped=%d connections=%s", st.TotalRouted, st.TotalDropped, formatCounts(st.ActiveConnections))
	case sim.QueueState:
		return fmt.Sprintf("enqueued=%d dequeued=%d dropped=%d depth=%d", st.TotalEnqueued, st.TotalDequeued, st.TotalDropped, len(st.Buffer))
	case sim.DatabaseState:
		return fmt.Sprintf("queries=%d writes=%d dropped=%d active=%d", st.TotalQueries, st.TotalWrites, st.TotalDropped, st.ActiveConnections)
	case sim.CacheState:
		return fmt.Sprintf("hits=%d misses=%d active=%d", st.TotalHits, st.TotalMisses, st.ActiveRequests)
	case sim.APIGatewayState:
		return fmt.Sprintf("routed=%d rate_limited=%d dropped=%d tokens=%.1f", st.TotalRouted, st.TotalRateLimited, st.TotalDropped, st.Tokens)
	}
	return fmt.Sprintf("%+v", s)
}

// formatCounts renders a count map as "k=v" pairs in key order.
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

func stringKeys[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
