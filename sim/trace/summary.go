package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDrops         int
	DeadLettered       int
	DropsByReason      map[string]int
	DropsByNode        map[string]int
	TotalRoutings      int
	UniqueTargets      int
	TargetDistribution map[string]int // target node ID → count of requests routed
	MaxTargetShare     float64        // largest fraction of routings sent to one target
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		DropsByReason:      make(map[string]int),
		DropsByNode:        make(map[string]int),
		TargetDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDrops = len(st.Drops)
	for _, d := range st.Drops {
		summary.DropsByReason[d.Reason]++
		summary.DropsByNode[d.NodeID]++
		if d.DeadLetter {
			summary.DeadLettered++
		}
	}

	summary.TotalRoutings = len(st.Routings)
	for _, r := range st.Routings {
		summary.TargetDistribution[r.Target]++
	}
	summary.UniqueTargets = len(summary.TargetDistribution)
	if summary.TotalRoutings > 0 {
		maxCount := 0
		for _, c := range summary.TargetDistribution {
			if c > maxCount {
				maxCount = c
			}
		}
		summary.MaxTargetShare = float64(maxCount) / float64(summary.TotalRoutings)
	}

	return summary
}
