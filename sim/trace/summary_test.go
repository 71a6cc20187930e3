package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceLevelDecisions)

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalDrops != 0 || summary.TotalRoutings != 0 {
		t.Errorf("expected zero totals, got drops=%d routings=%d", summary.TotalDrops, summary.TotalRoutings)
	}
	if summary.UniqueTargets != 0 {
		t.Errorf("expected 0 unique targets, got %d", summary.UniqueTargets)
	}
	if summary.MaxTargetShare != 0 {
		t.Errorf("expected 0 max share, got %f", summary.MaxTargetShare)
	}
	if len(summary.TargetDistribution) != 0 {
		t.Error("expected empty target distribution")
	}
}

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary == nil {
		t.Fatal("expected non-nil summary")
	}
	if summary.TotalDrops != 0 || len(summary.DropsByReason) != 0 {
		t.Error("expected zero values for nil trace")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with mixed drop and routing records
	st := NewSimulationTrace(TraceLevelDecisions)
	st.RecordDrop(DropRecord{RequestID: "r1", NodeID: "svc", Reason: "overloaded"})
	st.RecordDrop(DropRecord{RequestID: "r2", NodeID: "svc", Reason: "failure"})
	st.RecordDrop(DropRecord{RequestID: "r3", NodeID: "q", Reason: "queue_full", DeadLetter: true})
	st.RecordRouting(RoutingRecord{RequestID: "r4", Router: "lb", Target: "a"})
	st.RecordRouting(RoutingRecord{RequestID: "r5", Router: "lb", Target: "b"})
	st.RecordRouting(RoutingRecord{RequestID: "r6", Router: "lb", Target: "a"})
	st.RecordRouting(RoutingRecord{RequestID: "r7", Router: "lb", Target: "a"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalDrops != 3 {
		t.Errorf("expected 3 drops, got %d", summary.TotalDrops)
	}
	if summary.DeadLettered != 1 {
		t.Errorf("expected 1 dead-lettered, got %d", summary.DeadLettered)
	}
	if summary.DropsByNode["svc"] != 2 || summary.DropsByNode["q"] != 1 {
		t.Errorf("unexpected drops by node: %v", summary.DropsByNode)
	}
	if summary.DropsByReason["queue_full"] != 1 {
		t.Errorf("unexpected drops by reason: %v", summary.DropsByReason)
	}
	if summary.UniqueTargets != 2 {
		t.Errorf("expected 2 unique targets, got %d", summary.UniqueTargets)
	}
	if summary.MaxTargetShare != 0.75 {
		t.Errorf("expected max share 0.75, got %f", summary.MaxTargetShare)
	}
}
