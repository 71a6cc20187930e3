// Package testutil provides shared fixtures for tests of the packages
// built on sim: topology fixtures, example scenario paths and float
// assertions.
package testutil

import (
	"bytes"
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/simranmultani197/Simforge-sub000/sim"
)

// Topology decodes a YAML topology fixture strictly.
func Topology(t testing.TB, doc string) sim.Topology {
	t.Helper()
	var topo sim.Topology
	dec := yaml.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.KnownFields(true)
	if err := dec.Decode(&topo); err != nil {
		t.Fatalf("Failed to decode topology fixture: %v", err)
	}
	return topo
}

// ExamplePath returns the path of a scenario in the repo's examples/ directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → examples/.
func ExamplePath(t testing.TB, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "examples", name)
}

// SampleTotals sums completions and drops over a sample sequence.
func SampleTotals(samples []sim.MetricsSample) (completed, dropped int) {
	for _, s := range samples {
		completed += s.Completed
		dropped += s.Dropped
	}
	return completed, dropped
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t testing.TB, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
