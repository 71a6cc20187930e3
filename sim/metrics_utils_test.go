package sim

import "testing"

func TestCalculatePercentile_EmptyInput_ReturnsZero(t *testing.T) {
	// GIVEN empty float64 slice
	// WHEN CalculatePercentile is called
	result := CalculatePercentile([]float64{}, 0.99)
	// THEN it returns 0 (not panic)
	if result != 0.0 {
		t.Errorf("expected 0.0 for empty input, got %f", result)
	}

	// Also verify with int64 (generic constraint covers both)
	resultInt := CalculatePercentile([]int64{}, 0.5)
	if resultInt != 0.0 {
		t.Errorf("expected 0.0 for empty int64 input, got %f", resultInt)
	}
}

func TestCalculatePercentile_SingleElement(t *testing.T) {
	for _, p := range []float64{0, 0.5, 0.99, 1} {
		if got := CalculatePercentile([]float64{7}, p); got != 7 {
			t.Errorf("p=%v: got %v, want 7", p, got)
		}
	}
}

func TestCalculatePercentile_NearestRank(t *testing.T) {
	// GIVEN the values 1..100
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i + 1)
	}
	tests := []struct {
		p    float64
		want float64
	}{
		{0.50, 50},
		{0.95, 95},
		{0.99, 99},
		{1.00, 100},
		{0.001, 1},
	}
	for _, tt := range tests {
		// WHEN the index ceil(p·n)−1 is used
		// THEN the nearest-rank value is returned
		if got := CalculatePercentile(data, tt.p); got != tt.want {
			t.Errorf("p=%v: got %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestCalculatePercentile_SmallSample(t *testing.T) {
	data := []int{10, 20, 30}
	if got := CalculatePercentile(data, 0.5); got != 20 {
		t.Errorf("p50 of 3: got %v, want 20", got)
	}
	if got := CalculatePercentile(data, 0.99); got != 30 {
		t.Errorf("p99 of 3: got %v, want 30", got)
	}
}

func TestCalculateMean(t *testing.T) {
	if got := CalculateMean([]int{}); got != 0 {
		t.Errorf("empty mean: got %v", got)
	}
	if got := CalculateMean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("mean: got %v, want 2.5", got)
	}
}

func TestPercentiles_SortsInput(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}
	p50, p95, p99 := percentiles(data)
	if p50 != 3 || p95 != 5 || p99 != 5 {
		t.Errorf("got p50=%v p95=%v p99=%v, want 3/5/5", p50, p95, p99)
	}
}
