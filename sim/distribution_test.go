package sim

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSample_Constant_NoDraw(t *testing.T) {
	// GIVEN two RNGs with the same seed
	a := NewRNG(NewSimulationKey(3))
	b := NewRNG(NewSimulationKey(3))

	// WHEN a constant is sampled from one
	v := Sample(Constant(7.5), a)

	// THEN the value is returned and no draw is consumed
	assert.Equal(t, 7.5, v)
	assert.Equal(t, b.Next(), a.Next())
}

func TestSample_DrawCounts(t *testing.T) {
	tests := []struct {
		name  string
		dist  Distribution
		draws int
	}{
		{"uniform", Uniform(1, 2), 1},
		{"exponential", Exponential(0.5), 1},
		{"normal", Normal(10, 2), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewRNG(NewSimulationKey(11))
			b := NewRNG(NewSimulationKey(11))
			Sample(tt.dist, a)
			for i := 0; i < tt.draws; i++ {
				b.Next()
			}
			assert.Equal(t, b.Next(), a.Next(), "stream position after sampling")
		})
	}
}

func TestSample_Uniform_InRange(t *testing.T) {
	r := NewRNG(NewSimulationKey(42))
	for i := 0; i < 1000; i++ {
		v := Sample(Uniform(5, 15), r)
		assert.True(t, v >= 5 && v < 15, "got %v", v)
	}
}

func TestSample_Uniform_MeanAndVariance(t *testing.T) {
	// GIVEN 10,000 draws from uniform(5,15)
	r := NewRNG(NewSimulationKey(42))
	const n = 10000
	values := make([]float64, n)
	sum := 0.0
	for i := range values {
		values[i] = Sample(Uniform(5, 15), r)
		sum += values[i]
	}
	mean := sum / n
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}

	// THEN mean and variance match (a+b)/2 and (b-a)^2/12
	assert.InDelta(t, 10.0, mean, 0.15)
	assert.InDelta(t, 100.0/12, ss/n, 0.5)
}

func TestSample_Exponential_MeanApproximatesInverseRate(t *testing.T) {
	r := NewRNG(NewSimulationKey(42))
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		sum += Sample(Exponential(0.25), r)
	}
	assert.InDelta(t, 4.0, sum/n, 0.2)
}

func TestSample_Normal_MeanAndSpread(t *testing.T) {
	r := NewRNG(NewSimulationKey(42))
	const n = 20000
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = Sample(Normal(100, 10), r)
	}
	mean := CalculateMean(vals)
	variance := 0.0
	for _, v := range vals {
		variance += (v - mean) * (v - mean)
	}
	assert.InDelta(t, 100, mean, 0.5)
	assert.InDelta(t, 10, math.Sqrt(variance/n), 0.5)
}

func TestSample_Normal_CanBeNegative_DelayClamped(t *testing.T) {
	// GIVEN a normal centred on zero
	d := Normal(0, 5)
	raw := NewRNG(NewSimulationKey(42))
	clamped := NewRNG(NewSimulationKey(42))

	negatives := 0
	for i := 0; i < 200; i++ {
		if Sample(d, raw) < 0 {
			negatives++
		}
		// THEN delays used for scheduling never go below zero
		assert.GreaterOrEqual(t, sampleDelay(d, clamped), 0.0)
	}
	assert.Greater(t, negatives, 0, "raw samples are unclamped")
}

func TestDistribution_Validate(t *testing.T) {
	tests := []struct {
		name    string
		dist    Distribution
		wantErr bool
	}{
		{"constant", Constant(1), false},
		{"zero value", Distribution{}, false},
		{"uniform", Uniform(1, 2), false},
		{"uniform inverted", Uniform(2, 1), true},
		{"exponential", Exponential(1), false},
		{"exponential zero rate", Exponential(0), true},
		{"normal", Normal(1, 0), false},
		{"normal negative stddev", Normal(1, -1), true},
		{"unknown", Distribution{Type: "pareto"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dist.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDistribution_Unmarshal_ReplacesWholesale(t *testing.T) {
	// GIVEN a field pre-filled with a constant default
	type holder struct {
		D Distribution `yaml:"d" json:"d"`
	}
	y := holder{D: Constant(10)}
	j := holder{D: Constant(10)}

	// WHEN an exponential is decoded over it
	require.NoError(t, yaml.Unmarshal([]byte("d: {type: exponential, rate: 0.5}"), &y))
	require.NoError(t, json.Unmarshal([]byte(`{"d":{"type":"exponential","rate":0.5}}`), &j))

	// THEN no constant value leaks through
	assert.Equal(t, Exponential(0.5), y.D)
	assert.Equal(t, Exponential(0.5), j.D)
}

func TestDistribution_Unmarshal_NumberShorthand(t *testing.T) {
	var d Distribution
	require.NoError(t, yaml.Unmarshal([]byte("7.5"), &d))
	assert.Equal(t, Constant(7.5), d)
	require.NoError(t, json.Unmarshal([]byte("3"), &d))
	assert.Equal(t, Constant(3), d)
}
