package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// DistributionType tags a Distribution.
type DistributionType string

const (
	DistConstant    DistributionType = "constant"
	DistUniform     DistributionType = "uniform"
	DistExponential DistributionType = "exponential"
	DistNormal      DistributionType = "normal"
)

// Distribution is a tagged union of the supported statistical distributions.
// Only the fields relevant to Type are read.
type Distribution struct {
	Type   DistributionType `yaml:"type" json:"type"`
	Value  float64          `yaml:"value,omitempty" json:"value,omitempty"`   // constant
	Min    float64          `yaml:"min,omitempty" json:"min,omitempty"`       // uniform
	Max    float64          `yaml:"max,omitempty" json:"max,omitempty"`       // uniform
	Rate   float64          `yaml:"rate,omitempty" json:"rate,omitempty"`     // exponential
	Mean   float64          `yaml:"mean,omitempty" json:"mean,omitempty"`     // normal
	Stddev float64          `yaml:"stddev,omitempty" json:"stddev,omitempty"` // normal
}

// Constant returns a distribution that always yields v.
func Constant(v float64) Distribution { return Distribution{Type: DistConstant, Value: v} }

// Uniform returns a uniform distribution over [min,max).
func Uniform(min, max float64) Distribution { return Distribution{Type: DistUniform, Min: min, Max: max} }

// Exponential returns an exponential distribution with the given rate (mean 1/rate).
func Exponential(rate float64) Distribution { return Distribution{Type: DistExponential, Rate: rate} }

// Normal returns a normal distribution.
func Normal(mean, stddev float64) Distribution {
	return Distribution{Type: DistNormal, Mean: mean, Stddev: stddev}
}

// Validate checks that the parameters are usable for sampling.
func (d Distribution) Validate() error {
	switch d.Type {
	case DistConstant, "":
		return nil
	case DistUniform:
		if d.Max < d.Min {
			return fmt.Errorf("%w: uniform max %g < min %g", ErrInvalidConfig, d.Max, d.Min)
		}
	case DistExponential:
		if d.Rate <= 0 || math.IsInf(d.Rate, 0) || math.IsNaN(d.Rate) {
			return fmt.Errorf("%w: exponential rate must be positive and finite, got %g", ErrInvalidConfig, d.Rate)
		}
	case DistNormal:
		if d.Stddev < 0 {
			return fmt.Errorf("%w: normal stddev must be non-negative, got %g", ErrInvalidConfig, d.Stddev)
		}
	default:
		return fmt.Errorf("%w: unknown distribution type %q; valid: constant, uniform, exponential, normal", ErrInvalidConfig, d.Type)
	}
	return nil
}

// Sample draws one value from d. The number of RNG draws is fixed per type:
// constant 0, uniform 1, exponential 1, normal 2. Later draws depend on
// exact upstream consumption, so this must never vary.
func Sample(d Distribution, rng *RNG) float64 {
	switch d.Type {
	case DistUniform:
		return d.Min + rng.Next()*(d.Max-d.Min)
	case DistExponential:
		return -math.Log(1-rng.Next()) / d.Rate
	case DistNormal:
		u1 := rng.Next()
		u2 := rng.Next()
		if u1 == 0 {
			u1 = math.SmallestNonzeroFloat64 // ln(0) would yield +Inf
		}
		return d.Mean + d.Stddev*math.Sqrt(-2*math.Log(u1))*math.Cos(2*math.Pi*u2)
	default:
		return d.Value
	}
}

// sampleDelay samples d for use as a scheduling delay, clamped at zero.
func sampleDelay(d Distribution, rng *RNG) float64 {
	v := Sample(d, rng)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

type plainDistribution Distribution

// UnmarshalYAML replaces d wholesale, so decoding over a default never
// mixes parameters of two types. A bare number is shorthand for a constant.
func (d *Distribution) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("distribution: %w", err)
		}
		*d = Constant(v)
		return nil
	}
	var p plainDistribution
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = Distribution(p)
	return nil
}

// UnmarshalJSON is the JSON counterpart of UnmarshalYAML.
func (d *Distribution) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' && !bytes.Equal(data, []byte("null")) {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("distribution: %w", err)
		}
		*d = Constant(v)
		return nil
	}
	var p plainDistribution
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Distribution(p)
	return nil
}
