// Package scenario loads scenario files: one YAML document holding the
// simulation config and the topology it drives.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simranmultani197/Simforge-sub000/sim"
)

// ErrSchema is returned when a scenario document does not match the schema.
var ErrSchema = errors.New("scenario does not match schema")

// Scenario is a runnable simulation: config plus topology.
type Scenario struct {
	Name        string               `yaml:"name,omitempty" json:"name,omitempty"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Simulation  sim.SimulationConfig `yaml:"simulation" json:"simulation"`
	Topology    sim.Topology         `yaml:"topology" json:"topology"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse checks data against the schema and decodes it strictly:
// unrecognized keys (typos) are rejected. Simulation fields left out keep
// sim.DefaultSimulationConfig values.
func Parse(data []byte) (*Scenario, error) {
	if err := CheckSchema(data); err != nil {
		return nil, err
	}
	sc := Scenario{Simulation: sim.DefaultSimulationConfig()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks the scenario can be simulated: config values, node and
// edge configs, and graph structure.
func (s *Scenario) Validate() error {
	if err := s.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if err := s.Topology.Validate(); err != nil {
		return fmt.Errorf("topology: %w", err)
	}
	if _, err := sim.BuildGraph(s.Topology); err != nil {
		return fmt.Errorf("topology: %w", err)
	}
	return nil
}

// NewSimulator builds a simulator for the scenario.
func (s *Scenario) NewSimulator(opts ...sim.Option) (*sim.Simulator, error) {
	return sim.NewSimulator(s.Topology, s.Simulation, opts...)
}
