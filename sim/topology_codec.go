package sim

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// decodeComponent builds the config for kind starting from its defaults and
// overlaying whatever decode writes. A nil decode yields the defaults.
func decodeComponent(kind NodeKind, decode func(target any) error) (ComponentConfig, error) {
	def, err := DefaultComponentConfig(kind)
	if err != nil {
		return nil, err
	}
	if decode == nil {
		return def, nil
	}
	switch c := def.(type) {
	case ClientConfig:
		return c, nil
	case ServiceConfig:
		err = decode(&c)
		return c, err
	case LoadBalancerConfig:
		err = decode(&c)
		return c, err
	case QueueConfig:
		err = decode(&c)
		return c, err
	case DatabaseConfig:
		err = decode(&c)
		return c, err
	case CacheConfig:
		err = decode(&c)
		return c, err
	case APIGatewayConfig:
		err = decode(&c)
		return c, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// UnmarshalYAML decodes a node whose config shape is selected by its kind.
func (n *SimNode) UnmarshalYAML(value *yaml.Node) error {
	var w struct {
		ID       string         `yaml:"id"`
		Kind     NodeKind       `yaml:"kind"`
		Position Position       `yaml:"position"`
		Metadata map[string]any `yaml:"metadata"`
		Config   yaml.Node      `yaml:"config"`
	}
	if err := value.Decode(&w); err != nil {
		return err
	}
	var decode func(any) error
	if w.Config.Kind != 0 {
		decode = w.Config.Decode
	}
	cfg, err := decodeComponent(w.Kind, decode)
	if err != nil {
		return fmt.Errorf("node %q: %w", w.ID, err)
	}
	*n = SimNode{ID: w.ID, Config: cfg, Position: w.Position, Metadata: w.Metadata}
	return nil
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Kind     NodeKind        `json:"kind"`
	Position Position        `json:"position"`
	Metadata map[string]any  `json:"metadata,omitempty"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// UnmarshalJSON decodes a node whose config shape is selected by its kind.
func (n *SimNode) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var decode func(any) error
	if len(w.Config) > 0 && !bytes.Equal(bytes.TrimSpace(w.Config), []byte("null")) {
		decode = func(target any) error { return json.Unmarshal(w.Config, target) }
	}
	cfg, err := decodeComponent(w.Kind, decode)
	if err != nil {
		return fmt.Errorf("node %q: %w", w.ID, err)
	}
	*n = SimNode{ID: w.ID, Config: cfg, Position: w.Position, Metadata: w.Metadata}
	return nil
}

// MarshalJSON encodes the node with an explicit kind tag.
func (n SimNode) MarshalJSON() ([]byte, error) {
	w := nodeJSON{ID: n.ID, Kind: n.Kind(), Position: n.Position, Metadata: n.Metadata}
	if n.Config != nil {
		raw, err := json.Marshal(n.Config)
		if err != nil {
			return nil, err
		}
		w.Config = raw
	}
	return json.Marshal(w)
}
