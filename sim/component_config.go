package sim

import "fmt"

// NodeKind names a component kind. Every kind maps to exactly one Behavior.
type NodeKind string

const (
	KindClient       NodeKind = "client"
	KindService      NodeKind = "service"
	KindLoadBalancer NodeKind = "load-balancer"
	KindQueue        NodeKind = "queue"
	KindDatabase     NodeKind = "database"
	KindCache        NodeKind = "cache"
	KindAPIGateway   NodeKind = "api-gateway"
)

// ComponentConfig is the kind-tagged configuration of a node.
type ComponentConfig interface {
	Kind() NodeKind
	Validate() error
}

// ClientConfig configures a pass-through client node.
type ClientConfig struct{}

// ServiceConfig configures a service node.
type ServiceConfig struct {
	LatencyMs      Distribution `yaml:"latency_ms" json:"latencyMs"`
	FailureRate    float64      `yaml:"failure_rate" json:"failureRate"`
	MaxConcurrency int          `yaml:"max_concurrency" json:"maxConcurrency"`
}

// LBAlgorithm selects a load-balancer target selection policy.
type LBAlgorithm string

const (
	LBRoundRobin       LBAlgorithm = "round-robin"
	LBRandom           LBAlgorithm = "random"
	LBLeastConnections LBAlgorithm = "least-connections"
)

// LoadBalancerConfig configures a load-balancer node.
type LoadBalancerConfig struct {
	Algorithm      LBAlgorithm `yaml:"algorithm" json:"algorithm"`
	MaxConnections int         `yaml:"max_connections" json:"maxConnections"`
}

// QueueConfig configures a queue node.
type QueueConfig struct {
	MaxDepth          int          `yaml:"max_depth" json:"maxDepth"`
	ProcessingTimeMs  Distribution `yaml:"processing_time_ms" json:"processingTimeMs"`
	DeadLetterEnabled bool         `yaml:"dead_letter_enabled" json:"deadLetterEnabled"`
}

// DatabaseConfig configures a database node.
type DatabaseConfig struct {
	QueryLatencyMs     Distribution `yaml:"query_latency_ms" json:"queryLatencyMs"`
	WriteLatencyMs     Distribution `yaml:"write_latency_ms" json:"writeLatencyMs"`
	ConnectionPoolSize int          `yaml:"connection_pool_size" json:"connectionPoolSize"`
	ReplicationFactor  int          `yaml:"replication_factor" json:"replicationFactor"`
	FailureRate        float64      `yaml:"failure_rate" json:"failureRate"`
}

// CacheConfig configures a cache node.
type CacheConfig struct {
	HitRate       float64      `yaml:"hit_rate" json:"hitRate"`
	HitLatencyMs  Distribution `yaml:"hit_latency_ms" json:"hitLatencyMs"`
	MissLatencyMs Distribution `yaml:"miss_latency_ms" json:"missLatencyMs"`
}

// APIGatewayConfig configures an api-gateway node.
type APIGatewayConfig struct {
	RateLimitRps   float64      `yaml:"rate_limit_rps" json:"rateLimitRps"`
	BurstSize      float64      `yaml:"burst_size" json:"burstSize"`
	AuthLatencyMs  Distribution `yaml:"auth_latency_ms" json:"authLatencyMs"`
	MaxConcurrency int          `yaml:"max_concurrency" json:"maxConcurrency"`
	FailureRate    float64      `yaml:"failure_rate" json:"failureRate"`
}

func (ClientConfig) Kind() NodeKind       { return KindClient }
func (ServiceConfig) Kind() NodeKind      { return KindService }
func (LoadBalancerConfig) Kind() NodeKind { return KindLoadBalancer }
func (QueueConfig) Kind() NodeKind        { return KindQueue }
func (DatabaseConfig) Kind() NodeKind     { return KindDatabase }
func (CacheConfig) Kind() NodeKind        { return KindCache }
func (APIGatewayConfig) Kind() NodeKind   { return KindAPIGateway }

// DefaultComponentConfig returns the default configuration for kind.
// Decoders start from these values so unspecified fields keep them.
func DefaultComponentConfig(kind NodeKind) (ComponentConfig, error) {
	switch kind {
	case KindClient:
		return ClientConfig{}, nil
	case KindService:
		return ServiceConfig{LatencyMs: Constant(10), MaxConcurrency: 100}, nil
	case KindLoadBalancer:
		return LoadBalancerConfig{Algorithm: LBRoundRobin, MaxConnections: 10000}, nil
	case KindQueue:
		return QueueConfig{MaxDepth: 1000, ProcessingTimeMs: Constant(5)}, nil
	case KindDatabase:
		return DatabaseConfig{
			QueryLatencyMs:     Constant(5),
			WriteLatencyMs:     Constant(15),
			ConnectionPoolSize: 50,
			ReplicationFactor:  1,
		}, nil
	case KindCache:
		return CacheConfig{HitRate: 0.8, HitLatencyMs: Constant(1), MissLatencyMs: Constant(2)}, nil
	case KindAPIGateway:
		return APIGatewayConfig{
			RateLimitRps:   1000,
			BurstSize:      100,
			AuthLatencyMs:  Constant(2),
			MaxConcurrency: 1000,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func (ClientConfig) Validate() error { return nil }

func (c ServiceConfig) Validate() error {
	if err := validateProbability("failure_rate", c.FailureRate); err != nil {
		return err
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("%w: max_concurrency must be non-negative, got %d", ErrInvalidConfig, c.MaxConcurrency)
	}
	return c.LatencyMs.Validate()
}

func (c LoadBalancerConfig) Validate() error {
	switch c.Algorithm {
	case LBRoundRobin, LBRandom, LBLeastConnections:
	default:
		return fmt.Errorf("%w: unknown algorithm %q; valid: round-robin, random, least-connections", ErrInvalidConfig, c.Algorithm)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("%w: max_connections must be non-negative, got %d", ErrInvalidConfig, c.MaxConnections)
	}
	return nil
}

func (c QueueConfig) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must be non-negative, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	return c.ProcessingTimeMs.Validate()
}

func (c DatabaseConfig) Validate() error {
	if err := validateProbability("failure_rate", c.FailureRate); err != nil {
		return err
	}
	if c.ConnectionPoolSize < 0 {
		return fmt.Errorf("%w: connection_pool_size must be non-negative, got %d", ErrInvalidConfig, c.ConnectionPoolSize)
	}
	if c.ReplicationFactor < 1 {
		return fmt.Errorf("%w: replication_factor must be >= 1, got %d", ErrInvalidConfig, c.ReplicationFactor)
	}
	if err := c.QueryLatencyMs.Validate(); err != nil {
		return err
	}
	return c.WriteLatencyMs.Validate()
}

func (c CacheConfig) Validate() error {
	if err := validateProbability("hit_rate", c.HitRate); err != nil {
		return err
	}
	if err := c.HitLatencyMs.Validate(); err != nil {
		return err
	}
	return c.MissLatencyMs.Validate()
}

func (c APIGatewayConfig) Validate() error {
	if err := validateProbability("failure_rate", c.FailureRate); err != nil {
		return err
	}
	if c.RateLimitRps < 0 || c.BurstSize < 0 {
		return fmt.Errorf("%w: rate_limit_rps and burst_size must be non-negative", ErrInvalidConfig)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("%w: max_concurrency must be non-negative, got %d", ErrInvalidConfig, c.MaxConcurrency)
	}
	return c.AuthLatencyMs.Validate()
}

func validateProbability(name string, p float64) error {
	if p < 0 || p > 1 || p != p {
		return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrInvalidConfig, name, p)
	}
	return nil
}
