package fedmesh

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/fedmesh/fedmesh/federation"
)

// Config is the TOML file surface of a node. Interval and timeout
// fields are plain milliseconds to match the wire-facing naming used
// across the network.
type Config struct {
	Network NetworkConfig `toml:"network"`
	Trust   TrustConfig   `toml:"trust"`
	Caching CachingConfig `toml:"caching"`
}

type NetworkConfig struct {
	NetworkID             string   `toml:"network_id"`
	BootstrapPeers        []string `toml:"bootstrap_peers"`
	MaxPeers              int      `toml:"max_peers"`
	GossipIntervalMs      int64    `toml:"gossip_interval_ms"`
	HealthCheckIntervalMs int64    `toml:"health_check_interval_ms"`
	RequestTimeoutMs      int64    `toml:"request_timeout_ms"`
	ConnectionTimeoutMs   int64    `toml:"connection_timeout_ms"`

	// Pointers so an absent key is distinguishable from an explicit
	// false and falls back to the network default.
	DiscoveryEnabled *bool `toml:"discovery_enabled"`
	AnnounceEnabled  *bool `toml:"announce_enabled"`
}

type TrustConfig struct {
	MinTrustScore  int     `toml:"min_trust_score"`
	TrustDecayRate float64 `toml:"trust_decay_rate"`
	NewServerTrust int     `toml:"new_server_trust"`
}

type CachingConfig struct {
	ServerListMs  int64 `toml:"server_list_ms"`
	ToolResultsMs int64 `toml:"tool_results_ms"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Federation converts the file config into runtime settings, filling
// anything left unset with the network defaults.
func (c *Config) Federation() federation.Config {
	cfg := federation.DefaultConfig()

	if c.Network.NetworkID != "" {
		cfg.NetworkID = c.Network.NetworkID
	}
	if len(c.Network.BootstrapPeers) > 0 {
		cfg.BootstrapPeers = c.Network.BootstrapPeers
	}
	if c.Network.MaxPeers > 0 {
		cfg.MaxPeers = c.Network.MaxPeers
	}
	if c.Network.GossipIntervalMs > 0 {
		cfg.GossipInterval = time.Duration(c.Network.GossipIntervalMs) * time.Millisecond
	}
	if c.Network.HealthCheckIntervalMs > 0 {
		cfg.HealthCheckInterval = time.Duration(c.Network.HealthCheckIntervalMs) * time.Millisecond
	}
	if c.Network.RequestTimeoutMs > 0 {
		cfg.RequestTimeout = time.Duration(c.Network.RequestTimeoutMs) * time.Millisecond
	}
	if c.Network.ConnectionTimeoutMs > 0 {
		cfg.ConnectionTimeout = time.Duration(c.Network.ConnectionTimeoutMs) * time.Millisecond
	}
	if c.Network.DiscoveryEnabled != nil {
		cfg.DiscoveryEnabled = *c.Network.DiscoveryEnabled
	}
	if c.Network.AnnounceEnabled != nil {
		cfg.AnnounceEnabled = *c.Network.AnnounceEnabled
	}

	if c.Trust.MinTrustScore > 0 {
		cfg.MinTrustScore = c.Trust.MinTrustScore
	}
	if c.Trust.TrustDecayRate > 0 {
		cfg.TrustDecayRate = c.Trust.TrustDecayRate
	}
	if c.Trust.NewServerTrust > 0 {
		cfg.NewServerTrust = c.Trust.NewServerTrust
	}

	if c.Caching.ServerListMs > 0 {
		cfg.CacheServerList = time.Duration(c.Caching.ServerListMs) * time.Millisecond
	}
	if c.Caching.ToolResultsMs > 0 {
		cfg.CacheToolResults = time.Duration(c.Caching.ToolResultsMs) * time.Millisecond
	}

	return cfg
}
