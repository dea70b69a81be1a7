package federation

import "time"

// Config is the full tuning surface of a federation node.
type Config struct {
	NetworkID           string        `json:"network_id"`
	BootstrapPeers      []string      `json:"bootstrap_peers"`
	MaxPeers            int           `json:"max_peers"`
	GossipInterval      time.Duration `json:"gossip_interval"`
	HealthCheckInterval time.Duration `json:"health_check_interval"`
	DiscoveryEnabled    bool          `json:"discovery_enabled"`
	AnnounceEnabled     bool          `json:"announce_enabled"`
	MinTrustScore       int           `json:"min_trust_score"`
	TrustDecayRate      float64       `json:"trust_decay_rate"`
	NewServerTrust      int           `json:"new_server_trust"`
	RequestTimeout      time.Duration `json:"request_timeout"`
	ConnectionTimeout   time.Duration `json:"connection_timeout"`
	CacheServerList     time.Duration `json:"cache_server_list"`
	CacheToolResults    time.Duration `json:"cache_tool_results"`
}

func DefaultConfig() Config {
	return Config{
		NetworkID:           "fedmesh",
		BootstrapPeers:      []string{},
		MaxPeers:            100,
		GossipInterval:      time.Minute,
		HealthCheckInterval: 30 * time.Second,
		DiscoveryEnabled:    true,
		AnnounceEnabled:     false,
		MinTrustScore:       20,
		TrustDecayRate:      0.99,
		NewServerTrust:      30,
		RequestTimeout:      30 * time.Second,
		ConnectionTimeout:   10 * time.Second,
		CacheServerList:     5 * time.Minute,
		CacheToolResults:    time.Minute,
	}
}
