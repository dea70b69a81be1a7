package federation

// ToolCallRequest addresses a single tool invocation at a specific
// server. APIKey, when present, is forwarded as a bearer token.
type ToolCallRequest struct {
	ServerID string         `json:"server_id"`
	Tool     string         `json:"tool"`
	Params   map[string]any `json:"params,omitempty"`
	APIKey   string         `json:"api_key,omitempty"`
}

// ToolCallResponse is a total result: routing failures (unknown
// server, low trust, remote errors) are reported here, never as Go
// errors.
type ToolCallResponse struct {
	Success    bool   `json:"success"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	FromCache  bool   `json:"from_cache"`
	CostMicro  int64  `json:"cost_micro,omitempty"`
}

type NetworkStats struct {
	TotalServers int     `json:"total_servers"`
	TotalTools   int     `json:"total_tools"`
	TotalPeers   int     `json:"total_peers"`
	AverageTrust float64 `json:"average_trust"`
	NetworkID    string  `json:"network_id"`
}
