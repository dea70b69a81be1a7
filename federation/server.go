package federation

import (
	"strings"
	"time"
)

// Tool is a named, schema-described capability a server exposes to the
// network. InputSchema is an opaque JSON schema object; it is carried
// verbatim and never validated here.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
	Category    string         `json:"category,omitempty"`
	Pricing     *Pricing       `json:"pricing,omitempty"`
	RateLimit   int            `json:"rate_limit,omitempty"`
}

// Pricing is surfaced to callers but never charged by this node.
type Pricing struct {
	BaseCostMicro int64  `json:"base_cost_micro"`
	Currency      string `json:"currency,omitempty"`
}

type ServerMetadata struct {
	RevenueSharePct  float64 `json:"revenue_share_pct,omitempty"`
	MinTrustRequired int     `json:"min_trust_required,omitempty"`
}

// Server is the full identity and capability record of a federated
// tool server. TrustScore is always a recomputed cache of
// trust.Calculate over the server's metrics, never authored directly.
type Server struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Endpoint     string         `json:"endpoint"`
	Owner        string         `json:"owner"`
	Tools        []Tool         `json:"tools"`
	Capabilities []string       `json:"capabilities,omitempty"`
	TrustScore   int            `json:"trust_score"`
	RegisteredAt time.Time      `json:"registered_at"`
	LastSeenAt   time.Time      `json:"last_seen_at"`
	Metadata     ServerMetadata `json:"metadata,omitempty"`
}

func (s Server) HasTool(name string) bool {
	_, ok := s.FindTool(name)

	return ok
}

func (s Server) FindTool(name string) (Tool, bool) {
	for _, t := range s.Tools {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}

	return Tool{}, false
}

// Summary is the lightweight projection of a server exchanged during
// gossip rounds.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Endpoint   string    `json:"endpoint"`
	TrustScore int       `json:"trust_score"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (s Server) Summary() Summary {
	return Summary{
		ID:         s.ID,
		Name:       s.Name,
		Endpoint:   s.Endpoint,
		TrustScore: s.TrustScore,
		LastSeenAt: s.LastSeenAt,
	}
}

// ToolMatch is a ranked search result.
type ToolMatch struct {
	ServerID   string  `json:"server_id"`
	ServerName string  `json:"server_name"`
	Endpoint   string  `json:"endpoint"`
	TrustScore int     `json:"trust_score"`
	Tool       Tool    `json:"tool"`
	Score      float64 `json:"score"`
}
