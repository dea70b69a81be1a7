// Package registry implements the core of a federation node: the
// server registry with trust bookkeeping, tool routing with caching
// and fallback, gossip-based peer discovery, and health supervision.
package registry

import (
	"context"

	"github.com/fedmesh/fedmesh/federation"
)

// ListFilter narrows a server listing. The zero value returns every
// server the node is willing to list at its configured minimum trust.
type ListFilter struct {
	MinTrust int
	Category string
	HasTools []string
	Limit    int
}

// SearchFilter narrows a tool search.
type SearchFilter struct {
	Category string
	MinTrust int
	Limit    int
}

type Service interface {
	// Register validates a server descriptor, probes its /health
	// endpoint and stores it together with fresh trust metrics. The
	// registry is left untouched on any failure.
	Register(ctx context.Context, s federation.Server) (federation.Server, error)

	// Get returns a server by id.
	Get(ctx context.Context, id string) (federation.Server, error)

	// List returns servers sorted by descending trust score. The base
	// list is cached and rebuilt at most once per configured TTL.
	List(ctx context.Context, f ListFilter) ([]federation.Server, error)

	// SearchTools ranks tools across listed servers against a query.
	SearchTools(ctx context.Context, query string, f SearchFilter) ([]federation.ToolMatch, error)

	// CallTool invokes a tool on a specific server. Routing failures
	// are reported inside the response, not as errors.
	CallTool(ctx context.Context, req federation.ToolCallRequest) (federation.ToolCallResponse, error)

	// CallToolAuto tries every eligible server providing the tool in
	// descending trust order until one succeeds.
	CallToolAuto(ctx context.Context, tool string, params map[string]any, minTrust int) (federation.ToolCallResponse, error)

	// Report files an abuse report against a server and recomputes its
	// trust score.
	Report(ctx context.Context, serverID, reason string) error

	// VerifyOwner marks a server's owner as verified. Any non-empty
	// signature is accepted; no cryptographic check is performed.
	VerifyOwner(ctx context.Context, serverID, signature string) (bool, error)

	// Stats summarizes the node's view of the network.
	Stats(ctx context.Context) (federation.NetworkStats, error)

	// Info returns this node's own server descriptor.
	Info(ctx context.Context) (federation.Server, error)

	// Bootstrap contacts the configured seed peers. Per-seed failures
	// are logged and skipped.
	Bootstrap(ctx context.Context) error

	// GossipRound exchanges server summaries with up to three random
	// peers. Best effort: peer failures are swallowed.
	GossipRound(ctx context.Context) error

	// HandleGossip answers a peer's gossip exchange with this node's
	// own server summaries.
	HandleGossip(ctx context.Context, req federation.GossipRequest) (federation.GossipReply, error)

	// HandleMessage dispatches an inbound discovery message. Announce
	// payloads are registered without signature verification.
	HandleMessage(ctx context.Context, msg federation.DiscoveryMessage) error

	// HealthRound probes stale servers, adjusts uptime and evicts the
	// ones whose trust collapses.
	HealthRound(ctx context.Context) error
}
