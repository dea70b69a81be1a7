package registry

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/google/uuid"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/errors"
	"github.com/fedmesh/fedmesh/pkg/storage"
	"github.com/fedmesh/fedmesh/pkg/trust"
)

var namegen = namegenerator.NewGenerator()

type service struct {
	cfg    federation.Config
	self   federation.Server
	repo   storage.ServerRepository
	client PeerClient
	logger *slog.Logger

	pmu   sync.Mutex
	peers map[string]federation.Peer

	serverList  *listCache
	toolResults *toolResultCache
}

func NewService(cfg federation.Config, self federation.Server, repo storage.ServerRepository, client PeerClient, logger *slog.Logger) Service {
	return &service{
		cfg:         cfg,
		self:        self,
		repo:        repo,
		client:      client,
		logger:      logger,
		peers:       make(map[string]federation.Peer),
		serverList:  newListCache(cfg.CacheServerList),
		toolResults: newToolResultCache(cfg.CacheToolResults),
	}
}

func (svc *service) Register(ctx context.Context, s federation.Server) (federation.Server, error) {
	switch {
	case s.Endpoint == "":
		return federation.Server{}, errors.ErrMissingEndpoint
	case s.Owner == "":
		return federation.Server{}, errors.ErrMissingOwner
	case len(s.Tools) == 0:
		return federation.Server{}, errors.ErrNoTools
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Name == "" {
		s.Name = namegen.Generate()
	}

	pctx, cancel := context.WithTimeout(ctx, svc.cfg.ConnectionTimeout)
	defer cancel()
	if err := svc.client.Ping(pctx, s.Endpoint); err != nil {
		return federation.Server{}, errors.ErrUnreachable
	}

	now := time.Now()
	s.RegisteredAt = now
	s.LastSeenAt = now
	s.TrustScore = svc.cfg.NewServerTrust

	if err := svc.repo.Create(ctx, s, federation.NewTrustMetrics(s.ID)); err != nil {
		return federation.Server{}, err
	}

	if svc.cfg.AnnounceEnabled {
		svc.announce(ctx, s)
	}

	return s, nil
}

func (svc *service) Get(ctx context.Context, id string) (federation.Server, error) {
	return svc.repo.Get(ctx, id)
}

// List keeps a TTL-cached base list built with the node's configured
// minimum trust; the caller's own filters are applied on top of that
// shared snapshot. Two calls with different MinTrust values therefore
// see the same base data until the cache expires.
func (svc *service) List(ctx context.Context, f ListFilter) ([]federation.Server, error) {
	base, ok := svc.serverList.get()
	if !ok {
		all, err := svc.repo.List(ctx)
		if err != nil {
			return nil, err
		}

		base = make([]federation.Server, 0, len(all))
		for _, s := range all {
			if s.TrustScore >= svc.cfg.MinTrustScore {
				base = append(base, s)
			}
		}
		sortByTrust(base)
		svc.serverList.set(base)
	}

	servers := make([]federation.Server, 0, len(base))
	for _, s := range base {
		if s.TrustScore < f.MinTrust {
			continue
		}
		if f.Category != "" && !hasCategory(s, f.Category) {
			continue
		}
		if !hasAllTools(s, f.HasTools) {
			continue
		}
		servers = append(servers, s)
	}

	if f.Limit > 0 && len(servers) > f.Limit {
		servers = servers[:f.Limit]
	}

	return servers, nil
}

func (svc *service) SearchTools(ctx context.Context, query string, f SearchFilter) ([]federation.ToolMatch, error) {
	servers, err := svc.List(ctx, ListFilter{MinTrust: f.MinTrust})
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)

	matches := make([]federation.ToolMatch, 0)
	for _, s := range servers {
		for _, t := range s.Tools {
			if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
				continue
			}

			var score float64
			if strings.Contains(strings.ToLower(t.Name), q) {
				score += 50
			}
			if strings.Contains(strings.ToLower(t.Description), q) {
				score += 30
			}
			if strings.Contains(strings.ToLower(t.Category), q) {
				score += 20
			}
			score += float64(s.TrustScore) * 0.3

			if score <= 0 {
				continue
			}

			matches = append(matches, federation.ToolMatch{
				ServerID:   s.ID,
				ServerName: s.Name,
				Endpoint:   s.Endpoint,
				TrustScore: s.TrustScore,
				Tool:       t,
				Score:      score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}

	return matches, nil
}

func (svc *service) Report(ctx context.Context, serverID, reason string) error {
	err := svc.repo.Mutate(ctx, serverID, func(s *federation.Server, m *federation.TrustMetrics) error {
		m.ReportCount++
		s.TrustScore = trust.Calculate(*m)

		return nil
	})
	if err != nil {
		return err
	}

	svc.logger.Warn("server reported",
		slog.String("server_id", serverID),
		slog.String("reason", reason),
	)

	return nil
}

func (svc *service) VerifyOwner(ctx context.Context, serverID, signature string) (bool, error) {
	if signature == "" {
		return false, nil
	}

	// Any non-empty signature is accepted; the network runs on
	// unauthenticated claims end to end.
	err := svc.repo.Mutate(ctx, serverID, func(s *federation.Server, m *federation.TrustMetrics) error {
		m.VerifiedOwner = true
		s.TrustScore = trust.Calculate(*m)

		return nil
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (svc *service) Stats(ctx context.Context) (federation.NetworkStats, error) {
	servers, err := svc.repo.List(ctx)
	if err != nil {
		return federation.NetworkStats{}, err
	}

	stats := federation.NetworkStats{
		TotalServers: len(servers),
		TotalPeers:   svc.peerCount(),
		NetworkID:    svc.cfg.NetworkID,
	}

	var totalTrust int
	for _, s := range servers {
		stats.TotalTools += len(s.Tools)
		totalTrust += s.TrustScore
	}
	if len(servers) > 0 {
		stats.AverageTrust = float64(totalTrust) / float64(len(servers))
	}

	return stats, nil
}

func (svc *service) Info(_ context.Context) (federation.Server, error) {
	return svc.self, nil
}

// Sort key is trust score descending; ties keep older registrations
// first so the order is stable within a call.
func sortByTrust(servers []federation.Server) {
	sort.SliceStable(servers, func(i, j int) bool {
		if servers[i].TrustScore != servers[j].TrustScore {
			return servers[i].TrustScore > servers[j].TrustScore
		}

		return servers[i].RegisteredAt.Before(servers[j].RegisteredAt)
	})
}

func hasCategory(s federation.Server, category string) bool {
	for _, t := range s.Tools {
		if strings.EqualFold(t.Category, category) {
			return true
		}
	}

	return false
}

func hasAllTools(s federation.Server, names []string) bool {
	for _, name := range names {
		if !s.HasTool(name) {
			return false
		}
	}

	return true
}
