package registry

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/trust"
)

const (
	// staleThreshold is how long a server may go unseen before the
	// health loop starts probing it.
	staleThreshold = 5 * time.Minute

	// evictionTrust is the score below which a failing server is
	// removed outright. No tombstone, no grace period.
	evictionTrust = 5

	uptimeReward  = 1
	uptimePenalty = 5
)

// HealthRound probes every server that has gone stale. Responsive
// servers slowly regain uptime; unresponsive ones bleed it until their
// trust collapses and they are evicted together with their metrics.
func (svc *service) HealthRound(ctx context.Context) error {
	servers, err := svc.repo.List(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, s := range servers {
		if now.Sub(s.LastSeenAt) <= staleThreshold {
			continue
		}

		pctx, cancel := context.WithTimeout(ctx, svc.cfg.ConnectionTimeout)
		err := svc.client.Ping(pctx, s.Endpoint)
		cancel()

		if err == nil {
			svc.markAlive(ctx, s.ID)

			continue
		}

		svc.markDead(ctx, s.ID)
	}

	return nil
}

func (svc *service) markAlive(ctx context.Context, serverID string) {
	err := svc.repo.Mutate(ctx, serverID, func(s *federation.Server, m *federation.TrustMetrics) error {
		s.LastSeenAt = time.Now()
		m.Uptime = math.Min(100, m.Uptime+uptimeReward)
		s.TrustScore = trust.Calculate(*m)

		return nil
	})
	if err != nil {
		svc.logger.Warn("failed to update server after successful probe",
			slog.String("server_id", serverID),
			slog.Any("error", err),
		)
	}
}

func (svc *service) markDead(ctx context.Context, serverID string) {
	var score int
	err := svc.repo.Mutate(ctx, serverID, func(s *federation.Server, m *federation.TrustMetrics) error {
		m.Uptime = math.Max(0, m.Uptime-uptimePenalty)
		s.TrustScore = trust.Calculate(*m)
		score = s.TrustScore

		return nil
	})
	if err != nil {
		svc.logger.Warn("failed to update server after failed probe",
			slog.String("server_id", serverID),
			slog.Any("error", err),
		)

		return
	}

	if score >= evictionTrust {
		return
	}

	if err := svc.repo.Delete(ctx, serverID); err != nil {
		svc.logger.Warn("failed to evict server",
			slog.String("server_id", serverID),
			slog.Any("error", err),
		)

		return
	}

	svc.logger.Info("evicted unresponsive server",
		slog.String("server_id", serverID),
		slog.Int("trust_score", score),
	)
}
