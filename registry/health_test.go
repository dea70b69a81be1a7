package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/errors"
)

func TestHealthRoundSkipsFreshServers(t *testing.T) {
	fc := newFakePeerClient()
	svc, repo := newTestService(federation.DefaultConfig(), fc)

	s := validServer("fresh")
	s.TrustScore = 50
	s.LastSeenAt = time.Now()
	seedServer(t, repo, s)

	require.NoError(t, svc.HealthRound(context.Background()))

	pings, _, _, _, _ := fc.counts()
	assert.Zero(t, pings)
}

func TestHealthRoundRewardsResponsiveServers(t *testing.T) {
	fc := newFakePeerClient()
	svc, repo := newTestService(federation.DefaultConfig(), fc)

	s := validServer("stale")
	s.TrustScore = 50
	s.LastSeenAt = time.Now().Add(-10 * time.Minute)
	seedServer(t, repo, s)

	require.NoError(t, repo.Mutate(context.Background(), "stale", func(_ *federation.Server, m *federation.TrustMetrics) error {
		m.Uptime = 90

		return nil
	}))

	require.NoError(t, svc.HealthRound(context.Background()))

	pings, _, _, _, _ := fc.counts()
	assert.Equal(t, 1, pings)

	m, err := repo.GetMetrics(context.Background(), "stale")
	require.NoError(t, err)
	assert.InDelta(t, 91, m.Uptime, 1e-9)

	got, err := repo.Get(context.Background(), "stale")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got.LastSeenAt, time.Minute)
}

func TestHealthRoundUptimeCapsAtHundred(t *testing.T) {
	fc := newFakePeerClient()
	svc, repo := newTestService(federation.DefaultConfig(), fc)

	s := validServer("stale")
	s.TrustScore = 75
	s.LastSeenAt = time.Now().Add(-10 * time.Minute)
	seedServer(t, repo, s)

	require.NoError(t, svc.HealthRound(context.Background()))

	m, err := repo.GetMetrics(context.Background(), "stale")
	require.NoError(t, err)
	assert.InDelta(t, 100, m.Uptime, 1e-9)
}

func TestHealthRoundPenalizesDeadServers(t *testing.T) {
	fc := newFakePeerClient()
	svc, repo := newTestService(federation.DefaultConfig(), fc)

	s := validServer("dead")
	s.TrustScore = 75
	s.LastSeenAt = time.Now().Add(-10 * time.Minute)
	seedServer(t, repo, s)
	fc.pingErr[s.Endpoint] = assert.AnError

	require.NoError(t, svc.HealthRound(context.Background()))

	m, err := repo.GetMetrics(context.Background(), "dead")
	require.NoError(t, err)
	assert.InDelta(t, 95, m.Uptime, 1e-9)

	// A server with an otherwise clean record survives a missed probe.
	got, err := repo.Get(context.Background(), "dead")
	require.NoError(t, err)
	assert.Equal(t, 74, got.TrustScore)
}

func TestHealthRoundEvictsCollapsedServers(t *testing.T) {
	fc := newFakePeerClient()
	svc, repo := newTestService(federation.DefaultConfig(), fc)

	s := validServer("doomed")
	s.LastSeenAt = time.Now().Add(-10 * time.Minute)
	seedServer(t, repo, s)
	fc.pingErr[s.Endpoint] = assert.AnError

	require.NoError(t, repo.Mutate(context.Background(), "doomed", func(s *federation.Server, m *federation.TrustMetrics) error {
		m.Uptime = 4
		m.SuccessRate = 0
		m.QualityScore = 0
		m.ReportCount = 5
		s.TrustScore = 1

		return nil
	}))

	require.NoError(t, svc.HealthRound(context.Background()))

	_, err := repo.Get(context.Background(), "doomed")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	_, err = repo.GetMetrics(context.Background(), "doomed")
	assert.ErrorIs(t, err, errors.ErrNotFound, "eviction removes the metrics record too")
}

func TestHealthRoundKeepsServersAboveEvictionTrust(t *testing.T) {
	fc := newFakePeerClient()
	svc, repo := newTestService(federation.DefaultConfig(), fc)

	s := validServer("limping")
	s.TrustScore = 75
	s.LastSeenAt = time.Now().Add(-10 * time.Minute)
	seedServer(t, repo, s)
	fc.pingErr[s.Endpoint] = assert.AnError

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.HealthRound(context.Background()))
		require.NoError(t, repo.Mutate(context.Background(), "limping", func(s *federation.Server, _ *federation.TrustMetrics) error {
			s.LastSeenAt = time.Now().Add(-10 * time.Minute)

			return nil
		}))
	}

	got, err := repo.Get(context.Background(), "limping")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.TrustScore, evictionTrust)

	m, err := repo.GetMetrics(context.Background(), "limping")
	require.NoError(t, err)
	assert.InDelta(t, 85, m.Uptime, 1e-9)
}
