package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fedmesh/fedmesh/federation"
	pkgerrors "github.com/fedmesh/fedmesh/pkg/errors"
	"github.com/fedmesh/fedmesh/pkg/trust"
)

// CallTool routes a single invocation. It is total: unknown servers,
// trust gating and remote failures all come back inside the response.
func (svc *service) CallTool(ctx context.Context, req federation.ToolCallRequest) (federation.ToolCallResponse, error) {
	start := time.Now()

	s, err := svc.repo.Get(ctx, req.ServerID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return failure(fmt.Sprintf("server %s not found", req.ServerID), start), nil
		}

		return failure(err.Error(), start), nil
	}

	if s.TrustScore < svc.cfg.MinTrustScore {
		return failure(fmt.Sprintf("server trust score %d is below the required minimum %d", s.TrustScore, svc.cfg.MinTrustScore), start), nil
	}

	key := toolCacheKey(req.ServerID, req.Tool, req.Params)
	if entry, ok := svc.toolResults.get(key); ok {
		return federation.ToolCallResponse{
			Success:    true,
			Result:     entry.result,
			DurationMs: time.Since(start).Milliseconds(),
			FromCache:  true,
			CostMicro:  entry.cost,
		}, nil
	}

	cctx, cancel := context.WithTimeout(ctx, svc.cfg.RequestTimeout)
	defer cancel()

	result, err := svc.client.CallTool(cctx, s.Endpoint, req.Tool, req.Params, req.APIKey)
	elapsed := time.Since(start)

	if err != nil {
		if rerr := svc.recordError(ctx, req.ServerID); rerr != nil {
			svc.logger.Warn("failed to record tool call error",
				slog.String("server_id", req.ServerID),
				slog.Any("error", rerr),
			)
		}

		return failureAt(err.Error(), elapsed), nil
	}

	if rerr := svc.recordSuccess(ctx, req.ServerID, float64(elapsed.Milliseconds())); rerr != nil {
		svc.logger.Warn("failed to record tool call success",
			slog.String("server_id", req.ServerID),
			slog.Any("error", rerr),
		)
	}

	var cost int64
	if t, ok := s.FindTool(req.Tool); ok && t.Pricing != nil {
		cost = t.Pricing.BaseCostMicro
	}

	svc.toolResults.set(key, result, cost)

	return federation.ToolCallResponse{
		Success:    true,
		Result:     result,
		DurationMs: elapsed.Milliseconds(),
		CostMicro:  cost,
	}, nil
}

// CallToolAuto walks eligible servers best-first and returns the first
// success. This per-server fallback is the only retry strategy the
// node has.
func (svc *service) CallToolAuto(ctx context.Context, tool string, params map[string]any, minTrust int) (federation.ToolCallResponse, error) {
	start := time.Now()

	if minTrust <= 0 {
		minTrust = svc.cfg.MinTrustScore
	}

	servers, err := svc.List(ctx, ListFilter{MinTrust: minTrust})
	if err != nil {
		return failure(err.Error(), start), nil
	}

	candidates := make([]federation.Server, 0, len(servers))
	for _, s := range servers {
		if s.HasTool(tool) {
			candidates = append(candidates, s)
		}
	}

	if len(candidates) == 0 {
		return failure(fmt.Sprintf("no servers available providing tool %s", tool), start), nil
	}

	for _, s := range candidates {
		resp, err := svc.CallTool(ctx, federation.ToolCallRequest{
			ServerID: s.ID,
			Tool:     tool,
			Params:   params,
		})
		if err == nil && resp.Success {
			return resp, nil
		}
	}

	return failure(fmt.Sprintf("all %d servers failed for tool %s", len(candidates), tool), start), nil
}

func (svc *service) recordSuccess(ctx context.Context, serverID string, responseTimeMs float64) error {
	return svc.repo.Mutate(ctx, serverID, func(s *federation.Server, m *federation.TrustMetrics) error {
		m.TotalRequests++
		n := float64(m.TotalRequests)
		m.AvgResponseTimeMs = (m.AvgResponseTimeMs*(n-1) + responseTimeMs) / n
		m.SuccessRate = float64(m.TotalRequests-m.TotalErrors) / n * 100
		s.TrustScore = trust.Calculate(*m)
		s.LastSeenAt = time.Now()

		return nil
	})
}

func (svc *service) recordError(ctx context.Context, serverID string) error {
	return svc.repo.Mutate(ctx, serverID, func(s *federation.Server, m *federation.TrustMetrics) error {
		m.TotalRequests++
		m.TotalErrors++
		m.SuccessRate = float64(m.TotalRequests-m.TotalErrors) / float64(m.TotalRequests) * 100
		s.TrustScore = trust.Calculate(*m)

		return nil
	})
}

func failure(msg string, start time.Time) federation.ToolCallResponse {
	return failureAt(msg, time.Since(start))
}

func failureAt(msg string, elapsed time.Duration) federation.ToolCallResponse {
	return federation.ToolCallResponse{
		Error:      msg,
		DurationMs: elapsed.Milliseconds(),
	}
}
