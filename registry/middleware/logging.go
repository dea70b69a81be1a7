package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/registry"
)

var _ registry.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    registry.Service
}

func Logging(logger *slog.Logger, svc registry.Service) registry.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) Register(ctx context.Context, s federation.Server) (resp federation.Server, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("server",
				slog.String("name", s.Name),
				slog.String("endpoint", s.Endpoint),
				slog.String("owner", s.Owner),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Register server failed", args...)

			return
		}
		lm.logger.Info("Register server completed successfully", args...)
	}(time.Now())

	return lm.svc.Register(ctx, s)
}

func (lm *loggingMiddleware) Get(ctx context.Context, id string) (resp federation.Server, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("server",
				slog.String("id", id),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get server failed", args...)

			return
		}
		lm.logger.Info("Get server completed successfully", args...)
	}(time.Now())

	return lm.svc.Get(ctx, id)
}

func (lm *loggingMiddleware) List(ctx context.Context, f registry.ListFilter) (resp []federation.Server, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Int("min_trust", f.MinTrust),
			slog.String("category", f.Category),
			slog.Int("limit", f.Limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List servers failed", args...)

			return
		}
		lm.logger.Info("List servers completed successfully", args...)
	}(time.Now())

	return lm.svc.List(ctx, f)
}

func (lm *loggingMiddleware) SearchTools(ctx context.Context, query string, f registry.SearchFilter) (resp []federation.ToolMatch, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("query", query),
			slog.String("category", f.Category),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Search tools failed", args...)

			return
		}
		lm.logger.Info("Search tools completed successfully", args...)
	}(time.Now())

	return lm.svc.SearchTools(ctx, query, f)
}

func (lm *loggingMiddleware) CallTool(ctx context.Context, req federation.ToolCallRequest) (resp federation.ToolCallResponse, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("call",
				slog.String("server_id", req.ServerID),
				slog.String("tool", req.Tool),
				slog.Bool("from_cache", resp.FromCache),
			),
		}
		if err != nil || !resp.Success {
			args = append(args, slog.String("error", resp.Error))
			lm.logger.Warn("Call tool failed", args...)

			return
		}
		lm.logger.Info("Call tool completed successfully", args...)
	}(time.Now())

	return lm.svc.CallTool(ctx, req)
}

func (lm *loggingMiddleware) CallToolAuto(ctx context.Context, tool string, params map[string]any, minTrust int) (resp federation.ToolCallResponse, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("call",
				slog.String("tool", tool),
				slog.Int("min_trust", minTrust),
			),
		}
		if err != nil || !resp.Success {
			args = append(args, slog.String("error", resp.Error))
			lm.logger.Warn("Call tool auto failed", args...)

			return
		}
		lm.logger.Info("Call tool auto completed successfully", args...)
	}(time.Now())

	return lm.svc.CallToolAuto(ctx, tool, params, minTrust)
}

func (lm *loggingMiddleware) Report(ctx context.Context, serverID, reason string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("server",
				slog.String("id", serverID),
			),
			slog.String("reason", reason),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Report server failed", args...)

			return
		}
		lm.logger.Info("Report server completed successfully", args...)
	}(time.Now())

	return lm.svc.Report(ctx, serverID, reason)
}

func (lm *loggingMiddleware) VerifyOwner(ctx context.Context, serverID, signature string) (verified bool, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("server",
				slog.String("id", serverID),
			),
			slog.Bool("verified", verified),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Verify owner failed", args...)

			return
		}
		lm.logger.Info("Verify owner completed successfully", args...)
	}(time.Now())

	return lm.svc.VerifyOwner(ctx, serverID, signature)
}

func (lm *loggingMiddleware) Stats(ctx context.Context) (resp federation.NetworkStats, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get stats failed", args...)

			return
		}
		lm.logger.Info("Get stats completed successfully", args...)
	}(time.Now())

	return lm.svc.Stats(ctx)
}

func (lm *loggingMiddleware) Info(ctx context.Context) (resp federation.Server, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get node info failed", args...)

			return
		}
		lm.logger.Debug("Get node info completed successfully", args...)
	}(time.Now())

	return lm.svc.Info(ctx)
}

func (lm *loggingMiddleware) Bootstrap(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Bootstrap failed", args...)

			return
		}
		lm.logger.Info("Bootstrap completed successfully", args...)
	}(time.Now())

	return lm.svc.Bootstrap(ctx)
}

func (lm *loggingMiddleware) GossipRound(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Gossip round failed", args...)

			return
		}
		lm.logger.Debug("Gossip round completed successfully", args...)
	}(time.Now())

	return lm.svc.GossipRound(ctx)
}

func (lm *loggingMiddleware) HandleGossip(ctx context.Context, req federation.GossipRequest) (resp federation.GossipReply, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("sender_id", req.SenderID),
			slog.Int("servers", len(req.Servers)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Handle gossip failed", args...)

			return
		}
		lm.logger.Debug("Handle gossip completed successfully", args...)
	}(time.Now())

	return lm.svc.HandleGossip(ctx, req)
}

func (lm *loggingMiddleware) HandleMessage(ctx context.Context, msg federation.DiscoveryMessage) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("type", string(msg.Type)),
			slog.String("sender_id", msg.SenderID),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Handle message failed", args...)

			return
		}
		lm.logger.Debug("Handle message completed successfully", args...)
	}(time.Now())

	return lm.svc.HandleMessage(ctx, msg)
}

func (lm *loggingMiddleware) HealthRound(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Health round failed", args...)

			return
		}
		lm.logger.Debug("Health round completed successfully", args...)
	}(time.Now())

	return lm.svc.HealthRound(ctx)
}
