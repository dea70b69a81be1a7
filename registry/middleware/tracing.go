package middleware

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/registry"
)

var _ registry.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    registry.Service
}

func Tracing(tracer trace.Tracer, svc registry.Service) registry.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) Register(ctx context.Context, s federation.Server) (federation.Server, error) {
	ctx, span := tm.tracer.Start(ctx, "register-server", trace.WithAttributes(
		attribute.String("name", s.Name),
		attribute.String("endpoint", s.Endpoint),
	))
	defer span.End()

	return tm.svc.Register(ctx, s)
}

func (tm *tracing) Get(ctx context.Context, id string) (federation.Server, error) {
	ctx, span := tm.tracer.Start(ctx, "get-server", trace.WithAttributes(
		attribute.String("id", id),
	))
	defer span.End()

	return tm.svc.Get(ctx, id)
}

func (tm *tracing) List(ctx context.Context, f registry.ListFilter) ([]federation.Server, error) {
	ctx, span := tm.tracer.Start(ctx, "list-servers", trace.WithAttributes(
		attribute.Int("min_trust", f.MinTrust),
		attribute.String("category", f.Category),
	))
	defer span.End()

	return tm.svc.List(ctx, f)
}

func (tm *tracing) SearchTools(ctx context.Context, query string, f registry.SearchFilter) ([]federation.ToolMatch, error) {
	ctx, span := tm.tracer.Start(ctx, "search-tools", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	return tm.svc.SearchTools(ctx, query, f)
}

func (tm *tracing) CallTool(ctx context.Context, req federation.ToolCallRequest) (federation.ToolCallResponse, error) {
	ctx, span := tm.tracer.Start(ctx, "call-tool", trace.WithAttributes(
		attribute.String("server_id", req.ServerID),
		attribute.String("tool", req.Tool),
	))
	defer span.End()

	return tm.svc.CallTool(ctx, req)
}

func (tm *tracing) CallToolAuto(ctx context.Context, tool string, params map[string]any, minTrust int) (federation.ToolCallResponse, error) {
	ctx, span := tm.tracer.Start(ctx, "call-tool-auto", trace.WithAttributes(
		attribute.String("tool", tool),
		attribute.Int("min_trust", minTrust),
	))
	defer span.End()

	return tm.svc.CallToolAuto(ctx, tool, params, minTrust)
}

func (tm *tracing) Report(ctx context.Context, serverID, reason string) error {
	ctx, span := tm.tracer.Start(ctx, "report-server", trace.WithAttributes(
		attribute.String("server_id", serverID),
	))
	defer span.End()

	return tm.svc.Report(ctx, serverID, reason)
}

func (tm *tracing) VerifyOwner(ctx context.Context, serverID, signature string) (bool, error) {
	ctx, span := tm.tracer.Start(ctx, "verify-owner", trace.WithAttributes(
		attribute.String("server_id", serverID),
	))
	defer span.End()

	return tm.svc.VerifyOwner(ctx, serverID, signature)
}

func (tm *tracing) Stats(ctx context.Context) (federation.NetworkStats, error) {
	ctx, span := tm.tracer.Start(ctx, "stats")
	defer span.End()

	return tm.svc.Stats(ctx)
}

func (tm *tracing) Info(ctx context.Context) (federation.Server, error) {
	ctx, span := tm.tracer.Start(ctx, "info")
	defer span.End()

	return tm.svc.Info(ctx)
}

func (tm *tracing) Bootstrap(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "bootstrap")
	defer span.End()

	return tm.svc.Bootstrap(ctx)
}

func (tm *tracing) GossipRound(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "gossip-round")
	defer span.End()

	return tm.svc.GossipRound(ctx)
}

func (tm *tracing) HandleGossip(ctx context.Context, req federation.GossipRequest) (federation.GossipReply, error) {
	ctx, span := tm.tracer.Start(ctx, "handle-gossip", trace.WithAttributes(
		attribute.String("sender_id", req.SenderID),
	))
	defer span.End()

	return tm.svc.HandleGossip(ctx, req)
}

func (tm *tracing) HandleMessage(ctx context.Context, msg federation.DiscoveryMessage) error {
	ctx, span := tm.tracer.Start(ctx, "handle-message", trace.WithAttributes(
		attribute.String("type", string(msg.Type)),
	))
	defer span.End()

	return tm.svc.HandleMessage(ctx, msg)
}

func (tm *tracing) HealthRound(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, "health-round")
	defer span.End()

	return tm.svc.HealthRound(ctx)
}
