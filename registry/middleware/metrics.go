package middleware

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/registry"
)

var _ registry.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     registry.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc registry.Service) registry.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) instrument(method string) func() {
	begin := time.Now()

	return func() {
		mm.counter.With("method", method).Add(1)
		mm.latency.With("method", method).Observe(time.Since(begin).Seconds())
	}
}

func (mm *metricsMiddleware) Register(ctx context.Context, s federation.Server) (federation.Server, error) {
	defer mm.instrument("register-server")()

	return mm.svc.Register(ctx, s)
}

func (mm *metricsMiddleware) Get(ctx context.Context, id string) (federation.Server, error) {
	defer mm.instrument("get-server")()

	return mm.svc.Get(ctx, id)
}

func (mm *metricsMiddleware) List(ctx context.Context, f registry.ListFilter) ([]federation.Server, error) {
	defer mm.instrument("list-servers")()

	return mm.svc.List(ctx, f)
}

func (mm *metricsMiddleware) SearchTools(ctx context.Context, query string, f registry.SearchFilter) ([]federation.ToolMatch, error) {
	defer mm.instrument("search-tools")()

	return mm.svc.SearchTools(ctx, query, f)
}

func (mm *metricsMiddleware) CallTool(ctx context.Context, req federation.ToolCallRequest) (federation.ToolCallResponse, error) {
	defer mm.instrument("call-tool")()

	return mm.svc.CallTool(ctx, req)
}

func (mm *metricsMiddleware) CallToolAuto(ctx context.Context, tool string, params map[string]any, minTrust int) (federation.ToolCallResponse, error) {
	defer mm.instrument("call-tool-auto")()

	return mm.svc.CallToolAuto(ctx, tool, params, minTrust)
}

func (mm *metricsMiddleware) Report(ctx context.Context, serverID, reason string) error {
	defer mm.instrument("report-server")()

	return mm.svc.Report(ctx, serverID, reason)
}

func (mm *metricsMiddleware) VerifyOwner(ctx context.Context, serverID, signature string) (bool, error) {
	defer mm.instrument("verify-owner")()

	return mm.svc.VerifyOwner(ctx, serverID, signature)
}

func (mm *metricsMiddleware) Stats(ctx context.Context) (federation.NetworkStats, error) {
	defer mm.instrument("stats")()

	return mm.svc.Stats(ctx)
}

func (mm *metricsMiddleware) Info(ctx context.Context) (federation.Server, error) {
	defer mm.instrument("info")()

	return mm.svc.Info(ctx)
}

func (mm *metricsMiddleware) Bootstrap(ctx context.Context) error {
	defer mm.instrument("bootstrap")()

	return mm.svc.Bootstrap(ctx)
}

func (mm *metricsMiddleware) GossipRound(ctx context.Context) error {
	defer mm.instrument("gossip-round")()

	return mm.svc.GossipRound(ctx)
}

func (mm *metricsMiddleware) HandleGossip(ctx context.Context, req federation.GossipRequest) (federation.GossipReply, error) {
	defer mm.instrument("handle-gossip")()

	return mm.svc.HandleGossip(ctx, req)
}

func (mm *metricsMiddleware) HandleMessage(ctx context.Context, msg federation.DiscoveryMessage) error {
	defer mm.instrument("handle-message")()

	return mm.svc.HandleMessage(ctx, msg)
}

func (mm *metricsMiddleware) HealthRound(ctx context.Context) error {
	defer mm.instrument("health-round")()

	return mm.svc.HealthRound(ctx)
}
