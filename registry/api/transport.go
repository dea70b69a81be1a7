package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fedmesh/fedmesh/pkg/api"
	"github.com/fedmesh/fedmesh/registry"
)

// MakeHandler exposes both the federation wire protocol peers call and
// the node API the gateway/CLI calls on one router.
func MakeHandler(svc registry.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(api.LoggingErrorEncoder(logger)),
	}

	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", api.ContentType)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":      "ok",
			"instance_id": instanceID,
		})
	})

	mux.Route("/federation", func(r chi.Router) {
		r.Get("/info", otelhttp.NewHandler(kithttp.NewServer(
			infoEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "federation-info").ServeHTTP)
		r.Post("/gossip", otelhttp.NewHandler(kithttp.NewServer(
			gossipEndpoint(svc),
			decodeGossipReq,
			api.EncodeResponse,
			opts...,
		), "federation-gossip").ServeHTTP)
		r.Post("/message", otelhttp.NewHandler(kithttp.NewServer(
			messageEndpoint(svc),
			decodeMessageReq,
			api.EncodeResponse,
			opts...,
		), "federation-message").ServeHTTP)
	})

	mux.Route("/servers", func(r chi.Router) {
		r.Post("/", otelhttp.NewHandler(kithttp.NewServer(
			registerServerEndpoint(svc),
			decodeRegisterServerReq,
			api.EncodeResponse,
			opts...,
		), "register-server").ServeHTTP)
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listServersEndpoint(svc),
			decodeListServersReq,
			api.EncodeResponse,
			opts...,
		), "list-servers").ServeHTTP)
		r.Route("/{serverID}", func(r chi.Router) {
			r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
				getServerEndpoint(svc),
				decodeEntityReq("serverID"),
				api.EncodeResponse,
				opts...,
			), "get-server").ServeHTTP)
			r.Post("/report", otelhttp.NewHandler(kithttp.NewServer(
				reportServerEndpoint(svc),
				decodeReportServerReq,
				api.EncodeResponse,
				opts...,
			), "report-server").ServeHTTP)
			r.Post("/verify", otelhttp.NewHandler(kithttp.NewServer(
				verifyOwnerEndpoint(svc),
				decodeVerifyOwnerReq,
				api.EncodeResponse,
				opts...,
			), "verify-owner").ServeHTTP)
		})
	})

	mux.Route("/tools", func(r chi.Router) {
		r.Get("/search", otelhttp.NewHandler(kithttp.NewServer(
			searchToolsEndpoint(svc),
			decodeSearchToolsReq,
			api.EncodeResponse,
			opts...,
		), "search-tools").ServeHTTP)
		r.Post("/call", otelhttp.NewHandler(kithttp.NewServer(
			callToolEndpoint(svc),
			decodeCallToolReq,
			api.EncodeResponse,
			opts...,
		), "call-tool").ServeHTTP)
		r.Post("/auto", otelhttp.NewHandler(kithttp.NewServer(
			callToolAutoEndpoint(svc),
			decodeCallToolAutoReq,
			api.EncodeResponse,
			opts...,
		), "call-tool-auto").ServeHTTP)
	})

	mux.Get("/stats", otelhttp.NewHandler(kithttp.NewServer(
		statsEndpoint(svc),
		decodeEmptyReq,
		api.EncodeResponse,
		opts...,
	), "stats").ServeHTTP)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeEmptyReq(_ context.Context, _ *http.Request) (any, error) {
	return nil, nil
}

func decodeRegisterServerReq(_ context.Context, r *http.Request) (any, error) {
	var req registerServerReq
	if err := json.NewDecoder(r.Body).Decode(&req.Server); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeEntityReq(key string) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (any, error) {
		return entityReq{
			id: chi.URLParam(r, key),
		}, nil
	}
}

func decodeListServersReq(_ context.Context, r *http.Request) (any, error) {
	req := listServersReq{
		filter: registry.ListFilter{
			MinTrust: queryInt(r, "min_trust"),
			Category: r.URL.Query().Get("category"),
			Limit:    queryInt(r, "limit"),
		},
	}
	if tools := r.URL.Query().Get("has_tools"); tools != "" {
		req.filter.HasTools = strings.Split(tools, ",")
	}

	return req, nil
}

func decodeSearchToolsReq(_ context.Context, r *http.Request) (any, error) {
	return searchToolsReq{
		query: r.URL.Query().Get("q"),
		filter: registry.SearchFilter{
			Category: r.URL.Query().Get("category"),
			MinTrust: queryInt(r, "min_trust"),
			Limit:    queryInt(r, "limit"),
		},
	}, nil
}

func decodeCallToolReq(_ context.Context, r *http.Request) (any, error) {
	var req callToolReq
	if err := json.NewDecoder(r.Body).Decode(&req.ToolCallRequest); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeCallToolAutoReq(_ context.Context, r *http.Request) (any, error) {
	var req callToolAutoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeReportServerReq(_ context.Context, r *http.Request) (any, error) {
	req := reportServerReq{
		id: chi.URLParam(r, "serverID"),
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeVerifyOwnerReq(_ context.Context, r *http.Request) (any, error) {
	req := verifyOwnerReq{
		id: chi.URLParam(r, "serverID"),
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeGossipReq(_ context.Context, r *http.Request) (any, error) {
	var req gossipReq
	if err := json.NewDecoder(r.Body).Decode(&req.GossipRequest); err != nil {
		return nil, err
	}

	return req, nil
}

func decodeMessageReq(_ context.Context, r *http.Request) (any, error) {
	var req messageReq
	if err := json.NewDecoder(r.Body).Decode(&req.DiscoveryMessage); err != nil {
		return nil, err
	}

	return req, nil
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}

	return n
}
