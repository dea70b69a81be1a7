package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/api"
	"github.com/fedmesh/fedmesh/pkg/errors"
	"github.com/fedmesh/fedmesh/registry"
)

// stubService scripts Service behaviour per test via function fields.
// Unset methods fail loudly instead of answering garbage.
type stubService struct {
	register     func(ctx context.Context, s federation.Server) (federation.Server, error)
	get          func(ctx context.Context, id string) (federation.Server, error)
	list         func(ctx context.Context, f registry.ListFilter) ([]federation.Server, error)
	searchTools  func(ctx context.Context, query string, f registry.SearchFilter) ([]federation.ToolMatch, error)
	callTool     func(ctx context.Context, req federation.ToolCallRequest) (federation.ToolCallResponse, error)
	callToolAuto func(ctx context.Context, tool string, params map[string]any, minTrust int) (federation.ToolCallResponse, error)
	report       func(ctx context.Context, serverID, reason string) error
	verifyOwner  func(ctx context.Context, serverID, signature string) (bool, error)
	stats        func(ctx context.Context) (federation.NetworkStats, error)
	info         func(ctx context.Context) (federation.Server, error)
	handleGossip func(ctx context.Context, req federation.GossipRequest) (federation.GossipReply, error)
	handleMsg    func(ctx context.Context, msg federation.DiscoveryMessage) error
}

func (s *stubService) Register(ctx context.Context, srv federation.Server) (federation.Server, error) {
	return s.register(ctx, srv)
}

func (s *stubService) Get(ctx context.Context, id string) (federation.Server, error) {
	return s.get(ctx, id)
}

func (s *stubService) List(ctx context.Context, f registry.ListFilter) ([]federation.Server, error) {
	return s.list(ctx, f)
}

func (s *stubService) SearchTools(ctx context.Context, query string, f registry.SearchFilter) ([]federation.ToolMatch, error) {
	return s.searchTools(ctx, query, f)
}

func (s *stubService) CallTool(ctx context.Context, req federation.ToolCallRequest) (federation.ToolCallResponse, error) {
	return s.callTool(ctx, req)
}

func (s *stubService) CallToolAuto(ctx context.Context, tool string, params map[string]any, minTrust int) (federation.ToolCallResponse, error) {
	return s.callToolAuto(ctx, tool, params, minTrust)
}

func (s *stubService) Report(ctx context.Context, serverID, reason string) error {
	return s.report(ctx, serverID, reason)
}

func (s *stubService) VerifyOwner(ctx context.Context, serverID, signature string) (bool, error) {
	return s.verifyOwner(ctx, serverID, signature)
}

func (s *stubService) Stats(ctx context.Context) (federation.NetworkStats, error) {
	return s.stats(ctx)
}

func (s *stubService) Info(ctx context.Context) (federation.Server, error) {
	return s.info(ctx)
}

func (s *stubService) Bootstrap(context.Context) error {
	return nil
}

func (s *stubService) GossipRound(context.Context) error {
	return nil
}

func (s *stubService) HandleGossip(ctx context.Context, req federation.GossipRequest) (federation.GossipReply, error) {
	return s.handleGossip(ctx, req)
}

func (s *stubService) HandleMessage(ctx context.Context, msg federation.DiscoveryMessage) error {
	return s.handleMsg(ctx, msg)
}

func (s *stubService) HealthRound(context.Context) error {
	return nil
}

func newTestServer(svc registry.Service) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return httptest.NewServer(MakeHandler(svc, logger, "test-instance"))
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, api.ContentType, bytes.NewReader(data))
	require.NoError(t, err)

	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test-instance", body["instance_id"])
}

func TestRegisterServerEndpoint(t *testing.T) {
	svc := &stubService{
		register: func(_ context.Context, s federation.Server) (federation.Server, error) {
			s.ID = "srv-1"

			return s, nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/servers", federation.Server{
		Endpoint: "http://a.example.com",
		Owner:    "owner-a",
		Tools:    []federation.Tool{{Name: "echo"}},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/servers/srv-1", resp.Header.Get("Location"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "srv-1", body["server_id"])
}

func TestRegisterServerValidationStatus(t *testing.T) {
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/servers", federation.Server{Owner: "owner-a"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestRegisterServerUnreachableStatus(t *testing.T) {
	svc := &stubService{
		register: func(context.Context, federation.Server) (federation.Server, error) {
			return federation.Server{}, errors.ErrUnreachable
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/servers", federation.Server{
		Endpoint: "http://a.example.com",
		Owner:    "owner-a",
		Tools:    []federation.Tool{{Name: "echo"}},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListServersDecodesFilters(t *testing.T) {
	var gotFilter registry.ListFilter
	svc := &stubService{
		list: func(_ context.Context, f registry.ListFilter) ([]federation.Server, error) {
			gotFilter = f

			return []federation.Server{{ID: "a"}}, nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/servers?min_trust=50&category=media&has_tools=resize,crop&limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registry.ListFilter{
		MinTrust: 50,
		Category: "media",
		HasTools: []string{"resize", "crop"},
		Limit:    5,
	}, gotFilter)

	var body struct {
		Total   int                 `json:"total"`
		Servers []federation.Server `json:"servers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Total)
}

func TestGetServerNotFound(t *testing.T) {
	svc := &stubService{
		get: func(context.Context, string) (federation.Server, error) {
			return federation.Server{}, errors.ErrNotFound
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/servers/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchToolsRequiresQuery(t *testing.T) {
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tools/search")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchToolsEndpoint(t *testing.T) {
	var gotQuery string
	svc := &stubService{
		searchTools: func(_ context.Context, query string, f registry.SearchFilter) ([]federation.ToolMatch, error) {
			gotQuery = query

			return []federation.ToolMatch{{ServerID: "a", Score: 65}}, nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/tools/search?q=resize")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "resize", gotQuery)
}

func TestCallToolEndpoint(t *testing.T) {
	svc := &stubService{
		callTool: func(_ context.Context, req federation.ToolCallRequest) (federation.ToolCallResponse, error) {
			return federation.ToolCallResponse{Success: true, Result: "pong"}, nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/tools/call", federation.ToolCallRequest{
		ServerID: "a",
		Tool:     "echo",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body federation.ToolCallResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "pong", body.Result)
}

func TestCallToolAutoRequiresTool(t *testing.T) {
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/tools/auto", map[string]any{"params": map[string]any{}})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportServerEndpoint(t *testing.T) {
	var gotID, gotReason string
	svc := &stubService{
		report: func(_ context.Context, serverID, reason string) error {
			gotID, gotReason = serverID, reason

			return nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/servers/srv-1/report", map[string]string{"reason": "spam"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "srv-1", gotID)
	assert.Equal(t, "spam", gotReason)
}

func TestVerifyOwnerEndpoint(t *testing.T) {
	svc := &stubService{
		verifyOwner: func(_ context.Context, serverID, signature string) (bool, error) {
			return signature != "", nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/servers/srv-1/verify", map[string]string{"signature": "sig"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["verified"])
}

func TestFederationInfoEndpoint(t *testing.T) {
	svc := &stubService{
		info: func(context.Context) (federation.Server, error) {
			return federation.Server{ID: "self", TrustScore: 100}, nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/federation/info")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body federation.Server
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "self", body.ID)
}

func TestFederationGossipEndpoint(t *testing.T) {
	svc := &stubService{
		handleGossip: func(_ context.Context, req federation.GossipRequest) (federation.GossipReply, error) {
			return federation.GossipReply{
				Servers: []federation.Summary{{ID: "mine"}},
			}, nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/federation/gossip", federation.GossipRequest{
		Type:     "exchange",
		SenderID: "peer",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body federation.GossipReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Servers, 1)
	assert.Equal(t, "mine", body.Servers[0].ID)
}

func TestFederationMessageEndpoint(t *testing.T) {
	svc := &stubService{
		handleMsg: func(_ context.Context, msg federation.DiscoveryMessage) error {
			return nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/federation/message", federation.DiscoveryMessage{
		Type:     federation.MessagePing,
		SenderID: "peer",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestFederationMessageRequiresType(t *testing.T) {
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/federation/message", map[string]string{"sender_id": "peer"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	svc := &stubService{
		stats: func(context.Context) (federation.NetworkStats, error) {
			return federation.NetworkStats{
				TotalServers: 2,
				TotalTools:   5,
				NetworkID:    "testnet",
			}, nil
		},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body federation.NetworkStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.TotalServers)
	assert.Equal(t, "testnet", body.NetworkID)
}
