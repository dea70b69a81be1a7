package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedmesh/fedmesh/federation"
)

func TestPeerClientPing(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	require.NoError(t, pc.Ping(context.Background(), ts.URL))
	assert.Equal(t, "/health", path)
}

func TestPeerClientPingFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	assert.Error(t, pc.Ping(context.Background(), ts.URL))
}

func TestPeerClientInfo(t *testing.T) {
	want := validServer("remote")
	want.TrustScore = 64

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/federation/info", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(want))
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	got, err := pc.Info(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.TrustScore, got.TrustScore)
}

func TestPeerClientGossipHeaders(t *testing.T) {
	var gotHeaders http.Header
	var gotReq federation.GossipRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/federation/gossip", r.URL.Path)
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(federation.GossipReply{
			Servers: []federation.Summary{{ID: "theirs", Endpoint: "http://theirs.example.com"}},
		}))
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	reply, err := pc.Gossip(context.Background(), ts.URL, federation.GossipRequest{
		Type:     "exchange",
		SenderID: "caller-1",
		Servers:  []federation.Summary{{ID: "mine"}},
	})
	require.NoError(t, err)
	require.Len(t, reply.Servers, 1)
	assert.Equal(t, "theirs", reply.Servers[0].ID)

	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "testnet", gotHeaders.Get("X-Federation-Network"))
	assert.Equal(t, "caller-1", gotHeaders.Get("X-Federation-Caller"))
	assert.Empty(t, gotHeaders.Get("Authorization"))
	assert.Equal(t, "caller-1", gotReq.SenderID)
}

func TestPeerClientMessage(t *testing.T) {
	var gotMsg federation.DiscoveryMessage

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/federation/message", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMsg))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	err := pc.Message(context.Background(), ts.URL, federation.DiscoveryMessage{
		Type:     federation.MessageAnnounce,
		SenderID: "caller-1",
	})
	require.NoError(t, err)
	assert.Equal(t, federation.MessageAnnounce, gotMsg.Type)
}

func TestPeerClientCallTool(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tools/echo", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "hi", params["msg"])

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"echo": "hi"}))
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	result, err := pc.CallTool(context.Background(), ts.URL, "echo", map[string]any{"msg": "hi"}, "sekrit")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"echo": "hi"}, result)
}

func TestPeerClientCallToolPlainTextFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	result, err := pc.CallTool(context.Background(), ts.URL, "echo", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "not json at all", result)
}

func TestPeerClientCallToolRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	pc := NewPeerClient("testnet", "caller-1")
	_, err := pc.CallTool(context.Background(), ts.URL, "echo", nil, "")
	assert.ErrorContains(t, err, "500")
}

func TestPeerClientHonorsContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	pc := NewPeerClient("testnet", "caller-1")
	assert.Error(t, pc.Ping(ctx, ts.URL))
}
