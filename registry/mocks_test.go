package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/fedmesh/fedmesh/federation"
)

// fakePeerClient scripts per-endpoint behaviour and counts outbound
// calls so tests can assert what the node put on the wire.
type fakePeerClient struct {
	mu sync.Mutex

	pingErr    map[string]error
	infoResp   map[string]federation.Server
	gossipResp map[string]federation.GossipReply
	callResp   map[string]any
	callErr    map[string]error

	pings     int
	infos     int
	gossips   int
	messages  int
	toolCalls int
}

func newFakePeerClient() *fakePeerClient {
	return &fakePeerClient{
		pingErr:    make(map[string]error),
		infoResp:   make(map[string]federation.Server),
		gossipResp: make(map[string]federation.GossipReply),
		callResp:   make(map[string]any),
		callErr:    make(map[string]error),
	}
}

func (fc *fakePeerClient) Ping(_ context.Context, endpoint string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.pings++

	return fc.pingErr[endpoint]
}

func (fc *fakePeerClient) Info(_ context.Context, endpoint string) (federation.Server, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.infos++

	if s, ok := fc.infoResp[endpoint]; ok {
		return s, nil
	}

	return federation.Server{}, errors.New("no info for endpoint " + endpoint)
}

func (fc *fakePeerClient) Gossip(_ context.Context, endpoint string, _ federation.GossipRequest) (federation.GossipReply, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.gossips++

	if r, ok := fc.gossipResp[endpoint]; ok {
		return r, nil
	}

	return federation.GossipReply{}, errors.New("gossip unavailable at " + endpoint)
}

func (fc *fakePeerClient) Message(_ context.Context, _ string, _ federation.DiscoveryMessage) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.messages++

	return nil
}

func (fc *fakePeerClient) CallTool(_ context.Context, endpoint, _ string, _ map[string]any, _ string) (any, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.toolCalls++

	if err, ok := fc.callErr[endpoint]; ok && err != nil {
		return nil, err
	}
	if resp, ok := fc.callResp[endpoint]; ok {
		return resp, nil
	}

	return "ok", nil
}

func (fc *fakePeerClient) counts() (pings, infos, gossips, messages, toolCalls int) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	return fc.pings, fc.infos, fc.gossips, fc.messages, fc.toolCalls
}
