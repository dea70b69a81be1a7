package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fedmesh/fedmesh/federation"
)

const ctJSON = "application/json"

// PeerClient is the outbound side of the federation wire protocol.
// Every method is bounded by the caller's context; none retries.
type PeerClient interface {
	Ping(ctx context.Context, endpoint string) error
	Info(ctx context.Context, endpoint string) (federation.Server, error)
	Gossip(ctx context.Context, endpoint string, req federation.GossipRequest) (federation.GossipReply, error)
	Message(ctx context.Context, endpoint string, msg federation.DiscoveryMessage) error
	CallTool(ctx context.Context, endpoint, tool string, params map[string]any, apiKey string) (any, error)
}

type peerClient struct {
	client    *http.Client
	networkID string
	callerID  string
}

// NewPeerClient returns an HTTP PeerClient identifying itself with the
// given network and caller ids. Timeouts are context-driven so each
// call site can choose its own bound.
func NewPeerClient(networkID, callerID string) PeerClient {
	return &peerClient{
		client:    &http.Client{},
		networkID: networkID,
		callerID:  callerID,
	}
}

func (pc *peerClient) Ping(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := pc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("health probe returned status %d", resp.StatusCode)
	}

	return nil
}

func (pc *peerClient) Info(ctx context.Context, endpoint string) (federation.Server, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/federation/info", nil)
	if err != nil {
		return federation.Server{}, err
	}

	resp, err := pc.client.Do(req)
	if err != nil {
		return federation.Server{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return federation.Server{}, fmt.Errorf("info fetch returned status %d", resp.StatusCode)
	}

	var s federation.Server
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return federation.Server{}, err
	}

	return s, nil
}

func (pc *peerClient) Gossip(ctx context.Context, endpoint string, greq federation.GossipRequest) (federation.GossipReply, error) {
	body, err := pc.post(ctx, endpoint+"/federation/gossip", greq, "")
	if err != nil {
		return federation.GossipReply{}, err
	}

	var reply federation.GossipReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return federation.GossipReply{}, err
	}

	return reply, nil
}

func (pc *peerClient) Message(ctx context.Context, endpoint string, msg federation.DiscoveryMessage) error {
	_, err := pc.post(ctx, endpoint+"/federation/message", msg, "")

	return err
}

func (pc *peerClient) CallTool(ctx context.Context, endpoint, tool string, params map[string]any, apiKey string) (any, error) {
	if params == nil {
		params = map[string]any{}
	}

	body, err := pc.post(ctx, endpoint+"/tools/"+tool, params, apiKey)
	if err != nil {
		return nil, err
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		// Remote tools are not obliged to answer with JSON.
		return string(body), nil
	}

	return result, nil
}

func (pc *peerClient) post(ctx context.Context, url string, payload any, apiKey string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", ctJSON)
	req.Header.Set("X-Federation-Network", pc.networkID)
	req.Header.Set("X-Federation-Caller", pc.callerID)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("remote returned status %d", resp.StatusCode)
	}

	return body, nil
}
