package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/fedmesh/fedmesh/federation"
	pkgerrors "github.com/fedmesh/fedmesh/pkg/errors"
)

const gossipFanout = 3

// Bootstrap contacts every configured seed endpoint: the seed is
// registered as a server when unknown, and tracked as a gossip peer
// either way. A dead seed never aborts the remaining ones.
func (svc *service) Bootstrap(ctx context.Context) error {
	for _, endpoint := range svc.cfg.BootstrapPeers {
		if _, err := svc.discoverServer(ctx, endpoint); err != nil {
			svc.logger.Warn("failed to discover bootstrap peer",
				slog.String("endpoint", endpoint),
				slog.Any("error", err),
			)
		}

		ictx, cancel := context.WithTimeout(ctx, svc.cfg.ConnectionTimeout)
		info, err := svc.client.Info(ictx, endpoint)
		cancel()
		if err != nil {
			svc.logger.Warn("failed to fetch bootstrap peer info",
				slog.String("endpoint", endpoint),
				slog.Any("error", err),
			)

			continue
		}

		svc.addPeer(federation.Peer{
			ServerID:    info.ID,
			Endpoint:    endpoint,
			LastContact: time.Now(),
			TrustScore:  info.TrustScore,
		})
	}

	return nil
}

// GossipRound exchanges server lists with up to three random peers.
// With no peers known it issues no network calls at all.
func (svc *service) GossipRound(ctx context.Context) error {
	peers := svc.peerSnapshot()
	if len(peers) == 0 {
		return nil
	}

	rand.Shuffle(len(peers), func(i, j int) {
		peers[i], peers[j] = peers[j], peers[i]
	})
	if len(peers) > gossipFanout {
		peers = peers[:gossipFanout]
	}

	for _, p := range peers {
		if err := svc.exchangeServerList(ctx, p); err != nil {
			svc.logger.Debug("gossip exchange failed",
				slog.String("peer_id", p.ServerID),
				slog.String("endpoint", p.Endpoint),
				slog.Any("error", err),
			)
		}
	}

	return nil
}

func (svc *service) exchangeServerList(ctx context.Context, p federation.Peer) error {
	servers, err := svc.repo.List(ctx)
	if err != nil {
		return err
	}

	req := federation.GossipRequest{
		Type:     "exchange",
		SenderID: svc.self.ID,
		Servers:  make([]federation.Summary, 0, len(servers)),
	}
	for _, s := range servers {
		req.Servers = append(req.Servers, s.Summary())
	}

	gctx, cancel := context.WithTimeout(ctx, svc.cfg.ConnectionTimeout)
	defer cancel()

	reply, err := svc.client.Gossip(gctx, p.Endpoint, req)
	if err != nil {
		return err
	}

	for _, remote := range reply.Servers {
		if remote.ID == svc.self.ID {
			continue
		}
		if _, err := svc.repo.Get(ctx, remote.ID); err == nil {
			continue
		}

		if _, err := svc.discoverServer(ctx, remote.Endpoint); err != nil {
			svc.logger.Debug("failed to discover gossiped server",
				slog.String("server_id", remote.ID),
				slog.String("endpoint", remote.Endpoint),
				slog.Any("error", err),
			)
		}
	}

	p.LastContact = time.Now()
	svc.addPeer(p)

	return nil
}

// discoverServer fetches a peer's own descriptor and registers it when
// unknown. Registration runs the usual validation and health probe.
func (svc *service) discoverServer(ctx context.Context, endpoint string) (federation.Server, error) {
	ictx, cancel := context.WithTimeout(ctx, svc.cfg.ConnectionTimeout)
	defer cancel()

	info, err := svc.client.Info(ictx, endpoint)
	if err != nil {
		return federation.Server{}, err
	}

	if existing, err := svc.repo.Get(ctx, info.ID); err == nil {
		return existing, nil
	}

	return svc.Register(ctx, info)
}

func (svc *service) HandleGossip(ctx context.Context, req federation.GossipRequest) (federation.GossipReply, error) {
	servers, err := svc.repo.List(ctx)
	if err != nil {
		return federation.GossipReply{}, err
	}

	reply := federation.GossipReply{
		Servers: make([]federation.Summary, 0, len(servers)),
	}
	for _, s := range servers {
		reply.Servers = append(reply.Servers, s.Summary())
	}

	return reply, nil
}

// HandleMessage dispatches one inbound discovery message. Announce
// payloads are registered exactly as received: the signature field is
// carried on the wire but never checked, so a peer's claim is trusted
// on first contact.
func (svc *service) HandleMessage(ctx context.Context, msg federation.DiscoveryMessage) error {
	switch msg.Type {
	case federation.MessageAnnounce:
		var s federation.Server
		if err := json.Unmarshal(msg.Payload, &s); err != nil {
			return errors.Join(pkgerrors.ErrInvalidData, err)
		}

		if _, err := svc.repo.Get(ctx, s.ID); err == nil {
			return nil
		}

		_, err := svc.Register(ctx, s)

		return err
	case federation.MessagePing, federation.MessagePong, federation.MessageQuery, federation.MessageResponse:
		svc.logger.Debug("ignoring discovery message",
			slog.String("type", string(msg.Type)),
			slog.String("sender_id", msg.SenderID),
		)

		return nil
	default:
		return fmt.Errorf("%w: unknown message type %q", pkgerrors.ErrInvalidData, msg.Type)
	}
}

// announce broadcasts a freshly registered server to every known peer.
// Strictly best effort.
func (svc *service) announce(ctx context.Context, s federation.Server) {
	payload, err := json.Marshal(s)
	if err != nil {
		svc.logger.Warn("failed to encode announce payload", slog.Any("error", err))

		return
	}

	msg := federation.DiscoveryMessage{
		Type:      federation.MessageAnnounce,
		SenderID:  svc.self.ID,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	for _, p := range svc.peerSnapshot() {
		mctx, cancel := context.WithTimeout(ctx, svc.cfg.ConnectionTimeout)
		err := svc.client.Message(mctx, p.Endpoint, msg)
		cancel()
		if err != nil {
			svc.logger.Debug("failed to announce server to peer",
				slog.String("peer_id", p.ServerID),
				slog.Any("error", err),
			)
		}
	}
}

func (svc *service) addPeer(p federation.Peer) {
	if p.ServerID == "" || p.ServerID == svc.self.ID {
		return
	}

	svc.pmu.Lock()
	defer svc.pmu.Unlock()

	if _, known := svc.peers[p.ServerID]; !known && len(svc.peers) >= svc.cfg.MaxPeers {
		svc.logger.Debug("peer table full, dropping peer",
			slog.String("peer_id", p.ServerID),
		)

		return
	}

	svc.peers[p.ServerID] = p
}

func (svc *service) peerSnapshot() []federation.Peer {
	svc.pmu.Lock()
	defer svc.pmu.Unlock()

	peers := make([]federation.Peer, 0, len(svc.peers))
	for _, p := range svc.peers {
		peers = append(peers, p)
	}

	return peers
}

func (svc *service) peerCount() int {
	svc.pmu.Lock()
	defer svc.pmu.Unlock()

	return len(svc.peers)
}
