package federation

import (
	"encoding/json"
	"time"
)

// Peer is a gossip partner known via bootstrap or gossip. Peers are
// tracked separately from the server registry: a node may know a peer
// it has not yet registered as a full server, and vice versa.
type Peer struct {
	ServerID    string    `json:"server_id"`
	Endpoint    string    `json:"endpoint"`
	LastContact time.Time `json:"last_contact"`
	TrustScore  int       `json:"trust_score"`
}

type MessageType string

const (
	MessageAnnounce MessageType = "announce"
	MessageQuery    MessageType = "query"
	MessageResponse MessageType = "response"
	MessagePing     MessageType = "ping"
	MessagePong     MessageType = "pong"
)

// DiscoveryMessage is the envelope posted to /federation/message.
// Signature is carried on the wire but never verified before acting on
// the payload; inbound announces register whatever the sender claims.
type DiscoveryMessage struct {
	Type      MessageType     `json:"type"`
	SenderID  string          `json:"sender_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

// GossipRequest is the body of POST /federation/gossip.
type GossipRequest struct {
	Type     string    `json:"type"`
	SenderID string    `json:"sender_id"`
	Servers  []Summary `json:"servers"`
}

// GossipReply mirrors the request: the receiving node answers with its
// own server summaries.
type GossipReply struct {
	Servers []Summary `json:"servers"`
}
