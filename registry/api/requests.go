package api

import (
	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/errors"
	"github.com/fedmesh/fedmesh/registry"
)

type registerServerReq struct {
	federation.Server `json:",inline"`
}

func (r *registerServerReq) validate() error {
	switch {
	case r.Endpoint == "":
		return errors.ErrMissingEndpoint
	case r.Owner == "":
		return errors.ErrMissingOwner
	case len(r.Tools) == 0:
		return errors.ErrNoTools
	}

	return nil
}

type entityReq struct {
	id string
}

func (e *entityReq) validate() error {
	if e.id == "" {
		return errors.ErrEmptyKey
	}

	return nil
}

type listServersReq struct {
	filter registry.ListFilter
}

func (l *listServersReq) validate() error {
	return nil
}

type searchToolsReq struct {
	query  string
	filter registry.SearchFilter
}

func (s *searchToolsReq) validate() error {
	if s.query == "" {
		return errors.ErrEmptyKey
	}

	return nil
}

type callToolReq struct {
	federation.ToolCallRequest `json:",inline"`
}

func (c *callToolReq) validate() error {
	if c.ServerID == "" || c.Tool == "" {
		return errors.ErrEmptyKey
	}

	return nil
}

type callToolAutoReq struct {
	Tool     string         `json:"tool"`
	Params   map[string]any `json:"params,omitempty"`
	MinTrust int            `json:"min_trust,omitempty"`
}

func (c *callToolAutoReq) validate() error {
	if c.Tool == "" {
		return errors.ErrEmptyKey
	}

	return nil
}

type reportServerReq struct {
	id     string
	Reason string `json:"reason"`
}

func (r *reportServerReq) validate() error {
	if r.id == "" {
		return errors.ErrEmptyKey
	}

	return nil
}

type verifyOwnerReq struct {
	id        string
	Signature string `json:"signature"`
}

func (v *verifyOwnerReq) validate() error {
	if v.id == "" {
		return errors.ErrEmptyKey
	}

	return nil
}

type gossipReq struct {
	federation.GossipRequest `json:",inline"`
}

func (g *gossipReq) validate() error {
	return nil
}

type messageReq struct {
	federation.DiscoveryMessage `json:",inline"`
}

func (m *messageReq) validate() error {
	if m.Type == "" {
		return errors.ErrInvalidData
	}

	return nil
}
