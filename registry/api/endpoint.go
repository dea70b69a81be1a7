package api

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/fedmesh/fedmesh/pkg/errors"
	"github.com/fedmesh/fedmesh/registry"
)

func registerServerEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(registerServerReq)
		if !ok {
			return registerResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return registerResponse{}, err
		}

		s, err := svc.Register(ctx, req.Server)
		if err != nil {
			return registerResponse{}, err
		}

		return registerResponse{
			Success:  true,
			ServerID: s.ID,
		}, nil
	}
}

func getServerEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return serverResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return serverResponse{}, err
		}

		s, err := svc.Get(ctx, req.id)
		if err != nil {
			return serverResponse{}, err
		}

		return serverResponse{
			Server: s,
		}, nil
	}
}

func listServersEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listServersReq)
		if !ok {
			return listServersResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return listServersResponse{}, err
		}

		servers, err := svc.List(ctx, req.filter)
		if err != nil {
			return listServersResponse{}, err
		}

		return listServersResponse{
			Total:   len(servers),
			Servers: servers,
		}, nil
	}
}

func searchToolsEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(searchToolsReq)
		if !ok {
			return searchToolsResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return searchToolsResponse{}, err
		}

		matches, err := svc.SearchTools(ctx, req.query, req.filter)
		if err != nil {
			return searchToolsResponse{}, err
		}

		return searchToolsResponse{
			Total:   len(matches),
			Matches: matches,
		}, nil
	}
}

func callToolEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(callToolReq)
		if !ok {
			return toolCallResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return toolCallResponse{}, err
		}

		resp, err := svc.CallTool(ctx, req.ToolCallRequest)
		if err != nil {
			return toolCallResponse{}, err
		}

		return toolCallResponse{
			ToolCallResponse: resp,
		}, nil
	}
}

func callToolAutoEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(callToolAutoReq)
		if !ok {
			return toolCallResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return toolCallResponse{}, err
		}

		resp, err := svc.CallToolAuto(ctx, req.Tool, req.Params, req.MinTrust)
		if err != nil {
			return toolCallResponse{}, err
		}

		return toolCallResponse{
			ToolCallResponse: resp,
		}, nil
	}
}

func reportServerEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(reportServerReq)
		if !ok {
			return reportResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return reportResponse{}, err
		}

		if err := svc.Report(ctx, req.id, req.Reason); err != nil {
			return reportResponse{}, err
		}

		return reportResponse{}, nil
	}
}

func verifyOwnerEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(verifyOwnerReq)
		if !ok {
			return verifyResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return verifyResponse{}, err
		}

		verified, err := svc.VerifyOwner(ctx, req.id, req.Signature)
		if err != nil {
			return verifyResponse{}, err
		}

		return verifyResponse{
			Verified: verified,
		}, nil
	}
}

func statsEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return statsResponse{}, err
		}

		return statsResponse{
			NetworkStats: stats,
		}, nil
	}
}

func infoEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		s, err := svc.Info(ctx)
		if err != nil {
			return serverResponse{}, err
		}

		return serverResponse{
			Server: s,
		}, nil
	}
}

func gossipEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(gossipReq)
		if !ok {
			return gossipResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return gossipResponse{}, err
		}

		reply, err := svc.HandleGossip(ctx, req.GossipRequest)
		if err != nil {
			return gossipResponse{}, err
		}

		return gossipResponse{
			GossipReply: reply,
		}, nil
	}
}

func messageEndpoint(svc registry.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(messageReq)
		if !ok {
			return messageResponse{}, errors.ErrInvalidData
		}
		if err := req.validate(); err != nil {
			return messageResponse{}, err
		}

		if err := svc.HandleMessage(ctx, req.DiscoveryMessage); err != nil {
			return messageResponse{}, err
		}

		return messageResponse{}, nil
	}
}
