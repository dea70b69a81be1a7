package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fedmesh/fedmesh/federation"
)

const serversEndpoint = "/servers"

type RegisterResult struct {
	Success  bool   `json:"success"`
	ServerID string `json:"server_id"`
}

type ListOptions struct {
	MinTrust int
	Category string
	HasTools []string
	Limit    int
}

type ServerPage struct {
	Total   int                 `json:"total"`
	Servers []federation.Server `json:"servers"`
}

func (sdk *fedSDK) RegisterServer(s federation.Server) (RegisterResult, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return RegisterResult{}, err
	}

	url := sdk.nodeURL + serversEndpoint

	body, err := sdk.processRequest(http.MethodPost, url, data, http.StatusCreated)
	if err != nil {
		return RegisterResult{}, err
	}

	var res RegisterResult
	if err := json.Unmarshal(body, &res); err != nil {
		return RegisterResult{}, err
	}

	return res, nil
}

func (sdk *fedSDK) GetServer(id string) (federation.Server, error) {
	url := sdk.nodeURL + serversEndpoint + "/" + id

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return federation.Server{}, err
	}

	var s federation.Server
	if err := json.Unmarshal(body, &s); err != nil {
		return federation.Server{}, err
	}

	return s, nil
}

func (sdk *fedSDK) ListServers(opts ListOptions) (ServerPage, error) {
	queries := make([]string, 0)
	if opts.MinTrust > 0 {
		queries = append(queries, fmt.Sprintf("min_trust=%d", opts.MinTrust))
	}
	if opts.Category != "" {
		queries = append(queries, "category="+opts.Category)
	}
	if len(opts.HasTools) > 0 {
		queries = append(queries, "has_tools="+strings.Join(opts.HasTools, ","))
	}
	if opts.Limit > 0 {
		queries = append(queries, fmt.Sprintf("limit=%d", opts.Limit))
	}

	url := sdk.nodeURL + serversEndpoint
	if len(queries) > 0 {
		url += "?" + strings.Join(queries, "&")
	}

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return ServerPage{}, err
	}

	var page ServerPage
	if err := json.Unmarshal(body, &page); err != nil {
		return ServerPage{}, err
	}

	return page, nil
}

func (sdk *fedSDK) ReportServer(id, reason string) error {
	data, err := json.Marshal(map[string]string{"reason": reason})
	if err != nil {
		return err
	}

	url := sdk.nodeURL + serversEndpoint + "/" + id + "/report"

	_, err = sdk.processRequest(http.MethodPost, url, data, http.StatusNoContent)

	return err
}

func (sdk *fedSDK) VerifyOwner(id, signature string) (bool, error) {
	data, err := json.Marshal(map[string]string{"signature": signature})
	if err != nil {
		return false, err
	}

	url := sdk.nodeURL + serversEndpoint + "/" + id + "/verify"

	body, err := sdk.processRequest(http.MethodPost, url, data, http.StatusOK)
	if err != nil {
		return false, err
	}

	var res struct {
		Verified bool `json:"verified"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return false, err
	}

	return res.Verified, nil
}

func (sdk *fedSDK) Stats() (federation.NetworkStats, error) {
	url := sdk.nodeURL + "/stats"

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return federation.NetworkStats{}, err
	}

	var stats federation.NetworkStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return federation.NetworkStats{}, err
	}

	return stats, nil
}
