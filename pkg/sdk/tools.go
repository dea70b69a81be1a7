package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fedmesh/fedmesh/federation"
)

const toolsEndpoint = "/tools"

type SearchOptions struct {
	Category string
	MinTrust int
	Limit    int
}

type SearchResult struct {
	Total   int                    `json:"total"`
	Matches []federation.ToolMatch `json:"matches"`
}

func (sdk *fedSDK) SearchTools(query string, opts SearchOptions) (SearchResult, error) {
	queries := []string{"q=" + query}
	if opts.Category != "" {
		queries = append(queries, "category="+opts.Category)
	}
	if opts.MinTrust > 0 {
		queries = append(queries, fmt.Sprintf("min_trust=%d", opts.MinTrust))
	}
	if opts.Limit > 0 {
		queries = append(queries, fmt.Sprintf("limit=%d", opts.Limit))
	}

	url := sdk.nodeURL + toolsEndpoint + "/search?" + strings.Join(queries, "&")

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return SearchResult{}, err
	}

	var res SearchResult
	if err := json.Unmarshal(body, &res); err != nil {
		return SearchResult{}, err
	}

	return res, nil
}

func (sdk *fedSDK) CallTool(req federation.ToolCallRequest) (federation.ToolCallResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return federation.ToolCallResponse{}, err
	}

	url := sdk.nodeURL + toolsEndpoint + "/call"

	body, err := sdk.processRequest(http.MethodPost, url, data, http.StatusOK)
	if err != nil {
		return federation.ToolCallResponse{}, err
	}

	var resp federation.ToolCallResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return federation.ToolCallResponse{}, err
	}

	return resp, nil
}

func (sdk *fedSDK) CallToolAuto(tool string, params map[string]any, minTrust int) (federation.ToolCallResponse, error) {
	data, err := json.Marshal(map[string]any{
		"tool":      tool,
		"params":    params,
		"min_trust": minTrust,
	})
	if err != nil {
		return federation.ToolCallResponse{}, err
	}

	url := sdk.nodeURL + toolsEndpoint + "/auto"

	body, err := sdk.processRequest(http.MethodPost, url, data, http.StatusOK)
	if err != nil {
		return federation.ToolCallResponse{}, err
	}

	var resp federation.ToolCallResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return federation.ToolCallResponse{}, err
	}

	return resp, nil
}
