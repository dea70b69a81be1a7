package api

import (
	"net/http"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/api"
)

var (
	_ api.Response = (*registerResponse)(nil)
	_ api.Response = (*serverResponse)(nil)
	_ api.Response = (*listServersResponse)(nil)
	_ api.Response = (*searchToolsResponse)(nil)
	_ api.Response = (*toolCallResponse)(nil)
	_ api.Response = (*reportResponse)(nil)
	_ api.Response = (*verifyResponse)(nil)
	_ api.Response = (*statsResponse)(nil)
	_ api.Response = (*gossipResponse)(nil)
	_ api.Response = (*messageResponse)(nil)
)

type registerResponse struct {
	Success  bool   `json:"success"`
	ServerID string `json:"server_id"`
}

func (r registerResponse) Code() int {
	return http.StatusCreated
}

func (r registerResponse) Headers() map[string]string {
	return map[string]string{
		"Location": "/servers/" + r.ServerID,
	}
}

func (r registerResponse) Empty() bool {
	return false
}

type serverResponse struct {
	federation.Server
}

func (s serverResponse) Code() int {
	return http.StatusOK
}

func (s serverResponse) Headers() map[string]string {
	return map[string]string{}
}

func (s serverResponse) Empty() bool {
	return false
}

type listServersResponse struct {
	Total   int                 `json:"total"`
	Servers []federation.Server `json:"servers"`
}

func (l listServersResponse) Code() int {
	return http.StatusOK
}

func (l listServersResponse) Headers() map[string]string {
	return map[string]string{}
}

func (l listServersResponse) Empty() bool {
	return false
}

type searchToolsResponse struct {
	Total   int                    `json:"total"`
	Matches []federation.ToolMatch `json:"matches"`
}

func (s searchToolsResponse) Code() int {
	return http.StatusOK
}

func (s searchToolsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (s searchToolsResponse) Empty() bool {
	return false
}

type toolCallResponse struct {
	federation.ToolCallResponse
}

func (t toolCallResponse) Code() int {
	return http.StatusOK
}

func (t toolCallResponse) Headers() map[string]string {
	return map[string]string{}
}

func (t toolCallResponse) Empty() bool {
	return false
}

type reportResponse struct{}

func (r reportResponse) Code() int {
	return http.StatusNoContent
}

func (r reportResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r reportResponse) Empty() bool {
	return true
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

func (v verifyResponse) Code() int {
	return http.StatusOK
}

func (v verifyResponse) Headers() map[string]string {
	return map[string]string{}
}

func (v verifyResponse) Empty() bool {
	return false
}

type statsResponse struct {
	federation.NetworkStats
}

func (s statsResponse) Code() int {
	return http.StatusOK
}

func (s statsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (s statsResponse) Empty() bool {
	return false
}

type gossipResponse struct {
	federation.GossipReply
}

func (g gossipResponse) Code() int {
	return http.StatusOK
}

func (g gossipResponse) Headers() map[string]string {
	return map[string]string{}
}

func (g gossipResponse) Empty() bool {
	return false
}

type messageResponse struct{}

func (m messageResponse) Code() int {
	return http.StatusAccepted
}

func (m messageResponse) Headers() map[string]string {
	return map[string]string{}
}

func (m messageResponse) Empty() bool {
	return true
}
