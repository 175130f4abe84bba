package protocol

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-mcp/internal/config"
	"slack-mcp/internal/jsonrpc"
	"slack-mcp/internal/session"
	"slack-mcp/internal/slack"
	"slack-mcp/internal/tools"
)

func newHandler(creds config.Credentials) *Handler {
	d := tools.NewDispatcher(tools.DefaultCatalog(), config.Static(creds), func(token string) slack.API {
		return slack.New("http://127.0.0.1:1", token, nil)
	})
	return NewHandler(d, nil)
}

func parse(t *testing.T, s string) *jsonrpc.Message {
	t.Helper()
	m, err := jsonrpc.Parse([]byte(s))
	require.NoError(t, err)
	return m
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, "2025-03-26", Negotiate("2025-03-26"))
	assert.Equal(t, "2024-11-05", Negotiate("2024-11-05"))
	assert.Equal(t, LatestVersion, Negotiate("1999-01-01"))
	assert.Equal(t, LatestVersion, Negotiate(""))
}

func TestInitialize(t *testing.T) {
	s, err := session.NewRegistry().Begin(context.Background(), session.BeginRequest{Initialize: true}, nil)
	require.NoError(t, err)

	msg := parse(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`)
	require.True(t, IsInitialize(msg))

	resp := newHandler(config.Credentials{}).Handle(context.Background(), s, msg)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	var got InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &got))
	assert.Equal(t, "2025-03-26", got.ProtocolVersion)
	assert.Equal(t, Implementation{Name: "slack-mcp-server", Version: "0.1.0"}, got.ServerInfo)
	assert.Equal(t, "2025-03-26", s.ProtocolVersion())
	assert.JSONEq(t, `{"listChanged":false}`, mustJSON(t, got.Capabilities.Tools))
}

func TestPingAndList(t *testing.T) {
	h := newHandler(config.Credentials{})

	resp := h.Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","id":"p","method":"ping"}`))
	require.NotNil(t, resp)
	assert.JSONEq(t, `{}`, string(resp.Result))

	resp = h.Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	require.NotNil(t, resp)
	var list ListToolsResult
	require.NoError(t, json.Unmarshal(resp.Result, &list))
	assert.Len(t, list.Tools, 24)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	h := newHandler(config.Credentials{})
	assert.Nil(t, h.Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	assert.Nil(t, h.Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","method":"something/else"}`)))
	assert.Nil(t, h.Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","id":9,"result":{}}`)))
}

func TestToolsCall(t *testing.T) {
	h := newHandler(config.Credentials{})

	resp := h.Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"slack_list_channels","arguments":{}}}`))
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	var res CallToolResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.True(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Equal(t, "Error: Missing SLACK_BOT_TOKEN env var", res.Content[0].Text)

	resp = h.Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`))
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: Unknown tool: nope", res.Content[0].Text)
}

func TestToolsCallBadParams(t *testing.T) {
	h := newHandler(config.Credentials{})
	for _, body := range []string{
		`{"jsonrpc":"2.0","id":5,"method":"tools/call"}`,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"arguments":{}}}`,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":7}}`,
	} {
		resp := h.Handle(context.Background(), nil, parse(t, body))
		require.NotNil(t, resp, body)
		require.NotNil(t, resp.Error, body)
		assert.Equal(t, jsonrpc.CodeInvalidParams, resp.Error.Code, body)
	}
}

func TestUnknownMethod(t *testing.T) {
	resp := newHandler(config.Credentials{}).Handle(context.Background(), nil, parse(t, `{"jsonrpc":"2.0","id":6,"method":"resources/list"}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.CodeMethodNotFound, resp.Error.Code)
}

func TestRenderResult(t *testing.T) {
	r := RenderResult(tools.Success(json.RawMessage(`{"ok":true}`)))
	assert.False(t, r.IsError)
	assert.Equal(t, "{\n  \"ok\": true\n}", r.Content[0].Text)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"{\n  \"ok\": true\n}"}]}`, mustJSON(t, r))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
