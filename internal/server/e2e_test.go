package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-mcp/internal/config"
)

func TestStreamableWithSDKClient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newTestServer(t, goodCreds)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "1.0.0"}, &sdk.ClientOptions{})
	cs, err := client.Connect(ctx, &sdk.StreamableClientTransport{Endpoint: srv.URL + "/mcp"}, &sdk.ClientSessionOptions{})
	require.NoError(t, err)

	assert.Equal(t, "slack-mcp-server", cs.InitializeResult().ServerInfo.Name)
	assert.Equal(t, 1, s.Registry().Len())

	tools, err := cs.ListTools(ctx, &sdk.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, tools.Tools, 24)
	assert.Equal(t, "slack_list_channels", tools.Tools[0].Name)

	res, err := cs.CallTool(ctx, &sdk.CallToolParams{
		Name:      "slack_post_message",
		Arguments: map[string]any{"channel_id": "C1", "text": "hi"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*sdk.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, postMessageReply, text.Text)

	res, err = cs.CallTool(ctx, &sdk.CallToolParams{Name: "slack_post_message", Arguments: map[string]any{"channel_id": "C1"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: Missing required argument: text", res.Content[0].(*sdk.TextContent).Text)

	_ = cs.Close()
	require.Eventually(t, func() bool { return s.Registry().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSDKClientWithoutCredentials(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newTestServer(t, config.Credentials{})
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "1.0.0"}, &sdk.ClientOptions{})
	cs, err := client.Connect(ctx, &sdk.StreamableClientTransport{Endpoint: srv.URL + "/mcp"}, &sdk.ClientSessionOptions{})
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &sdk.CallToolParams{Name: "slack_list_channels", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: Missing SLACK_BOT_TOKEN env var", res.Content[0].(*sdk.TextContent).Text)
}
