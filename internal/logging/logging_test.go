package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestContextGroups(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Format: "json", Level: "debug", Writer: &buf})

	ctx := WithRequest(context.Background(), &RequestData{RequestID: "r1", Method: "POST", Path: "/mcp"})
	ctx = WithSession(ctx, &SessionData{SessionID: "s1", Transport: "streamable"})
	ctx = WithTool(ctx, &ToolData{Name: "slack_post_message"})
	log.With("component", "test").InfoContext(ctx, "tool.call.ok")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "tool.call.ok", rec["msg"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, "r1", rec["req"].(map[string]any)["id"])
	assert.Equal(t, "s1", rec["sess"].(map[string]any)["id"])
	assert.Equal(t, "slack_post_message", rec["tool"].(map[string]any)["name"])
}
