// Package protocol implements the MCP methods the gateway serves on top of JSON-RPC:
// initialize, ping, tools/list and tools/call.
package protocol

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"slack-mcp/internal/jsonrpc"
	"slack-mcp/internal/logging"
	"slack-mcp/internal/session"
	"slack-mcp/internal/tools"
)

const (
	ServerName    = "slack-mcp-server"
	ServerVersion = "0.1.0"

	LatestVersion = "2025-06-18"

	MethodInitialize  = "initialize"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
	notificationScope = "notifications/"
)

// SupportedVersions lists the protocol revisions the server accepts, newest first.
var SupportedVersions = []string{LatestVersion, "2025-03-26", "2024-11-05"}

// Negotiate returns requested if supported, otherwise the latest version.
func Negotiate(requested string) string {
	if slices.Contains(SupportedVersions, requested) {
		return requested
	}
	return LatestVersion
}

// IsInitialize reports whether msg is an initialize request.
func IsInitialize(msg *jsonrpc.Message) bool {
	return msg != nil && msg.IsRequest() && msg.Method == MethodInitialize
}

type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      Implementation  `json:"clientInfo"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type ServerCapabilities struct {
	Tools ToolsCapability `json:"tools"`
}

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

type ListToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// RenderResult converts a tool outcome to its MCP form: one text block holding the
// indented payload or the error message.
func RenderResult(r tools.Result) CallToolResult {
	return CallToolResult{
		Content: []TextContent{{Type: "text", Text: r.Text()}},
		IsError: r.IsError,
	}
}

// Handler answers MCP requests by delegating tool calls to a Dispatcher.
type Handler struct {
	dispatcher *tools.Dispatcher
	log        *slog.Logger
}

func NewHandler(d *tools.Dispatcher, log *slog.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{dispatcher: d, log: log}
}

// Handle processes one inbound message. It returns nil for notifications and client
// responses, which get no reply. sess may be nil for sessionless callers.
func (h *Handler) Handle(ctx context.Context, sess *session.Session, msg *jsonrpc.Message) *jsonrpc.Response {
	if !msg.IsRequest() {
		if msg.IsNotification() && !strings.HasPrefix(msg.Method, notificationScope) {
			h.log.DebugContext(ctx, "rpc.notification.unknown", slog.String("method", msg.Method))
		}
		return nil
	}

	switch msg.Method {
	case MethodInitialize:
		var p InitializeParams
		if len(msg.Params) > 0 {
			if err := json.Unmarshal(msg.Params, &p); err != nil {
				return jsonrpc.NewError(msg.ID, jsonrpc.CodeInvalidParams, "invalid initialize params: "+err.Error())
			}
		}
		version := Negotiate(p.ProtocolVersion)
		if sess != nil {
			sess.SetProtocolVersion(version)
		}
		h.log.InfoContext(ctx, "rpc.initialize",
			slog.String("client", p.ClientInfo.Name),
			slog.String("requested", p.ProtocolVersion),
			slog.String("negotiated", version))
		return h.result(msg.ID, InitializeResult{
			ProtocolVersion: version,
			Capabilities:    ServerCapabilities{Tools: ToolsCapability{}},
			ServerInfo:      Implementation{Name: ServerName, Version: ServerVersion},
		})

	case MethodPing:
		return h.result(msg.ID, struct{}{})

	case MethodToolsList:
		return h.result(msg.ID, ListToolsResult{Tools: h.dispatcher.Catalog().Definitions()})

	case MethodToolsCall:
		var p CallToolParams
		if err := json.Unmarshal(msg.Params, &p); err != nil || p.Name == "" {
			reason := "name is required"
			if err != nil {
				reason = err.Error()
			}
			return jsonrpc.NewError(msg.ID, jsonrpc.CodeInvalidParams, "invalid tools/call params: "+reason)
		}
		res := h.dispatcher.Dispatch(ctx, tools.Request{Name: p.Name, Arguments: p.Arguments})
		return h.result(msg.ID, RenderResult(res))

	default:
		return jsonrpc.NewError(msg.ID, jsonrpc.CodeMethodNotFound, "method not found: "+msg.Method)
	}
}

func (h *Handler) result(id *jsonrpc.ID, v any) *jsonrpc.Response {
	resp, err := jsonrpc.NewResult(id, v)
	if err != nil {
		return jsonrpc.NewError(id, jsonrpc.CodeInternalError, err.Error())
	}
	return resp
}
