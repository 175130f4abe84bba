package tools

import (
	"context"
	"fmt"

	"slack-mcp/internal/slack"
)

var canvasOperations = map[string]bool{
	"insert_at_end":   true,
	"insert_at_start": true,
	"insert_after":    true,
	"insert_before":   true,
	"replace":         true,
}

type createCanvasArgs struct {
	Title    string `json:"title" jsonschema:"required" jsonschema_description:"Canvas title"`
	Markdown string `json:"markdown" jsonschema:"required" jsonschema_description:"Canvas body as markdown"`
}

func createCanvas(ctx context.Context, env Env, a createCanvasArgs) (any, error) {
	return fullResponse(env.API.CreateCanvas(ctx, a.Title, a.Markdown))
}

type canvasArgs struct {
	CanvasID string `json:"canvas_id" jsonschema:"required" jsonschema_description:"The ID of the canvas"`
}

func readCanvas(ctx context.Context, env Env, a canvasArgs) (any, error) {
	return fullResponse(env.API.FileInfo(ctx, a.CanvasID))
}

func deleteCanvas(ctx context.Context, env Env, a canvasArgs) (any, error) {
	return fullResponse(env.API.DeleteCanvas(ctx, a.CanvasID))
}

type editCanvasArgs struct {
	CanvasID  string `json:"canvas_id" jsonschema:"required" jsonschema_description:"The ID of the canvas"`
	Markdown  string `json:"markdown" jsonschema:"required" jsonschema_description:"Markdown content to apply"`
	Operation string `json:"operation,omitempty" jsonschema:"default=insert_at_end,enum=insert_at_end,enum=insert_at_start,enum=insert_after,enum=insert_before,enum=replace" jsonschema_description:"Edit operation"`
	SectionID string `json:"section_id,omitempty" jsonschema_description:"Target section for insert_after, insert_before and replace"`
}

func editCanvas(ctx context.Context, env Env, a editCanvasArgs) (any, error) {
	op := a.Operation
	if op == "" {
		op = "insert_at_end"
	}
	if !canvasOperations[op] {
		return nil, &ArgumentError{Reason: fmt.Sprintf("unsupported operation %q", op)}
	}
	if (op == "insert_after" || op == "insert_before") && a.SectionID == "" {
		return nil, &ArgumentError{Reason: op + " requires section_id"}
	}
	change := slack.CanvasChange{
		Operation:       op,
		SectionID:       a.SectionID,
		DocumentContent: &slack.DocumentContent{Type: "markdown", Markdown: a.Markdown},
	}
	return fullResponse(env.API.EditCanvas(ctx, a.CanvasID, []slack.CanvasChange{change}))
}

type canvasAccessArgs struct {
	CanvasID    string   `json:"canvas_id" jsonschema:"required" jsonschema_description:"The ID of the canvas"`
	AccessLevel string   `json:"access_level" jsonschema:"required,enum=read,enum=write" jsonschema_description:"Access level to grant"`
	UserIDs     []string `json:"user_ids,omitempty" jsonschema_description:"Users to grant access to"`
	ChannelIDs  []string `json:"channel_ids,omitempty" jsonschema_description:"Channels to grant access to"`
}

func setCanvasAccess(ctx context.Context, env Env, a canvasAccessArgs) (any, error) {
	if len(a.UserIDs) == 0 && len(a.ChannelIDs) == 0 {
		return nil, &ArgumentError{Reason: "one of user_ids or channel_ids is required"}
	}
	return fullResponse(env.API.SetCanvasAccess(ctx, slack.CanvasAccessParams{
		CanvasID:    a.CanvasID,
		AccessLevel: a.AccessLevel,
		UserIDs:     a.UserIDs,
		ChannelIDs:  a.ChannelIDs,
	}))
}
