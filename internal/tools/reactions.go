package tools

import (
	"context"
	"strings"

	"slack-mcp/internal/slack"
)

type reactionArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"The ID of the channel containing the message"`
	Timestamp string `json:"timestamp" jsonschema:"required" jsonschema_description:"Timestamp of the message"`
	Reaction  string `json:"reaction" jsonschema:"required" jsonschema_description:"Emoji name without colons"`
}

func (a reactionArgs) item() slack.ItemRef {
	return slack.ItemRef{Channel: a.ChannelID, Timestamp: a.Timestamp}
}

// emojiName accepts ":thumbsup:" as well as "thumbsup".
func (a reactionArgs) emojiName() string {
	return strings.Trim(a.Reaction, ":")
}

func addReaction(ctx context.Context, env Env, a reactionArgs) (any, error) {
	return fullResponse(env.API.AddReaction(ctx, a.item(), a.emojiName()))
}

func removeReaction(ctx context.Context, env Env, a reactionArgs) (any, error) {
	return fullResponse(env.API.RemoveReaction(ctx, a.item(), a.emojiName()))
}

type messageRefArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"The ID of the channel containing the message"`
	Timestamp string `json:"timestamp" jsonschema:"required" jsonschema_description:"Timestamp of the message"`
}

func getReactions(ctx context.Context, env Env, a messageRefArgs) (any, error) {
	return fullResponse(env.API.GetReactions(ctx, slack.ItemRef{Channel: a.ChannelID, Timestamp: a.Timestamp}))
}
