package tools

import (
	"context"

	"slack-mcp/internal/slack"
)

const (
	defaultChannelLimit = 100
	maxListLimit        = 200
)

type listChannelsArgs struct {
	Limit *int `json:"limit,omitempty" jsonschema:"default=100,minimum=1,maximum=200" jsonschema_description:"Maximum number of channels"`
}

func listChannels(ctx context.Context, env Env, a listChannelsArgs) (any, error) {
	res, err := env.API.ListConversations(ctx, slack.ListConversationsParams{
		TeamID: env.TeamID,
		Types:  "public_channel",
		Limit:  clampLimit(a.Limit, defaultChannelLimit, maxListLimit),
	})
	if err != nil {
		return nil, err
	}
	return res.Field("channels"), nil
}

type channelArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"Channel ID"`
}

func joinChannel(ctx context.Context, env Env, a channelArgs) (any, error) {
	return fullResponse(env.API.JoinConversation(ctx, a.ChannelID))
}

type createChannelArgs struct {
	Name      string `json:"name" jsonschema:"required" jsonschema_description:"Channel name (lowercase, no spaces)"`
	IsPrivate bool   `json:"is_private,omitempty" jsonschema:"default=false" jsonschema_description:"Create a private channel"`
}

func createChannel(ctx context.Context, env Env, a createChannelArgs) (any, error) {
	return fullResponse(env.API.CreateConversation(ctx, env.TeamID, a.Name, a.IsPrivate))
}

type renameChannelArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"Channel ID"`
	Name      string `json:"name" jsonschema:"required" jsonschema_description:"New channel name"`
}

func renameChannel(ctx context.Context, env Env, a renameChannelArgs) (any, error) {
	return fullResponse(env.API.RenameConversation(ctx, a.ChannelID, a.Name))
}

type listDMsArgs struct {
	Limit *int `json:"limit,omitempty" jsonschema:"default=100,minimum=1,maximum=200" jsonschema_description:"Maximum number of conversations"`
}

func listDMs(ctx context.Context, env Env, a listDMsArgs) (any, error) {
	res, err := env.API.ListConversations(ctx, slack.ListConversationsParams{
		TeamID: env.TeamID,
		Types:  "im",
		Limit:  clampLimit(a.Limit, defaultChannelLimit, maxListLimit),
	})
	if err != nil {
		return nil, err
	}
	return res.Field("channels"), nil
}

// fullResponse passes a whole Web API reply through unchanged.
func fullResponse(res slack.Response, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return res, nil
}
