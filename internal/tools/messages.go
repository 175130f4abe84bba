package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"slack-mcp/internal/slack"
)

const (
	defaultHistoryLimit  = 10
	defaultRepliesLimit  = 50
	defaultMentionsLimit = 50
)

type postMessageArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"The ID of the channel to post to"`
	Text      string `json:"text" jsonschema:"required" jsonschema_description:"The message text to post"`
}

func postMessage(ctx context.Context, env Env, a postMessageArgs) (any, error) {
	return fullResponse(env.API.PostMessage(ctx, slack.PostMessageParams{Channel: a.ChannelID, Text: a.Text}))
}

type replyToThreadArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"The ID of the channel containing the thread"`
	ThreadTS  string `json:"thread_ts" jsonschema:"required" jsonschema_description:"Timestamp of the parent message"`
	Text      string `json:"text" jsonschema:"required" jsonschema_description:"The reply text"`
}

func replyToThread(ctx context.Context, env Env, a replyToThreadArgs) (any, error) {
	return fullResponse(env.API.PostMessage(ctx, slack.PostMessageParams{
		Channel:  a.ChannelID,
		Text:     a.Text,
		ThreadTS: a.ThreadTS,
	}))
}

type channelHistoryArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"The ID of the channel"`
	Limit     *int   `json:"limit,omitempty" jsonschema:"default=10,minimum=1,maximum=200" jsonschema_description:"Number of messages to retrieve"`
}

func channelHistory(ctx context.Context, env Env, a channelHistoryArgs) (any, error) {
	res, err := env.API.History(ctx, a.ChannelID, clampLimit(a.Limit, defaultHistoryLimit, maxListLimit))
	if err != nil {
		return nil, err
	}
	return res.Field("messages"), nil
}

type threadRepliesArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"The ID of the channel containing the thread"`
	ThreadTS  string `json:"thread_ts" jsonschema:"required" jsonschema_description:"Timestamp of the parent message"`
	Limit     *int   `json:"limit,omitempty" jsonschema:"default=50,minimum=1,maximum=200" jsonschema_description:"Number of replies to retrieve"`
}

func threadReplies(ctx context.Context, env Env, a threadRepliesArgs) (any, error) {
	res, err := env.API.Replies(ctx, a.ChannelID, a.ThreadTS, clampLimit(a.Limit, defaultRepliesLimit, maxListLimit))
	if err != nil {
		return nil, err
	}
	return res.Field("messages"), nil
}

type userArgs struct {
	UserID string `json:"user_id" jsonschema:"required" jsonschema_description:"The ID of the user"`
}

func openDM(ctx context.Context, env Env, a userArgs) (any, error) {
	return fullResponse(env.API.OpenConversation(ctx, a.UserID))
}

// dmChannel opens (or reuses) the direct message channel with user and returns its id.
func dmChannel(ctx context.Context, api slack.API, user string) (string, error) {
	res, err := api.OpenConversation(ctx, user)
	if err != nil {
		return "", err
	}
	var ch struct {
		ID string `json:"id"`
	}
	if err := res.Decode("channel", &ch); err != nil {
		return "", err
	}
	if ch.ID == "" {
		return "", errors.New("conversations.open returned no channel id")
	}
	return ch.ID, nil
}

type sendDMArgs struct {
	UserID string `json:"user_id" jsonschema:"required" jsonschema_description:"The ID of the user to message"`
	Text   string `json:"text" jsonschema:"required" jsonschema_description:"The message text"`
}

func sendDM(ctx context.Context, env Env, a sendDMArgs) (any, error) {
	channel, err := dmChannel(ctx, env.API, a.UserID)
	if err != nil {
		return nil, err
	}
	return fullResponse(env.API.PostMessage(ctx, slack.PostMessageParams{Channel: channel, Text: a.Text}))
}

type dmHistoryArgs struct {
	UserID string `json:"user_id" jsonschema:"required" jsonschema_description:"The ID of the other user in the conversation"`
	Limit  *int   `json:"limit,omitempty" jsonschema:"default=10,minimum=1,maximum=200" jsonschema_description:"Number of messages to retrieve"`
}

func dmHistory(ctx context.Context, env Env, a dmHistoryArgs) (any, error) {
	channel, err := dmChannel(ctx, env.API, a.UserID)
	if err != nil {
		return nil, err
	}
	res, err := env.API.History(ctx, channel, clampLimit(a.Limit, defaultHistoryLimit, maxListLimit))
	if err != nil {
		return nil, err
	}
	return res.Field("messages"), nil
}

type mentionsArgs struct {
	ChannelID string `json:"channel_id" jsonschema:"required" jsonschema_description:"The ID of the channel to scan"`
	Limit     *int   `json:"limit,omitempty" jsonschema:"default=50,minimum=1,maximum=200" jsonschema_description:"Number of recent messages to scan"`
}

// mentionsUser reports whether text carries <@id> or <@id|label>.
func mentionsUser(text, id string) bool {
	return strings.Contains(text, "<@"+id+">") || strings.Contains(text, "<@"+id+"|")
}

// mentions returns the scanned messages whose text mentions the token's own user.
func mentions(ctx context.Context, env Env, a mentionsArgs) (any, error) {
	who, err := env.API.AuthTest(ctx)
	if err != nil {
		return nil, err
	}
	var self string
	if err := who.Decode("user_id", &self); err != nil {
		return nil, err
	}
	if self == "" {
		return nil, errors.New("auth.test returned no user_id")
	}
	res, err := env.API.History(ctx, a.ChannelID, clampLimit(a.Limit, defaultMentionsLimit, maxListLimit))
	if err != nil {
		return nil, err
	}
	var msgs []json.RawMessage
	if err := res.Decode("messages", &msgs); err != nil {
		return nil, err
	}
	out := []json.RawMessage{}
	for _, raw := range msgs {
		var m struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(raw, &m) == nil && mentionsUser(m.Text, self) {
			out = append(out, raw)
		}
	}
	return out, nil
}
