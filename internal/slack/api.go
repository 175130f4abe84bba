package slack

import (
	"context"
	"net/url"
	"strings"
)

// API is the subset of the Web API the gateway consumes. *Client implements it.
type API interface {
	AuthTest(ctx context.Context) (Response, error)

	ListConversations(ctx context.Context, p ListConversationsParams) (Response, error)
	History(ctx context.Context, channel string, limit int) (Response, error)
	Replies(ctx context.Context, channel, threadTS string, limit int) (Response, error)
	JoinConversation(ctx context.Context, channel string) (Response, error)
	CreateConversation(ctx context.Context, teamID, name string, private bool) (Response, error)
	RenameConversation(ctx context.Context, channel, name string) (Response, error)
	OpenConversation(ctx context.Context, users ...string) (Response, error)

	PostMessage(ctx context.Context, p PostMessageParams) (Response, error)

	LookupUserByEmail(ctx context.Context, email string) (Response, error)
	ListUsers(ctx context.Context, teamID string, limit int) (Response, error)
	UserProfile(ctx context.Context, user string) (Response, error)

	AddReaction(ctx context.Context, item ItemRef, name string) (Response, error)
	RemoveReaction(ctx context.Context, item ItemRef, name string) (Response, error)
	GetReactions(ctx context.Context, item ItemRef) (Response, error)

	CreateCanvas(ctx context.Context, title, markdown string) (Response, error)
	FileInfo(ctx context.Context, fileID string) (Response, error)
	EditCanvas(ctx context.Context, canvasID string, changes []CanvasChange) (Response, error)
	DeleteCanvas(ctx context.Context, canvasID string) (Response, error)
	SetCanvasAccess(ctx context.Context, p CanvasAccessParams) (Response, error)
}

var _ API = (*Client)(nil)

// ListConversationsParams filters conversations.list. Types is a comma separated list
// such as "public_channel" or "im".
type ListConversationsParams struct {
	TeamID string
	Types  string
	Limit  int
}

type PostMessageParams struct {
	Channel  string
	Text     string
	ThreadTS string
}

// ItemRef addresses a message for the reactions.* methods.
type ItemRef struct {
	Channel   string
	Timestamp string
}

// DocumentContent is the canvas body format accepted by canvases.create and edit.
type DocumentContent struct {
	Type     string `json:"type"`
	Markdown string `json:"markdown"`
}

// CanvasChange is one entry of the canvases.edit "changes" array.
type CanvasChange struct {
	Operation       string           `json:"operation"`
	SectionID       string           `json:"section_id,omitempty"`
	DocumentContent *DocumentContent `json:"document_content,omitempty"`
}

type CanvasAccessParams struct {
	CanvasID    string
	AccessLevel string
	UserIDs     []string
	ChannelIDs  []string
}

func (c *Client) AuthTest(ctx context.Context) (Response, error) {
	return c.call(ctx, "auth.test", url.Values{})
}

func (c *Client) ListConversations(ctx context.Context, p ListConversationsParams) (Response, error) {
	q := url.Values{}
	if p.TeamID != "" {
		q.Set("team_id", p.TeamID)
	}
	if p.Types != "" {
		q.Set("types", p.Types)
	}
	setInt(q, "limit", p.Limit)
	return c.call(ctx, "conversations.list", q)
}

func (c *Client) History(ctx context.Context, channel string, limit int) (Response, error) {
	q := url.Values{"channel": {channel}}
	setInt(q, "limit", limit)
	return c.call(ctx, "conversations.history", q)
}

func (c *Client) Replies(ctx context.Context, channel, threadTS string, limit int) (Response, error) {
	q := url.Values{"channel": {channel}, "ts": {threadTS}}
	setInt(q, "limit", limit)
	return c.call(ctx, "conversations.replies", q)
}

func (c *Client) JoinConversation(ctx context.Context, channel string) (Response, error) {
	return c.call(ctx, "conversations.join", url.Values{"channel": {channel}})
}

func (c *Client) CreateConversation(ctx context.Context, teamID, name string, private bool) (Response, error) {
	q := url.Values{"name": {name}}
	if teamID != "" {
		q.Set("team_id", teamID)
	}
	if private {
		q.Set("is_private", "true")
	}
	return c.call(ctx, "conversations.create", q)
}

func (c *Client) RenameConversation(ctx context.Context, channel, name string) (Response, error) {
	return c.call(ctx, "conversations.rename", url.Values{"channel": {channel}, "name": {name}})
}

func (c *Client) OpenConversation(ctx context.Context, users ...string) (Response, error) {
	return c.call(ctx, "conversations.open", url.Values{"users": {strings.Join(users, ",")}})
}

func (c *Client) PostMessage(ctx context.Context, p PostMessageParams) (Response, error) {
	q := url.Values{"channel": {p.Channel}, "text": {p.Text}}
	if p.ThreadTS != "" {
		q.Set("thread_ts", p.ThreadTS)
	}
	return c.call(ctx, "chat.postMessage", q)
}

func (c *Client) LookupUserByEmail(ctx context.Context, email string) (Response, error) {
	return c.call(ctx, "users.lookupByEmail", url.Values{"email": {email}})
}

func (c *Client) ListUsers(ctx context.Context, teamID string, limit int) (Response, error) {
	q := url.Values{}
	if teamID != "" {
		q.Set("team_id", teamID)
	}
	setInt(q, "limit", limit)
	return c.call(ctx, "users.list", q)
}

func (c *Client) UserProfile(ctx context.Context, user string) (Response, error) {
	return c.call(ctx, "users.profile.get", url.Values{"user": {user}, "include_labels": {"true"}})
}

func (c *Client) AddReaction(ctx context.Context, item ItemRef, name string) (Response, error) {
	return c.call(ctx, "reactions.add", url.Values{"channel": {item.Channel}, "timestamp": {item.Timestamp}, "name": {name}})
}

func (c *Client) RemoveReaction(ctx context.Context, item ItemRef, name string) (Response, error) {
	return c.call(ctx, "reactions.remove", url.Values{"channel": {item.Channel}, "timestamp": {item.Timestamp}, "name": {name}})
}

func (c *Client) GetReactions(ctx context.Context, item ItemRef) (Response, error) {
	return c.call(ctx, "reactions.get", url.Values{"channel": {item.Channel}, "timestamp": {item.Timestamp}, "full": {"true"}})
}

func (c *Client) CreateCanvas(ctx context.Context, title, markdown string) (Response, error) {
	doc, err := encodeJSON(DocumentContent{Type: "markdown", Markdown: markdown})
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "canvases.create", url.Values{"title": {title}, "document_content": {doc}})
}

func (c *Client) FileInfo(ctx context.Context, fileID string) (Response, error) {
	return c.call(ctx, "files.info", url.Values{"file": {fileID}})
}

func (c *Client) EditCanvas(ctx context.Context, canvasID string, changes []CanvasChange) (Response, error) {
	enc, err := encodeJSON(changes)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "canvases.edit", url.Values{"canvas_id": {canvasID}, "changes": {enc}})
}

func (c *Client) DeleteCanvas(ctx context.Context, canvasID string) (Response, error) {
	return c.call(ctx, "canvases.delete", url.Values{"canvas_id": {canvasID}})
}

func (c *Client) SetCanvasAccess(ctx context.Context, p CanvasAccessParams) (Response, error) {
	q := url.Values{"canvas_id": {p.CanvasID}, "access_level": {p.AccessLevel}}
	if len(p.UserIDs) > 0 {
		enc, err := encodeJSON(p.UserIDs)
		if err != nil {
			return nil, err
		}
		q.Set("user_ids", enc)
	}
	if len(p.ChannelIDs) > 0 {
		enc, err := encodeJSON(p.ChannelIDs)
		if err != nil {
			return nil, err
		}
		q.Set("channel_ids", enc)
	}
	return c.call(ctx, "canvases.access.set", q)
}
