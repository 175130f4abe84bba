package tools

import (
	"context"
	"encoding/json"
	"sync"

	"slack-mcp/internal/slack"
)

// fakeAPI records every call and replies from canned responses keyed by Web API method.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []string
	args      map[string][]any
	responses map[string]string
	errs      map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		args:      map[string][]any{},
		responses: map[string]string{},
		errs:      map[string]error{},
	}
}

func (f *fakeAPI) reply(method, body string) *fakeAPI {
	f.responses[method] = body
	return f
}

func (f *fakeAPI) fail(method string, err error) *fakeAPI {
	f.errs[method] = err
	return f
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) argsOf(method string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.args[method]
}

func (f *fakeAPI) do(method string, args ...any) (slack.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	f.args[method] = args
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	body, ok := f.responses[method]
	if !ok {
		body = `{"ok":true}`
	}
	var res slack.Response
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (f *fakeAPI) AuthTest(ctx context.Context) (slack.Response, error) {
	return f.do("auth.test")
}

func (f *fakeAPI) ListConversations(ctx context.Context, p slack.ListConversationsParams) (slack.Response, error) {
	return f.do("conversations.list", p)
}

func (f *fakeAPI) History(ctx context.Context, channel string, limit int) (slack.Response, error) {
	return f.do("conversations.history", channel, limit)
}

func (f *fakeAPI) Replies(ctx context.Context, channel, threadTS string, limit int) (slack.Response, error) {
	return f.do("conversations.replies", channel, threadTS, limit)
}

func (f *fakeAPI) JoinConversation(ctx context.Context, channel string) (slack.Response, error) {
	return f.do("conversations.join", channel)
}

func (f *fakeAPI) CreateConversation(ctx context.Context, teamID, name string, private bool) (slack.Response, error) {
	return f.do("conversations.create", teamID, name, private)
}

func (f *fakeAPI) RenameConversation(ctx context.Context, channel, name string) (slack.Response, error) {
	return f.do("conversations.rename", channel, name)
}

func (f *fakeAPI) OpenConversation(ctx context.Context, users ...string) (slack.Response, error) {
	return f.do("conversations.open", users)
}

func (f *fakeAPI) PostMessage(ctx context.Context, p slack.PostMessageParams) (slack.Response, error) {
	return f.do("chat.postMessage", p)
}

func (f *fakeAPI) LookupUserByEmail(ctx context.Context, email string) (slack.Response, error) {
	return f.do("users.lookupByEmail", email)
}

func (f *fakeAPI) ListUsers(ctx context.Context, teamID string, limit int) (slack.Response, error) {
	return f.do("users.list", teamID, limit)
}

func (f *fakeAPI) UserProfile(ctx context.Context, user string) (slack.Response, error) {
	return f.do("users.profile.get", user)
}

func (f *fakeAPI) AddReaction(ctx context.Context, item slack.ItemRef, name string) (slack.Response, error) {
	return f.do("reactions.add", item, name)
}

func (f *fakeAPI) RemoveReaction(ctx context.Context, item slack.ItemRef, name string) (slack.Response, error) {
	return f.do("reactions.remove", item, name)
}

func (f *fakeAPI) GetReactions(ctx context.Context, item slack.ItemRef) (slack.Response, error) {
	return f.do("reactions.get", item)
}

func (f *fakeAPI) CreateCanvas(ctx context.Context, title, markdown string) (slack.Response, error) {
	return f.do("canvases.create", title, markdown)
}

func (f *fakeAPI) FileInfo(ctx context.Context, fileID string) (slack.Response, error) {
	return f.do("files.info", fileID)
}

func (f *fakeAPI) EditCanvas(ctx context.Context, canvasID string, changes []slack.CanvasChange) (slack.Response, error) {
	return f.do("canvases.edit", canvasID, changes)
}

func (f *fakeAPI) DeleteCanvas(ctx context.Context, canvasID string) (slack.Response, error) {
	return f.do("canvases.delete", canvasID)
}

func (f *fakeAPI) SetCanvasAccess(ctx context.Context, p slack.CanvasAccessParams) (slack.Response, error) {
	return f.do("canvases.access.set", p)
}

var _ slack.API = (*fakeAPI)(nil)
