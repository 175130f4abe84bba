package logging

import (
	"context"
	"log/slog"
)

// ContextHandler decorates records with the request, session and tool data stored in
// the record's context.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(requestKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("id", rd.RequestID),
			slog.String("method", rd.Method),
			slog.String("path", rd.Path),
			slog.String("remote_addr", rd.RemoteAddr),
		))
	}
	if sd, ok := ctx.Value(sessionKey{}).(*SessionData); ok {
		r.AddAttrs(slog.Group("sess",
			slog.String("id", sd.SessionID),
			slog.String("transport", sd.Transport),
		))
	}
	if td, ok := ctx.Value(toolKey{}).(*ToolData); ok {
		r.AddAttrs(slog.Group("tool", slog.String("name", td.Name)))
	}
	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}

type requestKey struct{}

type RequestData struct {
	RequestID  string
	Method     string
	Path       string
	RemoteAddr string
}

func WithRequest(ctx context.Context, d *RequestData) context.Context {
	return context.WithValue(ctx, requestKey{}, d)
}

// RequestFrom returns the request data attached by WithRequest.
func RequestFrom(ctx context.Context) (*RequestData, bool) {
	d, ok := ctx.Value(requestKey{}).(*RequestData)
	return d, ok
}

type sessionKey struct{}

type SessionData struct {
	SessionID string
	Transport string
}

func WithSession(ctx context.Context, d *SessionData) context.Context {
	return context.WithValue(ctx, sessionKey{}, d)
}

type toolKey struct{}

type ToolData struct {
	Name string
}

func WithTool(ctx context.Context, d *ToolData) context.Context {
	return context.WithValue(ctx, toolKey{}, d)
}
