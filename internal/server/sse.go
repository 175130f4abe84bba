package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"slack-mcp/internal/logging"
	"slack-mcp/internal/session"
)

// sessionQueryKeys are the query parameters accepted for the legacy session id, in
// lookup order.
var sessionQueryKeys = []string{"sessionId", "sessionID", "session_id", "session"}

// handleSSEStream serves GET /sse and GET /sse/mcp. Opening the stream is the session's
// initialization: the session is registered once the stream headers are flushed, then
// the client is told where to POST its messages.
func (s *Server) handleSSEStream(postPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sw, ok := newSSEWriter(ctx, w)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		sess, err := s.registry.Begin(ctx, session.BeginRequest{Initialize: true, Transport: session.TransportSSE}, func(*session.Session) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			startEventStream(w)
			sw.Flush()
			return ctx.Err()
		})
		if err != nil {
			s.log.WarnContext(ctx, "session.begin.fail", slog.String("err", err.Error()))
			return
		}
		ctx = logging.WithSession(ctx, &logging.SessionData{SessionID: sess.ID, Transport: sess.Transport})

		release, err := sess.AttachStream()
		if err != nil {
			s.registry.End(sess.ID)
			return
		}
		defer release()

		endpoint := postPath + "?" + url.Values{"sessionId": {sess.ID}}.Encode()
		if err := sw.Event("endpoint", []byte(endpoint)); err != nil {
			s.registry.End(sess.ID)
			s.log.WarnContext(ctx, "sse.endpoint.fail", slog.String("err", err.Error()))
			return
		}
		s.log.InfoContext(ctx, "sse.stream.open", slog.String("endpoint", endpoint))

		s.pump(ctx, sess, sw)
	}
}

func legacySessionID(r *http.Request) string {
	q := r.URL.Query()
	for _, key := range sessionQueryKeys {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return r.Header.Get(mcpSessionIDHeader)
}

// handleSSEMessage serves POST /message and POST /sse/mcp. The message is accepted with
// 202 and handled in the background; its response is pushed onto the session's stream.
func (s *Server) handleSSEMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := legacySessionID(r)
	if sid == "" {
		writeJSONError(w, http.StatusBadRequest, "Bad Request: No valid session ID provided")
		return
	}
	sess, ok := s.registry.Resolve(sid)
	if !ok {
		writeNoSession(w)
		s.log.InfoContext(ctx, "session.resolve.fail", slog.String("session_id", sid))
		return
	}
	ctx = logging.WithSession(ctx, &logging.SessionData{SessionID: sess.ID, Transport: sess.Transport})

	msg, err := readMessage(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		s.log.WarnContext(ctx, "jsonrpc.parse.fail", slog.String("err", err.Error()))
		return
	}

	reqData, _ := logging.RequestFrom(ctx)
	err = sess.Go(func(sctx context.Context) {
		sctx = logging.WithSession(sctx, &logging.SessionData{SessionID: sess.ID, Transport: sess.Transport})
		if reqData != nil {
			sctx = logging.WithRequest(sctx, reqData)
		}
		resp := s.handler.Handle(sctx, sess, msg)
		if resp == nil {
			return
		}
		if sctx.Err() != nil {
			s.log.InfoContext(sctx, "rpc.response.dropped", slog.String("reason", "session ended"))
			return
		}
		body, err := json.Marshal(resp)
		if err != nil {
			s.log.ErrorContext(sctx, "rpc.response.encode.fail", slog.String("err", err.Error()))
			return
		}
		if err := sess.Send(sctx, body); err != nil {
			s.log.WarnContext(sctx, "rpc.response.enqueue.fail", slog.String("err", err.Error()))
		}
	})
	if err != nil {
		writeNoSession(w)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("Accepted"))
}
