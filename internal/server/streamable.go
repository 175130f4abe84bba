package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/elnormous/contenttype"

	"slack-mcp/internal/jsonrpc"
	"slack-mcp/internal/logging"
	"slack-mcp/internal/protocol"
	"slack-mcp/internal/session"
)

// readMessage decodes one JSON-RPC message from a POST body.
func readMessage(w http.ResponseWriter, r *http.Request) (*jsonrpc.Message, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return jsonrpc.Parse(body)
}

// handleStreamablePost handles POST /mcp. A request without Mcp-Session-Id must be an
// initialize request; the session is registered only after initialize succeeds.
func (s *Server) handleStreamablePost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		writeJSONError(w, http.StatusUnsupportedMediaType, "content-type must be application/json")
		s.log.WarnContext(ctx, "content_type.unsupported")
		return
	}

	msg, err := readMessage(w, r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		s.log.WarnContext(ctx, "jsonrpc.parse.fail", slog.String("err", err.Error()))
		return
	}

	sid := r.Header.Get(mcpSessionIDHeader)
	if sid == "" {
		s.initializeStreamable(w, r, msg)
		return
	}

	sess, err := s.registry.Begin(ctx, session.BeginRequest{SessionID: sid, Transport: session.TransportStreamable}, nil)
	if err != nil {
		writeNoSession(w)
		s.log.InfoContext(ctx, "session.resolve.fail", slog.String("session_id", sid))
		return
	}
	ctx = logging.WithSession(ctx, &logging.SessionData{SessionID: sess.ID, Transport: sess.Transport})

	if protocol.IsInitialize(msg) {
		writeJSONError(w, http.StatusConflict, "session already initialized")
		s.log.WarnContext(ctx, "initialize.redundant")
		return
	}
	if spv := sess.ProtocolVersion(); spv != "" {
		w.Header().Set(mcpProtocolVersionHeader, spv)
	}

	if !msg.IsRequest() {
		s.handler.Handle(ctx, sess, msg)
		w.WriteHeader(http.StatusAccepted)
		s.log.DebugContext(ctx, "rpc.inbound.accepted", slog.String("kind", msg.Kind()))
		return
	}

	if !accepts(r, jsonMediaTypes) && !accepts(r, streamMediaTypes) {
		writeJSONError(w, http.StatusNotAcceptable, "client must accept application/json or text/event-stream")
		return
	}

	// Calls are abandoned when either the request or the session ends.
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sess.Context(), cancel)
	defer stop()

	resp := s.handler.Handle(callCtx, sess, msg)
	if err := s.writeResponse(w, r, resp); err != nil {
		s.log.WarnContext(ctx, "rpc.response.fail", slog.String("err", err.Error()))
		return
	}
	s.log.InfoContext(ctx, "rpc.request.ok", slog.String("method", msg.Method), slog.Duration("dur", time.Since(start)))
}

func (s *Server) initializeStreamable(w http.ResponseWriter, r *http.Request, msg *jsonrpc.Message) {
	ctx := r.Context()
	if !protocol.IsInitialize(msg) {
		writeJSONError(w, http.StatusBadRequest, "Bad Request: No valid session ID provided")
		s.log.InfoContext(ctx, "session.begin.reject", slog.String("method", msg.Method))
		return
	}

	var resp *jsonrpc.Response
	sess, err := s.registry.Begin(ctx, session.BeginRequest{Initialize: true, Transport: session.TransportStreamable}, func(sess *session.Session) error {
		resp = s.handler.Handle(ctx, sess, msg)
		if resp.Error != nil {
			return resp.Error
		}
		return nil
	})
	if err != nil {
		var rpcErr *jsonrpc.Error
		if errors.As(err, &rpcErr) && resp != nil {
			writeJSON(w, http.StatusBadRequest, resp)
		} else {
			writeJSONError(w, http.StatusInternalServerError, "session setup failed")
		}
		s.log.WarnContext(ctx, "session.begin.fail", slog.String("err", err.Error()))
		return
	}

	ctx = logging.WithSession(ctx, &logging.SessionData{SessionID: sess.ID, Transport: sess.Transport})
	w.Header().Set(mcpSessionIDHeader, sess.ID)
	w.Header().Set(mcpProtocolVersionHeader, sess.ProtocolVersion())
	if err := s.writeResponse(w, r, resp); err != nil {
		s.log.WarnContext(ctx, "rpc.response.fail", slog.String("err", err.Error()))
		return
	}
	s.log.InfoContext(ctx, "session.begin.ok")
}

// writeResponse replies as application/json unless the client accepts only an event
// stream, in which case the response is a single SSE event.
func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, resp *jsonrpc.Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "encode response")
		return err
	}
	if !accepts(r, jsonMediaTypes) && accepts(r, streamMediaTypes) {
		sw, ok := newSSEWriter(r.Context(), w)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return errors.New("response writer cannot flush")
		}
		startEventStream(w)
		return sw.Event("message", body)
	}
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(body)
	return err
}

// handleStreamableGet opens the server-to-client stream for a session. Closing it
// ends the session.
func (s *Server) handleStreamableGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Header.Get("Accept") == "" || !accepts(r, streamMediaTypes) {
		writeJSONError(w, http.StatusNotAcceptable, "client must accept text/event-stream")
		return
	}
	sid := r.Header.Get(mcpSessionIDHeader)
	if sid == "" {
		writeJSONError(w, http.StatusBadRequest, "Bad Request: No valid session ID provided")
		return
	}
	sess, ok := s.registry.Resolve(sid)
	if !ok {
		writeNoSession(w)
		return
	}
	ctx = logging.WithSession(ctx, &logging.SessionData{SessionID: sess.ID, Transport: sess.Transport})

	release, err := sess.AttachStream()
	if err != nil {
		writeJSONError(w, http.StatusConflict, err.Error())
		s.log.WarnContext(ctx, "stream.attach.fail", slog.String("err", err.Error()))
		return
	}
	defer release()

	sw, ok := newSSEWriter(ctx, w)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	if spv := sess.ProtocolVersion(); spv != "" {
		w.Header().Set(mcpProtocolVersionHeader, spv)
	}
	startEventStream(w)
	sw.Flush()
	s.log.InfoContext(ctx, "stream.open")

	s.pump(ctx, sess, sw)
}

// pump drains the session queue onto sw until the client disconnects or the session
// ends. A client disconnect ends the session before pump returns.
func (s *Server) pump(ctx context.Context, sess *session.Session, sw *sseWriter) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.registry.End(sess.ID)
			if rec := sess.Wait(); rec != nil {
				s.log.ErrorContext(ctx, "session.task.panic", slog.String("panic", rec.String()))
			}
			s.log.InfoContext(ctx, "stream.end", slog.String("reason", "disconnect"))
			return
		case <-sess.Done():
			s.log.InfoContext(ctx, "stream.end", slog.String("reason", "session ended"))
			return
		case msg := <-sess.Outbound():
			if err := sw.Event("message", msg); err != nil {
				s.log.WarnContext(ctx, "stream.write.fail", slog.String("err", err.Error()))
			}
		case <-ticker.C:
			_ = sw.Comment("keep-alive")
		}
	}
}

// writeNoSession rejects a request whose session id names no live session.
func writeNoSession(w http.ResponseWriter) {
	writeJSONError(w, http.StatusNotFound, session.ErrNoValidSession.Error())
}

// handleStreamableDelete ends a session at the client's request.
func (s *Server) handleStreamableDelete(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(mcpSessionIDHeader)
	if sid == "" {
		writeJSONError(w, http.StatusBadRequest, "Bad Request: No valid session ID provided")
		return
	}
	if !s.registry.End(sid) {
		writeNoSession(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
