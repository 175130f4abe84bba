package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"slack-mcp/internal/logging"
	"slack-mcp/internal/metrics"
)

const defaultQueueSize = 64

// BeginRequest describes an incoming request that may start a session.
type BeginRequest struct {
	// SessionID is the id the client presented, if any.
	SessionID string
	// Initialize reports whether the request is a protocol initialize request.
	Initialize bool
	Transport  string
}

// Registry maps session ids to live sessions. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	queueSize int
	newID     func() string
	metrics   *metrics.Metrics
	log       *slog.Logger
}

type Option func(*Registry)

func WithQueueSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions:  make(map[string]*Session),
		queueSize: defaultQueueSize,
		newID:     uuid.NewString,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the live session for id.
func (r *Registry) Resolve(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Begin resolves req.SessionID when it is set. Otherwise, for an initialize request
// (or a transport that always opens a session), it creates a session, runs open with
// it and registers it only when open succeeds. open runs outside the registry lock.
func (r *Registry) Begin(ctx context.Context, req BeginRequest, open func(*Session) error) (*Session, error) {
	if req.SessionID != "" {
		if s, ok := r.Resolve(req.SessionID); ok {
			return s, nil
		}
		return nil, ErrNoValidSession
	}
	if !req.Initialize {
		return nil, fmt.Errorf("%w: %w", ErrNoValidSession, ErrNotInitialize)
	}

	s := newSession(r.newID(), req.Transport, r.queueSize)
	if open != nil {
		if err := open(s); err != nil {
			s.close()
			return nil, err
		}
	}

	r.mu.Lock()
	if _, dup := r.sessions[s.ID]; dup {
		r.mu.Unlock()
		s.close()
		return nil, fmt.Errorf("session id %q already registered", s.ID)
	}
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SessionOpened(s.Transport)
	ctx = logging.WithSession(ctx, &logging.SessionData{SessionID: s.ID, Transport: s.Transport})
	r.log.InfoContext(ctx, "session.begin", slog.Int("live", n))
	return s, nil
}

// End removes the session and cancels its context. It is a no-op for unknown or
// already ended ids.
func (r *Registry) End(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok || !s.close() {
		return false
	}
	r.metrics.SessionClosed(s.Transport)
	ctx := logging.WithSession(context.Background(), &logging.SessionData{SessionID: s.ID, Transport: s.Transport})
	r.log.InfoContext(ctx, "session.end", slog.Int("live", n))
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close ends every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.End(id)
	}
}
