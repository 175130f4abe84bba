// Package session tracks live client sessions for the SSE and streamable HTTP
// transports.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Transport names.
const (
	TransportSSE        = "sse"
	TransportStreamable = "streamable"
)

var (
	// ErrNoValidSession is returned when a request names no live session and is not an
	// initialize request.
	ErrNoValidSession = errors.New("no valid session ID provided")
	// ErrNotInitialize is returned when a request without a session id is not an
	// initialize request.
	ErrNotInitialize = errors.New("session id required for non-initialize requests")
	// ErrClosed is returned by Send once the session has ended.
	ErrClosed = errors.New("session closed")
	// ErrStreamAttached is returned when a second stream tries to attach to a session.
	ErrStreamAttached = errors.New("session already has an open stream")
)

// Session is one client connection's state. Outbound messages for the client are
// queued until its stream drains them.
type Session struct {
	ID        string
	Transport string
	Created   time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	streamed bool
	queue    chan []byte
	protocol string
	tasks    conc.WaitGroup
}

func newSession(id, transport string, queueSize int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		Transport: transport,
		Created:   time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		queue:     make(chan []byte, queueSize),
	}
}

// Context is cancelled when the session ends.
func (s *Session) Context() context.Context { return s.ctx }

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

// Outbound yields queued messages for the client's stream.
func (s *Session) Outbound() <-chan []byte { return s.queue }

// Send queues msg for the client's stream. When the queue is full it waits for the
// stream to drain, returning ErrClosed if the session ends first or ctx's error if
// ctx is done first.
func (s *Session) Send(ctx context.Context, msg []byte) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case s.queue <- msg:
		return nil
	case <-s.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go runs fn in the background with the session context. It fails once the session
// has ended so that Wait observes every task started before End.
func (s *Session) Go(fn func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.tasks.Go(func() { fn(s.ctx) })
	return nil
}

// Wait blocks until every task started with Go has returned and reports the first
// panic among them, if any.
func (s *Session) Wait() *panics.Recovered {
	return s.tasks.WaitAndRecover()
}

// AttachStream claims the session's single server-to-client stream. The returned
// release func frees it.
func (s *Session) AttachStream() (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.streamed {
		return nil, ErrStreamAttached
	}
	s.streamed = true
	return func() {
		s.mu.Lock()
		s.streamed = false
		s.mu.Unlock()
	}, nil
}

// SetProtocolVersion records the version negotiated at initialize.
func (s *Session) SetProtocolVersion(v string) {
	s.mu.Lock()
	s.protocol = v
	s.mu.Unlock()
}

func (s *Session) ProtocolVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocol
}

// close cancels the session context; it reports false if already closed.
func (s *Session) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	s.cancel()
	return true
}
