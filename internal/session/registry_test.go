package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slack-mcp/internal/metrics"
)

func begin(t *testing.T, r *Registry) *Session {
	t.Helper()
	s, err := r.Begin(context.Background(), BeginRequest{Initialize: true, Transport: TransportStreamable}, nil)
	require.NoError(t, err)
	return s
}

func TestBeginIssuesNewSession(t *testing.T) {
	r := NewRegistry()
	a := begin(t, r)
	b := begin(t, r)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, r.Len())

	got, ok := r.Resolve(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestBeginResolvesExisting(t *testing.T) {
	r := NewRegistry()
	a := begin(t, r)

	got, err := r.Begin(context.Background(), BeginRequest{SessionID: a.ID}, func(*Session) error {
		t.Fatal("open must not run for an existing session")
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, 1, r.Len())
}

func TestBeginRejectsUnknownID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Begin(context.Background(), BeginRequest{SessionID: "forged", Initialize: true}, nil)
	assert.ErrorIs(t, err, ErrNoValidSession)
	assert.Equal(t, 0, r.Len())
}

func TestBeginRequiresInitialize(t *testing.T) {
	r := NewRegistry()
	_, err := r.Begin(context.Background(), BeginRequest{Transport: TransportStreamable}, nil)
	assert.ErrorIs(t, err, ErrNoValidSession)
	assert.ErrorIs(t, err, ErrNotInitialize)
	assert.Equal(t, 0, r.Len())
}

func TestFailedOpenLeavesNoEntry(t *testing.T) {
	r := NewRegistry()
	var opened *Session
	_, err := r.Begin(context.Background(), BeginRequest{Initialize: true}, func(s *Session) error {
		opened = s
		assert.Equal(t, 0, r.Len())
		return errors.New("write failed")
	})
	assert.EqualError(t, err, "write failed")
	assert.Equal(t, 0, r.Len())
	require.NotNil(t, opened)
	_, ok := r.Resolve(opened.ID)
	assert.False(t, ok)
	assert.Error(t, opened.Context().Err())
}

func TestEndIsIdempotent(t *testing.T) {
	r := NewRegistry()
	s := begin(t, r)

	assert.True(t, r.End(s.ID))
	assert.False(t, r.End(s.ID))
	assert.False(t, r.End("never-existed"))
	assert.Equal(t, 0, r.Len())

	select {
	case <-s.Done():
	default:
		t.Fatal("session context not cancelled")
	}
	assert.ErrorIs(t, s.Send(context.Background(), []byte("x")), ErrClosed)

	_, err := r.Begin(context.Background(), BeginRequest{SessionID: s.ID}, nil)
	assert.ErrorIs(t, err, ErrNoValidSession)
}

func TestSendQueue(t *testing.T) {
	r := NewRegistry(WithQueueSize(2))
	s := begin(t, r)

	ctx := context.Background()
	require.NoError(t, s.Send(ctx, []byte("a")))
	require.NoError(t, s.Send(ctx, []byte("b")))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Send(short, []byte("c")), context.DeadlineExceeded)

	sent := make(chan error, 1)
	go func() { sent <- s.Send(ctx, []byte("c")) }()
	assert.Equal(t, []byte("a"), <-s.Outbound())
	require.NoError(t, <-sent)
	assert.Equal(t, []byte("b"), <-s.Outbound())
	assert.Equal(t, []byte("c"), <-s.Outbound())
}

func TestSendUnblocksOnEnd(t *testing.T) {
	r := NewRegistry(WithQueueSize(1))
	s := begin(t, r)
	require.NoError(t, s.Send(context.Background(), []byte("a")))

	sent := make(chan error, 1)
	go func() { sent <- s.Send(context.Background(), []byte("b")) }()
	time.Sleep(10 * time.Millisecond)
	require.True(t, r.End(s.ID))

	select {
	case err := <-sent:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Send still blocked after End")
	}
}

func TestDuplicateGeneratedID(t *testing.T) {
	r := NewRegistry(WithIDGenerator(func() string { return "same" }))
	begin(t, r)
	_, err := r.Begin(context.Background(), BeginRequest{Initialize: true}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestClose(t *testing.T) {
	m := metrics.New()
	r := NewRegistry(WithMetrics(m))
	a := begin(t, r)
	begin(t, r)
	r.Close()

	assert.Equal(t, 0, r.Len())
	assert.Error(t, a.Context().Err())
}

func TestConcurrentBeginEnd(t *testing.T) {
	n := 0
	var mu sync.Mutex
	r := NewRegistry(WithIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("s-%d", n)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := r.Begin(context.Background(), BeginRequest{Initialize: true, Transport: TransportSSE}, nil)
			if err != nil {
				t.Error(err)
				return
			}
			r.Resolve(s.ID)
			r.End(s.ID)
			r.End(s.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}

func TestProtocolVersion(t *testing.T) {
	s := begin(t, NewRegistry())
	s.SetProtocolVersion("2025-03-26")
	assert.Equal(t, "2025-03-26", s.ProtocolVersion())
}

func TestSessionTasks(t *testing.T) {
	r := NewRegistry()
	s := begin(t, r)

	started := make(chan struct{})
	require.NoError(t, s.Go(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	}))
	<-started
	r.End(s.ID)
	assert.Nil(t, s.Wait())
	assert.ErrorIs(t, s.Go(func(context.Context) {}), ErrClosed)
}

func TestSessionTaskPanic(t *testing.T) {
	s := begin(t, NewRegistry())
	require.NoError(t, s.Go(func(context.Context) { panic("bad") }))
	rec := s.Wait()
	require.NotNil(t, rec)
	assert.Equal(t, "bad", rec.Value)
}

func TestAttachStream(t *testing.T) {
	r := NewRegistry()
	s := begin(t, r)

	release, err := s.AttachStream()
	require.NoError(t, err)
	_, err = s.AttachStream()
	assert.ErrorIs(t, err, ErrStreamAttached)

	release()
	release, err = s.AttachStream()
	require.NoError(t, err)
	release()

	r.End(s.ID)
	_, err = s.AttachStream()
	assert.ErrorIs(t, err, ErrClosed)
}
