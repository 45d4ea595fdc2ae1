// Package faketransport is a test-only substitute for
// internal/transport.Transport, letting engine tests drive intercept
// requests and assert on resolutions without a real node.
package faketransport

import (
	"context"
	"errors"
	"sync"

	"github.com/chanisolator/channel-isolator/internal/transport"
)

// ErrClosed is returned from Recv once the stream has been closed.
var ErrClosed = errors.New("faketransport: stream closed")

const pendingBuffer = 4096

// Transport hands out a fixed sequence of Streams, one per Open call. Tests
// typically construct one Stream, push requests onto it, and call Open
// once; a nil entry in Streams causes the corresponding Open to fail,
// letting tests exercise Engine's reconnect/backoff path.
type Transport struct {
	mu      sync.Mutex
	Streams []*Stream
	opened  int
}

// NewTransport builds a Transport that yields streams in order.
func NewTransport(streams ...*Stream) *Transport {
	return &Transport{Streams: streams}
}

func (t *Transport) Open(ctx context.Context) (transport.Stream, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opened >= len(t.Streams) {
		return nil, errors.New("faketransport: no more streams configured")
	}
	s := t.Streams[t.opened]
	t.opened++
	if s == nil {
		return nil, errors.New("faketransport: configured Open failure")
	}
	return s, nil
}

// Stream is a single fake intercept session. Push queues a request for
// Recv to return; Sent records every resolution handed to Send in arrival
// order so tests can assert on ordering.
type Stream struct {
	pending chan transport.InterceptRequest
	closed  chan struct{}
	once    sync.Once

	mu   sync.Mutex
	sent []transport.Resolution
}

// NewStream builds an empty Stream.
func NewStream() *Stream {
	return &Stream{
		pending: make(chan transport.InterceptRequest, pendingBuffer),
		closed:  make(chan struct{}),
	}
}

// Push enqueues req for a future Recv call. Blocks if the internal buffer
// is full, which no realistic test should hit.
func (s *Stream) Push(req transport.InterceptRequest) {
	s.pending <- req
}

func (s *Stream) Recv(ctx context.Context) (transport.InterceptRequest, error) {
	select {
	case req := <-s.pending:
		return req, nil
	case <-s.closed:
		return transport.InterceptRequest{}, ErrClosed
	case <-ctx.Done():
		return transport.InterceptRequest{}, ctx.Err()
	}
}

func (s *Stream) Send(ctx context.Context, res transport.Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, res)
	return nil
}

// Sent returns a snapshot copy of every resolution sent so far.
func (s *Stream) Sent() []transport.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transport.Resolution, len(s.sent))
	copy(out, s.sent)
	return out
}

// Close marks the stream closed, waking any blocked Recv with ErrClosed.
// Safe to call more than once.
func (s *Stream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}
