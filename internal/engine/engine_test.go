package engine

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/chanisolator/channel-isolator/internal/policy"
	"github.com/chanisolator/channel-isolator/internal/store"
	"github.com/chanisolator/channel-isolator/internal/transport"
	"github.com/chanisolator/channel-isolator/internal/transport/faketransport"
)

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts []store.Attempt
}

func (s *fakeAttemptStore) AppendAttempt(a store.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, a)
}

func (s *fakeAttemptStore) all() []store.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

func newTestIndex(isolatedChannel uint64, allowedIncoming uint64) *policy.Index {
	idx := policy.NewIndex()
	idx.Publish(policy.Build(
		[]policy.SessionSource{{ID: 1, ChannelID: isolatedChannel}},
		[]policy.ExceptionSource{{SessionID: 1, AllowedChannelID: allowedIncoming}},
	))
	return idx
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestEngineResumesExceptionMatch(t *testing.T) {
	idx := newTestIndex(700, 800)
	attStore := &fakeAttemptStore{}

	stream := faketransport.NewStream()
	stream.Push(transport.InterceptRequest{
		IncomingCircuitKey: transport.CircuitKey{ChanID: 800, HtlcID: 1},
		IncomingChannelID:  800,
		OutgoingChannelID:  700,
	})
	tr := faketransport.NewTransport(stream)

	e := New(tr, idx, attStore, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	waitForCondition(t, func() bool { return len(stream.Sent()) >= 1 })
	if stream.Sent()[0].Action != transport.ActionResume {
		t.Fatalf("action = %v, want resume", stream.Sent()[0].Action)
	}

	waitForCondition(t, func() bool { return len(attStore.all()) >= 1 })
	attempt := attStore.all()[0]
	if attempt.Decision != store.DecisionResume || attempt.Reason != store.ReasonExceptionMatch {
		t.Fatalf("attempt = %+v, want resume/exception-match", attempt)
	}

	cancel()
	<-done
}

func TestEngineFailsWithoutException(t *testing.T) {
	idx := policy.NewIndex()
	idx.Publish(policy.Build(
		[]policy.SessionSource{{ID: 1, ChannelID: 700}},
		nil,
	))
	attStore := &fakeAttemptStore{}

	stream := faketransport.NewStream()
	stream.Push(transport.InterceptRequest{
		IncomingCircuitKey: transport.CircuitKey{ChanID: 800, HtlcID: 1},
		IncomingChannelID:  800,
		OutgoingChannelID:  700,
	})
	tr := faketransport.NewTransport(stream)

	e := New(tr, idx, attStore, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	waitForCondition(t, func() bool { return len(stream.Sent()) >= 1 })
	if stream.Sent()[0].Action != transport.ActionFail {
		t.Fatalf("action = %v, want fail", stream.Sent()[0].Action)
	}
	if stream.Sent()[0].FailureCode != transport.TemporaryChannelFailure {
		t.Fatalf("failure code = %v, want TemporaryChannelFailure", stream.Sent()[0].FailureCode)
	}

	cancel()
	<-done
}

func TestEngineSkipsAttemptWhenNotIsolated(t *testing.T) {
	idx := policy.NewIndex() // nothing isolated
	attStore := &fakeAttemptStore{}

	stream := faketransport.NewStream()
	stream.Push(transport.InterceptRequest{
		IncomingChannelID: 800,
		OutgoingChannelID: 900,
	})
	tr := faketransport.NewTransport(stream)

	e := New(tr, idx, attStore, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	waitForCondition(t, func() bool { return len(stream.Sent()) >= 1 })
	if stream.Sent()[0].Action != transport.ActionResume {
		t.Fatalf("action = %v, want resume", stream.Sent()[0].Action)
	}

	time.Sleep(20 * time.Millisecond)
	if len(attStore.all()) != 0 {
		t.Fatalf("expected no attempt recorded for a non-isolated channel, got %d", len(attStore.all()))
	}

	cancel()
	<-done
}

func waitForCondition(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
