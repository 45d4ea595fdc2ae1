// Package engine implements the Intercept Engine: the component that owns
// the bidirectional intercept stream, classifies every request against the
// Policy Index, emits resolutions, and records attempts.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/chanisolator/channel-isolator/internal/policy"
	"github.com/chanisolator/channel-isolator/internal/store"
	"github.com/chanisolator/channel-isolator/internal/transport"
)

const (
	drainWindow    = 1 * time.Second
	backoffBase    = 1 * time.Second
	backoffCap     = 60 * time.Second
	backoffJitter  = 20 // percent
	healthyUptime  = 60 * time.Second
	defaultQueueCap = 4096
)

// State is the Intercept Engine's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Classifier is the read surface of the Policy Index that Engine depends
// on. *policy.Index satisfies it.
type Classifier interface {
	Classify(incomingChan, outgoingChan uint64) (sessionID int64, decision policy.Decision, reason policy.Reason)
}

// AttemptStore is the write surface of Store that Engine depends on.
type AttemptStore interface {
	AppendAttempt(a store.Attempt)
}

// Engine owns a single bidirectional intercept stream at a time, opening a
// new one through transport whenever the previous ends, with exponential
// backoff between attempts.
type Engine struct {
	transport transport.Transport
	index     Classifier
	store     AttemptStore
	workers   int
	log       *slog.Logger

	queue *attemptQueue

	state atomic.Int32
}

// New builds an Engine. workers sets the number of background goroutines
// draining the attempt queue into store; it is clamped to at least 1.
func New(t transport.Transport, idx Classifier, st AttemptStore, workers int, log *slog.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		transport: t,
		index:     idx,
		store:     st,
		workers:   workers,
		log:       log,
		queue:     newAttemptQueue(defaultQueueCap),
	}
	e.state.Store(int32(StateIdle))
	return e
}

// DroppedAttempts returns the count of attempt records dropped from the
// engine-side queue due to overflow, distinct from Store's own I/O-error
// drop counter.
func (e *Engine) DroppedAttempts() int64 {
	return e.queue.droppedCount()
}

// State returns the Engine's current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Run drives the Engine until ctx is cancelled, then returns nil. Stream
// failures are never returned; they lead to a reconnect after backoff.
func (e *Engine) Run(ctx context.Context) error {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		e.runAttemptWriters(e.workers)
	}()
	defer func() {
		e.queue.close()
		<-writerDone
		e.setState(StateStopped)
	}()

	backoff := newBackoff()

	for {
		if ctx.Err() != nil {
			return nil
		}
		e.setState(StateIdle)

		streamID := uuid.NewString()
		e.log.Info("opening intercept stream", "stream_id", streamID)

		stream, err := e.transport.Open(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			e.sleepBackoff(ctx, backoff, streamID, err)
			continue
		}

		connectedAt := time.Now()
		streamErr := e.runStream(ctx, stream, streamID)
		_ = stream.Close()

		if ctx.Err() != nil {
			return nil
		}

		if time.Since(connectedAt) > healthyUptime {
			backoff = newBackoff()
		}
		e.setState(StateDraining)
		e.sleepBackoff(ctx, backoff, streamID, streamErr)
	}
}

func (e *Engine) sleepBackoff(ctx context.Context, b retry.Backoff, streamID string, cause error) {
	d, _ := b.Next()
	e.log.Warn("reconnecting after delay", "stream_id", streamID, "error", cause, "delay", d)
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func newBackoff() retry.Backoff {
	b, err := retry.NewExponential(backoffBase)
	if err != nil {
		// backoffBase is a package constant known to be valid; this
		// branch exists only because NewExponential returns an error.
		panic(err)
	}
	b = retry.WithCappedDuration(backoffCap, b)
	b = retry.WithJitterPercent(backoffJitter, b)
	return b
}

// runStream consumes one stream incarnation until it errors or ctx is
// cancelled, in which case it performs a single drain pass before
// returning.
func (e *Engine) runStream(ctx context.Context, stream transport.Stream, streamID string) error {
	e.log.Info("intercept stream open", "stream_id", streamID)
	e.setState(StateStreaming)

	for {
		req, err := stream.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				e.setState(StateDraining)
				e.drain(stream, streamID)
				return nil
			}
			e.log.Warn("intercept stream recv failed", "stream_id", streamID, "error", err)
			return err
		}

		e.handleRequest(ctx, stream, streamID, req)
	}
}

// drain reads remaining requests for up to drainWindow, resolving every
// one with resume so in-flight HTLCs are never black-holed by a supervisor
// stop. At most one drain pass is performed per stream.
func (e *Engine) drain(stream transport.Stream, streamID string) {
	e.log.Info("draining intercept stream", "stream_id", streamID)

	deadline := time.Now().Add(drainWindow)
	drainCtx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	for {
		req, err := stream.Recv(drainCtx)
		if err != nil {
			return
		}
		res := transport.Resolution{
			IncomingCircuitKey: req.IncomingCircuitKey,
			Action:             transport.ActionResume,
		}
		if err := stream.Send(drainCtx, res); err != nil {
			return
		}
	}
}

func (e *Engine) handleRequest(ctx context.Context, stream transport.Stream, streamID string, req transport.InterceptRequest) {
	sessionID, decision, reason := e.index.Classify(req.IncomingChannelID, req.OutgoingChannelID)

	action := transport.ActionResume
	var failureCode transport.FailureCode
	if decision == policy.DecisionFail {
		action = transport.ActionFail
		failureCode = transport.TemporaryChannelFailure
	}

	res := transport.Resolution{
		IncomingCircuitKey: req.IncomingCircuitKey,
		Action:             action,
		FailureCode:        failureCode,
	}
	if err := stream.Send(ctx, res); err != nil {
		e.log.Warn("send resolution failed", "stream_id", streamID, "error", err)
		return
	}

	// Attempts are recorded only against isolated channels, to bound audit
	// volume.
	if reason == policy.ReasonNotIsolated {
		return
	}

	e.queue.push(store.Attempt{
		SessionID:         sessionID,
		ObservedAt:        time.Now().UnixMilli(),
		IncomingChannelID: req.IncomingChannelID,
		OutgoingChannelID: req.OutgoingChannelID,
		AmountMsat:        req.AmountMsat,
		IncomingHTLCIndex: req.IncomingHTLCIndex,
		OutgoingHTLCIndex: req.OutgoingHTLCIndex,
		Decision:          store.Decision(decision),
		Reason:            store.Reason(reason),
	})
}

func (e *Engine) runAttemptWriters(n int) {
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			for {
				a, ok := e.queue.pop()
				if !ok {
					done <- struct{}{}
					return
				}
				e.store.AppendAttempt(a)
			}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
}
