// Package transport defines the Intercept Transport capability: open a
// bidirectional stream to the node's HTLC interceptor endpoint, receive
// intercept requests, and send back resolutions. Intercept Engine depends
// only on this interface; internal/transport/lnd supplies the real gRPC
// adapter and internal/transport/faketransport backs unit tests.
package transport

import "context"

// Action is the outcome communicated back to the node for one intercept
// request. Only Resume and Fail are ever emitted; Settle exists because the
// node's wire protocol defines it, but nothing in this engine sends it.
type Action int

const (
	ActionResume Action = iota
	ActionFail
	ActionSettle
)

func (a Action) String() string {
	switch a {
	case ActionResume:
		return "resume"
	case ActionFail:
		return "fail"
	case ActionSettle:
		return "settle"
	default:
		return "unknown"
	}
}

// FailureCode is the wire failure code sent with a Fail resolution.
// TemporaryChannelFailure is kept as a package-level var, not a const, so an
// operator-built fork can override the observed default without touching
// call sites.
type FailureCode uint16

// TemporaryChannelFailure is the failure code this engine emits on every
// policy refusal. The node interprets it as transient, which preserves
// routing gossip hygiene for what is actually a permanent policy decision.
var TemporaryChannelFailure FailureCode = 0x1007

// CircuitKey identifies one HTLC on one channel, as carried by the node's
// interceptor wire messages.
type CircuitKey struct {
	ChanID uint64
	HtlcID uint64
}

// InterceptRequest is one inbound message from the node.
type InterceptRequest struct {
	IncomingCircuitKey CircuitKey
	OutgoingCircuitKey CircuitKey
	IncomingChannelID  uint64
	OutgoingChannelID  uint64
	IncomingHTLCIndex  uint64
	OutgoingHTLCIndex  uint64
	AmountMsat         uint64
}

// Resolution is one outbound message to the node, keyed by the circuit key
// of the request it answers.
type Resolution struct {
	IncomingCircuitKey CircuitKey
	Action             Action
	FailureCode        FailureCode
}

// Stream is one open bidirectional intercept session. Recv blocks until a
// request arrives, the stream ends, or ctx is done. Send and Recv are each
// called from a single goroutine; a Stream need not be safe for concurrent
// Recv or concurrent Send, but a concurrent Send-while-Recv-blocks pair
// must be safe (matching the node's RPC stream semantics).
type Stream interface {
	Recv(ctx context.Context) (InterceptRequest, error)
	Send(ctx context.Context, res Resolution) error
	Close() error
}

// Transport opens new Stream instances against the node's interceptor
// endpoint. A real adapter (internal/transport/lnd) dials the node's gRPC
// endpoint per Open call; Intercept Engine calls Open again after a Stream
// ends, with backoff between attempts.
type Transport interface {
	Open(ctx context.Context) (Stream, error)
}
