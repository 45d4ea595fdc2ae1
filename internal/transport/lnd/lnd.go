// Package lnd adapts internal/transport.Transport to the node's real
// interceptor RPC: routerrpc.Router's HtlcInterceptor, a bidirectional
// stream where the node pushes ForwardHtlcInterceptRequest messages and the
// client answers with ForwardHtlcInterceptResponse messages.
package lnd

import (
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"google.golang.org/grpc"

	"github.com/chanisolator/channel-isolator/internal/transport"
)

// DialOptionsFunc builds the per-call grpc.DialOption slice, typically TLS
// credentials plus a macaroon-bearing PerRPCCredentials from
// internal/credentials.
type DialOptionsFunc func() ([]grpc.DialOption, error)

// Transport dials the node's gRPC endpoint and opens an HtlcInterceptor
// stream on every Open call.
type Transport struct {
	address     string
	dialOptions DialOptionsFunc
}

// New builds a Transport targeting address (host:port of the node's RPC
// listener). dialOptions is invoked fresh on every Open so rotated
// credentials (a reloaded macaroon) take effect on the next reconnect.
func New(address string, dialOptions DialOptionsFunc) *Transport {
	return &Transport{address: address, dialOptions: dialOptions}
}

func (t *Transport) Open(ctx context.Context) (transport.Stream, error) {
	opts, err := t.dialOptions()
	if err != nil {
		return nil, fmt.Errorf("build dial options: %w", err)
	}

	conn, err := grpc.NewClient(t.address, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.address, err)
	}

	client := routerrpc.NewRouterClient(conn)
	stream, err := client.HtlcInterceptor(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open HtlcInterceptor stream: %w", err)
	}

	return &lndStream{conn: conn, stream: stream}, nil
}

type lndStream struct {
	conn   *grpc.ClientConn
	stream routerrpc.Router_HtlcInterceptorClient
}

func (s *lndStream) Recv(ctx context.Context) (transport.InterceptRequest, error) {
	req, err := s.stream.Recv()
	if err != nil {
		return transport.InterceptRequest{}, err
	}
	return fromWire(req), nil
}

func (s *lndStream) Send(ctx context.Context, res transport.Resolution) error {
	return s.stream.Send(toWire(res))
}

func (s *lndStream) Close() error {
	return s.conn.Close()
}

// fromWire maps the node's wire request onto the domain's InterceptRequest.
// OutgoingRequestedChanId is the outgoing channel hint lnd provides at
// interception time, before the HTLC has actually been forwarded; the
// outgoing HTLC index is therefore not yet assigned and is left zero; a
// zero channel id never matches an exception.
func fromWire(req *routerrpc.ForwardHtlcInterceptRequest) transport.InterceptRequest {
	var incoming transport.CircuitKey
	if ck := req.GetIncomingCircuitKey(); ck != nil {
		incoming = transport.CircuitKey{ChanID: ck.GetChanId(), HtlcID: ck.GetHtlcId()}
	}

	return transport.InterceptRequest{
		IncomingCircuitKey: incoming,
		OutgoingCircuitKey: transport.CircuitKey{ChanID: req.GetOutgoingRequestedChanId()},
		IncomingChannelID:  incoming.ChanID,
		OutgoingChannelID:  req.GetOutgoingRequestedChanId(),
		IncomingHTLCIndex:  incoming.HtlcID,
		OutgoingHTLCIndex:  0,
		AmountMsat:         req.GetIncomingAmountMsat(),
	}
}

func toWire(res transport.Resolution) *routerrpc.ForwardHtlcInterceptResponse {
	out := &routerrpc.ForwardHtlcInterceptResponse{
		IncomingCircuitKey: &routerrpc.CircuitKey{
			ChanId: res.IncomingCircuitKey.ChanID,
			HtlcId: res.IncomingCircuitKey.HtlcID,
		},
	}
	switch res.Action {
	case transport.ActionResume:
		out.Action = routerrpc.ResolveHoldForwardAction_RESUME
	case transport.ActionSettle:
		out.Action = routerrpc.ResolveHoldForwardAction_SETTLE
	default:
		out.Action = routerrpc.ResolveHoldForwardAction_FAIL
		out.FailureCode = lndCodes[res.FailureCode]
	}
	return out
}

// lndCodes maps the domain's small FailureCode space onto lnd's generated
// enum. Only TemporaryChannelFailure is ever sent today; the map keeps the
// translation explicit instead of assuming the numeric values line up.
var lndCodes = map[transport.FailureCode]routerrpc.Failure_FailureCode{
	transport.TemporaryChannelFailure: routerrpc.Failure_TEMPORARY_CHANNEL_FAILURE,
}
