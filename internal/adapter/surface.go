// Package adapter is the Control API's transport-surface registry: the
// name -> Surface map Supervisor uses to expose Controller over HTTP and,
// optionally, a Unix socket.
package adapter

import "context"

// Surface is one way the Control API is exposed to callers. Serve blocks
// until ctx is done or a fatal error occurs; Close releases the
// underlying listener.
type Surface interface {
	Name() string
	Serve(ctx context.Context) error
	Close() error
}
