package adapter

import "context"

// DisabledSurface stands in for a Control API surface whose configuration
// was not supplied (no --control-socket flag). Serve returns immediately
// instead of blocking or erroring, so Supervisor can start every
// registered surface the same way regardless of which are actually
// configured.
type DisabledSurface struct {
	name   string
	reason string
}

// NewDisabledSurface creates a disabled stand-in for name, carrying reason
// for the startup log line that explains why the surface is off.
func NewDisabledSurface(name, reason string) *DisabledSurface {
	return &DisabledSurface{name: name, reason: reason}
}

func (d *DisabledSurface) Name() string   { return d.name }
func (d *DisabledSurface) Reason() string { return d.reason }

func (d *DisabledSurface) Serve(ctx context.Context) error { return nil }

func (d *DisabledSurface) Close() error { return nil }
