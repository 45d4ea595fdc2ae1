package store

import "sync/atomic"

// counter is a monotonically increasing, concurrency-safe counter used for
// best-effort diagnostics (e.g. dropped attempt rows) that must never
// require a lock on the decision path.
type counter struct {
	n atomic.Int64
}

func (c *counter) Add(delta int64) { c.n.Add(delta) }

func (c *counter) Load() int64 { return c.n.Load() }
