// Package control implements the Control API: the serialized mutators and
// queries over isolation sessions, exceptions, and attempts. Controller is
// the single writer to Store; every mutation persists to Store and then
// atomically republishes the Policy Index snapshot as one critical
// section.
package control

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chanisolator/channel-isolator/internal/policy"
	"github.com/chanisolator/channel-isolator/internal/store"
)

const maxAliasBytes = 256

// Clock is injected so tests can control timestamps; production code uses
// RealClock.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual wall-clock time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// Controller is the single writer to Store. Its mutator lock guarantees
// that a Store write and the resulting Policy Index publish happen as one
// atomic step with respect to other writers; readers never take the lock.
type Controller struct {
	store *store.Store
	index *policy.Index
	clock Clock

	mu sync.Mutex
}

// New creates a Controller. The caller is responsible for an initial
// RebuildIndex call (typically done once at Supervisor startup).
func New(s *store.Store, idx *policy.Index) *Controller {
	return &Controller{store: s, index: idx, clock: RealClock{}}
}

// WithClock overrides the clock used for timestamps; intended for tests.
func (c *Controller) WithClock(clock Clock) *Controller {
	c.clock = clock
	return c
}

func (c *Controller) nowMillis() int64 {
	return c.clock.Now().UnixMilli()
}

// RebuildIndex reprojects the Policy Index from Store's current active
// sessions and their exceptions, and publishes it. Called at startup and
// after every mutator under the lock.
func (c *Controller) RebuildIndex() error {
	sessions, err := c.store.ListActiveSessions()
	if err != nil {
		return err
	}
	exceptions, err := c.store.ListExceptionsForActiveSessions()
	if err != nil {
		return err
	}

	sessionSrcs := make([]policy.SessionSource, len(sessions))
	for i, s := range sessions {
		sessionSrcs[i] = policy.SessionSource{ID: s.ID, ChannelID: s.ChannelID}
	}
	exceptionSrcs := make([]policy.ExceptionSource, len(exceptions))
	for i, e := range exceptions {
		exceptionSrcs[i] = policy.ExceptionSource{SessionID: e.SessionID, AllowedChannelID: e.AllowedChannelID}
	}

	c.index.Publish(policy.Build(sessionSrcs, exceptionSrcs))
	return nil
}

func normalizeAlias(alias string) string {
	alias = strings.TrimSpace(alias)
	if len(alias) <= maxAliasBytes {
		return alias
	}
	// Truncate on a rune boundary so we never split a multi-byte
	// character in half: back the cut up until the first dropped byte
	// starts a new character.
	b := []byte(alias)
	cut := maxAliasBytes
	for cut > 0 && !isRuneStart(b[cut]) {
		cut--
	}
	return string(b[:cut])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func badRequest(format string, args ...any) error {
	return &store.Error{Kind: store.KindBadRequest, Err: fmt.Errorf(format, args...)}
}
