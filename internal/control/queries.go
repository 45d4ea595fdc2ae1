package control

import "github.com/chanisolator/channel-isolator/internal/store"

// Attempts returns attempts for sessionID, most recent first. A
// non-positive limit means unbounded.
func (c *Controller) Attempts(sessionID int64, limit int) ([]store.Attempt, error) {
	return c.store.AttemptsForSession(sessionID, limit)
}

// Stats returns Store-wide counters.
func (c *Controller) Stats() (store.Statistics, error) {
	return c.store.Stats()
}
