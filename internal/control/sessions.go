package control

import "github.com/chanisolator/channel-isolator/internal/store"

// Isolate creates a new active Isolation Session for channelID and
// publishes the updated Policy Index. Fails with KindAlreadyActive if the
// channel already has an active session.
func (c *Controller) Isolate(channelID uint64, alias string) (store.Session, error) {
	alias = normalizeAlias(alias)

	c.mu.Lock()
	defer c.mu.Unlock()

	startedAt := c.nowMillis()
	id, err := c.store.CreateSession(channelID, alias, startedAt)
	if err != nil {
		return store.Session{}, err
	}
	if err := c.RebuildIndex(); err != nil {
		return store.Session{}, err
	}

	return store.Session{ID: id, ChannelID: channelID, Alias: alias, StartedAt: startedAt, Status: store.StatusActive}, nil
}

// Stop ends the active session for channelID and publishes the updated
// Policy Index. Fails with KindNotActive if no active session exists.
func (c *Controller) Stop(channelID uint64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.store.EndSession(channelID, c.nowMillis())
	if err != nil {
		return 0, err
	}
	if err := c.RebuildIndex(); err != nil {
		return 0, err
	}
	return id, nil
}

// List returns every channel currently under isolation.
func (c *Controller) List() ([]store.Session, error) {
	return c.store.ListActiveSessions()
}

// History returns every session, optionally filtered to one channel, most
// recently started first.
func (c *Controller) History(channelID *uint64) ([]store.Session, error) {
	return c.store.SessionHistory(channelID)
}
