package control

import (
	"fmt"

	"github.com/chanisolator/channel-isolator/internal/chanid"
	"github.com/chanisolator/channel-isolator/internal/store"
)

// resolveActiveSession returns the active session for channelID, or a
// KindNotActive error if none exists. Both AddException and
// RemoveException operate on a channel id at the Control API surface but
// Store scopes exceptions to a session id, so this bridges the two.
func (c *Controller) resolveActiveSession(channelID uint64) (store.Session, error) {
	sess, err := c.store.ActiveSessionForChannel(channelID)
	if err != nil {
		return store.Session{}, err
	}
	if sess == nil {
		return store.Session{}, &store.Error{Kind: store.KindNotActive, Err: errNotIsolated(channelID)}
	}
	return *sess, nil
}

// AddException permits forwards from allowedChannelID into isolatedChannelID,
// and publishes the updated Policy Index. Fails with KindNotActive if
// isolatedChannelID has no active session, KindDuplicateException if the
// pair already exists.
func (c *Controller) AddException(isolatedChannelID, allowedChannelID uint64, alias string) (store.Exception, error) {
	alias = normalizeAlias(alias)

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.resolveActiveSession(isolatedChannelID)
	if err != nil {
		return store.Exception{}, err
	}

	createdAt := c.nowMillis()
	id, err := c.store.AddException(sess.ID, allowedChannelID, alias, createdAt)
	if err != nil {
		return store.Exception{}, err
	}
	if err := c.RebuildIndex(); err != nil {
		return store.Exception{}, err
	}

	return store.Exception{ID: id, SessionID: sess.ID, AllowedChannelID: allowedChannelID, Alias: alias, CreatedAt: createdAt}, nil
}

// RemoveException revokes a previously added exception and publishes the
// updated Policy Index. Fails with KindNotActive if isolatedChannelID has
// no active session, KindExceptionNotFound if the pair does not exist.
func (c *Controller) RemoveException(isolatedChannelID, allowedChannelID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.resolveActiveSession(isolatedChannelID)
	if err != nil {
		return err
	}

	if err := c.store.RemoveException(sess.ID, allowedChannelID); err != nil {
		return err
	}
	return c.RebuildIndex()
}

// Exceptions lists the exceptions for the active session on channelID.
// Fails with KindNotActive if no active session exists.
func (c *Controller) Exceptions(channelID uint64) ([]store.Exception, error) {
	sess, err := c.resolveActiveSession(channelID)
	if err != nil {
		return nil, err
	}
	return c.store.ListExceptions(sess.ID)
}

func errNotIsolated(channelID uint64) error {
	return fmt.Errorf("channel %s has no active isolation session", chanid.String(channelID))
}
