package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const exceptionColumns = `id, session_id, allowed_channel_id, alias, created_at`

func scanException(scanner interface{ Scan(...any) error }, e *Exception) error {
	return scanner.Scan(&e.ID, &e.SessionID, &e.AllowedChannelID, &e.Alias, &e.CreatedAt)
}

// AddException permits forwards from allowedChannelID into the channel
// isolated by sessionID. It fails with KindNotActive if sessionID is not
// (or no longer) active, and KindDuplicateException if the pair already
// exists.
func (s *Store) AddException(sessionID int64, allowedChannelID uint64, alias string, createdAt int64) (int64, error) {
	var status string
	err := s.conn.QueryRow(`SELECT status FROM sessions WHERE id = ?`, sessionID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, newErr(KindNotActive, fmt.Errorf("session %d does not exist", sessionID))
	}
	if err != nil {
		return 0, newErr(KindStorage, fmt.Errorf("lookup session %d: %w", sessionID, err))
	}
	if SessionStatus(status) != StatusActive {
		return 0, newErr(KindNotActive, fmt.Errorf("session %d is not active", sessionID))
	}

	res, err := s.conn.Exec(
		`INSERT INTO exceptions (session_id, allowed_channel_id, alias, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, allowedChannelID, alias, createdAt,
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return 0, newErr(KindDuplicateException, fmt.Errorf("exception for channel %d already exists on session %d", allowedChannelID, sessionID))
		}
		return 0, newErr(KindStorage, fmt.Errorf("insert exception: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newErr(KindStorage, fmt.Errorf("exception id: %w", err))
	}
	return id, nil
}

// RemoveException deletes the exception permitting allowedChannelID into
// sessionID. It fails with KindExceptionNotFound if no such row exists.
func (s *Store) RemoveException(sessionID int64, allowedChannelID uint64) error {
	res, err := s.conn.Exec(
		`DELETE FROM exceptions WHERE session_id = ? AND allowed_channel_id = ?`,
		sessionID, allowedChannelID,
	)
	if err != nil {
		return newErr(KindStorage, fmt.Errorf("remove exception: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return newErr(KindStorage, fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return newErr(KindExceptionNotFound, fmt.Errorf("no exception for channel %d on session %d", allowedChannelID, sessionID))
	}
	return nil
}

// ListExceptions returns every exception scoped to sessionID.
func (s *Store) ListExceptions(sessionID int64) ([]Exception, error) {
	rows, err := s.conn.Query(`SELECT `+exceptionColumns+` FROM exceptions WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, newErr(KindStorage, fmt.Errorf("list exceptions: %w", err))
	}
	defer rows.Close() //nolint:errcheck

	var out []Exception
	for rows.Next() {
		var e Exception
		if err := scanException(rows, &e); err != nil {
			return nil, newErr(KindStorage, fmt.Errorf("scan exception: %w", err))
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListExceptionsForActiveSessions returns every exception belonging to a
// currently active session, used to build the Policy Index snapshot in one
// query instead of one round trip per session.
func (s *Store) ListExceptionsForActiveSessions() ([]Exception, error) {
	rows, err := s.conn.Query(`
		SELECT e.allowed_channel_id, e.alias, e.created_at, e.id, e.session_id
		FROM exceptions e
		JOIN sessions sess ON sess.id = e.session_id
		WHERE sess.status = 'active'`)
	if err != nil {
		return nil, newErr(KindStorage, fmt.Errorf("list exceptions for active sessions: %w", err))
	}
	defer rows.Close() //nolint:errcheck

	var out []Exception
	for rows.Next() {
		var e Exception
		if err := rows.Scan(&e.AllowedChannelID, &e.Alias, &e.CreatedAt, &e.ID, &e.SessionID); err != nil {
			return nil, newErr(KindStorage, fmt.Errorf("scan exception: %w", err))
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
