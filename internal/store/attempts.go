package store

import "fmt"

// AppendAttempt writes an immutable audit row. It never fails the caller:
// an I/O error is dropped and counted rather than surfaced, because the
// intercept decision has already been made and must not wait on storage.
func (s *Store) AppendAttempt(a Attempt) {
	_, err := s.conn.Exec(
		`INSERT INTO attempts (session_id, observed_at, incoming_channel_id, outgoing_channel_id,
			amount_msat, incoming_htlc_index, outgoing_htlc_index, decision, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.ObservedAt, a.IncomingChannelID, a.OutgoingChannelID,
		a.AmountMsat, a.IncomingHTLCIndex, a.OutgoingHTLCIndex, a.Decision, a.Reason,
	)
	if err != nil {
		s.droppedAttempts.Add(1)
	}
}

// DroppedAttempts returns the count of attempt rows lost to storage errors
// in AppendAttempt.
func (s *Store) DroppedAttempts() int64 {
	return s.droppedAttempts.Load()
}

const attemptColumns = `id, session_id, observed_at, incoming_channel_id, outgoing_channel_id,
	amount_msat, incoming_htlc_index, outgoing_htlc_index, decision, reason`

func scanAttempt(scanner interface{ Scan(...any) error }, a *Attempt) error {
	var decision, reason string
	if err := scanner.Scan(&a.ID, &a.SessionID, &a.ObservedAt, &a.IncomingChannelID, &a.OutgoingChannelID,
		&a.AmountMsat, &a.IncomingHTLCIndex, &a.OutgoingHTLCIndex, &decision, &reason); err != nil {
		return err
	}
	a.Decision = Decision(decision)
	a.Reason = Reason(reason)
	return nil
}

// AttemptsForSession returns attempts for sessionID, most recent first. A
// non-positive limit means unbounded.
func (s *Store) AttemptsForSession(sessionID int64, limit int) ([]Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE session_id = ? ORDER BY id DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, newErr(KindStorage, fmt.Errorf("attempts for session %d: %w", sessionID, err))
	}
	defer rows.Close() //nolint:errcheck

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := scanAttempt(rows, &a); err != nil {
			return nil, newErr(KindStorage, fmt.Errorf("scan attempt: %w", err))
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
