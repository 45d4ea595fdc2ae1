package store

import "fmt"

// Stats computes the counters exposed by the `stats` operation.
func (s *Store) Stats() (Statistics, error) {
	var out Statistics

	row := s.conn.QueryRow(`SELECT COUNT(*) FROM sessions`)
	if err := row.Scan(&out.TotalSessions); err != nil {
		return out, newErr(KindStorage, fmt.Errorf("count sessions: %w", err))
	}

	row = s.conn.QueryRow(`SELECT COUNT(*) FROM sessions WHERE status = 'active'`)
	if err := row.Scan(&out.ActiveSessions); err != nil {
		return out, newErr(KindStorage, fmt.Errorf("count active sessions: %w", err))
	}

	row = s.conn.QueryRow(`SELECT COUNT(*) FROM attempts`)
	if err := row.Scan(&out.TotalAttempts); err != nil {
		return out, newErr(KindStorage, fmt.Errorf("count attempts: %w", err))
	}

	row = s.conn.QueryRow(`SELECT COUNT(*) FROM attempts WHERE decision = 'resume'`)
	if err := row.Scan(&out.Resumed); err != nil {
		return out, newErr(KindStorage, fmt.Errorf("count resumed attempts: %w", err))
	}

	row = s.conn.QueryRow(`SELECT COUNT(*) FROM attempts WHERE decision = 'fail'`)
	if err := row.Scan(&out.Failed); err != nil {
		return out, newErr(KindStorage, fmt.Errorf("count failed attempts: %w", err))
	}

	out.DroppedAttempts = s.DroppedAttempts()
	return out, nil
}
