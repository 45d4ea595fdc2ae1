package store

// SessionStatus is the lifecycle state of an Isolation Session.
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusEnded  SessionStatus = "ended"
)

// Session records that channel ID was (or is) under isolation for a
// contiguous interval.
type Session struct {
	ID        int64
	ChannelID uint64
	Alias     string
	StartedAt int64 // epoch milliseconds, UTC
	EndedAt   *int64
	Status    SessionStatus
}

// Exception permits forwards from AllowedChannelID into the isolated
// channel governed by SessionID.
type Exception struct {
	ID                int64
	SessionID         int64
	AllowedChannelID  uint64
	Alias             string
	CreatedAt         int64
}

// Decision is the outcome Intercept Engine reached for an Attempt.
type Decision string

const (
	DecisionResume Decision = "resume"
	DecisionFail   Decision = "fail"
)

// Reason explains why a Decision was reached.
type Reason string

const (
	ReasonExceptionMatch Reason = "exception-match"
	ReasonNoException    Reason = "no-exception"
	ReasonNotIsolated    Reason = "not-isolated"
)

// Attempt is an immutable audit row for one observed intercept request
// against an active session.
type Attempt struct {
	ID                int64
	SessionID         int64
	ObservedAt        int64
	IncomingChannelID uint64
	OutgoingChannelID uint64
	AmountMsat        uint64
	IncomingHTLCIndex uint64
	OutgoingHTLCIndex uint64
	Decision          Decision
	Reason            Reason
}

// Statistics summarizes Store-wide counters.
type Statistics struct {
	TotalSessions   int64
	ActiveSessions  int64
	TotalAttempts   int64
	Resumed         int64
	Failed          int64
	DroppedAttempts int64
}
