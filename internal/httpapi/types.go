package httpapi

import "github.com/chanisolator/channel-isolator/internal/store"

// --- Request bodies ---

// IsolateRequest is the JSON body for POST /v1/sessions.
type IsolateRequest struct {
	ChannelID string `json:"channel_id"`
	Alias     string `json:"alias"`
}

// AddExceptionRequest is the JSON body for POST /v1/sessions/{channel_id}/exceptions.
type AddExceptionRequest struct {
	AllowedChannelID string `json:"allowed_channel_id"`
	Alias            string `json:"alias"`
}

// --- Response wrappers ---

// SessionsResponse wraps a list of sessions.
type SessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

// ExceptionsResponse wraps a list of exceptions.
type ExceptionsResponse struct {
	Exceptions []Exception `json:"exceptions"`
}

// AttemptsResponse wraps a list of attempts.
type AttemptsResponse struct {
	Attempts []Attempt `json:"attempts"`
}

// Session is the JSON representation of a store.Session, with the channel
// id rendered both as the raw decimal form and the node's human-readable
// BxTxO form.
type Session struct {
	ID          int64  `json:"id"`
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
	Alias       string `json:"alias,omitempty"`
	Status      string `json:"status"`
	StartedAt   int64  `json:"started_at"`
	EndedAt     *int64 `json:"ended_at,omitempty"`
}

// Exception is the JSON representation of a store.Exception.
type Exception struct {
	ID               int64  `json:"id"`
	SessionID        int64  `json:"session_id"`
	AllowedChannelID string `json:"allowed_channel_id"`
	AllowedChannel   string `json:"allowed_channel_name"`
	Alias            string `json:"alias,omitempty"`
	CreatedAt        int64  `json:"created_at"`
}

// Attempt is the JSON representation of a store.Attempt.
type Attempt struct {
	ID                int64  `json:"id"`
	SessionID         int64  `json:"session_id"`
	ObservedAt        int64  `json:"observed_at"`
	IncomingChannelID string `json:"incoming_channel_id"`
	OutgoingChannelID string `json:"outgoing_channel_id"`
	AmountMsat        uint64 `json:"amount_msat"`
	Decision          string `json:"decision"`
	Reason            string `json:"reason"`
}

// Statistics is the JSON representation of store.Statistics.
type Statistics struct {
	TotalSessions   int64 `json:"total_sessions"`
	ActiveSessions  int64 `json:"active_sessions"`
	TotalAttempts   int64 `json:"total_attempts"`
	Resumed         int64 `json:"resumed"`
	Failed          int64 `json:"failed"`
	DroppedAttempts int64 `json:"dropped_attempts"`
}

func toSession(s store.Session) Session {
	return Session{
		ID:          s.ID,
		ChannelID:   chanIDString(s.ChannelID),
		ChannelName: chanIDName(s.ChannelID),
		Alias:       s.Alias,
		Status:      string(s.Status),
		StartedAt:   s.StartedAt,
		EndedAt:     s.EndedAt,
	}
}

func toSessions(sessions []store.Session) []Session {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		out[i] = toSession(s)
	}
	return out
}

func toException(e store.Exception) Exception {
	return Exception{
		ID:               e.ID,
		SessionID:        e.SessionID,
		AllowedChannelID: chanIDString(e.AllowedChannelID),
		AllowedChannel:   chanIDName(e.AllowedChannelID),
		Alias:            e.Alias,
		CreatedAt:        e.CreatedAt,
	}
}

func toExceptions(exceptions []store.Exception) []Exception {
	out := make([]Exception, len(exceptions))
	for i, e := range exceptions {
		out[i] = toException(e)
	}
	return out
}

func toAttempt(a store.Attempt) Attempt {
	return Attempt{
		ID:                a.ID,
		SessionID:         a.SessionID,
		ObservedAt:        a.ObservedAt,
		IncomingChannelID: chanIDString(a.IncomingChannelID),
		OutgoingChannelID: chanIDString(a.OutgoingChannelID),
		AmountMsat:        a.AmountMsat,
		Decision:          string(a.Decision),
		Reason:            string(a.Reason),
	}
}

func toAttempts(attempts []store.Attempt) []Attempt {
	out := make([]Attempt, len(attempts))
	for i, a := range attempts {
		out[i] = toAttempt(a)
	}
	return out
}

func toStatistics(s store.Statistics) Statistics {
	return Statistics{
		TotalSessions:   s.TotalSessions,
		ActiveSessions:  s.ActiveSessions,
		TotalAttempts:   s.TotalAttempts,
		Resumed:         s.Resumed,
		Failed:          s.Failed,
		DroppedAttempts: s.DroppedAttempts,
	}
}
