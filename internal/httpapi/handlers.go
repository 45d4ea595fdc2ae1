package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/chanisolator/channel-isolator/internal/chanid"
	"github.com/chanisolator/channel-isolator/internal/control"
	"github.com/chanisolator/channel-isolator/internal/store"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("writeJSON: encode error", "error", err)
	}
}

// writeError reports err as a JSON body carrying both a human-readable
// message and the store.Kind the CLI maps to an exit code. A nil Kind
// (plain Go error, not a *store.Error) is reported as KindStorage so
// callers never see an empty kind field.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	kind := store.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
		kind = store.KindStorage
	}
	writeJSON(w, log, status, map[string]string{
		"error": err.Error(),
		"kind":  kind.String(),
	})
}

var kindStatus = map[store.Kind]int{
	store.KindBadRequest:         http.StatusBadRequest,
	store.KindAlreadyActive:      http.StatusConflict,
	store.KindNotActive:          http.StatusNotFound,
	store.KindDuplicateException: http.StatusConflict,
	store.KindExceptionNotFound:  http.StatusNotFound,
	store.KindStorage:            http.StatusInternalServerError,
}

func requireJSON(w http.ResponseWriter, log *slog.Logger, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		writeError(w, log, badRequest("Content-Type must be application/json"))
		return false
	}
	return true
}

func badRequest(msg string) error {
	return &store.Error{Kind: store.KindBadRequest, Err: errString(msg)}
}

type errString string

func (e errString) Error() string { return string(e) }

func pathChannelID(w http.ResponseWriter, log *slog.Logger, r *http.Request, name string) (uint64, bool) {
	id, err := chanid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, log, badRequest(err.Error()))
		return 0, false
	}
	return id, true
}

// --- Handlers ---

// handleIsolate serves POST /v1/sessions.
func (s *Server) handleIsolate(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, s.log, r) {
		return
	}
	var req IsolateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.log, badRequest("invalid JSON body"))
		return
	}
	channelID, err := control.ParseChannelID(req.ChannelID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	sess, err := s.ctrl.Isolate(channelID, req.Alias)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusCreated, toSession(sess))
}

// handleStop serves POST /v1/sessions/{channel_id}/stop.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathChannelID(w, s.log, r, "channel_id")
	if !ok {
		return
	}
	id, err := s.ctrl.Stop(channelID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, map[string]int64{"id": id})
}

// handleAddException serves POST /v1/sessions/{channel_id}/exceptions.
func (s *Server) handleAddException(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathChannelID(w, s.log, r, "channel_id")
	if !ok {
		return
	}
	if !requireJSON(w, s.log, r) {
		return
	}
	var req AddExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.log, badRequest("invalid JSON body"))
		return
	}
	allowedID, err := control.ParseChannelID(req.AllowedChannelID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	exc, err := s.ctrl.AddException(channelID, allowedID, req.Alias)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusCreated, toException(exc))
}

// handleRemoveException serves DELETE /v1/sessions/{channel_id}/exceptions/{allowed_channel_id}.
func (s *Server) handleRemoveException(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathChannelID(w, s.log, r, "channel_id")
	if !ok {
		return
	}
	allowedID, ok := pathChannelID(w, s.log, r, "allowed_channel_id")
	if !ok {
		return
	}
	if err := s.ctrl.RemoveException(channelID, allowedID); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleList serves GET /v1/sessions.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.ctrl.List()
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, SessionsResponse{Sessions: toSessions(sessions)})
}

// handleExceptions serves GET /v1/sessions/{channel_id}/exceptions.
func (s *Server) handleExceptions(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathChannelID(w, s.log, r, "channel_id")
	if !ok {
		return
	}
	exceptions, err := s.ctrl.Exceptions(channelID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, ExceptionsResponse{Exceptions: toExceptions(exceptions)})
}

// handleHistory serves GET /v1/sessions/history, optionally filtered by
// a ?channel_id= query parameter.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var channelID *uint64
	if v := r.URL.Query().Get("channel_id"); v != "" {
		id, err := chanid.Parse(v)
		if err != nil {
			writeError(w, s.log, badRequest(err.Error()))
			return
		}
		channelID = &id
	}

	sessions, err := s.ctrl.History(channelID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, SessionsResponse{Sessions: toSessions(sessions)})
}

// handleAttempts serves GET /v1/sessions/{session_id}/attempts, with an
// optional ?limit= query parameter (non-positive or absent means
// unbounded).
func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("session_id"), 10, 64)
	if err != nil {
		writeError(w, s.log, badRequest("session_id must be an integer"))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, s.log, badRequest("limit must be an integer"))
			return
		}
	}

	attempts, err := s.ctrl.Attempts(sessionID, limit)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, AttemptsResponse{Attempts: toAttempts(attempts)})
}

// handleStats serves GET /v1/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ctrl.Stats()
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, toStatistics(stats))
}
