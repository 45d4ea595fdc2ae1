package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/chanisolator/channel-isolator/internal/control"
	"github.com/chanisolator/channel-isolator/internal/policy"
	"github.com/chanisolator/channel-isolator/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctrl := control.New(s, policy.NewIndex())
	require.NoError(t, ctrl.RebuildIndex())

	return New("127.0.0.1:0", ctrl, nil)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, r)
	return w
}

func TestIsolateThenList(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "POST", "/v1/sessions", IsolateRequest{ChannelID: "42", Alias: "merchant"})
	require.Equal(t, http.StatusCreated, w.Code)

	var sess Session
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sess))
	require.Equal(t, "42", sess.ChannelID)
	require.Equal(t, "merchant", sess.Alias)

	w = doJSON(t, srv, "GET", "/v1/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Sessions, 1)
}

func TestIsolateTwiceReturnsConflictKind(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "POST", "/v1/sessions", IsolateRequest{ChannelID: "42"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, "POST", "/v1/sessions", IsolateRequest{ChannelID: "42"})
	require.Equal(t, http.StatusConflict, w.Code)

	var errResp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	require.Equal(t, "AlreadyActive", errResp["kind"])
}

func TestIsolateRejectsMissingContentType(t *testing.T) {
	srv := newTestServer(t)

	r := httptest.NewRequest("POST", "/v1/sessions", bytes.NewReader([]byte(`{"channel_id":"42"}`)))
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddExceptionThenRemove(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, "POST", "/v1/sessions", IsolateRequest{ChannelID: "42"})

	w := doJSON(t, srv, "POST", "/v1/sessions/42/exceptions", AddExceptionRequest{AllowedChannelID: "800"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, "GET", "/v1/sessions/42/exceptions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp ExceptionsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Exceptions, 1)

	w = doJSON(t, srv, "DELETE", "/v1/sessions/42/exceptions/800", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, "GET", "/v1/sessions/42/exceptions", nil)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Exceptions, 0)
}

func TestExceptionsRequiresActiveSession(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/v1/sessions/42/exceptions", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var errResp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	require.Equal(t, "NotActive", errResp["kind"])
}

func TestStopThenHistory(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, "POST", "/v1/sessions", IsolateRequest{ChannelID: "42"})
	w := doJSON(t, srv, "POST", "/v1/sessions/42/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, "GET", "/v1/sessions/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Sessions, 1)
	require.Equal(t, "ended", resp.Sessions[0].Status)
}

func TestStatsReflectsIsolate(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, "POST", "/v1/sessions", IsolateRequest{ChannelID: "42"})

	w := doJSON(t, srv, "GET", "/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats Statistics
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	require.Equal(t, int64(1), stats.ActiveSessions)
}

func TestIsolateRejectsMalformedChannelID(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "POST", "/v1/sessions", IsolateRequest{ChannelID: "not-a-number"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errResp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
	require.Equal(t, "BadRequest", errResp["kind"])
}

func TestOpenAPISpecServed(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, "GET", "/v1/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "channel-isolator Control API")
}
