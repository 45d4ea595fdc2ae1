package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/chanisolator/channel-isolator/internal/adapter"
	"github.com/stretchr/testify/require"
)

func TestServerImplementsSurface(t *testing.T) {
	var _ adapter.Surface = (*Server)(nil)
}

func TestHTTPServeAndShutdown(t *testing.T) {
	srv := newTestServer(t)
	srv.addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after context cancel")
	}
}

func TestUnixServeAcceptsRequests(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "control.sock")

	srv := newTestServer(t)
	unixSrv := NewUnix(sockPath, srv.ctrl, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- unixSrv.Serve(ctx) }()

	waitForSocket(t, sockPath)

	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", sockPath)
			},
		},
	}
	resp, err := client.Get("http://unix/v1/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats Statistics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))

	cancel()
	<-done
}

func waitForSocket(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("unix", path); err == nil {
			conn.Close()
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("unix socket never became ready")
}
