// Package httpapi exposes internal/control's Controller over HTTP JSON,
// the "http" surface registered into internal/adapter's registry.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/chanisolator/channel-isolator/api"
	"github.com/chanisolator/channel-isolator/internal/control"
)

// Server is a Control API surface: a net/http JSON API bound either to a
// TCP address ("http") or a Unix domain socket ("unix"). It implements
// internal/adapter.Surface.
type Server struct {
	ctrl    *control.Controller
	log     *slog.Logger
	name    string
	network string
	addr    string

	mux    *http.ServeMux
	server *http.Server
}

// New creates the "http" Control API surface bound to a TCP addr, e.g.
// "127.0.0.1:7621".
func New(addr string, ctrl *control.Controller, log *slog.Logger) *Server {
	return newServer("http", "tcp", addr, ctrl, log)
}

// NewUnix creates the "unix" Control API surface bound to a Unix domain
// socket path. Registered only when --control-socket is set.
func NewUnix(socketPath string, ctrl *control.Controller, log *slog.Logger) *Server {
	return newServer("unix", "unix", socketPath, ctrl, log)
}

func newServer(name, network, addr string, ctrl *control.Controller, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{ctrl: ctrl, log: log, name: name, network: network, addr: addr, mux: http.NewServeMux()}
	s.registerRoutes()
	s.server = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /v1/sessions", s.handleIsolate)
	s.mux.HandleFunc("POST /v1/sessions/{channel_id}/stop", s.handleStop)
	s.mux.HandleFunc("POST /v1/sessions/{channel_id}/exceptions", s.handleAddException)
	s.mux.HandleFunc("DELETE /v1/sessions/{channel_id}/exceptions/{allowed_channel_id}", s.handleRemoveException)
	s.mux.HandleFunc("GET /v1/sessions", s.handleList)
	s.mux.HandleFunc("GET /v1/sessions/history", s.handleHistory)
	s.mux.HandleFunc("GET /v1/sessions/{channel_id}/exceptions", s.handleExceptions)
	s.mux.HandleFunc("GET /v1/sessions/{session_id}/attempts", s.handleAttempts)
	s.mux.HandleFunc("GET /v1/stats", s.handleStats)
	s.mux.HandleFunc("GET /v1/openapi.yaml", s.handleOpenAPISpec)
}

func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.OpenAPISpec)
}

// Name identifies this surface in the adapter registry ("http" or "unix").
func (s *Server) Name() string { return s.name }

// Serve listens on s.addr over s.network and blocks until ctx is done or a
// fatal error occurs. For a Unix socket, any stale file at addr is removed
// first so a restart after an unclean shutdown doesn't fail to bind.
func (s *Server) Serve(ctx context.Context) error {
	if s.network == "unix" {
		_ = os.Remove(s.addr)
	}
	ln, err := net.Listen(s.network, s.addr)
	if err != nil {
		return fmt.Errorf("%s surface listen on %s: %w", s.name, s.addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("control API listening", "surface", s.name, "addr", s.addr)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s surface shutdown: %w", s.name, err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases the listener if Serve has not already been cancelled via
// ctx. Supervisor calls Close after ctx is done, by which point Serve has
// already shut the server down; Close is a no-op safety net.
func (s *Server) Close() error {
	return s.server.Close()
}
