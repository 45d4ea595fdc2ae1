// Package supervisor owns the daemon's component lifecycle: Store, Policy
// Index, Control API adapter registry, and Intercept Engine, plus signal
// handling and combined shutdown-error reporting.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/multierr"

	"github.com/chanisolator/channel-isolator/internal/adapter"
	"github.com/chanisolator/channel-isolator/internal/config"
	"github.com/chanisolator/channel-isolator/internal/control"
	"github.com/chanisolator/channel-isolator/internal/credentials"
	"github.com/chanisolator/channel-isolator/internal/engine"
	"github.com/chanisolator/channel-isolator/internal/httpapi"
	"github.com/chanisolator/channel-isolator/internal/policy"
	"github.com/chanisolator/channel-isolator/internal/store"
	"github.com/chanisolator/channel-isolator/internal/transport/lnd"
)

// Supervisor wires Store, Policy Index, Controller, the Control API
// adapter registry, and the Intercept Engine into one process and runs
// them until a shutdown signal arrives.
type Supervisor struct {
	cfg config.Config
	log *slog.Logger

	store   *store.Store
	ctrl    *control.Controller
	creds   *credentials.Credentials
	engine  *engine.Engine
	adapters *adapter.Registry
}

// New opens Store, rebuilds the Policy Index, loads node credentials, and
// wires the Intercept Engine and Control API adapters. The caller must
// call Close (directly, or implicitly via Run returning) to release Store
// and credential watchers.
func New(cfg config.Config, log *slog.Logger) (*Supervisor, error) {
	if log == nil {
		log = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	idx := policy.NewIndex()
	ctrl := control.New(s, idx)
	if err := ctrl.RebuildIndex(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("rebuild policy index: %w", err)
	}

	redactor := credentials.NewRedactor()
	creds, err := credentials.Load(credentials.Paths{NodeDir: cfg.NodeDir, Network: cfg.Network}, redactor)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load node credentials: %w", err)
	}

	rpcAddr := cfg.RPCAddr
	if rpcAddr == "" {
		rpcAddr = "127.0.0.1:10009"
	}
	tr := lnd.New(rpcAddr, creds.DialOptions)
	eng := engine.New(tr, idx, s, cfg.Workers, log)

	registry := adapter.NewRegistry()
	registry.Register("http", httpapi.New(cfg.ControlAddr, ctrl, log))
	if cfg.ControlSocket != "" {
		registry.Register("unix", httpapi.NewUnix(cfg.ControlSocket, ctrl, log))
	} else {
		registry.Register("unix", adapter.NewDisabledSurface("unix", "--control-socket not set"))
	}

	return &Supervisor{
		cfg:      cfg,
		log:      log,
		store:    s,
		ctrl:     ctrl,
		creds:    creds,
		engine:   eng,
		adapters: registry,
	}, nil
}

// Run blocks until a SIGTERM/SIGINT arrives (or ctx is cancelled), then
// shuts down every component, combining all shutdown errors with
// go.uber.org/multierr rather than reporting only the first.
func (s *Supervisor) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	go func() {
		logf := func(format string, args ...any) { s.log.Warn(fmt.Sprintf(format, args...)) }
		if err := s.creds.WatchMacaroon(watchCtx, logf); err != nil {
			s.log.Warn("macaroon watch failed to start", "error", err)
		}
	}()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs error
	addErr := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = multierr.Append(errs, err)
		mu.Unlock()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		addErr(s.adapters.ServeAll(ctx, s.log))
	}()
	go func() {
		defer wg.Done()
		addErr(s.engine.Run(ctx))
	}()

	<-ctx.Done()
	s.log.Info("shutting down")
	wg.Wait()

	addErr(s.Close())
	return errs
}

// Close releases Store and the credential watcher. Safe to call after Run
// returns; Run calls it internally as part of shutdown.
func (s *Supervisor) Close() error {
	var errs error
	if err := s.creds.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close credentials: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close store: %w", err))
	}
	return errs
}
