package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"
)

// Registry holds the Control API surfaces Supervisor should run.
type Registry struct {
	surfaces map[string]Surface
}

// NewRegistry creates an empty Registry. Callers Register each surface
// (including disabled stand-ins) before calling ServeAll.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]Surface)}
}

// Register adds or replaces the surface under name.
func (r *Registry) Register(name string, s Surface) {
	r.surfaces[name] = s
}

// Get returns the surface registered under name.
func (r *Registry) Get(name string) (Surface, error) {
	s, ok := r.surfaces[name]
	if !ok {
		return nil, fmt.Errorf("control API surface %q is not registered", name)
	}
	return s, nil
}

// ServeAll runs every registered surface concurrently, logging a line for
// any DisabledSurface so an operator can see why it isn't listening. It
// blocks until ctx is done, then closes every surface and returns the
// combined set of errors from Serve and Close.
func (r *Registry) ServeAll(ctx context.Context, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	for name, s := range r.surfaces {
		if d, ok := s.(*DisabledSurface); ok {
			log.Info("control API surface disabled", "surface", name, "reason", d.Reason())
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs error

	for name, s := range r.surfaces {
		wg.Add(1)
		go func(name string, s Surface) {
			defer wg.Done()
			if err := s.Serve(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("surface %q: %w", name, err))
				mu.Unlock()
			}
		}(name, s)
	}

	<-ctx.Done()
	for name, s := range r.surfaces {
		if err := s.Close(); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, fmt.Errorf("close surface %q: %w", name, err))
			mu.Unlock()
		}
	}

	wg.Wait()
	return errs
}
