package credentials

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Paths locates the node's TLS certificate and macaroon on disk, following
// the conventional <node-dir>/tls.cert and
// <node-dir>/data/chain/bitcoin/<network>/admin.macaroon layout.
type Paths struct {
	NodeDir string
	Network string
}

func (p Paths) tlsCertPath() string {
	return filepath.Join(p.NodeDir, "tls.cert")
}

func (p Paths) macaroonPath() string {
	return filepath.Join(p.NodeDir, "data", "chain", "bitcoin", p.Network, "admin.macaroon")
}

// Credentials holds the loaded TLS certificate and macaroon, and rebuilds
// the macaroon's per-RPC metadata whenever the file changes on disk so a
// manually rotated macaroon takes effect without a restart.
type Credentials struct {
	paths    Paths
	redactor *Redactor

	tlsCreds credentials.TransportCredentials

	mu        sync.RWMutex
	macaroon  string // hex-encoded
	watcher   *fsnotify.Watcher
	watchDone chan struct{}
}

// Load reads the TLS certificate and macaroon once and returns a
// Credentials ready to build dial options. The macaroon's hex form is
// registered with redactor so Redact can replace it in a string.
func Load(paths Paths, redactor *Redactor) (*Credentials, error) {
	tlsCreds, err := credentials.NewClientTLSFromFile(paths.tlsCertPath(), "")
	if err != nil {
		return nil, fmt.Errorf("load TLS cert: %w", err)
	}

	c := &Credentials{paths: paths, redactor: redactor, tlsCreds: tlsCreds}
	if err := c.reloadMacaroon(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Credentials) reloadMacaroon() error {
	raw, err := os.ReadFile(c.paths.macaroonPath())
	if err != nil {
		return fmt.Errorf("load macaroon: %w", err)
	}
	hexMac := hex.EncodeToString(raw)

	c.mu.Lock()
	c.macaroon = hexMac
	c.mu.Unlock()

	c.redactor.Register("macaroon", hexMac)
	return nil
}

func (c *Credentials) currentMacaroon() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.macaroon
}

// WatchMacaroon starts watching the macaroon file for changes and reloads
// it on write, logging through logf. It runs until ctx is done or Close is
// called; callers that never rotate credentials at runtime can skip it.
func (c *Credentials) WatchMacaroon(ctx context.Context, logf func(format string, args ...any)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create macaroon watcher: %w", err)
	}
	dir := filepath.Dir(c.paths.macaroonPath())
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch macaroon directory: %w", err)
	}

	c.watcher = watcher
	c.watchDone = make(chan struct{})

	go func() {
		defer close(c.watchDone)
		defer watcher.Close()

		target := c.paths.macaroonPath()
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					if err := c.reloadMacaroon(); err != nil {
						logf("macaroon reload failed: %v", err)
						return
					}
					logf("macaroon reloaded from %s", target)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logf("macaroon watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Close stops the macaroon file watcher, if one was started.
func (c *Credentials) Close() error {
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	<-c.watchDone
	return err
}

// DialOptions builds the grpc.DialOption slice for a fresh connection to
// the node: TLS transport credentials plus a per-RPC macaroon header.
// Suitable as an internal/transport/lnd.DialOptionsFunc.
func (c *Credentials) DialOptions() ([]grpc.DialOption, error) {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(c.tlsCreds),
		grpc.WithPerRPCCredentials(macaroonCreds{c: c}),
	}, nil
}

// macaroonCreds implements credentials.PerRPCCredentials, attaching the
// current macaroon hex string as the "macaroon" metadata key on every RPC,
// matching the node's own client tooling.
type macaroonCreds struct {
	c *Credentials
}

func (m macaroonCreds) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"macaroon": m.c.currentMacaroon()}, nil
}

func (m macaroonCreds) RequireTransportSecurity() bool { return true }
