package supervisor

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chanisolator/channel-isolator/internal/config"
	"github.com/stretchr/testify/require"
)

func writeTestNodeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	f, err := os.Create(filepath.Join(dir, "tls.cert"))
	require.NoError(t, err)
	require.NoError(t, pem.Encode(f, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, f.Close())

	macDir := filepath.Join(dir, "data", "chain", "bitcoin", "regtest")
	require.NoError(t, os.MkdirAll(macDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(macDir, "admin.macaroon"), []byte{0xde, 0xad, 0xbe, 0xef}, 0o600))

	return dir
}

func testConfig(t *testing.T) config.Config {
	return config.Config{
		NodeDir:     writeTestNodeDir(t),
		Network:     "regtest",
		RPCAddr:     "127.0.0.1:0",
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
		ControlAddr: "127.0.0.1:0",
		Workers:     2,
		LogFormat:   "text",
	}
}

func TestNewWiresComponentsAndClose(t *testing.T) {
	s, err := New(testConfig(t), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestNewFailsOnMissingCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.NodeDir = t.TempDir() // no tls.cert/macaroon written

	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestRunShutsDownOnContextCancel(t *testing.T) {
	s, err := New(testConfig(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
