package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chanisolator/channel-isolator/internal/config"
	"github.com/chanisolator/channel-isolator/internal/supervisor"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the channel-isolator daemon",
		RunE:  runDaemon,
	}

	defaultDBPath := filepath.Join(os.Getenv("HOME"), "channel_isolator", "channel_isolator.db")

	f := cmd.Flags()
	f.String("node-dir", "/data/lnd", "path to the lnd node directory")
	f.String("network", "mainnet", "bitcoin network (mainnet|testnet|regtest)")
	f.String("rpc-addr", "127.0.0.1:10009", "host:port of the node's gRPC listener")
	f.String("db-path", defaultDBPath, "path to the sqlite database file")
	f.String("control-socket", "", "optional Unix domain socket path for the Control API")
	f.Int("workers", 4, "number of background attempt-writer goroutines")
	f.String("log-format", "text", "log output format (text|json)")

	bind := func(key, flag string) { _ = viper.BindPFlag(key, f.Lookup(flag)) }
	bind("node_dir", "node-dir")
	bind("network", "network")
	bind("rpc_addr", "rpc-addr")
	bind("db_path", "db-path")
	bind("control_socket", "control-socket")
	bind("workers", "workers")
	bind("log_format", "log-format")

	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	cfg.ControlAddr = viper.GetString("control_addr")

	log := newLogger(cfg.LogFormat, os.Stderr)
	log.Info("channel-isolator starting",
		"node_dir", cfg.NodeDir, "network", cfg.Network, "db_path", cfg.DBPath,
		"control_addr", cfg.ControlAddr, "control_socket", cfg.ControlSocket, "workers", cfg.Workers)

	sup, err := supervisor.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	return sup.Run(context.Background())
}

func newLogger(format string, w io.Writer) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
