// Package config holds channel-isolator's runtime configuration, loaded
// from cobra flags bound into viper so CHANNEL_ISOLATOR_* environment
// variables and flags both populate the same settings.
package config

import "github.com/spf13/viper"

// Version is the build version string. No code in this module sets it; it
// is a plain var so a build can override it with -ldflags -X, and it
// defaults to "dev".
var Version = "dev"

// Config holds all runtime configuration for the daemon (`run` subcommand).
type Config struct {
	NodeDir       string
	Network       string
	RPCAddr       string
	DBPath        string
	ControlAddr   string
	ControlSocket string
	Workers       int
	LogFormat     string
}

// Load reads configuration from viper, which merges flag values, env vars,
// and defaults (set up by the cobra command in cmd/channel-isolator).
func Load() Config {
	return Config{
		NodeDir:       viper.GetString("node_dir"),
		Network:       viper.GetString("network"),
		RPCAddr:       viper.GetString("rpc_addr"),
		DBPath:        viper.GetString("db_path"),
		ControlAddr:   viper.GetString("control_addr"),
		ControlSocket: viper.GetString("control_socket"),
		Workers:       viper.GetInt("workers"),
		LogFormat:     viper.GetString("log_format"),
	}
}
