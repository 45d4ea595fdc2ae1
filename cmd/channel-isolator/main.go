// Command channel-isolator is the external policy enforcer for a Lightning
// Network node's HTLC interceptor stream. Its run subcommand is the daemon;
// every other subcommand is a thin HTTP client against the running daemon's
// Control API. Invoked with no subcommand, it prints usage.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "channel-isolator",
		Short: "External policy enforcer for a Lightning Network node's HTLC interceptor",
	}

	rootCmd.PersistentFlags().String("control-addr", "127.0.0.1:7621", "address of the running daemon's Control API")
	_ = viper.BindPFlag("control_addr", rootCmd.PersistentFlags().Lookup("control-addr"))

	viper.SetEnvPrefix("CHANNEL_ISOLATOR")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.AddCommand(
		newRunCmd(),
		newIsolateCmd(),
		newStopCmd(),
		newAddExceptionCmd(),
		newRemoveExceptionCmd(),
		newListCmd(),
		newExceptionsCmd(),
		newHistoryCmd(),
		newAttemptsCmd(),
		newStatsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
