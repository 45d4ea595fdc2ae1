package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

func newIsolateCmd() *cobra.Command {
	var alias string
	cmd := &cobra.Command{
		Use:   "isolate <channel_id>",
		Short: "Begin isolating a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sess httpapi.Session
			err := apiCall("POST", "/v1/sessions", httpapi.IsolateRequest{ChannelID: args[0], Alias: alias}, &sess)
			if err != nil {
				return err
			}
			fmt.Printf("isolating channel %s (session %d)\n", sess.ChannelName, sess.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "human-readable label for the session")
	return cmd
}
