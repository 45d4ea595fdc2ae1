package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <channel_id>",
		Short: "Stop isolating a channel and resume normal forwarding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/sessions/%s/stop", args[0])
			if err := apiCall("POST", path, nil, nil); err != nil {
				return err
			}
			fmt.Printf("stopped isolating channel %s\n", args[0])
			return nil
		},
	}
}
