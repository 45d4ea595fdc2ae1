package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveExceptionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-exception <isolated_channel_id> <allowed_channel_id>",
		Short: "Remove a previously granted exception",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/sessions/%s/exceptions/%s", args[0], args[1])
			if err := apiCall("DELETE", path, nil, nil); err != nil {
				return err
			}
			fmt.Printf("removed exception for channel %s on isolated channel %s\n", args[1], args[0])
			return nil
		},
	}
}
