package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

func newAddExceptionCmd() *cobra.Command {
	var alias string
	cmd := &cobra.Command{
		Use:   "add-exception <isolated_channel_id> <allowed_channel_id>",
		Short: "Allow HTLCs between an isolated channel and one other channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/sessions/%s/exceptions", args[0])
			var exc httpapi.Exception
			req := httpapi.AddExceptionRequest{AllowedChannelID: args[1], Alias: alias}
			if err := apiCall("POST", path, req, &exc); err != nil {
				return err
			}
			fmt.Printf("allowed channel %s through isolated channel %s\n", exc.AllowedChannel, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "human-readable label for the exception")
	return cmd
}
