package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

func newExceptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exceptions <channel_id>",
		Short: "List exceptions granted on an active isolation session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/sessions/%s/exceptions", args[0])
			var resp httpapi.ExceptionsResponse
			if err := apiCall("GET", path, nil, &resp); err != nil {
				return err
			}
			renderExceptions(resp.Exceptions)
			return nil
		},
	}
}
