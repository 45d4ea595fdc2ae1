package main

import (
	"github.com/spf13/cobra"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active isolation sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp httpapi.SessionsResponse
			if err := apiCall("GET", "/v1/sessions", nil, &resp); err != nil {
				return err
			}
			renderSessions(resp.Sessions)
			return nil
		},
	}
}
