package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

func newAttemptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attempts <session_id>",
		Short: "List intercepted HTLC attempts recorded for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/sessions/%s/attempts", args[0])
			var resp httpapi.AttemptsResponse
			if err := apiCall("GET", path, nil, &resp); err != nil {
				return err
			}
			renderAttempts(resp.Attempts)
			return nil
		},
	}
}
