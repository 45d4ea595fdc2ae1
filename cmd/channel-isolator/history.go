package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

func newHistoryCmd() *cobra.Command {
	var channel string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past isolation sessions, optionally filtered by channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/v1/sessions/history"
			if channel != "" {
				path += "?" + url.Values{"channel_id": {channel}}.Encode()
			}
			var resp httpapi.SessionsResponse
			if err := apiCall("GET", path, nil, &resp); err != nil {
				return err
			}
			renderSessions(resp.Sessions)
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "filter history to a single channel ID")
	return cmd
}
