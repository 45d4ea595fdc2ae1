package main

import (
	"github.com/spf13/cobra"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate isolation statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats httpapi.Statistics
			if err := apiCall("GET", "/v1/stats", nil, &stats); err != nil {
				return err
			}
			renderStats(stats)
			return nil
		},
	}
}
