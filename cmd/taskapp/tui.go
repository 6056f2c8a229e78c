package main

import (
	"github.com/spf13/cobra"

	"taskapp/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeFn, err := connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return tui.Run(cmd.Context(), client)
		},
	}
}
