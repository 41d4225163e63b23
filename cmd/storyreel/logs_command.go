package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Tail the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			tail, err := client.Logs(cmd.Context(), lines)
			if err != nil {
				return fmt.Errorf("fetch logs: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 100, "Number of log lines to show")
	return cmd
}
