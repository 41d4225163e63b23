package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "submit <prompt>...",
		Short: "Queue a new storyboard video job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return fmt.Errorf("prompt is required")
			}
			if filePath != "" {
				if _, err := os.Stat(filePath); err != nil {
					return fmt.Errorf("supporting document: %w", err)
				}
			}

			session, err := ctx.openAccess(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()

			token, err := session.Access.Submit(cmd.Context(), prompt, filePath)
			if err != nil {
				return fmt.Errorf("submit job: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued job %s\n", token)
			if !session.ViaDaemon {
				fmt.Fprintln(out, "Daemon not reachable; job was written directly to the queue and will start once the daemon runs")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Supporting document to ground the storyboard")
	return cmd
}
