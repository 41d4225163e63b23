package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/reveal"
	"storyreel/internal/storyboard"
)

func newDecodeCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:         "decode [storyboard]",
		Short:       "Decode a storyboard encoding and print its reveal plan",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := storyboardInput(args, filePath)
			if err != nil {
				return err
			}

			board, err := storyboard.Decode(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			totalSteps := 0
			for i, frame := range board.Frames {
				steps := reveal.Steps(i, frame, time.Second)
				totalSteps += len(steps)

				fmt.Fprintf(out, "Frame %d [%s]: %s\n", i, frame.Label, frame.Text)
				if len(frame.Nodes) == 0 {
					fmt.Fprintln(out, "  caption only")
				} else {
					for j, node := range frame.Nodes {
						fmt.Fprintf(out, "  node %d: %s %s %q\n", j, node.Shape, node.Color, node.Label)
					}
					for _, conn := range frame.Connections {
						sources := make([]string, len(conn.Sources))
						for k, src := range conn.Sources {
							sources[k] = fmt.Sprintf("%d", src)
						}
						fmt.Fprintf(out, "  connection: %s -> %d\n", strings.Join(sources, ","), conn.Target)
					}
				}
				fmt.Fprintf(out, "  reveal steps: %d\n", len(steps))
			}
			fmt.Fprintf(out, "Total: %d frames, %d reveal steps\n", len(board.Frames), totalSteps)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read the storyboard encoding from a file")
	return cmd
}

func storyboardInput(args []string, filePath string) (string, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read storyboard file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide a storyboard encoding or --file")
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}
