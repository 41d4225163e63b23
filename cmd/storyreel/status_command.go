package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"storyreel/internal/api"
	"storyreel/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and environment checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			client := ctx.client()

			status, err := client.Status(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "Daemon:    not running (%s)\n", client.BaseURL())
			} else {
				fmt.Fprintf(out, "Daemon:    running (pid %d)\n", status.PID)
				fmt.Fprintf(out, "Workflow:  %s\n", runningState(status.Workflow.Running))
				fmt.Fprintf(out, "Queue DB:  %s\n", status.QueueDBPath)
				if status.Workflow.LastError != "" {
					fmt.Fprintf(out, "Last err:  %s\n", status.Workflow.LastError)
				}
				printQueueStats(cmd, status.Workflow.QueueStats)
				printStageHealth(cmd, status)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Environment checks:")
			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				state := "ok"
				if !result.Passed {
					state = "FAIL"
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "State", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func printQueueStats(cmd *cobra.Command, stats map[string]int) {
	if len(stats) == 0 {
		return
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, strconv.Itoa(stats[key])})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Status", "Jobs"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}

func printStageHealth(cmd *cobra.Command, status *api.DaemonStatus) {
	if len(status.Workflow.StageHealth) == 0 {
		return
	}
	rows := make([][]string, 0, len(status.Workflow.StageHealth))
	for _, health := range status.Workflow.StageHealth {
		state := "ready"
		if !health.Ready {
			state = "NOT READY"
		}
		rows = append(rows, []string{health.Name, state, health.Detail})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Stage", "State", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
}

func runningState(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
