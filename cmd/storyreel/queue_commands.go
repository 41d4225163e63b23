package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the job queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openAccess(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()

			jobs, err := session.Access.List(cmd.Context(), statuses)
			if err != nil {
				return fmt.Errorf("list queue: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.JobID,
					job.Title,
					job.Status,
					formatProgress(job.Progress),
					job.UpdatedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Token", "Title", "Status", "Progress", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|token>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openAccess(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()

			var job *api.Job
			if id, idErr := strconv.ParseInt(args[0], 10, 64); idErr == nil {
				job, err = session.Access.Describe(cmd.Context(), id)
			} else {
				job, err = session.Access.DescribeToken(cmd.Context(), args[0])
			}
			if err != nil {
				return fmt.Errorf("describe job: %w", err)
			}
			if job == nil {
				return fmt.Errorf("job %s not found", args[0])
			}

			printJob(cmd, job)
			return nil
		},
	}
}

func printJob(cmd *cobra.Command, job *api.Job) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:        %d\n", job.ID)
	fmt.Fprintf(out, "Token:     %s\n", job.JobID)
	fmt.Fprintf(out, "Title:     %s\n", job.Title)
	fmt.Fprintf(out, "Status:    %s\n", job.Status)
	fmt.Fprintf(out, "Progress:  %s\n", formatProgress(job.Progress))
	if job.Prompt != "" {
		fmt.Fprintf(out, "Prompt:    %s\n", job.Prompt)
	}
	if job.Description != "" {
		fmt.Fprintf(out, "Summary:   %s\n", job.Description)
	}
	if job.VideoPath != "" {
		fmt.Fprintf(out, "Video:     %s\n", job.VideoPath)
	}
	if job.MediaURL != "" {
		fmt.Fprintf(out, "URL:       %s\n", job.MediaURL)
	}
	if job.NeedsReview {
		fmt.Fprintf(out, "Review:    %s\n", job.ReviewReason)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", job.ErrorMessage)
	}
	fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt)
	fmt.Fprintf(out, "Updated:   %s\n", job.UpdatedAt)
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id]...",
		Short: "Requeue failed or review jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid job id %q", arg)
				}
				ids = append(ids, id)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.RetryFailed(cmd.Context(), ids...)
			if err != nil {
				return fmt.Errorf("retry jobs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d job(s)\n", count)
			return nil
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a job from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Remove(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("remove job: %w", err)
			}
			if !removed {
				return fmt.Errorf("job %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed job %d\n", id)
			return nil
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearFailed bool
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear completed jobs (or failed/all with flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var count int64
			var what string
			switch {
			case clearAll:
				count, err = store.Clear(cmd.Context())
				what = "job(s)"
			case clearFailed:
				count, err = store.ClearFailed(cmd.Context())
				what = "failed job(s)"
			default:
				count, err = store.ClearCompleted(cmd.Context())
				what = "completed job(s)"
			}
			if err != nil {
				return fmt.Errorf("clear queue: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", count, what)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Clear failed jobs instead of completed")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Clear every job regardless of status")
	return cmd
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Summarize queue health",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			health, err := store.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("queue health: %w", err)
			}

			rows := [][]string{
				{"Total", strconv.Itoa(health.Total)},
				{"Pending", strconv.Itoa(health.Pending)},
				{"Processing", strconv.Itoa(health.Processing)},
				{"Completed", strconv.Itoa(health.Completed)},
				{"Failed", strconv.Itoa(health.Failed)},
				{"Review", strconv.Itoa(health.Review)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"State", "Jobs"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

func formatProgress(progress api.JobProgress) string {
	if progress.Stage == "" && progress.Message == "" {
		return "-"
	}
	parts := make([]string, 0, 3)
	if progress.Stage != "" {
		parts = append(parts, progress.Stage)
	}
	parts = append(parts, fmt.Sprintf("%.0f%%", progress.Percent))
	if progress.Message != "" {
		parts = append(parts, progress.Message)
	}
	return strings.Join(parts, " | ")
}
