package api

import (
	"sort"

	"storyreel/internal/queue"
	"storyreel/internal/stage"
	"storyreel/internal/workflow"
)

// FromJob converts a queue record to its API representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:     job.ID,
		JobID:  job.Token,
		Title:  job.Title,
		Prompt: job.Prompt,
		Status: string(job.Status),
		Progress: JobProgress{
			Stage:   job.ProgressStage,
			Percent: job.ProgressPercent,
			Message: job.ProgressMessage,
		},
		ErrorMessage: job.ErrorMessage,
		Description:  job.Description,
		VideoPath:    job.VideoPath,
		MediaURL:     job.MediaURL,
		NeedsReview:  job.NeedsReview,
		ReviewReason: job.ReviewReason,
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromJobs converts a slice of queue records into API DTOs.
func FromJobs(jobs []*queue.Job) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromStatusSummary converts workflow diagnostics into the API shape.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:     summary.Running,
		LastError:   summary.LastError,
		QueueStats:  statusCounts(summary.QueueStats),
		StageHealth: stageHealthSlice(summary.StageHealth),
	}
	if summary.LastJob != nil {
		dto := FromJob(summary.LastJob)
		status.LastJob = &dto
	}
	return status
}

func statusCounts(stats map[queue.Status]int) map[string]int {
	if len(stats) == 0 {
		return map[string]int{}
	}
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// stageHealthSlice flattens the health map in deterministic name order.
func stageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}
