package workflow

import (
	"context"
	"errors"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/storyboard"
)

func (m *Manager) notifyStageOutcome(ctx context.Context, stg pipelineStage, job *queue.Job) {
	if m.notifier == nil {
		return
	}
	var err error
	switch stg.name {
	case "scripter":
		err = m.notifier.NotifyScriptReady(ctx, job.Title, frameCount(job.StoryboardText))
	case "assembler":
		err = m.notifier.NotifyRenderCompleted(ctx, job.Title)
	case "uploader":
		err = m.notifier.NotifyUploadCompleted(ctx, job.Title, job.MediaURL)
	default:
		return
	}
	m.logNotifyError(ctx, err, "stage outcome notification failed")
}

func (m *Manager) notifyStageFailure(ctx context.Context, job *queue.Job, resolved queue.Status, message string, stageErr error) {
	if m.notifier == nil {
		return
	}
	var err error
	if resolved == queue.StatusReview {
		err = m.notifier.NotifyJobReview(ctx, job.Title, message)
	} else {
		err = m.notifier.NotifyJobFailed(ctx, job.Title, stageErr)
	}
	m.logNotifyError(ctx, err, "failure notification failed")
}

func (m *Manager) onJobStarted(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	m.mu.Lock()
	if m.queueActive {
		m.mu.Unlock()
		return
	}
	m.queueActive = true
	m.queueStart = time.Now()
	m.mu.Unlock()
}

func (m *Manager) checkQueueCompletion(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logNotifyError(ctx, err, "queue stats unavailable for drain notification")
		return
	}
	if countActiveJobs(stats) > 0 {
		return
	}

	m.mu.Lock()
	if !m.queueActive {
		m.mu.Unlock()
		return
	}
	start := m.queueStart
	m.queueActive = false
	m.queueStart = time.Time{}
	m.mu.Unlock()

	duration := time.Duration(0)
	if !start.IsZero() {
		duration = time.Since(start)
	}
	err = m.notifier.NotifyQueueDrained(ctx, stats[queue.StatusCompleted], stats[queue.StatusFailed], duration)
	m.logNotifyError(ctx, err, "queue drained notification failed")
}

func (m *Manager) logNotifyError(ctx context.Context, err error, message string) {
	if err == nil || m.logger == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		m.logger.Debug("daemon shutting down, notification skipped")
		return
	}
	m.logger.Debug(message, logging.Error(err))
}

func countActiveJobs(stats map[queue.Status]int) int {
	total := 0
	for status, count := range stats {
		if status.IsTerminal() {
			continue
		}
		total += count
	}
	return total
}

func frameCount(encoded string) int {
	sb, err := storyboard.Decode(encoded)
	if err != nil {
		return 0
	}
	return len(sb.Frames)
}
