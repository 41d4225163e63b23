package workflow

import (
	"context"
	"log/slog"

	"storyreel/internal/logging"
	"storyreel/internal/queue"
)

// openJobSession opens the per-job capture log. Session failures degrade to
// the daemon log alone; processing never stops for log plumbing.
func (m *Manager) openJobSession(logger *slog.Logger, job *queue.Job) *logging.JobSession {
	if m.cfg == nil || m.cfg.Paths.LogDir == "" || job == nil {
		return nil
	}
	session, err := logging.OpenJobSession(m.cfg.Paths.LogDir, job.ID)
	if err != nil {
		logger.Warn("job log unavailable", logging.Error(err))
		return nil
	}
	return session
}

func (m *Manager) stageLogger(ctx context.Context, runnerLogger *slog.Logger, session *logging.JobSession) *slog.Logger {
	base := runnerLogger
	if base == nil {
		base = logging.NewNop()
	}
	if session != nil {
		base = logging.TeeLogger(base, session.Handler())
	}
	return logging.WithContext(ctx, base)
}
