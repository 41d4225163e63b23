package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// JobSession captures one job's records into logs/jobs/<id>.log alongside
// whatever the base logger does.
type JobSession struct {
	file    *os.File
	handler slog.Handler
	path    string
}

// JobLogPath returns where a job's session log lives under logDir.
func JobLogPath(logDir string, jobID int64) string {
	return filepath.Join(logDir, "jobs", strconv.FormatInt(jobID, 10)+".log")
}

// OpenJobSession creates (or appends to) the job's session log file. The
// returned handler writes JSON at debug level with the job id attached.
func OpenJobSession(logDir string, jobID int64) (*JobSession, error) {
	path := JobLogPath(logDir, jobID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure job log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open job log %s: %w", path, err)
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	handler := newJSONHandler(file, level, false).
		WithAttrs([]slog.Attr{slog.Int64(FieldJobID, jobID)})

	return &JobSession{file: file, handler: handler, path: path}, nil
}

// Handler exposes the capture handler for TeeLogger.
func (s *JobSession) Handler() slog.Handler {
	if s == nil {
		return NoopHandler{}
	}
	return s.handler
}

// Path returns the session log file path.
func (s *JobSession) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close flushes and releases the session log file.
func (s *JobSession) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
