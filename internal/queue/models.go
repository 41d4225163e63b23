package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Status represents the lifecycle of a queue job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusScripting  Status = "scripting"
	StatusScripted   Status = "scripted"
	StatusNarrating  Status = "narrating"
	StatusNarrated   Status = "narrated"
	StatusAnimating  Status = "animating"
	StatusAnimated   Status = "animated"
	StatusAssembling Status = "assembling"
	StatusAssembled  Status = "assembled"
	StatusUploading  Status = "uploading"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReview     Status = "review"
)

// DaemonStopReason is the error message set when jobs are failed due to
// daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusScripting,
	StatusScripted,
	StatusNarrating,
	StatusNarrated,
	StatusAnimating,
	StatusAnimated,
	StatusAssembling,
	StatusAssembled,
	StatusUploading,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusScripting:  {},
	StatusNarrating:  {},
	StatusAnimating:  {},
	StatusAssembling: {},
	StatusUploading:  {},
}

// Subheading is one generated video section heading persisted on the job.
type Subheading struct {
	Heading string `json:"heading"`
	Text    string `json:"text"`
}

// Job represents a video-generation job persisted in SQLite. Token is the
// identifier exposed through the HTTP API; the numeric ID stays internal.
type Job struct {
	ID              int64
	Token           string
	Prompt          string
	Title           string
	DocumentPath    string
	Status          Status
	StoryboardText  string
	Description     string
	SubheadingsJSON string
	NarrationDir    string
	SegmentsDir     string
	VideoPath       string
	MediaURL        string
	ErrorMessage    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	MetadataJSON    string
	LastHeartbeat   *time.Time
	NeedsReview     bool
	ReviewReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight stage.
func (j Job) IsProcessing() bool {
	return IsProcessingStatus(j.Status)
}

// IsProcessingStatus reports whether a status reflects an in-flight stage.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status ends the job's lifecycle.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// Subheadings decodes the persisted subheading list, or nil when absent.
func (j Job) Subheadings() []Subheading {
	trimmed := strings.TrimSpace(j.SubheadingsJSON)
	if trimmed == "" {
		return nil
	}
	var out []Subheading
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil
	}
	return out
}

// SetSubheadings encodes and stores the subheading list on the job.
func (j *Job) SetSubheadings(subs []Subheading) error {
	if len(subs) == 0 {
		j.SubheadingsJSON = ""
		return nil
	}
	encoded, err := json.Marshal(subs)
	if err != nil {
		return err
	}
	j.SubheadingsJSON = string(encoded)
	return nil
}

// InitProgress resets progress fields for a new stage. ProgressMessage is set
// to message, ProgressPercent resets to 0, and ErrorMessage clears.
func (j *Job) InitProgress(stage, message string) {
	if j.ProgressStage == "" {
		j.ProgressStage = stage
	}
	j.ProgressMessage = message
	j.ProgressPercent = 0
	j.ErrorMessage = ""
}

// SetProgress updates all three progress fields together.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
func (j *Job) SetProgressComplete(stage, message string) {
	j.SetProgress(stage, message, 100)
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressPercent = 0
	j.ProgressMessage = message
	j.LastHeartbeat = nil
	j.ProgressStage = "Failed"
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}
