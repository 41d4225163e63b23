package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, token, prompt, title, document_path, status, storyboard_text, description, subheadings_json, narration_dir, segments_dir, video_path, media_url, error_message, progress_stage, progress_percent, progress_message, metadata_json, last_heartbeat, needs_review, review_reason, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id               int64
		token            string
		prompt           string
		title            sql.NullString
		documentPath     sql.NullString
		statusStr        string
		storyboardText   sql.NullString
		description      sql.NullString
		subheadings      sql.NullString
		narrationDir     sql.NullString
		segmentsDir      sql.NullString
		videoPath        sql.NullString
		mediaURL         sql.NullString
		errorMessage     sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		metadata         sql.NullString
		lastHeartbeatRaw sql.NullString
		needsReview      sql.NullInt64
		reviewReason     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&token,
		&prompt,
		&title,
		&documentPath,
		&statusStr,
		&storyboardText,
		&description,
		&subheadings,
		&narrationDir,
		&segmentsDir,
		&videoPath,
		&mediaURL,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&metadata,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		Token:           token,
		Prompt:          prompt,
		Title:           title.String,
		DocumentPath:    documentPath.String,
		Status:          Status(statusStr),
		StoryboardText:  storyboardText.String,
		Description:     description.String,
		SubheadingsJSON: subheadings.String,
		NarrationDir:    narrationDir.String,
		SegmentsDir:     segmentsDir.String,
		VideoPath:       videoPath.String,
		MediaURL:        mediaURL.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		MetadataJSON:    metadata.String,
		ReviewReason:    reviewReason.String,
	}
	if needsReview.Valid {
		job.NeedsReview = needsReview.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			job.LastHeartbeat = &heartbeat
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
