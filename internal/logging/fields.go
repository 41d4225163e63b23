package logging

// Shared attribute keys so log records stay greppable across packages.
const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldStage         = "stage"
	FieldEvent         = "event"
	FieldCorrelationID = "correlation_id"
	FieldSessionID     = "session_id"
	FieldDurationMS    = "duration_ms"
	FieldError         = "error"
)
