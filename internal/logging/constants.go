package logging

// Standardized field names for structured logging.
const (
	FieldJobID      = "job_id"
	FieldFile       = "file"
	FieldDirectory  = "directory"
	FieldRow        = "row"
	FieldCategory   = "category"
	FieldKind       = "kind"
	FieldStrategy   = "strategy"
	FieldColumn     = "column"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldFileCount  = "file_count"
	FieldErrorCount = "error_count"
	FieldMessageID  = "message_id"
	FieldStream     = "stream"
	FieldStep       = "step"
	FieldStage      = "stage"
)
