// Package queue connects the job processor to a Redis Stream: it consumes
// job descriptors through a consumer group and publishes results back onto
// the same stream.
package queue

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parsererror"
)

// Steps and statuses carried by stream messages.
const (
	StepParse           = "parse"
	StepParsing         = "parsing"
	StepParsingComplete = "parsing_complete"

	StatusDone  = "done"
	StatusError = "error"

	unknownJobID = "unknown"
)

// Message is one stream entry.
type Message struct {
	ID     string
	Values map[string]interface{}
}

// ShouldProcess reports whether a message with this step is a job for this
// worker. Matching is case-insensitive.
func ShouldProcess(step string) bool {
	switch strings.ToLower(strings.TrimSpace(step)) {
	case StepParse, StepParsing:
		return true
	}
	return false
}

// Step returns the message's step field, or "".
func (m Message) Step() string {
	return stringValue(m.Values["step"])
}

// JobID returns the message's jobId field, or "unknown".
func (m Message) JobID() string {
	if id := stringValue(m.Values["jobId"]); id != "" {
		return id
	}
	return unknownJobID
}

// DecodeJob turns stream values into a JobRequest. files may be a list or a
// JSON-encoded list. A missing directory or file list is a
// *parsererror.MalformedJobError.
func DecodeJob(m Message) (models.JobRequest, error) {
	req := models.JobRequest{
		JobID:     m.JobID(),
		Directory: stringValue(m.Values["directory"]),
		Step:      m.Step(),
	}
	if ts, err := strconv.ParseInt(stringValue(m.Values["timestamp"]), 10, 64); err == nil {
		req.Timestamp = ts
	}

	if req.Directory == "" {
		return req, &parsererror.MalformedJobError{Field: "directory", Reason: "is required"}
	}

	files, err := decodeFiles(m.Values["files"])
	if err != nil {
		return req, err
	}
	req.Files = files
	return req, nil
}

func decodeFiles(v interface{}) ([]string, error) {
	var files []string
	switch val := v.(type) {
	case nil:
	case []string:
		files = val
	case []interface{}:
		for _, f := range val {
			s, ok := f.(string)
			if !ok {
				return nil, &parsererror.MalformedJobError{Field: "files", Reason: "must contain only file names"}
			}
			files = append(files, s)
		}
	case string:
		if strings.TrimSpace(val) == "" {
			break
		}
		if err := json.Unmarshal([]byte(val), &files); err != nil {
			return nil, &parsererror.MalformedJobError{Field: "files", Reason: "must be a JSON list of file names"}
		}
	default:
		return nil, &parsererror.MalformedJobError{Field: "files", Reason: fmt.Sprintf("has unsupported type %T", v)}
	}

	if len(files) == 0 {
		return nil, &parsererror.MalformedJobError{Field: "files", Reason: "is required"}
	}
	return files, nil
}

// EncodeResult builds the stream values announcing a finished job. The
// result travels JSON-encoded in the metadata field.
func EncodeResult(result *models.JobResult, now time.Time) (map[string]interface{}, error) {
	metadata, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result for job %s: %w", result.JobID, err)
	}
	return map[string]interface{}{
		"jobId":     result.JobID,
		"step":      StepParsingComplete,
		"status":    StatusDone,
		"timestamp": strconv.FormatInt(now.UnixMilli(), 10),
		"metadata":  string(metadata),
	}, nil
}

// EncodeError builds the stream values reporting a job that could not run.
func EncodeError(jobID, reason string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"jobId":     jobID,
		"step":      StepParsing,
		"status":    StatusError,
		"timestamp": strconv.FormatInt(now.UnixMilli(), 10),
		"error":     reason,
	}
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []byte:
		return strings.TrimSpace(string(val))
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
