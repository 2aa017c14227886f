package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// LogsResponse is the validated payload of GET /logs
type LogsResponse struct {
	Logs []LogEntry `json:"logs"`
}

// LogEntry is one backend log line. Every field is optional.
type LogEntry struct {
	Timestamp *string         `json:"timestamp,omitempty"`
	Level     *string         `json:"level,omitempty"`
	Action    *string         `json:"action,omitempty"`
	Message   *string         `json:"message,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// LogLevelClass is the style class of a log level
type LogLevelClass string

const (
	LogLevelClassError   LogLevelClass = "level-error"
	LogLevelClassWarning LogLevelClass = "level-warning"
	LogLevelClassInfo    LogLevelClass = "level-info"
	LogLevelClassDefault LogLevelClass = "level-default"
)

// ParseLogsResponse decodes and validates a logs payload. A missing logs field yields an
// empty list; a mistyped field rejects the payload.
func ParseLogsResponse(data []byte) (*LogsResponse, error) {
	var resp LogsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, goerr.Wrap(ErrInvalidResponse, "failed to decode logs response",
			goerr.V(EndpointKey, "/logs"), goerr.V("cause", err.Error()))
	}
	if resp.Logs == nil {
		resp.Logs = []LogEntry{}
	}
	return &resp, nil
}

// Title returns action, then message, then "System Event"
func (e LogEntry) Title() string {
	if e.Action != nil && *e.Action != "" {
		return *e.Action
	}
	if e.Message != nil && *e.Message != "" {
		return *e.Message
	}
	return "System Event"
}

// LevelText returns the level, or "" if absent
func (e LogEntry) LevelText() string {
	if e.Level == nil {
		return ""
	}
	return *e.Level
}

// LevelClass maps the level (case-insensitive) onto a style class
func (e LogEntry) LevelClass() LogLevelClass {
	switch strings.ToLower(e.LevelText()) {
	case "error":
		return LogLevelClassError
	case "warning":
		return LogLevelClassWarning
	case "info":
		return LogLevelClassInfo
	default:
		return LogLevelClassDefault
	}
}

// TimestampText formats an RFC 3339 timestamp in local time; other formats are returned
// unchanged and an absent timestamp yields "".
func (e LogEntry) TimestampText() string {
	if e.Timestamp == nil || *e.Timestamp == "" {
		return ""
	}
	ts, err := time.Parse(time.RFC3339Nano, *e.Timestamp)
	if err != nil {
		return *e.Timestamp
	}
	return ts.Local().Format("2006-01-02 15:04:05")
}

// DetailsText returns string details verbatim and any other JSON value indented.
// Absent or null details yield "".
func (e LogEntry) DetailsText() string {
	trimmed := bytes.TrimSpace(e.Details)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	var out bytes.Buffer
	if err := json.Indent(&out, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return out.String()
}
