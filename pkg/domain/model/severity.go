package model

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
)

// Severity of a diagnostic record
type Severity string

const (
	SeverityDebug   Severity = "debug"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal"
)

// Validate checks if the severity is one of the known values
func (s Severity) Validate() error {
	switch s {
	case SeverityDebug, SeverityInfo, SeverityWarning, SeverityError, SeverityFatal:
		return nil
	default:
		return goerr.Wrap(ErrInvalidSeverity, "unknown severity", goerr.V("severity", string(s)))
	}
}

// SlogLevel maps the severity onto a slog level. Unknown values map to error.
func (s Severity) SlogLevel() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
