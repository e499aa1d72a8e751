package logging

import (
	"log/slog"
	"os"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyTool      = "tool"
	KeyInstance  = "instance"
	KeyProjectID = "project_id"
	KeyTaskID    = "task_id"
	KeyFilter    = "filter"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from the instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Setup configures the default slog logger. Logging always goes to stderr
// so the MCP protocol stream on stdout stays clean in stdio transport mode.
func Setup(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithInstance returns a logger with the Vikunja instance attribute set.
func WithInstance(logger *slog.Logger, instance string) *slog.Logger {
	return logger.With(slog.String(KeyInstance, instance))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Instance returns a slog attribute for the Vikunja instance name.
func Instance(instance string) slog.Attr {
	return slog.String(KeyInstance, instance)
}

// ProjectID returns a slog attribute for a project id.
func ProjectID(id int64) slog.Attr {
	return slog.Int64(KeyProjectID, id)
}

// TaskID returns a slog attribute for a task id.
func TaskID(id int64) slog.Attr {
	return slog.Int64(KeyTaskID, id)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from
// output. This allows safely passing Err(maybeNilErr) without adding empty
// attributes.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// FilterExcerpt truncates filter text for logging. Filters are user input
// and can be long; logs only need enough of them to correlate.
func FilterExcerpt(filterText string) slog.Attr {
	const maxLen = 120
	if len(filterText) > maxLen {
		filterText = filterText[:maxLen] + "..."
	}
	return slog.String(KeyFilter, filterText)
}
