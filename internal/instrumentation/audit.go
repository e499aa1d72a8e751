package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation captures all information about a tool invocation for audit logging.
// This provides an audit trail for all MCP tool calls, including which Vikunja
// instance was targeted and whether a filter expression was applied.
type ToolInvocation struct {
	// Tool name
	Tool string

	// Target information
	Instance  string // Vikunja instance name (default, work, personal)
	Operation string // Operation type (list, get, create, update, delete)
	ProjectID int64  // Vikunja project, 0 when not project-scoped
	TaskID    int64  // Vikunja task, 0 when not task-scoped

	// FilterConditions is the number of conditions in the applied filter
	// expression, 0 when no filter was used. The filter text itself never
	// goes into the audit stream.
	FilterConditions int

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all tool invocation logs.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	// Add optional fields only if present
	if ti.Instance != "" && ti.Instance != "default" {
		attrs = append(attrs, slog.String("instance", ti.Instance))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.ProjectID != 0 {
		attrs = append(attrs, slog.Int64("project_id", ti.ProjectID))
	}
	if ti.TaskID != 0 {
		attrs = append(attrs, slog.Int64("task_id", ti.TaskID))
	}
	if ti.FilterConditions > 0 {
		attrs = append(attrs, slog.Int("filter_conditions", ti.FilterConditions))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// invocationContextKey keys the invocation record carried through handler
// contexts.
type invocationContextKey struct{}

// ContextWithInvocation returns a context carrying the invocation record so
// handler internals can annotate it, e.g. with the applied filter's
// condition count.
func ContextWithInvocation(ctx context.Context, ti *ToolInvocation) context.Context {
	return context.WithValue(ctx, invocationContextKey{}, ti)
}

// InvocationFromContext returns the invocation record carried by ctx, if any.
func InvocationFromContext(ctx context.Context) (*ToolInvocation, bool) {
	ti, ok := ctx.Value(invocationContextKey{}).(*ToolInvocation)
	return ti, ok
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete() when the tool operation finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithInstance sets the Vikunja instance name.
func (ti *ToolInvocation) WithInstance(instance string) *ToolInvocation {
	ti.Instance = instance
	return ti
}

// WithOperation sets the operation type.
func (ti *ToolInvocation) WithOperation(operation string) *ToolInvocation {
	ti.Operation = operation
	return ti
}

// WithProject sets the target project.
func (ti *ToolInvocation) WithProject(projectID int64) *ToolInvocation {
	ti.ProjectID = projectID
	return ti
}

// WithTask sets the target task.
func (ti *ToolInvocation) WithTask(taskID int64) *ToolInvocation {
	ti.TaskID = taskID
	return ti
}

// WithFilter records that a filter expression with the given number of
// conditions was applied.
func (ti *ToolInvocation) WithFilter(conditions int) *ToolInvocation {
	ti.FilterConditions = conditions
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ti.TraceID = span.SpanContext().TraceID().String()
		ti.SpanID = span.SpanContext().SpanID().String()
	}
	return ti
}

// Complete marks the invocation as completed and calculates duration.
// Returns the same ToolInvocation for method chaining.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger provides structured audit logging for tool invocations.
// It wraps slog.Logger with convenience methods for logging tool operations.
type AuditLogger struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:  logger,
		enabled: config.Enabled,
	}
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogToolInvocation logs a tool invocation using the standard log attributes.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.enabled {
		return
	}

	attrs := ti.LogAttrs()
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}
