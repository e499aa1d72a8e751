package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrTool      = "tool"
	attrInstance  = "instance"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	// Vikunja API metrics
	vikunjaAPIOperationsTotal   metric.Int64Counter
	vikunjaAPIOperationDuration metric.Float64Histogram

	// Filter engine metrics
	filterParsesTotal       metric.Int64Counter
	filterValidationsTotal  metric.Int64Counter
	filterEvaluationsTotal  metric.Int64Counter
	filterTasksMatchedTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of active MCP sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_sessions gauge: %w", err)
	}

	// Vikunja API Metrics
	m.vikunjaAPIOperationsTotal, err = meter.Int64Counter(
		"vikunja_api_operations_total",
		metric.WithDescription("Total number of Vikunja API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vikunja_api_operations_total counter: %w", err)
	}

	m.vikunjaAPIOperationDuration, err = meter.Float64Histogram(
		"vikunja_api_operation_duration_seconds",
		metric.WithDescription("Vikunja API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vikunja_api_operation_duration_seconds histogram: %w", err)
	}

	// Filter Engine Metrics
	m.filterParsesTotal, err = meter.Int64Counter(
		"filter_parses_total",
		metric.WithDescription("Total number of filter expression parse attempts"),
		metric.WithUnit("{parse}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter_parses_total counter: %w", err)
	}

	m.filterValidationsTotal, err = meter.Int64Counter(
		"filter_validations_total",
		metric.WithDescription("Total number of filter expression validations"),
		metric.WithUnit("{validation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter_validations_total counter: %w", err)
	}

	m.filterEvaluationsTotal, err = meter.Int64Counter(
		"filter_evaluations_total",
		metric.WithDescription("Total number of client-side filter evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter_evaluations_total counter: %w", err)
	}

	m.filterTasksMatchedTotal, err = meter.Int64Counter(
		"filter_tasks_matched_total",
		metric.WithDescription("Total number of tasks matched by filter evaluations"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter_tasks_matched_total counter: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordVikunjaAPIOperation records a Vikunja API operation with operation type,
// status, and duration.
//
// Parameters:
//   - operation: Operation type (list_projects, list_tasks, get_task, create_task, ...)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordVikunjaAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.vikunjaAPIOperationsTotal == nil || m.vikunjaAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.vikunjaAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.vikunjaAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordFilterParse records a filter expression parse attempt.
// Result should be one of: "ok", "invalid"
func (m *Metrics) RecordFilterParse(ctx context.Context, result string) {
	if m.filterParsesTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.filterParsesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFilterValidation records a filter expression validation.
// Result should be one of: "ok", "invalid"
func (m *Metrics) RecordFilterValidation(ctx context.Context, result string) {
	if m.filterValidationsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.filterValidationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFilterEvaluation records a client-side filter evaluation over a task set.
// The matched count feeds the filter_tasks_matched_total counter so dashboards
// can track filter selectivity.
func (m *Metrics) RecordFilterEvaluation(ctx context.Context, matched int) {
	if m.filterEvaluationsTotal == nil || m.filterTasksMatchedTotal == nil {
		return // Instrumentation not initialized
	}

	m.filterEvaluationsTotal.Add(ctx, 1)
	m.filterTasksMatchedTotal.Add(ctx, int64(matched))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "vikunja_list_tasks", "filter_validate")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocationWithInstance records an MCP tool invocation with instance info.
// The instance label is only added when detailedLabels is enabled, since deployments
// with many configured Vikunja instances would otherwise blow up cardinality.
func (m *Metrics) RecordToolInvocationWithInstance(ctx context.Context, toolName, status, instance string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && instance != "" {
		attrs = append(attrs, attribute.String(attrInstance, instance))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active sessions counter.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m.activeSessions == nil {
		return // Instrumentation not initialized
	}

	m.activeSessions.Add(ctx, -1)
}
