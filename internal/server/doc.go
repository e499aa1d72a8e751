// Package server provides the MCP server context and the dedicated
// metrics/health HTTP endpoints for the vikunja-mcp application.
//
// # Key Components
//
// ServerContext manages Vikunja API clients with lazy initialization and
// caching. It supports multiple named instances (default, work, personal),
// owns the in-memory saved filter store, and carries the read-only flag
// that gates all mutating tools.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolating
// operational metrics from MCP traffic.
//
// HealthChecker provides /healthz and /readyz endpoints for Kubernetes
// probes. Readiness covers the shutdown state and instance configuration.
package server
