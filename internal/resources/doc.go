// Package resources provides MCP resources for exposing server configuration
// and filter grammar data. Resources are read-only data sources that MCP
// clients can fetch, such as the configured Vikunja instances, the filter
// field catalogue, and the saved filters known to this server.
package resources
