// Package filter_tools provides MCP tools for working with filter expressions.
//
// This package implements MCP (Model Context Protocol) tools around the
// filter engine: validating expressions, building them from structured
// conditions, and managing named saved filters.
//
// # Available Tools
//
// Expression tools:
//   - filter_validate: Validate a filter expression and report errors/warnings
//   - filter_build: Build a filter expression string from structured conditions
//
// Saved filter management:
//   - filter_save: Save a named filter expression
//   - filter_list: List saved filters, optionally scoped to a project
//   - filter_get: Get a saved filter by ID
//   - filter_update: Update a saved filter's name or expression
//   - filter_delete: Delete a saved filter
//
// Saved filters live in server memory and never touch the upstream Vikunja
// API, so all tools in this package remain available in read-only mode.
package filter_tools
