// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the codebase so that
// log output stays consistent and searchable, plus small helpers for
// building slog attributes (Operation, Tool, Instance, Err, ...).
//
// All output goes to stderr: in stdio transport mode stdout carries the MCP
// protocol stream and must stay clean.
package logging
