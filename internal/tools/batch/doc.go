// Package batch provides helpers for tools that operate on multiple tasks
// in a single call. It handles parsing task ID parameters that accept a
// single ID or an array, running the per-task operation, and aggregating
// per-task results into a JSON summary.
package batch
