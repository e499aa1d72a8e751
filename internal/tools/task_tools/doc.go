// Package task_tools provides MCP tools for managing Vikunja projects and tasks.
//
// This package implements MCP (Model Context Protocol) tools that wrap the
// Vikunja client functionality, providing project listing and task management
// capabilities for AI assistants.
//
// # Available Tools
//
// Read tools (always registered):
//   - vikunja_list_projects: List all projects
//   - vikunja_list_tasks: List tasks in a project, optionally filtered by a
//     filter expression or a saved filter
//   - vikunja_get_task: Get details of a specific task
//
// Write tools (registered only when the server is not read-only):
//   - vikunja_create_task: Create a new task
//   - vikunja_update_task: Update a task
//   - vikunja_delete_task: Delete a task
//
// # Filtering
//
// The 'filter' parameter of vikunja_list_tasks accepts expressions such as
// "done = false && priority >= 3" or "dueDate < now+7d". Because the upstream
// filter query parameter is not reliably honored across Vikunja versions,
// filtering always happens client-side after fetching the project's tasks.
//
// # Multi-Instance Support
//
// All tools support an optional 'instance' parameter to select which
// configured Vikunja instance to use. If not provided, the 'default'
// instance is used.
package task_tools
