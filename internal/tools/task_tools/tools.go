package task_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mindthunk/vikunja-mcp/internal/filter"
	"github.com/mindthunk/vikunja-mcp/internal/filters"
	"github.com/mindthunk/vikunja-mcp/internal/instrumentation"
	"github.com/mindthunk/vikunja-mcp/internal/server"
	"github.com/mindthunk/vikunja-mcp/internal/tools/batch"
	"github.com/mindthunk/vikunja-mcp/internal/tools/common"
	"github.com/mindthunk/vikunja-mcp/internal/vikunja"
)

// getVikunjaClient retrieves or creates a Vikunja client for the specified instance
func getVikunjaClient(instance string, sc *server.ServerContext) (*vikunja.Client, error) {
	client, err := sc.VikunjaClientForInstance(instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get Vikunja client for instance %q: %w", instance, err)
	}
	return client, nil
}

// getInt64Arg extracts an integer argument. JSON numbers arrive as float64.
func getInt64Arg(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// resolveFilterText resolves the effective filter text for a list request.
// An explicit "filter" argument wins; otherwise "filterId" looks up a saved
// filter from the store.
func resolveFilterText(args map[string]interface{}, store *filters.Store) (string, error) {
	if text, ok := args["filter"].(string); ok && text != "" {
		return text, nil
	}
	if id, ok := args["filterId"].(string); ok && id != "" {
		saved, err := store.Get(id)
		if err != nil {
			return "", fmt.Errorf("saved filter %q not found", id)
		}
		return saved.Filter, nil
	}
	return "", nil
}

// applyFilter parses, validates, and applies a filter expression to tasks.
// Since the upstream filter query parameter is not reliably honored across
// Vikunja versions, filtering always happens client-side.
func applyFilter(ctx context.Context, sc *server.ServerContext, tasks []vikunja.Task, filterText string) ([]vikunja.Task, error) {
	metrics := sc.Metrics()

	expr, err := filter.Parse(filterText)
	if err != nil {
		if metrics != nil {
			metrics.RecordFilterParse(ctx, instrumentation.ResultInvalid)
		}
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if metrics != nil {
		metrics.RecordFilterParse(ctx, instrumentation.ResultOK)
	}

	res := filter.Validate(expr, filter.TextLimits())
	if !res.Valid {
		if metrics != nil {
			metrics.RecordFilterValidation(ctx, instrumentation.ResultInvalid)
		}
		return nil, fmt.Errorf("invalid filter: %s", strings.Join(res.Errors, "; "))
	}
	if metrics != nil {
		metrics.RecordFilterValidation(ctx, instrumentation.ResultOK)
	}

	// Annotate the audit record with the condition count; the filter text
	// itself is never logged.
	if inv, ok := instrumentation.InvocationFromContext(ctx); ok {
		inv.WithFilter(expr.ConditionCount())
	}

	matched := filter.Apply(tasks, expr)
	if metrics != nil {
		metrics.RecordFilterEvaluation(ctx, len(matched))
	}
	return matched, nil
}

// RegisterTaskTools registers all Vikunja task tools with the MCP server
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerReadTools(s, sc); err != nil {
		return fmt.Errorf("failed to register read tools: %w", err)
	}

	if !readOnly {
		if err := registerWriteTools(s, sc); err != nil {
			return fmt.Errorf("failed to register write tools: %w", err)
		}
	}

	return nil
}

// registerReadTools registers the read-only project and task tools
func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List projects tool
	listProjectsTool := mcp.NewTool("vikunja_list_projects",
		mcp.WithDescription("List all Vikunja projects visible to the configured token"),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
	)

	s.AddTool(listProjectsTool, common.InstrumentedToolHandlerWithOperation("vikunja_list_projects", "list_projects", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			projects, err := client.ListProjects(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list projects: %v", err)), nil
			}

			result, _ := json.MarshalIndent(projects, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	// List tasks tool with client-side filtering
	listTasksTool := mcp.NewTool("vikunja_list_tasks",
		mcp.WithDescription("List tasks in a project, optionally filtered by a filter expression "+
			"(e.g. \"done = false && priority >= 3\", \"dueDate < now+7d\")"),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
		mcp.WithNumber("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to list tasks from"),
		),
		mcp.WithString("filter",
			mcp.Description("Filter expression applied to the task list. Fields: done, priority, "+
				"percentDone, dueDate, assignees, labels, created, updated, title, description. "+
				"Dates accept ISO values or relative tokens like now, now+7d, now-1w."),
		),
		mcp.WithString("filterId",
			mcp.Description("ID of a saved filter to apply. Ignored when 'filter' is set."),
		),
	)

	s.AddTool(listTasksTool, common.InstrumentedToolHandlerWithOperation("vikunja_list_tasks", "list_tasks", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			projectID, ok := getInt64Arg(args, "projectId")
			if !ok {
				return mcp.NewToolResultError("projectId is required"), nil
			}

			filterText, err := resolveFilterText(args, sc.FilterStore())
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			tasks, err := client.ListTasks(ctx, projectID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
			}

			if filterText != "" {
				tasks, err = applyFilter(ctx, sc, tasks, filterText)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
			}

			result, _ := json.MarshalIndent(tasks, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	// Get task tool
	getTaskTool := mcp.NewTool("vikunja_get_task",
		mcp.WithDescription("Get details of a specific task"),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
		mcp.WithNumber("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)

	s.AddTool(getTaskTool, common.InstrumentedToolHandlerWithOperation("vikunja_get_task", "get_task", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			taskID, ok := getInt64Arg(args, "taskId")
			if !ok {
				return mcp.NewToolResultError("taskId is required"), nil
			}

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			task, err := client.GetTask(ctx, taskID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get task: %v", err)), nil
			}

			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	return nil
}

// registerWriteTools registers the mutating task tools. These are only
// available when the server is not running in read-only mode.
func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Create task tool
	createTaskTool := mcp.NewTool("vikunja_create_task",
		mcp.WithDescription("Create a new task in a project"),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
		mcp.WithNumber("projectId",
			mcp.Required(),
			mcp.Description("The ID of the project to create the task in"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the new task"),
		),
		mcp.WithString("description",
			mcp.Description("Description for the task"),
		),
		mcp.WithNumber("priority",
			mcp.Description("Task priority (0-5)"),
		),
		mcp.WithString("dueDate",
			mcp.Description("Due date: ISO value (2024-03-01 or RFC3339) or relative token (now+7d)"),
		),
	)

	s.AddTool(createTaskTool, common.InstrumentedToolHandlerWithOperation("vikunja_create_task", "create_task", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			projectID, ok := getInt64Arg(args, "projectId")
			if !ok {
				return mcp.NewToolResultError("projectId is required"), nil
			}

			title, ok := args["title"].(string)
			if !ok || title == "" {
				return mcp.NewToolResultError("title is required"), nil
			}

			input := vikunja.TaskInput{Title: title}

			if description, ok := args["description"].(string); ok {
				input.Description = description
			}
			if priority, ok := getInt64Arg(args, "priority"); ok {
				input.Priority = int(priority)
			}
			if dueStr, ok := args["dueDate"].(string); ok && dueStr != "" {
				due, ok := filter.ResolveDate(dueStr)
				if !ok {
					return mcp.NewToolResultError(fmt.Sprintf("invalid due date %q", dueStr)), nil
				}
				input.DueDate = due
			}

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			task, err := client.CreateTask(ctx, projectID, input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
			}

			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(fmt.Sprintf("Task created successfully:\n%s", string(result))), nil
		}))

	// Update task tool
	updateTaskTool := mcp.NewTool("vikunja_update_task",
		mcp.WithDescription("Update an existing task"),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
		mcp.WithNumber("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title for the task"),
		),
		mcp.WithString("description",
			mcp.Description("New description for the task"),
		),
		mcp.WithNumber("priority",
			mcp.Description("New task priority (0-5)"),
		),
		mcp.WithString("dueDate",
			mcp.Description("New due date: ISO value or relative token (now+7d)"),
		),
		mcp.WithBoolean("done",
			mcp.Description("Mark the task as done or not done"),
		),
	)

	s.AddTool(updateTaskTool, common.InstrumentedToolHandlerWithOperation("vikunja_update_task", "update_task", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			taskID, ok := getInt64Arg(args, "taskId")
			if !ok {
				return mcp.NewToolResultError("taskId is required"), nil
			}

			input := vikunja.TaskInput{}

			if title, ok := args["title"].(string); ok {
				input.Title = title
			}
			if description, ok := args["description"].(string); ok {
				input.Description = description
			}
			if priority, ok := getInt64Arg(args, "priority"); ok {
				input.Priority = int(priority)
			}
			if dueStr, ok := args["dueDate"].(string); ok && dueStr != "" {
				due, ok := filter.ResolveDate(dueStr)
				if !ok {
					return mcp.NewToolResultError(fmt.Sprintf("invalid due date %q", dueStr)), nil
				}
				input.DueDate = due
			}
			if done, ok := args["done"].(bool); ok {
				input.Done = &done
			}

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			task, err := client.UpdateTask(ctx, taskID, input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
			}

			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(fmt.Sprintf("Task updated successfully:\n%s", string(result))), nil
		}))

	// Delete task tool
	deleteTaskTool := mcp.NewTool("vikunja_delete_task",
		mcp.WithDescription("Delete a task"),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
		mcp.WithNumber("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)

	s.AddTool(deleteTaskTool, common.InstrumentedToolHandlerWithOperation("vikunja_delete_task", "delete_task", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			taskID, ok := getInt64Arg(args, "taskId")
			if !ok {
				return mcp.NewToolResultError("taskId is required"), nil
			}

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if err := client.DeleteTask(ctx, taskID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Task %d deleted successfully", taskID)), nil
		}))

	// Batch done tool
	batchDoneTool := mcp.NewTool("vikunja_batch_done",
		mcp.WithDescription("Mark one or more tasks as done in a single call. "+
			"Failures on individual tasks do not stop the batch."),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
		mcp.WithString("taskIds",
			mcp.Required(),
			mcp.Description("A task ID or an array of task IDs to mark as done"),
		),
	)

	s.AddTool(batchDoneTool, common.InstrumentedToolHandlerWithOperation("vikunja_batch_done", "update_task", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			taskIDs, err := batch.ParseTaskIDs(args["taskIds"], "taskIds")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			done := true
			results := batch.ProcessBatch(taskIDs, func(id int64) (string, error) {
				if _, err := client.UpdateTask(ctx, id, vikunja.TaskInput{Done: &done}); err != nil {
					return "", err
				}
				return "marked done", nil
			})

			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}))

	// Batch delete tool
	batchDeleteTool := mcp.NewTool("vikunja_batch_delete",
		mcp.WithDescription("Delete one or more tasks in a single call. "+
			"Failures on individual tasks do not stop the batch."),
		mcp.WithString("instance",
			mcp.Description("Vikunja instance name (default: 'default'). Used to manage multiple Vikunja instances."),
		),
		mcp.WithString("taskIds",
			mcp.Required(),
			mcp.Description("A task ID or an array of task IDs to delete"),
		),
	)

	s.AddTool(batchDeleteTool, common.InstrumentedToolHandlerWithOperation("vikunja_batch_delete", "delete_task", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			instance := common.GetInstanceFromArgs(args)

			taskIDs, err := batch.ParseTaskIDs(args["taskIds"], "taskIds")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			client, err := getVikunjaClient(instance, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			results := batch.ProcessBatch(taskIDs, func(id int64) (string, error) {
				if err := client.DeleteTask(ctx, id); err != nil {
					return "", err
				}
				return "deleted", nil
			})

			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}))

	return nil
}
