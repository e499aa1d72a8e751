package filter_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mindthunk/vikunja-mcp/internal/filter"
	"github.com/mindthunk/vikunja-mcp/internal/server"
	"github.com/mindthunk/vikunja-mcp/internal/tools/common"
)

// buildCondition is the wire form of one condition for filter_build.
type buildCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
	// Join connects this condition to the previous one: "&&" (default) or "||".
	Join string `json:"join,omitempty"`
}

// parseConditionsArg accepts either a JSON-encoded string or a decoded array
// of condition objects.
func parseConditionsArg(raw any) ([]buildCondition, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid conditions: %w", err)
		}
		data = encoded
	default:
		return nil, fmt.Errorf("conditions must be an array of condition objects")
	}

	var conditions []buildCondition
	if err := json.Unmarshal(data, &conditions); err != nil {
		return nil, fmt.Errorf("invalid conditions: %w", err)
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("at least one condition is required")
	}
	return conditions, nil
}

// buildExpression assembles a Builder from wire conditions.
func buildExpression(conditions []buildCondition) (*filter.Builder, error) {
	b := filter.NewBuilder()
	for i, cond := range conditions {
		if cond.Field == "" {
			return nil, fmt.Errorf("condition %d: field is required", i)
		}
		if cond.Operator == "" {
			return nil, fmt.Errorf("condition %d: operator is required", i)
		}
		if _, ok := filter.KindOf(filter.Field(cond.Field)); !ok {
			return nil, fmt.Errorf("condition %d: unknown field %q", i, cond.Field)
		}

		if i > 0 {
			switch cond.Join {
			case "", "&&", "and":
				b.And()
			case "||", "or":
				b.Or()
			default:
				return nil, fmt.Errorf("condition %d: invalid join %q, must be \"&&\" or \"||\"", i, cond.Join)
			}
		}
		b.Where(filter.Field(cond.Field), filter.Operator(cond.Operator), cond.Value)
	}
	return b, nil
}

// RegisterFilterTools registers the filter expression and saved filter tools
// with the MCP server. Saved filters live in server memory and never touch
// the upstream Vikunja API, so these tools are available in read-only mode
// as well.
func RegisterFilterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerExpressionTools(s, sc); err != nil {
		return fmt.Errorf("failed to register expression tools: %w", err)
	}
	if err := registerSavedFilterTools(s, sc); err != nil {
		return fmt.Errorf("failed to register saved filter tools: %w", err)
	}
	return nil
}

// registerExpressionTools registers filter_validate and filter_build
func registerExpressionTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Validate filter tool
	validateTool := mcp.NewTool("filter_validate",
		mcp.WithDescription("Validate a filter expression and report errors and warnings without executing it"),
		mcp.WithString("filter",
			mcp.Required(),
			mcp.Description("The filter expression to validate, e.g. \"done = false && priority >= 3\""),
		),
	)

	s.AddTool(validateTool, common.InstrumentedToolHandler("filter_validate", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			filterText, ok := args["filter"].(string)
			if !ok || filterText == "" {
				return mcp.NewToolResultError("filter is required"), nil
			}

			res := filter.ValidateText(filterText)

			if metrics := sc.Metrics(); metrics != nil {
				result := "ok"
				if !res.Valid {
					result = "invalid"
				}
				metrics.RecordFilterValidation(ctx, result)
			}

			out, _ := json.MarshalIndent(res, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}))

	// Build filter tool
	buildTool := mcp.NewTool("filter_build",
		mcp.WithDescription("Build a filter expression string from structured conditions. "+
			"Each condition has a field, an operator, a value, and an optional join (\"&&\" or \"||\") "+
			"connecting it to the previous condition."),
		mcp.WithString("conditions",
			mcp.Required(),
			mcp.Description(`JSON array of conditions, e.g. [{"field":"priority","operator":">=","value":3},{"field":"done","operator":"=","value":true,"join":"||"}]`),
		),
	)

	s.AddTool(buildTool, common.InstrumentedToolHandler("filter_build", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			conditions, err := parseConditionsArg(args["conditions"])
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			builder, err := buildExpression(conditions)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			res := builder.Validate()
			if !res.Valid {
				out, _ := json.MarshalIndent(res, "", "  ")
				return mcp.NewToolResultError(fmt.Sprintf("built filter is invalid:\n%s", string(out))), nil
			}

			return mcp.NewToolResultText(builder.String()), nil
		}))

	return nil
}

// registerSavedFilterTools registers the saved filter management tools
func registerSavedFilterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Save filter tool
	saveTool := mcp.NewTool("filter_save",
		mcp.WithDescription("Save a named filter expression for later use with vikunja_list_tasks"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name for the saved filter"),
		),
		mcp.WithString("filter",
			mcp.Required(),
			mcp.Description("The filter expression to save"),
		),
		mcp.WithNumber("projectId",
			mcp.Description("Project the filter is scoped to. Omit for a global filter."),
		),
		mcp.WithBoolean("global",
			mcp.Description("Make the filter available to all projects (default: false, true when projectId is omitted)"),
		),
	)

	s.AddTool(saveTool, common.InstrumentedToolHandler("filter_save", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			name, ok := args["name"].(string)
			if !ok || name == "" {
				return mcp.NewToolResultError("name is required"), nil
			}

			filterText, ok := args["filter"].(string)
			if !ok || filterText == "" {
				return mcp.NewToolResultError("filter is required"), nil
			}

			var projectID int64
			if v, ok := args["projectId"].(float64); ok {
				projectID = int64(v)
			}

			isGlobal := projectID == 0
			if v, ok := args["global"].(bool); ok {
				isGlobal = v
			}

			saved, err := sc.FilterStore().Create(name, filterText, projectID, isGlobal)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to save filter: %v", err)), nil
			}

			result, _ := json.MarshalIndent(saved, "", "  ")
			return mcp.NewToolResultText(fmt.Sprintf("Filter saved successfully:\n%s", string(result))), nil
		}))

	// List filters tool
	listTool := mcp.NewTool("filter_list",
		mcp.WithDescription("List saved filters, optionally scoped to a project"),
		mcp.WithNumber("projectId",
			mcp.Description("Only list filters scoped to this project"),
		),
		mcp.WithBoolean("includeGlobal",
			mcp.Description("Include global filters in the listing (default: true)"),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandler("filter_list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			var projectID int64
			if v, ok := args["projectId"].(float64); ok {
				projectID = int64(v)
			}

			includeGlobal := true
			if v, ok := args["includeGlobal"].(bool); ok {
				includeGlobal = v
			}

			saved := sc.FilterStore().List(projectID, includeGlobal)

			result, _ := json.MarshalIndent(saved, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	// Get filter tool
	getTool := mcp.NewTool("filter_get",
		mcp.WithDescription("Get a saved filter by its ID"),
		mcp.WithString("filterId",
			mcp.Required(),
			mcp.Description("The ID of the saved filter"),
		),
	)

	s.AddTool(getTool, common.InstrumentedToolHandler("filter_get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			filterID, ok := args["filterId"].(string)
			if !ok || filterID == "" {
				return mcp.NewToolResultError("filterId is required"), nil
			}

			saved, err := sc.FilterStore().Get(filterID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get filter: %v", err)), nil
			}

			result, _ := json.MarshalIndent(saved, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	// Update filter tool
	updateTool := mcp.NewTool("filter_update",
		mcp.WithDescription("Update a saved filter's name or expression"),
		mcp.WithString("filterId",
			mcp.Required(),
			mcp.Description("The ID of the saved filter to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the filter"),
		),
		mcp.WithString("filter",
			mcp.Description("New filter expression"),
		),
	)

	s.AddTool(updateTool, common.InstrumentedToolHandler("filter_update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			filterID, ok := args["filterId"].(string)
			if !ok || filterID == "" {
				return mcp.NewToolResultError("filterId is required"), nil
			}

			name, _ := args["name"].(string)
			filterText, _ := args["filter"].(string)
			if name == "" && filterText == "" {
				return mcp.NewToolResultError("either 'name' or 'filter' is required"), nil
			}

			saved, err := sc.FilterStore().Update(filterID, name, filterText)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update filter: %v", err)), nil
			}

			result, _ := json.MarshalIndent(saved, "", "  ")
			return mcp.NewToolResultText(fmt.Sprintf("Filter updated successfully:\n%s", string(result))), nil
		}))

	// Delete filter tool
	deleteTool := mcp.NewTool("filter_delete",
		mcp.WithDescription("Delete a saved filter"),
		mcp.WithString("filterId",
			mcp.Required(),
			mcp.Description("The ID of the saved filter to delete"),
		),
	)

	s.AddTool(deleteTool, common.InstrumentedToolHandler("filter_delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()

			filterID, ok := args["filterId"].(string)
			if !ok || filterID == "" {
				return mcp.NewToolResultError("filterId is required"), nil
			}

			if err := sc.FilterStore().Delete(filterID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to delete filter: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Filter %s deleted successfully", filterID)), nil
		}))

	return nil
}
