package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mindthunk/vikunja-mcp/internal/filter"
	"github.com/mindthunk/vikunja-mcp/internal/server"
)

// RegisterServerResources registers read-only resources describing the
// server configuration and the filter grammar.
func RegisterServerResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	instancesResource := mcp.NewResource(
		"vikunja://instances",
		"Configured Vikunja Instances",
		mcp.WithResourceDescription("Names and base URLs of the configured Vikunja instances"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(instancesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleInstances(ctx, request, sc)
	})

	fieldsResource := mcp.NewResource(
		"vikunja://filter/fields",
		"Filter Field Catalogue",
		mcp.WithResourceDescription("Filterable task fields with their value kinds and valid operators"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(fieldsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleFilterFields(ctx, request)
	})

	savedResource := mcp.NewResource(
		"vikunja://filters/saved",
		"Saved Filters",
		mcp.WithResourceDescription("All saved filters known to this server"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(savedResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSavedFilters(ctx, request, sc)
	})

	return nil
}

func jsonContents(request mcp.ReadResourceRequest, data interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleInstances returns the configured instance names and base URLs.
// API tokens are never included.
func handleInstances(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	type instanceInfo struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	names := sc.InstanceNames()
	instances := make([]instanceInfo, 0, len(names))
	for _, name := range names {
		url, ok := sc.InstanceURL(name)
		if !ok {
			continue
		}
		instances = append(instances, instanceInfo{Name: name, URL: url})
	}

	return jsonContents(request, map[string]interface{}{
		"instances": instances,
		"readOnly":  sc.ReadOnly(),
	})
}

// handleFilterFields returns the filter field catalogue so clients can
// build valid expressions without trial and error.
func handleFilterFields(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type fieldInfo struct {
		Field     string   `json:"field"`
		Kind      string   `json:"kind"`
		Operators []string `json:"operators"`
	}

	fields := filter.Fields()
	infos := make([]fieldInfo, 0, len(fields))
	for _, f := range fields {
		kind, ok := filter.KindOf(f)
		if !ok {
			continue
		}
		ops := filter.OperatorsFor(kind)
		opNames := make([]string, 0, len(ops))
		for _, op := range ops {
			opNames = append(opNames, string(op))
		}
		infos = append(infos, fieldInfo{
			Field:     string(f),
			Kind:      kind.String(),
			Operators: opNames,
		})
	}

	return jsonContents(request, map[string]interface{}{
		"fields":        infos,
		"joinOperators": []string{"&&", "||"},
		"relativeDates": "now, now+N<unit>, now-N<unit> with units s, m, h, d, w, M, y",
	})
}

// handleSavedFilters returns every saved filter on this server.
func handleSavedFilters(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	saved := sc.FilterStore().All()

	return jsonContents(request, map[string]interface{}{
		"filters": saved,
		"count":   len(saved),
	})
}
