package server

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mindthunk/vikunja-mcp/internal/filters"
	"github.com/mindthunk/vikunja-mcp/internal/instrumentation"
	"github.com/mindthunk/vikunja-mcp/internal/vikunja"
)

// InstanceConfig holds the connection settings for one Vikunja instance.
type InstanceConfig struct {
	URL   string
	Token string
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx            context.Context
	cancel         context.CancelFunc
	instances      map[string]InstanceConfig // Maps instance name to connection settings
	vikunjaClients map[string]*vikunja.Client
	filterStore    *filters.Store
	metrics        *instrumentation.Metrics
	auditLogger    *instrumentation.AuditLogger
	readOnly       bool
	mu             sync.RWMutex
	shutdown       bool
}

// NewServerContext creates a new server context.
// Clients are created lazily on first use, so a misconfigured secondary
// instance does not prevent the server from starting.
func NewServerContext(ctx context.Context, instances map[string]InstanceConfig, readOnly bool) (*ServerContext, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("at least one Vikunja instance must be configured")
	}
	if _, ok := instances["default"]; !ok {
		return nil, fmt.Errorf("a %q Vikunja instance must be configured", "default")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:            shutdownCtx,
		cancel:         cancel,
		instances:      instances,
		vikunjaClients: make(map[string]*vikunja.Client),
		filterStore:    filters.NewStore(),
		readOnly:       readOnly,
		shutdown:       false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// VikunjaClientForInstance returns the Vikunja client for a specific instance.
// Creates and caches the client if it doesn't exist yet.
func (sc *ServerContext) VikunjaClientForInstance(instance string) (*vikunja.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.vikunjaClients[instance]; ok {
		return client, nil
	}

	cfg, ok := sc.instances[instance]
	if !ok {
		return nil, fmt.Errorf("unknown Vikunja instance %q", instance)
	}

	client, err := vikunja.NewClient(cfg.URL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vikunja client for instance %q: %w", instance, err)
	}

	sc.vikunjaClients[instance] = client
	return client, nil
}

// VikunjaClient returns the Vikunja client for the default instance.
func (sc *ServerContext) VikunjaClient() (*vikunja.Client, error) {
	return sc.VikunjaClientForInstance("default")
}

// SetVikunjaClientForInstance sets the Vikunja client for a specific instance.
// Used by tests to inject clients pointed at test servers.
func (sc *ServerContext) SetVikunjaClientForInstance(instance string, client *vikunja.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.vikunjaClients[instance] = client
}

// InstanceNames returns the names of all configured Vikunja instances in
// sorted order.
func (sc *ServerContext) InstanceNames() []string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	names := make([]string, 0, len(sc.instances))
	for name := range sc.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InstanceURL returns the base URL of a configured instance. The token is
// deliberately not exposed.
func (sc *ServerContext) InstanceURL(instance string) (string, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	cfg, ok := sc.instances[instance]
	return cfg.URL, ok
}

// FilterStore returns the saved filter store.
func (sc *ServerContext) FilterStore() *filters.Store {
	return sc.filterStore
}

// ReadOnly returns whether write operations are disabled.
func (sc *ServerContext) ReadOnly() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.readOnly
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil if instrumentation is not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(logger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = logger
}

// AuditLogger returns the audit logger, or nil if not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
