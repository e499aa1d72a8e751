package server

import (
	"context"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mindthunk/vikunja-mcp/internal/instrumentation"
)

// HTTPServerConfig holds configuration for the streamable HTTP server.
type HTTPServerConfig struct {
	// EndpointPath is the path the MCP endpoint is served on (default: "/mcp").
	EndpointPath string

	// Stateless disables session tracking for clients that cannot
	// maintain MCP session headers.
	Stateless bool
}

// HTTPServer serves the MCP server over the streamable HTTP transport.
// It also exposes health check endpoints for Kubernetes probes.
type HTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	httpServer    *http.Server
	config        HTTPServerConfig
	healthChecker *HealthChecker
	metrics       *instrumentation.Metrics
}

// NewHTTPServer creates a new streamable HTTP server for the given MCP server.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	if config.EndpointPath == "" {
		config.EndpointPath = "/mcp"
	}
	return &HTTPServer{
		mcpServer: mcpSrv,
		config:    config,
	}
}

// SetHealthChecker sets the health checker used for /healthz and /readyz.
func (s *HTTPServer) SetHealthChecker(h *HealthChecker) {
	s.healthChecker = h
}

// SetMetrics sets the metrics recorder for HTTP request instrumentation.
func (s *HTTPServer) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with HTTP request metrics. The path label uses
// the registered route, not the request URL, to keep cardinality bounded.
func (s *HTTPServer) instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
	})
}

// Start starts the HTTP server on the given address. It blocks until the
// server stops or fails.
func (s *HTTPServer) Start(addr string) error {
	mux := http.NewServeMux()

	var opts []mcpserver.StreamableHTTPOption
	opts = append(opts, mcpserver.WithEndpointPath(s.config.EndpointPath))
	if s.config.Stateless {
		opts = append(opts, mcpserver.WithStateLess(true))
	}
	streamableServer := mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...)

	mux.Handle(s.config.EndpointPath, s.instrument(s.config.EndpointPath, streamableServer))

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
