package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mindthunk/vikunja-mcp/internal/instrumentation"
	"github.com/mindthunk/vikunja-mcp/internal/logging"
	"github.com/mindthunk/vikunja-mcp/internal/resources"
	"github.com/mindthunk/vikunja-mcp/internal/server"
	"github.com/mindthunk/vikunja-mcp/internal/tools/filter_tools"
	"github.com/mindthunk/vikunja-mcp/internal/tools/task_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// ServeConfig holds the resolved configuration for the serve command.
type ServeConfig struct {
	Transport string
	HTTPAddr  string
	Stateless bool
	Debug     bool
	ReadOnly  bool
	Instances map[string]server.InstanceConfig
	Metrics   MetricsConfig
}

// instanceFileConfig mirrors an entry in the instances section of the
// config file.
type instanceFileConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		yolo           bool
		stateless      bool
		configFile     string
		vikunjaURL     string
		vikunjaToken   string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Vikunja task
management tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations. Use --yolo to enable write operations (task creation,
  updates, deletion). Saved filters are always available since they are
  stored server-side and never touch the Vikunja API.

Vikunja Configuration:
  Single instance:
    --vikunja-url and --vikunja-token flags
    OR VIKUNJA_URL and VIKUNJA_TOKEN env vars

  Multiple instances:
    A config file (--config, default: vikunja-mcp.yaml) with an
    instances section:

      instances:
        default:
          url: https://vikunja.example.com
          token: tk_xxx
        work:
          url: https://tasks.work.example.com
          token: tk_yyy

    Tools select an instance via their optional "instance" argument.
    An instance named "default" is required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, err := loadInstances(configFile, vikunjaURL, vikunjaToken)
			if err != nil {
				return err
			}

			// Load metrics config from environment if not set via flags
			if !cmd.Flags().Changed("metrics-enabled") {
				if os.Getenv("METRICS_ENABLED") == "false" {
					metricsEnabled = false
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}

			return runServe(ServeConfig{
				Transport: transport,
				HTTPAddr:  httpAddr,
				Stateless: stateless,
				Debug:     debugMode,
				ReadOnly:  !yolo,
				Instances: instances,
				Metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (task creation, updates, deletion). Default is read-only mode.")
	cmd.Flags().BoolVar(&stateless, "stateless", false, "Disable session tracking for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to a config file with an instances section (default: vikunja-mcp.yaml in . or $HOME/.config/vikunja-mcp)")
	cmd.Flags().StringVar(&vikunjaURL, "vikunja-url", "", "Vikunja base URL for the default instance. Can also use VIKUNJA_URL env var.")
	cmd.Flags().StringVar(&vikunjaToken, "vikunja-token", "", "Vikunja API token for the default instance. Can also use VIKUNJA_TOKEN env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadInstances resolves the Vikunja instance map from the config file,
// flags and environment. Flag and env values define or override the
// "default" instance.
func loadInstances(configFile, flagURL, flagToken string) (map[string]server.InstanceConfig, error) {
	instances := make(map[string]server.InstanceConfig)

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vikunja-mcp")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vikunja-mcp")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default config file is fine; an explicit one must exist.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		var fileInstances map[string]instanceFileConfig
		if err := v.UnmarshalKey("instances", &fileInstances); err != nil {
			return nil, fmt.Errorf("invalid instances section in %s: %w", v.ConfigFileUsed(), err)
		}
		for name, inst := range fileInstances {
			if inst.URL == "" || inst.Token == "" {
				return nil, fmt.Errorf("instance %q in %s is missing url or token", name, v.ConfigFileUsed())
			}
			instances[name] = server.InstanceConfig{URL: inst.URL, Token: inst.Token}
		}
	}

	// Flags take precedence over env vars for the default instance
	url := flagURL
	if url == "" {
		url = os.Getenv("VIKUNJA_URL")
	}
	token := flagToken
	if token == "" {
		token = os.Getenv("VIKUNJA_TOKEN")
	}
	if url != "" && token != "" {
		instances["default"] = server.InstanceConfig{URL: url, Token: token}
	}

	if len(instances) == 0 {
		return nil, fmt.Errorf("no Vikunja instance configured: set --vikunja-url and --vikunja-token (or VIKUNJA_URL and VIKUNJA_TOKEN), or provide a config file with an instances section")
	}
	if _, ok := instances["default"]; !ok {
		return nil, fmt.Errorf("no instance named %q configured: add one to the config file or set --vikunja-url and --vikunja-token", "default")
	}

	return instances, nil
}

func runServe(cfg ServeConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logging goes to stderr so the stdio transport stays clean
	logging.Setup(cfg.Debug)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.Transport = cfg.Transport
	instrConfig.VikunjaInstanceCount = len(cfg.Instances)

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if cfg.Transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if cfg.Transport != "stdio" && cfg.Metrics.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Create server context with the configured Vikunja instances
	serverContext, err := server.NewServerContext(shutdownCtx, cfg.Instances, cfg.ReadOnly)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if cfg.Transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("vikunja-mcp", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// Log the mode for visibility (only for non-stdio transports)
	if cfg.Transport != "stdio" {
		if cfg.ReadOnly {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
	}

	// Register all tools
	if err := registerAllTools(mcpSrv, serverContext, cfg.ReadOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch cfg.Transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, provider, cfg)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools
// Extracted to avoid duplication in serve.go
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	// Define all tool registrations
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Tasks",
			register: func() error {
				return task_tools.RegisterTaskTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Filters",
			register: func() error {
				return filter_tools.RegisterFilterTools(mcpSrv, ctx)
			},
		},
		{
			name: "Server Resources",
			register: func() error {
				return resources.RegisterServerResources(mcpSrv, ctx)
			},
		},
	}

	// Register all tools
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, instrProvider *instrumentation.Provider, cfg ServeConfig) error {
	httpServer := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Stateless: cfg.Stateless,
	})

	// Set up health checker for health check endpoints
	healthChecker := server.NewHealthChecker(serverContext)
	httpServer.SetHealthChecker(healthChecker)

	// Set up HTTP instrumentation for metrics
	if instrProvider != nil && instrProvider.Enabled() {
		httpServer.SetMetrics(instrProvider.Metrics())
	}

	fmt.Printf("Streamable HTTP server starting on %s\n", cfg.HTTPAddr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	fmt.Printf("  Instances: %s\n", strings.Join(serverContext.InstanceNames(), ", "))
	if cfg.Metrics.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", cfg.Metrics.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}
