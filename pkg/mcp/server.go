// Package mcp exposes the compiler to MCP clients over stdio.
package mcp

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/compiler"
	"github.com/gnana997/rjt/pkg/mcplog"
	"github.com/gnana997/rjt/pkg/parser"
)

// ServerName is the name the server reports to clients.
const ServerName = "rjt"

// Config configures a Server.
type Config struct {
	Compiler *compiler.Compiler
	// Cache is shared by every tool call. Defaults to a MapCache.
	Cache analyzer.Cache
	// Root is the directory relative tool paths are resolved against.
	Root    string
	Syntax  parser.Syntax
	Version string
	Logger  *slog.Logger
	// CallLog, when set, receives one entry per tool call.
	CallLog *mcplog.Logger
}

// Server implements the MCP server for rjt, exposing compile and analysis
// tools.
type Server struct {
	mcpServer *server.MCPServer
	compiler  *compiler.Compiler
	cache     analyzer.Cache
	root      string
	syntax    parser.Syntax
	logger    *slog.Logger
	callLog   *mcplog.Logger

	// mu serializes compiler work; the cache is not shared concurrently.
	mu sync.Mutex
}

// NewServer creates a new MCP server.
func NewServer(config Config) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Cache == nil {
		config.Cache = analyzer.NewMapCache()
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if root, err := filepath.Abs(config.Root); err == nil {
		config.Root = root
	}

	s := &Server{
		compiler: config.Compiler,
		cache:    config.Cache,
		root:     config.Root,
		syntax:   config.Syntax,
		logger:   config.Logger,
		callLog:  config.CallLog,
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer(ServerName, config.Version, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: compileTemplateTool(), Handler: s.handleCompileTemplate},
		server.ServerTool{Tool: analyzeFileTool(), Handler: s.handleAnalyzeFile},
		server.ServerTool{Tool: inspectTemplateTool(), Handler: s.handleInspectTemplate},
	)

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP on stdio", "root", s.root)
	return server.ServeStdio(s.mcpServer)
}

// resolvePath makes a tool path absolute against the server root.
func (s *Server) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.root, path)
}
