// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/numrange/domain/capability"
	"github.com/helixml/numrange/domain/numrange"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "numrange"

// RangeGenerator produces number ranges for MCP tools.
type RangeGenerator interface {
	Generate(ctx context.Context, start, end float64) numrange.Result
}

// CapabilityLister lists the capabilities the agent exposes.
type CapabilityLister interface {
	List() []capability.Descriptor
}

// Server wraps the MCP server with number-range tools.
type Server struct {
	mcpServer    *server.MCPServer
	ranges       RangeGenerator
	capabilities CapabilityLister
	version      string
	logger       *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(ranges RangeGenerator, capabilities CapabilityLister, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		ranges:       ranges,
		capabilities: capabilities,
		version:      version,
		logger:       logger,
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	rangeTool := mcp.NewTool("get_number_range",
		mcp.WithDescription("Returns a string of numbers between two given numbers, separated by commas"),
		mcp.WithNumber("start",
			mcp.Required(),
			integer(),
			mcp.Description("The starting number of the range (inclusive)"),
		),
		mcp.WithNumber("end",
			mcp.Required(),
			integer(),
			mcp.Description("The ending number of the range (inclusive)"),
		),
	)
	mcpServer.AddTool(rangeTool, s.handleGetNumberRange)

	listTool := mcp.NewTool("list_capabilities",
		mcp.WithDescription("List the agent capabilities with their argument schemas"),
	)
	mcpServer.AddTool(listTool, s.handleListCapabilities)

	versionTool := mcp.NewTool("get_version",
		mcp.WithDescription("Get the numrange server version"),
	)
	mcpServer.AddTool(versionTool, s.handleGetVersion)
}

// integer narrows a number property to whole numbers.
func integer() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}

// handleGetNumberRange renders the range. Validation failures come back as
// error results carrying the same text other transports return.
func (s *Server) handleGetNumberRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := request.RequireFloat("start")
	if err != nil {
		return mcp.NewToolResultError("start is required and must be a number"), nil
	}
	end, err := request.RequireFloat("end")
	if err != nil {
		return mcp.NewToolResultError("end is required and must be a number"), nil
	}

	result := s.ranges.Generate(ctx, start, end)
	if !result.OK() {
		return mcp.NewToolResultError(result.String()), nil
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleListCapabilities(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var descriptors []capability.Descriptor
	if s.capabilities != nil {
		descriptors = s.capabilities.List()
	}

	jsonBytes, err := json.Marshal(descriptors)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal capabilities: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// HTTPHandler returns a streamable HTTP transport for the server.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

// ServeStdio runs the MCP server on stdio. Transport errors are logged
// through the server's logger so stdout carries only protocol messages.
func (s *Server) ServeStdio() error {
	errLogger := slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
	return server.ServeStdio(s.mcpServer, server.WithErrorLogger(errLogger))
}
