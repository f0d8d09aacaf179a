// Package mcp exposes the assistant over the Model Context Protocol so
// agent hosts can chat with it and query its classifier, sessions, and
// market prices as tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kisanmitra/kisanmitra/internal/assistant"
	"github.com/kisanmitra/kisanmitra/internal/market"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the agricultural assistant.
type Server struct {
	engine *assistant.Engine
	prices *market.Store
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server. prices may be nil; the market tool
// then reports quotes as unavailable.
func NewServer(engine *assistant.Engine, prices *market.Store) *Server {
	s := &Server{
		engine: engine,
		prices: prices,
	}

	s.mcp = server.NewMCPServer(
		"kisanmitra",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(chatMessageTool, s.handleChatMessage)
	s.mcp.AddTool(classifyTextTool, s.handleClassifyText)
	s.mcp.AddTool(getSessionTool, s.handleGetSession)
	s.mcp.AddTool(getMarketPriceTool, s.handleGetMarketPrice)
	s.mcp.AddTool(getPreferencesTool, s.handleGetPreferences)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
