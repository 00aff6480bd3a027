// Package mcp exposes the capture history over the Model Context Protocol so
// assistant runtimes can pull recall context on demand. Tools are read-only:
// capture and persistence stay inside the daemon.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hindsight-sh/hindsight/internal/preamble"
	"github.com/hindsight-sh/hindsight/internal/store"
)

// Tool definitions

var recentToolDef = mcp.NewTool("recall_recent",
	mcp.WithDescription("Fetch the most recent capture events, newest first. Each event carries the OCR text, screenshot path, and foreground application observed at capture time."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of events to return. 0 or omitted returns all events."),
	),
)

var searchToolDef = mcp.NewTool("recall_search",
	mcp.WithDescription("Search capture events whose on-screen text contains any of the given keywords. Matching is case- and accent-insensitive; results are newest first."),
	mcp.WithArray("keywords",
		mcp.Required(),
		mcp.Description("Keywords to match against captured text. Blank keywords are ignored; an empty list returns no events."),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var contextToolDef = mcp.NewTool("recall_context",
	mcp.WithDescription("Assemble a plain-text recall context block from recent capture history, oldest entry first, suitable for prepending to a prompt."),
	mcp.WithNumber("max_events",
		mcp.Description("Maximum number of recent events to include. 0 or omitted includes all."),
	),
)

var resolveToolDef = mcp.NewTool("recall_resolve",
	mcp.WithDescription("Resolve a stored screenshot path to an absolute file path inside the screenshots directory."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("The screenshot_path value from a capture event."),
	),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"recall_recent": {
		def:     recentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecent },
	},
	"recall_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"recall_context": {
		def:     contextToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleContext },
	},
	"recall_resolve": {
		def:     resolveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleResolve },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with Hindsight tools registered.
func NewServer(st *store.Store, assembler *preamble.Assembler, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"hindsight",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(st, assembler)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(st *store.Store, assembler *preamble.Assembler, version string) error {
	s := NewServer(st, assembler, version)
	return server.ServeStdio(s)
}
