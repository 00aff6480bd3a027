package mcp

import (
	"context"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hindsight-sh/hindsight/internal/errors"
	"github.com/hindsight-sh/hindsight/internal/event"
	"github.com/hindsight-sh/hindsight/internal/preamble"
	"github.com/hindsight-sh/hindsight/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store     *store.Store
	assembler *preamble.Assembler
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, assembler *preamble.Assembler) *Handlers {
	return &Handlers{store: st, assembler: assembler}
}

// Request types for each tool

// RecentRequest represents the arguments for recall_recent.
type RecentRequest struct {
	Limit int `json:"limit,omitempty"`
}

// SearchRequest represents the arguments for recall_search.
type SearchRequest struct {
	Keywords []string `json:"keywords"`
}

// ContextRequest represents the arguments for recall_context.
type ContextRequest struct {
	MaxEvents int `json:"max_events,omitempty"`
}

// ResolveRequest represents the arguments for recall_resolve.
type ResolveRequest struct {
	Path string `json:"path"`
}

// eventView is the wire shape of a capture event.
type eventView struct {
	ID             string  `json:"id"`
	Timestamp      int64   `json:"timestamp"`
	OCRText        *string `json:"ocr_text,omitempty"`
	ScreenshotPath *string `json:"screenshot_path,omitempty"`
	AppName        *string `json:"app_name,omitempty"`
	BundleID       *string `json:"bundle_id,omitempty"`
}

func toViews(events []event.CaptureEvent) []eventView {
	views := make([]eventView, len(events))
	for i, e := range events {
		views[i] = eventView{
			ID:             e.ID,
			Timestamp:      e.Timestamp,
			OCRText:        e.OCRText,
			ScreenshotPath: e.ScreenshotPath,
			AppName:        e.ApplicationName,
			BundleID:       e.BundleIdentifier,
		}
	}
	return views
}

// Handler implementations

// HandleRecent handles the recall_recent tool call.
func (h *Handlers) HandleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Limit < 0 {
		return errorResult(errors.NewInvalidRequest("limit must not be negative")), nil
	}

	events, err := h.store.FetchRecent(input.Limit)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"events": toViews(events),
		"count":  len(events),
	})
}

// HandleSearch handles the recall_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	events, err := h.store.FetchByKeywords(input.Keywords)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"events": toViews(events),
		"count":  len(events),
	})
}

// HandleContext handles the recall_context tool call.
func (h *Handlers) HandleContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ContextRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.MaxEvents < 0 {
		return errorResult(errors.NewInvalidRequest("max_events must not be negative")), nil
	}

	text, err := h.assembler.Build(input.MaxEvents)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"context": text})
}

// HandleResolve handles the recall_resolve tool call.
func (h *Handlers) HandleResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResolveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	abs := h.store.ResolveScreenshotPath(input.Path)
	if abs == nil {
		return errorResult(errors.NewInvalidRequest("path is empty or escapes the screenshots directory")), nil
	}
	if _, err := os.Stat(*abs); err != nil {
		return errorResult(errors.NewNotFound(input.Path)), nil
	}

	return successResult(map[string]any{"path": *abs})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if hErr, ok := err.(*errors.Error); ok {
		payload = map[string]any{
			"error": map[string]any{
				"code":    hErr.Code,
				"message": hErr.Message,
			},
		}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
