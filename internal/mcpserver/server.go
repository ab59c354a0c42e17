// Package mcpserver exposes read-only vault tools over the Model Context
// Protocol via stdio transport, so external assistants can browse the vault
// without write access.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rowanhart/curator/internal/index"
	"github.com/rowanhart/curator/internal/vault"
)

// Server wraps the MCP server with vault tools.
type Server struct {
	mcp   *server.MCPServer
	vault *vault.Vault
	db    *index.DB
}

// New creates an MCP server with all vault tools registered. Every tool is
// read-only; filing and edits go through the chat agents.
func New(v *vault.Vault, db *index.DB) *Server {
	s := &Server{vault: v, db: db}

	s.mcp = server.NewMCPServer(
		"Curator",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through vault note content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a vault note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. Actions/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List vault notes, newest first, optionally limited to one category folder."),
		mcp.WithString("folder", mcp.Description("Optional category folder (Projects, Actions, Media, Reference, Memories, Inbox)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("vault_stats",
		mcp.WithDescription("Note counts per category folder."),
	), s.vaultStats)

	s.mcp.AddTool(mcp.NewTool("list_directives",
		mcp.WithDescription("List the standing directives that shape filing behaviour."),
	), s.listDirectives)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.vault.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")
	if folder != "" && !vault.ValidCategory(folder) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown folder %q; valid folders: %s",
			folder, strings.Join(vault.CategoryOrder, ", "))), nil
	}
	notes, err := s.db.ListNotes(folder, 100)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) vaultStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.db.CategoryStats()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDirectives(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directives := s.vault.Directives()
	if len(directives) == 0 {
		return mcp.NewToolResultText("No directives set."), nil
	}
	var b strings.Builder
	for i, d := range directives {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	return mcp.NewToolResultText(b.String()), nil
}
