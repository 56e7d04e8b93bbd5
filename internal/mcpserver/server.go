// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the notes view as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/notestore"
)

const contractURI = "notes://contract"

// Server wraps the MCP server with the notes tools.
type Server struct {
	mcp   *server.MCPServer
	store *notestore.Store

	loadMu sync.Mutex
	loaded bool
}

// New creates a new MCP server with all notes tools registered. Every tool
// drives store, so tool calls see each other's results.
func New(store *notestore.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Notes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("Load every note from the server. Also clears any search."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Both title and content must be non-empty."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Update a note. Only the fields that are passed change."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New content")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete one note and return the remaining notes."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("delete_all_notes",
		mcp.WithDescription("Delete every note."),
	), s.deleteAllNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by id, title substring or content substring."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Note id or substring")),
		mcp.WithString("mode",
			mcp.Description("What the query matches against (default: the current mode)"),
			mcp.Enum(string(notestore.ModeID), string(notestore.ModeTitle), string(notestore.ModeContent)),
		),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("get_notes_contract",
		mcp.WithDescription("Returns how notes and tool results are shaped. "+
			"Call this before the first change to learn the rules."),
	), s.getNotesContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Notes Tool Contract",
			mcp.WithResourceDescription("Notes model and tool result format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// Load fills the store with every note on the server. Tools that build on
// the current collection call it first, so a failed startup load is retried
// on the next such call.
func (s *Server) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.loaded {
		return nil
	}
	if err := s.store.LoadAll(ctx); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type viewResult struct {
	View  string        `json:"view"`
	Mode  string        `json:"mode"`
	Notes []models.Note `json:"notes"`
}

// result renders the store state after an operation, or the operation error.
func (s *Server) result(err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap := s.store.Snapshot()
	out, err := json.MarshalIndent(viewResult{
		View:  snap.View.String(),
		Mode:  string(snap.Mode),
		Notes: snap.Notes,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := s.store.LoadAll(ctx)
	if err == nil {
		s.loadMu.Lock()
		s.loaded = true
		s.loadMu.Unlock()
	}
	return s.result(err)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.Load(ctx); err != nil {
		return s.result(err)
	}
	return s.result(s.store.Create(ctx, title, content))
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	edit := notestore.Edit{ID: id}
	if title, err := req.RequireString("title"); err == nil {
		edit.Title = &title
	}
	if content, err := req.RequireString("content"); err == nil {
		edit.Content = &content
	}
	if err := s.Load(ctx); err != nil {
		return s.result(err)
	}
	return s.result(s.store.Apply(ctx, edit))
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.result(s.store.DeleteOne(ctx, id))
}

func (s *Server) deleteAllNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.result(s.store.DeleteAll(ctx))
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := s.store.Mode()
	if m := req.GetString("mode", ""); m != "" {
		if mode, err = notestore.ParseMode(m); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return s.result(s.store.Search(ctx, query, mode))
}

// requireID reads the "id" argument. Clients may send it as a JSON number.
func requireID(req mcp.CallToolRequest) (models.ID, error) {
	switch v := req.GetArguments()["id"].(type) {
	case string:
		if v != "" {
			return models.ID(v), nil
		}
	case float64:
		return models.IDFromInt(int64(v)), nil
	}
	return "", errors.New(`required argument "id" not found`)
}

func (s *Server) getNotesContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NotesContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NotesContract,
		},
	}, nil
}
