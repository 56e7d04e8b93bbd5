package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notes/internal/client"
	"github.com/starford/notes/internal/notestore"
	"github.com/starford/notes/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	srv, _ := testServerWithAPI(t)
	return srv
}

func testServerWithAPI(t *testing.T) (*Server, *testutil.Server) {
	t.Helper()
	api := testutil.NewServer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := client.New(api.BaseURL(), client.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	return New(notestore.New(c, notestore.WithLogger(logger)), "test"), api
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so dispatch to the
	// handler functions by name.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_notes":
		result, err = srv.listNotes(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "update_note":
		result, err = srv.updateNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "delete_all_notes":
		result, err = srv.deleteAllNotes(ctx, req)
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "get_notes_contract":
		result, err = srv.getNotesContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeView(t *testing.T, r *mcp.CallToolResult) viewResult {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool error: %s", resultText(r))
	}
	var v viewResult
	if err := json.Unmarshal([]byte(resultText(r)), &v); err != nil {
		t.Fatalf("decode %q: %v", resultText(r), err)
	}
	return v
}

func TestCreateAndList(t *testing.T) {
	srv := testServer(t)

	v := decodeView(t, callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Groceries",
		"content": "milk",
	}))
	if len(v.Notes) != 1 || v.Notes[0].Title != "Groceries" || v.Notes[0].ID != "1" {
		t.Errorf("create view = %+v", v)
	}

	v = decodeView(t, callTool(t, srv, "list_notes", map[string]interface{}{}))
	if v.View != "all notes" || len(v.Notes) != 1 {
		t.Errorf("list view = %+v", v)
	}
}

func TestCreateFirstShowsExistingNotes(t *testing.T) {
	srv, api := testServerWithAPI(t)
	if _, err := api.Service.Create(context.Background(), "A", "x"); err != nil {
		t.Fatal(err)
	}

	v := decodeView(t, callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "B",
		"content": "y",
	}))
	if v.View != "all notes" || len(v.Notes) != 2 || v.Notes[0].Title != "A" || v.Notes[1].Title != "B" {
		t.Errorf("create view = %+v", v)
	}
}

func TestUpdateFirstShowsExistingNotes(t *testing.T) {
	srv, api := testServerWithAPI(t)
	ctx := context.Background()
	for _, title := range []string{"A", "B"} {
		if _, err := api.Service.Create(ctx, title, "x"); err != nil {
			t.Fatal(err)
		}
	}

	v := decodeView(t, callTool(t, srv, "update_note", map[string]interface{}{
		"id":    float64(2),
		"title": "C",
	}))
	if len(v.Notes) != 2 || v.Notes[0].Title != "A" || v.Notes[1].Title != "C" {
		t.Errorf("update view = %+v", v)
	}
}

func TestLoadBeforeServing(t *testing.T) {
	srv, api := testServerWithAPI(t)
	ctx := context.Background()
	if _, err := api.Service.Create(ctx, "A", "x"); err != nil {
		t.Fatal(err)
	}
	if err := srv.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if got := srv.store.Notes(); len(got) != 1 || got[0].Title != "A" {
		t.Errorf("notes after load = %+v", got)
	}

	// A second load is a no-op; the store keeps its current view.
	if err := srv.store.Search(ctx, "A", notestore.ModeTitle); err != nil {
		t.Fatal(err)
	}
	if err := srv.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if snap := srv.store.Snapshot(); snap.View != notestore.ViewFiltered {
		t.Errorf("view after second load = %v", snap.View)
	}
}

func TestIDIsEncodedAsNumber(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_note", map[string]interface{}{"title": "A", "content": "x"})
	if !strings.Contains(resultText(r), `"id": 1`) {
		t.Errorf("result = %s", resultText(r))
	}
}

func TestUpdateNotePartial(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_note", map[string]interface{}{"title": "A", "content": "x"})

	v := decodeView(t, callTool(t, srv, "update_note", map[string]interface{}{
		"id":    float64(1),
		"title": "B",
	}))
	if len(v.Notes) != 1 || v.Notes[0].Title != "B" || v.Notes[0].Content != "x" {
		t.Errorf("update view = %+v", v)
	}
}

func TestUpdateNoteWithoutFields(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_note", map[string]interface{}{"title": "A", "content": "x"})

	r := callTool(t, srv, "update_note", map[string]interface{}{"id": "1"})
	if !r.IsError {
		t.Error("expected error for update without fields")
	}
}

func TestSearchModes(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_note", map[string]interface{}{"title": "Groceries", "content": "milk"})
	callTool(t, srv, "create_note", map[string]interface{}{"title": "Work", "content": "buy milk"})

	v := decodeView(t, callTool(t, srv, "search_notes", map[string]interface{}{"query": "2"}))
	if v.View != "search result" || len(v.Notes) != 1 || v.Notes[0].Title != "Work" {
		t.Errorf("id search = %+v", v)
	}

	v = decodeView(t, callTool(t, srv, "search_notes", map[string]interface{}{"query": "7"}))
	if v.View != "search result" || len(v.Notes) != 0 {
		t.Errorf("id miss = %+v", v)
	}

	v = decodeView(t, callTool(t, srv, "search_notes", map[string]interface{}{"query": "milk", "mode": "content"}))
	if v.View != "filtered" || len(v.Notes) != 2 {
		t.Errorf("content search = %+v", v)
	}

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "x", "mode": "tags"})
	if !r.IsError {
		t.Error("expected error for unknown mode")
	}
}

func TestDeleteTools(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_note", map[string]interface{}{"title": "A", "content": "x"})
	callTool(t, srv, "create_note", map[string]interface{}{"title": "B", "content": "y"})

	v := decodeView(t, callTool(t, srv, "delete_note", map[string]interface{}{"id": "1"}))
	if len(v.Notes) != 1 || v.Notes[0].Title != "B" {
		t.Errorf("delete view = %+v", v)
	}

	v = decodeView(t, callTool(t, srv, "delete_all_notes", map[string]interface{}{}))
	if v.View != "empty" || len(v.Notes) != 0 {
		t.Errorf("delete all view = %+v", v)
	}
}

func TestDeleteNoteMissingID(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "delete_note", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing id")
	}
}

func TestGetNotesContract(t *testing.T) {
	srv := testServer(t)
	text := resultText(callTool(t, srv, "get_notes_contract", nil))
	if !strings.Contains(text, "search result") {
		t.Errorf("contract = %q", text)
	}
}
