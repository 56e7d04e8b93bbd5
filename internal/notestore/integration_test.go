package notestore_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/client"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/notestore"
	"github.com/starford/notes/internal/testutil"
)

func liveStore(t *testing.T) (*notestore.Store, *testutil.Server) {
	t.Helper()
	srv := testutil.NewServer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := client.New(srv.BaseURL(), client.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	s := notestore.New(c, notestore.WithLogger(logger))
	if err := s.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return s, srv
}

func titles(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestStoreAgainstServer(t *testing.T) {
	s, _ := liveStore(t)
	ctx := context.Background()

	for _, n := range [][2]string{{"Groceries", "milk"}, {"Work", "ship it"}, {"Gym", "legs"}} {
		if err := s.Create(ctx, n[0], n[1]); err != nil {
			t.Fatalf("Create(%s): %v", n[0], err)
		}
	}
	local := s.Notes()
	if err := s.LoadAll(ctx); err != nil {
		t.Fatal(err)
	}
	if got := s.Notes(); len(got) != 3 || got[0] != local[0] || got[2] != local[2] {
		t.Fatalf("reload = %+v, local = %+v", got, local)
	}

	workID := local[1].ID
	if err := s.UpdateTitle(ctx, workID, "Job"); err != nil {
		t.Fatal(err)
	}
	if got := s.Notes()[1]; got.Title != "Job" || got.Content != "ship it" {
		t.Errorf("after title update: %+v", got)
	}

	if err := s.Search(ctx, "gro", notestore.ModeTitle); err != nil {
		t.Fatal(err)
	}
	if got := titles(s.Notes()); len(got) != 1 || got[0] != "Groceries" {
		t.Errorf("title search = %v", got)
	}

	if err := s.Search(ctx, workID.String(), notestore.ModeID); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.View != notestore.ViewSingleResult || len(snap.Notes) != 1 || snap.Notes[0].ID != workID {
		t.Errorf("id search = %+v", snap)
	}

	if err := s.Search(ctx, "9999", notestore.ModeID); err != nil {
		t.Fatalf("id miss: %v", err)
	}
	if snap := s.Snapshot(); snap.View != notestore.ViewSingleResult || len(snap.Notes) != 0 {
		t.Errorf("id miss = %+v", snap)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteOne(ctx, workID); err != nil {
		t.Fatal(err)
	}
	if got := titles(s.Notes()); len(got) != 2 || got[0] != "Groceries" || got[1] != "Gym" {
		t.Errorf("after delete = %v", got)
	}

	if err := s.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadAll(ctx); err != nil {
		t.Fatal(err)
	}
	if got := s.Notes(); len(got) != 0 {
		t.Errorf("after delete all = %+v", got)
	}
}

func TestStoreUpdateUnknownNote(t *testing.T) {
	s, _ := liveStore(t)
	ctx := context.Background()
	if err := s.Create(ctx, "A", "x"); err != nil {
		t.Fatal(err)
	}
	before := s.Notes()

	err := s.UpdateContent(ctx, "404", "y")
	if !errors.Is(err, apperr.ErrNotFound) || !errors.Is(err, apperr.ErrRequestFailed) {
		t.Fatalf("err = %v", err)
	}
	if got := s.Notes(); len(got) != 1 || got[0] != before[0] {
		t.Errorf("state changed: %+v", got)
	}
}

func TestStoreSeesExternalCreate(t *testing.T) {
	s, srv := liveStore(t)
	ctx := context.Background()

	if _, err := srv.Service.Create(ctx, "Other", "client"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteOne(ctx, "12345"); err != nil {
		t.Fatal(err)
	}
	if got := titles(s.Notes()); len(got) != 1 || got[0] != "Other" {
		t.Errorf("notes = %v", got)
	}
}
