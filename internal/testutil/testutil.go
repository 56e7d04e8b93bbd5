// Package testutil provides shared test helpers for setting up vaults,
// databases and a running notes API.
package testutil

import (
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notes/internal/api"
	"github.com/starford/notes/internal/index"
	"github.com/starford/notes/internal/noteservice"
	"github.com/starford/notes/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "notes-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Server is a notes API running on a local httptest server.
type Server struct {
	*httptest.Server
	Service *noteservice.Service
	Vault   string
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// NewServer starts the notes API backed by a temporary vault and database.
// The server is closed when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	vaultDir, store := TestVault(t)
	db := TestDB(t)
	svc := noteservice.NewService(store, db, nil)

	root := chi.NewRouter()
	root.Mount("/api", api.NewRouter(svc, nil))

	ts := httptest.NewServer(root)
	t.Cleanup(ts.Close)
	return &Server{Server: ts, Service: svc, Vault: vaultDir}
}
