// Package notestore holds the client-side view of the notes collection.
//
// A Store owns the displayed collection and the tag describing what it
// represents. Every operation performs one request against the notes API,
// then applies the response under the store lock. Requests themselves run
// unlocked, so overlapping operations resolve by completion order: the last
// response to complete is what the store shows.
package notestore

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/client"
	"github.com/starford/notes/internal/models"
)

// API is the remote notes API as seen by the store.
type API interface {
	List(ctx context.Context) ([]models.Note, error)
	Create(ctx context.Context, title, content string) (models.Note, error)
	Get(ctx context.Context, id models.ID) (models.Note, error)
	DeleteOne(ctx context.Context, id models.ID) ([]models.Note, error)
	DeleteAll(ctx context.Context) error
	Update(ctx context.Context, id models.ID, title, content string) (models.Note, error)
	UpdateTitle(ctx context.Context, id models.ID, title string) (models.Note, error)
	UpdateContent(ctx context.Context, id models.ID, content string) (models.Note, error)
	SearchTitle(ctx context.Context, query string) ([]models.Note, error)
	SearchContent(ctx context.Context, query string) ([]models.Note, error)
}

var _ API = (*client.Client)(nil)

// View tells what the displayed collection represents.
type View int

const (
	ViewEmpty View = iota
	ViewFullList
	ViewSingleResult
	ViewFiltered
)

func (v View) String() string {
	switch v {
	case ViewEmpty:
		return "empty"
	case ViewFullList:
		return "all notes"
	case ViewSingleResult:
		return "search result"
	case ViewFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the store state, safe to keep and render.
type Snapshot struct {
	Notes []models.Note
	View  View
	Mode  Mode
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for operation traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithStaleGuard makes the store discard a response when a later-issued
// operation has already been applied. Discarded operations return
// apperr.ErrStale.
func WithStaleGuard() Option {
	return func(s *Store) { s.staleGuard = true }
}

// Store is the authoritative local view of the notes collection.
type Store struct {
	api        API
	logger     *slog.Logger
	staleGuard bool
	issued     atomic.Uint64

	mu        sync.Mutex
	notes     []models.Note
	view      View
	mode      Mode
	applied   uint64
	listeners []func(Snapshot)
}

// New returns an empty store bound to api. The initial view is ViewEmpty and
// the search mode is ModeID.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:    api,
		logger: slog.Default(),
		notes:  []models.Note{},
		view:   ViewEmpty,
		mode:   ModeID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Notes returns a copy of the displayed collection.
func (s *Store) Notes() []models.Note {
	return s.Snapshot().Notes
}

// OnChange registers fn to be called with the new state after every applied
// operation. Listeners run on the goroutine that completed the operation,
// outside the store lock.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// LoadAll replaces the collection with every note on the server.
func (s *Store) LoadAll(ctx context.Context) error {
	ticket := s.issue()
	notes, err := s.api.List(ctx)
	if err != nil {
		return s.failed("load all", err)
	}
	return s.commit("load all", ticket, func() {
		s.notes = orEmpty(notes)
		s.view = ViewFullList
	})
}

// Create adds a note and appends the server's copy to the collection.
// Empty title or content sends nothing.
func (s *Store) Create(ctx context.Context, title, content string) error {
	if title == "" || content == "" {
		return nil
	}
	ticket := s.issue()
	note, err := s.api.Create(ctx, title, content)
	if err != nil {
		return s.failed("create", err)
	}
	return s.commit("create", ticket, func() {
		s.notes = append(s.notes, note)
		s.view = ViewFullList
	})
}

// DeleteOne removes a note and shows the remaining collection returned by
// the server.
func (s *Store) DeleteOne(ctx context.Context, id models.ID) error {
	ticket := s.issue()
	remaining, err := s.api.DeleteOne(ctx, id)
	if err != nil {
		return s.failed("delete", err)
	}
	return s.commit("delete", ticket, func() {
		s.notes = orEmpty(remaining)
		s.view = ViewFullList
	})
}

// DeleteAll removes every note. The response body is ignored.
func (s *Store) DeleteAll(ctx context.Context) error {
	ticket := s.issue()
	if err := s.api.DeleteAll(ctx); err != nil {
		return s.failed("delete all", err)
	}
	return s.commit("delete all", ticket, func() {
		s.notes = []models.Note{}
		s.view = ViewEmpty
	})
}

// UpdateWhole replaces title and content of a note.
func (s *Store) UpdateWhole(ctx context.Context, id models.ID, title, content string) error {
	if title == "" || content == "" {
		return nil
	}
	ticket := s.issue()
	note, err := s.api.Update(ctx, id, title, content)
	if err != nil {
		return s.failed("update", err)
	}
	return s.commit("update", ticket, func() { s.replace(id, note) })
}

// UpdateTitle replaces only the title of a note.
func (s *Store) UpdateTitle(ctx context.Context, id models.ID, title string) error {
	if title == "" {
		return nil
	}
	ticket := s.issue()
	note, err := s.api.UpdateTitle(ctx, id, title)
	if err != nil {
		return s.failed("update title", err)
	}
	return s.commit("update title", ticket, func() { s.replace(id, note) })
}

// UpdateContent replaces only the content of a note.
func (s *Store) UpdateContent(ctx context.Context, id models.ID, content string) error {
	if content == "" {
		return nil
	}
	ticket := s.issue()
	note, err := s.api.UpdateContent(ctx, id, content)
	if err != nil {
		return s.failed("update content", err)
	}
	return s.commit("update content", ticket, func() { s.replace(id, note) })
}

// replace swaps the element with the target id for the server's copy. A
// target that is not in the collection leaves it unchanged.
func (s *Store) replace(id models.ID, note models.Note) {
	i := slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
	if i >= 0 {
		s.notes[i] = note
	}
	s.view = ViewFullList
}

func (s *Store) issue() uint64 {
	return s.issued.Add(1)
}

// commit applies fn under the lock and notifies listeners. With the stale
// guard on, a ticket older than the last applied one is dropped.
func (s *Store) commit(op string, ticket uint64, fn func()) error {
	s.mu.Lock()
	if s.staleGuard && ticket < s.applied {
		s.mu.Unlock()
		s.logger.Debug("stale response discarded",
			slog.String("op", op),
			slog.Uint64("ticket", ticket),
		)
		return apperr.ErrStale
	}
	if ticket > s.applied {
		s.applied = ticket
	}
	fn()
	snap := s.snapshotLocked()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.logger.Debug("notes view updated",
		slog.String("op", op),
		slog.Int("count", len(snap.Notes)),
		slog.String("view", snap.View.String()),
	)
	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

func (s *Store) failed(op string, err error) error {
	s.logger.Warn("notes request failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return err
}

func orEmpty(notes []models.Note) []models.Note {
	if notes == nil {
		return []models.Note{}
	}
	return notes
}

func (s *Store) snapshotLocked() Snapshot {
	notes := make([]models.Note, len(s.notes))
	copy(notes, s.notes)
	return Snapshot{Notes: notes, View: s.view, Mode: s.mode}
}
