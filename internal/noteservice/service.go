// Package noteservice implements the notes API operations on top of the
// vault storage and the SQLite index.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/checksum"
	"github.com/starford/notes/internal/index"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/parser"
	"github.com/starford/notes/internal/storage"
)

// Event kinds passed to the EventFunc.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	EventCleared = "cleared"
)

// EventFunc is notified after every successful mutation.
type EventFunc func(kind string, id int64)

// Service coordinates storage and index operations.
//
// Mutations are serialized by mu so that id allocation, the vault file and
// the index row for one note never interleave with another writer.
type Service struct {
	store  storage.Provider
	db     index.NoteIndex
	events EventFunc

	mu sync.Mutex
}

// NewService creates a new note service. events may be nil.
func NewService(store storage.Provider, db index.NoteIndex, events EventFunc) *Service {
	return &Service{store: store, db: db, events: events}
}

// List returns every note in ascending id order.
func (s *Service) List(_ context.Context) ([]models.Note, error) {
	rows, err := s.db.ListNotes()
	if err != nil {
		return nil, err
	}
	return toNotes(rows), nil
}

// Get returns one note. Ids that are not positive integers are reported as
// apperr.ErrNotFound.
func (s *Service) Get(_ context.Context, id models.ID) (*models.Note, error) {
	n, ok := id.Int64()
	if !ok {
		return nil, apperr.ErrNotFound
	}
	row, err := s.db.GetNote(n)
	if err != nil {
		return nil, err
	}
	note := toNote(*row)
	return &note, nil
}

// Create stores a new note under a freshly allocated id.
func (s *Service) Create(_ context.Context, title, content string) (*models.Note, error) {
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.db.NextID()
	if err != nil {
		return nil, err
	}
	note, err := s.write(id, title, content)
	if err != nil {
		return nil, err
	}
	s.emit(EventCreated, id)
	return note, nil
}

// Update replaces both title and content.
func (s *Service) Update(ctx context.Context, id models.ID, title, content string) (*models.Note, error) {
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperr.ErrInvalidInput)
	}
	return s.patch(ctx, id, func(row *index.NoteRow) {
		row.Title = title
		row.Content = content
	})
}

// UpdateTitle replaces only the title.
func (s *Service) UpdateTitle(ctx context.Context, id models.ID, title string) (*models.Note, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalidInput)
	}
	return s.patch(ctx, id, func(row *index.NoteRow) { row.Title = title })
}

// UpdateContent replaces only the content.
func (s *Service) UpdateContent(ctx context.Context, id models.ID, content string) (*models.Note, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrInvalidInput)
	}
	return s.patch(ctx, id, func(row *index.NoteRow) { row.Content = content })
}

// DeleteOne removes a note and returns the remaining collection. Deleting an
// unknown id is not an error; the collection is returned unchanged.
func (s *Service) DeleteOne(ctx context.Context, id models.ID) ([]models.Note, error) {
	if n, ok := id.Int64(); ok {
		s.mu.Lock()
		deleted, err := s.remove(n)
		s.mu.Unlock()
		if err != nil {
			return nil, err
		}
		if deleted {
			s.emit(EventDeleted, n)
		}
	}
	return s.List(ctx)
}

// DeleteAll removes every note.
func (s *Service) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.ListNotes()
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := s.store.Delete(r.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := s.db.DeleteAll(); err != nil {
		return err
	}
	s.emit(EventCleared, 0)
	return nil
}

// SearchTitle returns notes whose title contains query.
func (s *Service) SearchTitle(_ context.Context, query string) ([]models.Note, error) {
	rows, err := s.db.SearchTitle(query)
	if err != nil {
		return nil, err
	}
	return toNotes(rows), nil
}

// SearchContent returns notes whose content contains query.
func (s *Service) SearchContent(_ context.Context, query string) ([]models.Note, error) {
	rows, err := s.db.SearchContent(query)
	if err != nil {
		return nil, err
	}
	return toNotes(rows), nil
}

func (s *Service) patch(_ context.Context, id models.ID, apply func(*index.NoteRow)) (*models.Note, error) {
	n, ok := id.Int64()
	if !ok {
		return nil, apperr.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.db.GetNote(n)
	if err != nil {
		return nil, err
	}
	apply(row)
	note, err := s.write(n, row.Title, row.Content)
	if err != nil {
		return nil, err
	}
	s.emit(EventUpdated, n)
	return note, nil
}

// write renders the note file, stores it and indexes it. Callers hold mu.
func (s *Service) write(id int64, title, content string) (*models.Note, error) {
	data, err := parser.Format(id, title, content)
	if err != nil {
		return nil, err
	}
	path := storage.NotePath(id)
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	row := index.NoteRow{
		ID:        id,
		Path:      path,
		Title:     title,
		Content:   content,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}
	if err := s.db.UpsertNote(row); err != nil {
		return nil, err
	}
	note := toNote(row)
	return &note, nil
}

// remove deletes the vault file and index row. Callers hold mu.
func (s *Service) remove(id int64) (bool, error) {
	_, err := s.db.GetNote(id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.store.Delete(storage.NotePath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := s.db.DeleteNote(id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) emit(kind string, id int64) {
	if s.events != nil {
		s.events(kind, id)
	}
}

func toNote(r index.NoteRow) models.Note {
	return models.Note{ID: models.IDFromInt(r.ID), Title: r.Title, Content: r.Content}
}

func toNotes(rows []index.NoteRow) []models.Note {
	out := make([]models.Note, len(rows))
	for i, r := range rows {
		out[i] = toNote(r)
	}
	return out
}
