package notestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

// Mode selects how a search query is interpreted.
type Mode string

const (
	ModeID      Mode = "id"
	ModeTitle   Mode = "title"
	ModeContent Mode = "content"
)

// Modes lists the valid search modes.
var Modes = []Mode{ModeID, ModeTitle, ModeContent}

// ParseMode converts s into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeID, ModeTitle, ModeContent:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown search mode %q", apperr.ErrInvalidInput, s)
}

// Mode returns the mode used by SearchCurrent.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode changes the mode used by SearchCurrent. The displayed collection
// is left alone.
func (s *Store) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return nil
}

// SearchCurrent runs Search with the current mode.
func (s *Store) SearchCurrent(ctx context.Context, query string) error {
	return s.Search(ctx, query, s.Mode())
}

// Search replaces the collection with the notes matching query.
//
// ModeID looks up a single note; when the server reports no such note the
// collection becomes empty and the view is ViewSingleResult, with no error.
// ModeTitle and ModeContent show every substring match as ViewFiltered.
// An empty query sends nothing.
func (s *Store) Search(ctx context.Context, query string, mode Mode) error {
	if query == "" {
		return nil
	}
	switch mode {
	case ModeID:
		return s.searchID(ctx, models.ID(query))
	case ModeTitle:
		return s.searchList(ctx, "search title", query, s.api.SearchTitle)
	case ModeContent:
		return s.searchList(ctx, "search content", query, s.api.SearchContent)
	}
	_, err := ParseMode(string(mode))
	return err
}

// Reset drops any search filter by reloading the full collection.
func (s *Store) Reset(ctx context.Context) error {
	return s.LoadAll(ctx)
}

func (s *Store) searchID(ctx context.Context, id models.ID) error {
	ticket := s.issue()
	note, err := s.api.Get(ctx, id)
	found := true
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		found = false
	case err != nil:
		return s.failed("search id", err)
	}
	return s.commit("search id", ticket, func() {
		if found {
			s.notes = []models.Note{note}
		} else {
			s.notes = []models.Note{}
		}
		s.view = ViewSingleResult
	})
}

func (s *Store) searchList(ctx context.Context, op, query string, fetch func(context.Context, string) ([]models.Note, error)) error {
	ticket := s.issue()
	notes, err := fetch(ctx, query)
	if err != nil {
		return s.failed(op, err)
	}
	return s.commit(op, ticket, func() {
		s.notes = orEmpty(notes)
		s.view = ViewFiltered
	})
}
