package notestore

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

var errNothingToEdit = errors.New("title or content must be set")

// Edit is an update command. A nil Title or Content keeps the note's current
// value; setting both replaces the whole note.
type Edit struct {
	ID      models.ID
	Title   *string
	Content *string
}

// Validate checks that the command names a note and changes something.
func (e Edit) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Title, validation.NilOrNotEmpty),
		validation.Field(&e.Content, validation.NilOrNotEmpty),
	)
	if err != nil {
		return err
	}
	if e.Title == nil && e.Content == nil {
		return errNothingToEdit
	}
	return nil
}

// Apply validates e and runs the matching update operation.
func (s *Store) Apply(ctx context.Context, e Edit) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	switch {
	case e.Title != nil && e.Content != nil:
		return s.UpdateWhole(ctx, e.ID, *e.Title, *e.Content)
	case e.Title != nil:
		return s.UpdateTitle(ctx, e.ID, *e.Title)
	default:
		return s.UpdateContent(ctx, e.ID, *e.Content)
	}
}
