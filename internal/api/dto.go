package api

import "github.com/starford/notes/internal/models"

// NoteRequest is the request body for creating a note or replacing it whole.
type NoteRequest struct {
	Title   string `json:"title" example:"Groceries" validate:"required"`
	Content string `json:"content" example:"milk, eggs" validate:"required"`
}

// Note is the response type for a single note (aliased from the domain layer).
type Note = models.Note
