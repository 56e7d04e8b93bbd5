// Package storage defines the vault file-system abstraction backing the
// reference notes API.
package storage

import "github.com/starford/notes/internal/models"

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns metadata for every note file in the vault.
	List() ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to vault root).
	Delete(path string) error
}
