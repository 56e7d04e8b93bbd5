package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/notes/internal/apperr"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	ID        int64
	Path      string
	Title     string
	Content   string
	Checksum  string
	UpdatedAt time.Time
}

const selectColumns = `SELECT id, path, title, content, checksum, updated_at FROM notes`

// UpsertNote inserts or replaces a note keyed by id.
func (db *DB) UpsertNote(n NoteRow) error {
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO notes (id, path, title, content, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			content    = excluded.content,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, n.ID, n.Path, n.Title, n.Content, n.Checksum, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note %d: %w", n.ID, err)
	}
	return nil
}

// DeleteNote removes the note with the given id. Unknown ids are not an error.
func (db *DB) DeleteNote(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete note %d: %w", id, err)
	}
	return nil
}

// DeletePath removes the note indexed from the given vault path.
func (db *DB) DeletePath(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete path %s: %w", path, err)
	}
	return nil
}

// DeleteAll removes every note. The id counter is kept so ids are not reused.
func (db *DB) DeleteAll() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := bumpCounter(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("index: delete all: %w", err)
	}
	return tx.Commit()
}

// GetNote returns the note with the given id or apperr.ErrNotFound.
func (db *DB) GetNote(id int64) (*NoteRow, error) {
	row := db.conn.QueryRow(selectColumns+` WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note %d: %w", id, err)
	}
	return n, nil
}

// GetChecksum returns the stored checksum for a path, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// ListNotes returns every note in ascending id order.
func (db *DB) ListNotes() ([]NoteRow, error) {
	return db.query(selectColumns + ` ORDER BY id`)
}

// SearchTitle returns notes whose title contains query, ignoring ASCII case.
func (db *DB) SearchTitle(query string) ([]NoteRow, error) {
	return db.query(selectColumns+` WHERE title LIKE ? ESCAPE '\' ORDER BY id`, likePattern(query))
}

// SearchContent returns notes whose content contains query, ignoring ASCII case.
func (db *DB) SearchContent(query string) ([]NoteRow, error) {
	return db.query(selectColumns+` WHERE content LIKE ? ESCAPE '\' ORDER BY id`, likePattern(query))
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// NextID allocates a fresh note id. Ids grow monotonically and survive
// deletions, so a deleted id is never handed out again.
func (db *DB) NextID() (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := bumpCounter(tx); err != nil {
		return 0, err
	}
	var next int64
	if err := tx.QueryRow(`SELECT value + 1 FROM counters WHERE name = 'note_id'`).Scan(&next); err != nil {
		return 0, fmt.Errorf("index: read counter: %w", err)
	}
	if _, err := tx.Exec(`UPDATE counters SET value = ? WHERE name = 'note_id'`, next); err != nil {
		return 0, fmt.Errorf("index: update counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("index: commit counter: %w", err)
	}
	return next, nil
}

// bumpCounter raises the id counter to at least the highest indexed id.
func bumpCounter(tx *sql.Tx) error {
	_, err := tx.Exec(`
		INSERT INTO counters (name, value)
		VALUES ('note_id', (SELECT COALESCE(MAX(id), 0) FROM notes))
		ON CONFLICT(name) DO UPDATE SET
			value = MAX(value, (SELECT COALESCE(MAX(id), 0) FROM notes))
	`)
	if err != nil {
		return fmt.Errorf("index: bump counter: %w", err)
	}
	return nil
}

func (db *DB) query(q string, args ...any) ([]NoteRow, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query notes: %w", err)
	}
	defer rows.Close()

	out := []NoteRow{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*NoteRow, error) {
	var n NoteRow
	if err := s.Scan(&n.ID, &n.Path, &n.Title, &n.Content, &n.Checksum, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// likePattern wraps query for a substring LIKE match, escaping wildcards.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(query) + "%"
}
