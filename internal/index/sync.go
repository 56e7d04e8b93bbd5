package index

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/notes/internal/checksum"
	"github.com/starford/notes/internal/parser"
	"github.com/starford/notes/internal/storage"
)

var errNotANote = errors.New("index: file name is not a note id")

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeletePath(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses a vault file and upserts it. The id always comes from the
// file name; a frontmatter id that disagrees is ignored.
func indexFile(db *DB, path string, data []byte) error {
	id, ok := storage.NoteID(path)
	if !ok {
		return fmt.Errorf("%w: %s", errNotANote, path)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return db.UpsertNote(NoteRow{
		ID:        id,
		Path:      path,
		Title:     res.Title,
		Content:   res.Content,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	})
}
