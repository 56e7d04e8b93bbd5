package index

// NoteIndex defines the interface for note indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow) error
	DeleteNote(id int64) error
	DeletePath(path string) error
	DeleteAll() error
	GetNote(id int64) (*NoteRow, error)
	GetChecksum(path string) (string, error)
	ListNotes() ([]NoteRow, error)
	SearchTitle(query string) ([]NoteRow, error)
	SearchContent(query string) ([]NoteRow, error)
	AllChecksums() (map[string]string, error)
	NextID() (int64, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
