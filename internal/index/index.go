package index

// ContactIndex defines the interface for contact indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ContactIndex interface {
	UpsertContact(c ContactRow, body string) error
	DeleteContact(id string) error
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies ContactIndex at compile time.
var _ ContactIndex = (*DB)(nil)
