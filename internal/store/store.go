// Package store persists the card collection as a single JSON blob file.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/cardex/internal/checksum"
	"github.com/starford/cardex/internal/models"
)

// Provider is the interface for card record persistence.
type Provider interface {
	// List returns all records in stored order. A missing or corrupt file
	// yields an empty slice, never an error.
	List() []models.CardRecord
	// Get returns the record with the given id, if present.
	Get(id string) (models.CardRecord, bool)
	// Save replaces the record with the same id in place, or inserts the
	// record at the front. Returns the full updated collection.
	Save(rec models.CardRecord) []models.CardRecord
	// Delete removes the record with the given id (no-op if absent) and
	// returns the updated collection.
	Delete(id string) []models.CardRecord
	// Path returns the location of the underlying blob file.
	Path() string
	// Checksum returns the digest of the blob on disk, or "" if missing.
	Checksum() string
}

// File implements Provider backed by a single JSON file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a File store at path, creating the parent directory if
// needed. The file itself is created on first Save.
func NewFile(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("store: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	return &File{path: abs}, nil
}

// Path returns the absolute path of the blob file.
func (f *File) Path() string { return f.path }

// List returns all records in stored order.
func (f *File) List() []models.CardRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Get returns the record with the given id.
func (f *File) Get(id string) (models.CardRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.load() {
		if r.ID == id {
			return r, true
		}
	}
	return models.CardRecord{}, false
}

// Save upserts a record: same id is replaced in place (position preserved),
// a new id is inserted at the front. The updated collection is returned even
// when the write fails; durability is then not guaranteed.
func (f *File) Save(rec models.CardRecord) []models.CardRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	recs := f.load()
	replaced := false
	for i, r := range recs {
		if r.ID == rec.ID {
			recs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		recs = append([]models.CardRecord{rec}, recs...)
	}
	f.persist(recs)
	return recs
}

// Delete removes the record with the given id, if present.
func (f *File) Delete(id string) []models.CardRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	recs := f.load()
	out := recs[:0]
	for _, r := range recs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	f.persist(out)
	return out
}

// Checksum returns the digest of the blob file on disk.
func (f *File) Checksum() string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return ""
	}
	return checksum.Sum(data)
}

// load reads and parses the blob. Corruption is swallowed: the caller always
// gets a usable (possibly empty) collection.
func (f *File) load() []models.CardRecord {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("store: read failed", slog.String("path", f.path), slog.String("error", err.Error()))
		}
		return []models.CardRecord{}
	}
	var recs []models.CardRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		slog.Warn("store: corrupt blob, treating as empty", slog.String("path", f.path), slog.String("error", err.Error()))
		return []models.CardRecord{}
	}
	if recs == nil {
		recs = []models.CardRecord{}
	}
	return recs
}

// persist atomically writes the collection: tmp file → fsync → rename.
// Failures are logged, not raised, so the caller's in-memory state stays valid.
func (f *File) persist(recs []models.CardRecord) {
	data, err := json.Marshal(recs)
	if err != nil {
		slog.Error("store: marshal failed", slog.String("error", err.Error()))
		return
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".cardex-tmp-*")
	if err != nil {
		slog.Error("store: create temp failed", slog.String("error", err.Error()))
		return
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		slog.Error("store: write temp failed", slog.String("error", err.Error()))
		return
	}
	if err := tmp.Sync(); err != nil {
		slog.Error("store: fsync failed", slog.String("error", err.Error()))
		return
	}
	if err := tmp.Close(); err != nil {
		slog.Error("store: close temp failed", slog.String("error", err.Error()))
		return
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		slog.Error("store: rename failed", slog.String("error", err.Error()))
		return
	}
	success = true
}
