// Package testutil provides shared test helpers for setting up stores and
// databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/cardex/internal/index"
	"github.com/starford/cardex/internal/store"
)

// TestIndex creates a temporary SQLite index that is automatically cleaned up.
func TestIndex(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "cardex-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a temporary blob-file record store.
func TestStore(t *testing.T) *store.File {
	t.Helper()
	st, err := store.NewFile(filepath.Join(t.TempDir(), "records.json"))
	if err != nil {
		t.Fatal(err)
	}
	return st
}
