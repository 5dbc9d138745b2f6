package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/cardex/internal/models"
	"github.com/starford/cardex/internal/store"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "cardex-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpsertAndSearch(t *testing.T) {
	db := testDB(t)
	row := ContactRow{ID: "card_1", Name: "Ana Silva", Company: "Acme", Email: "ana@acme.com", Checksum: "cs1", UpdatedAt: time.Now()}
	if err := db.UpsertContact(row, "Ana Silva Acme Engineer ana@acme.com"); err != nil {
		t.Fatalf("UpsertContact: %v", err)
	}

	results, err := db.Search("Acme", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "card_1" {
		t.Errorf("results = %v", results)
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertContact(ContactRow{ID: "c", Name: "Old"}, "Old")
	_ = db.UpsertContact(ContactRow{ID: "c", Name: "New"}, "New")

	n, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	results, _ := db.Search("New", 10)
	if len(results) != 1 {
		t.Errorf("search New = %v", results)
	}
}

func TestDeleteContact(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertContact(ContactRow{ID: "gone", Name: "Gone"}, "Gone")
	if err := db.DeleteContact("gone"); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	results, _ := db.Search("Gone", 10)
	if len(results) != 0 {
		t.Errorf("deleted contact still searchable: %v", results)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertContact(ContactRow{ID: "a", Checksum: "csa"}, "")
	_ = db.UpsertContact(ContactRow{ID: "b", Checksum: "csb"}, "")

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if cs["a"] != "csa" || cs["b"] != "csb" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestSyncAddsAndRemoves(t *testing.T) {
	db := testDB(t)
	st, err := store.NewFile(filepath.Join(t.TempDir(), "records.json"))
	if err != nil {
		t.Fatal(err)
	}

	st.Save(models.CardRecord{ID: "card_1", Name: "Ana", Company: "Acme"})
	st.Save(models.CardRecord{ID: "card_2", Name: "Bruno"})

	if err := Sync(db, st, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n, _ := db.Count(); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	st.Delete("card_1")
	if err := Sync(db, st, quietLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if n, _ := db.Count(); n != 1 {
		t.Errorf("count after delete = %d, want 1", n)
	}
	results, _ := db.Search("Ana", 10)
	if len(results) != 0 {
		t.Errorf("stale contact still indexed: %v", results)
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	db := testDB(t)
	st, err := store.NewFile(filepath.Join(t.TempDir(), "records.json"))
	if err != nil {
		t.Fatal(err)
	}
	st.Save(models.CardRecord{ID: "card_1", Name: "Ana"})

	if err := Sync(db, st, quietLogger()); err != nil {
		t.Fatal(err)
	}
	before, _ := db.AllChecksums()

	// No change: checksums stay identical.
	if err := Sync(db, st, quietLogger()); err != nil {
		t.Fatal(err)
	}
	after, _ := db.AllChecksums()
	if before["card_1"] != after["card_1"] {
		t.Error("checksum changed on no-op sync")
	}
}
