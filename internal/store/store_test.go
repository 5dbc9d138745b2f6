package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/cardex/internal/models"
)

func tempStore(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "records.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestListEmpty(t *testing.T) {
	s := tempStore(t)
	recs := s.List()
	if recs == nil {
		t.Fatal("List must return a non-nil slice")
	}
	if len(recs) != 0 {
		t.Errorf("len = %d, want 0", len(recs))
	}
}

func TestSaveInsertsAtFront(t *testing.T) {
	s := tempStore(t)
	s.Save(models.CardRecord{ID: "card_1", Name: "Ana"})
	recs := s.Save(models.CardRecord{ID: "card_2", Name: "Bruno"})

	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].ID != "card_2" || recs[1].ID != "card_1" {
		t.Errorf("order = [%s, %s], want most-recent first", recs[0].ID, recs[1].ID)
	}
}

func TestSavePreservesPositionOnUpdate(t *testing.T) {
	s := tempStore(t)
	s.Save(models.CardRecord{ID: "c", Name: "C"})
	s.Save(models.CardRecord{ID: "b", Name: "B"})
	s.Save(models.CardRecord{ID: "a", Name: "A"})

	recs := s.Save(models.CardRecord{ID: "b", Name: "B2"})
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if recs[i].ID != id {
			t.Errorf("recs[%d].ID = %s, want %s", i, recs[i].ID, id)
		}
	}
	if recs[1].Name != "B2" {
		t.Errorf("updated name = %q, want B2", recs[1].Name)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := tempStore(t)
	s.Save(models.CardRecord{ID: "x", Name: "X"})
	s.Save(models.CardRecord{ID: "y", Name: "Y"})

	recs := s.Delete("x")
	if len(recs) != 1 || recs[0].ID != "y" {
		t.Errorf("after delete: %v", recs)
	}
	for _, r := range s.List() {
		if r.ID == "x" {
			t.Error("deleted id still listed")
		}
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s := tempStore(t)
	s.Save(models.CardRecord{ID: "x"})
	recs := s.Delete("ghost")
	if len(recs) != 1 {
		t.Errorf("len = %d, want 1", len(recs))
	}
}

func TestSaveDurable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	s, _ := NewFile(path)
	s.Save(models.CardRecord{ID: "p", Name: "Persist"})

	// A fresh store over the same file sees the record.
	s2, _ := NewFile(path)
	recs := s2.List()
	if len(recs) != 1 || recs[0].Name != "Persist" {
		t.Errorf("reloaded = %v", recs)
	}
}

func TestCorruptBlobTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFile(path)
	recs := s.List()
	if len(recs) != 0 {
		t.Errorf("corrupt blob should list empty, got %v", recs)
	}
}

func TestGet(t *testing.T) {
	s := tempStore(t)
	s.Save(models.CardRecord{ID: "g", Email: "g@x.com"})

	rec, ok := s.Get("g")
	if !ok || rec.Email != "g@x.com" {
		t.Errorf("Get = %v, %v", rec, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
}

func TestChecksumChangesOnWrite(t *testing.T) {
	s := tempStore(t)
	if s.Checksum() != "" {
		t.Error("checksum of missing file should be empty")
	}
	s.Save(models.CardRecord{ID: "1"})
	first := s.Checksum()
	if first == "" {
		t.Fatal("checksum empty after save")
	}
	s.Save(models.CardRecord{ID: "2"})
	if s.Checksum() == first {
		t.Error("checksum should change after second save")
	}
}

func TestNoLeftoverTempFiles(t *testing.T) {
	s := tempStore(t)
	s.Save(models.CardRecord{ID: "1"})
	s.Save(models.CardRecord{ID: "1", Name: "again"})
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), ".cardex-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}
