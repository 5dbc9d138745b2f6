package index

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/starford/cardex/internal/checksum"
	"github.com/starford/cardex/internal/models"
	"github.com/starford/cardex/internal/store"
)

// Sync brings the index up to date with the record store:
//   - new/changed records are upserted
//   - records removed from the store are deleted from the index
func Sync(db *DB, st store.Provider, logger *slog.Logger) error {
	recs := st.List()

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		seen[r.ID] = struct{}{}

		cs := recordChecksum(r)
		if checksums[r.ID] == cs {
			continue
		}
		if err := indexRecord(db, r, cs); err != nil {
			logger.Warn("sync: index failed", slog.String("id", r.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", r.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := seen[id]; !ok {
			if err := db.DeleteContact(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// indexRecord upserts one record into the DB.
func indexRecord(db *DB, r models.CardRecord, cs string) error {
	row := ContactRow{
		ID:        r.ID,
		Name:      r.Name,
		Company:   r.Company,
		Title:     r.Title,
		Email:     r.Email,
		Checksum:  cs,
		UpdatedAt: time.Now(),
	}
	return db.UpsertContact(row, r.SearchText())
}

// recordChecksum digests the text fields of a record. Image payloads are
// excluded so re-encoding an image does not force a reindex.
func recordChecksum(r models.CardRecord) string {
	fields, _ := json.Marshal([]string{
		r.ID, r.Name, r.Company, r.Title, r.Phone, r.Email, r.Website, r.Address,
	})
	return checksum.Sum(fields)
}
