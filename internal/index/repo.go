package index

import (
	"fmt"
	"time"
)

// ContactRow represents a row in the contacts table.
type ContactRow struct {
	ID        string
	Name      string
	Company   string
	Title     string
	Email     string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Snippet string `json:"snippet"`
}

// UpsertContact inserts or replaces a contact row and its FTS entry within a
// transaction. body is the concatenated searchable text of the record.
func (db *DB) UpsertContact(c ContactRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO contacts (id, name, company, title, email, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			company    = excluded.company,
			title      = excluded.title,
			email      = excluded.email,
			body       = excluded.body,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, c.ID, c.Name, c.Company, c.Title, c.Email, body, c.Checksum, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert contact: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, c.ID, c.Name, c.Company, body); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteContact removes a contact and its FTS entry.
func (db *DB) DeleteContact(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM contacts WHERE id = ?`, id)

	return tx.Commit()
}

// AllChecksums returns the stored checksum for every indexed contact.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM contacts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed contacts.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
