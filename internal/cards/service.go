// Package cards coordinates the record store, search index, and change
// events for the rest of the application.
package cards

import (
	"context"
	"log/slog"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/index"
	"github.com/starford/cardex/internal/models"
	"github.com/starford/cardex/internal/store"
	"github.com/starford/cardex/internal/vcard"
)

// Publisher receives card change notifications. Satisfied by *sse.Broker.
type Publisher interface {
	PublishCardEvent(kind, id string)
}

// Service coordinates store, index, and event publication.
type Service struct {
	store  store.Provider
	db     index.ContactIndex
	events Publisher // may be nil
	logger *slog.Logger
}

// NewService creates a new card service. events may be nil when no broker
// is wired (e.g. the MCP stdio entry point).
func NewService(st store.Provider, db index.ContactIndex, events Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, db: db, events: events, logger: logger}
}

// List returns all records in display order (most-recently-saved new
// records first).
func (s *Service) List(_ context.Context) []models.CardRecord {
	return s.store.List()
}

// Get returns a single record by id.
func (s *Service) Get(_ context.Context, id string) (models.CardRecord, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return models.CardRecord{}, apperr.ErrNotFound
	}
	return rec, nil
}

// Save upserts a record, refreshes its index row, and publishes a change
// event. Persistence failures are absorbed by the store; the returned
// collection always reflects the intended state.
func (s *Service) Save(_ context.Context, rec models.CardRecord) []models.CardRecord {
	recs := s.store.Save(rec)

	if err := s.db.UpsertContact(index.ContactRow{
		ID:      rec.ID,
		Name:    rec.Name,
		Company: rec.Company,
		Title:   rec.Title,
		Email:   rec.Email,
	}, rec.SearchText()); err != nil {
		s.logger.Warn("cards: index upsert failed", slog.String("id", rec.ID), slog.String("error", err.Error()))
	}

	if s.events != nil {
		s.events.PublishCardEvent("saved", rec.ID)
	}
	return recs
}

// Delete removes a record (no-op if absent) and its index row.
func (s *Service) Delete(_ context.Context, id string) []models.CardRecord {
	recs := s.store.Delete(id)

	if err := s.db.DeleteContact(id); err != nil {
		s.logger.Warn("cards: index delete failed", slog.String("id", id), slog.String("error", err.Error()))
	}

	if s.events != nil {
		s.events.PublishCardEvent("deleted", id)
	}
	return recs
}

// Search delegates contact search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ExportVCard serializes a stored record into its vCard document and the
// download filename.
func (s *Service) ExportVCard(ctx context.Context, id string) (filename, body string, err error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	return vcard.Filename(rec.Name), vcard.Serialize(rec), nil
}
