package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/cards"
	"github.com/starford/cardex/internal/flow"
	"github.com/starford/cardex/internal/vcard"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *cards.Service
	flows *flow.Manager
}

// NewHandler creates a new Handler.
func NewHandler(svc *cards.Service, flows *flow.Manager) *Handler {
	return &Handler{svc: svc, flows: flows}
}

// ListCards handles GET /api/cards.
//
//	@Summary		List all saved card records in display order
//	@Tags			cards
//	@Produce		json
//	@Success		200	{object}	CardListResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	recs := h.svc.List(r.Context())
	writeJSON(w, http.StatusOK, CardListResponse{Cards: recs, Total: len(recs)})
}

// GetCard handles GET /api/cards/{id}.
//
//	@Summary		Get a single card record by id
//	@Tags			cards
//	@Produce		json
//	@Param			id	path		string	true	"Record id"
//	@Success		200	{object}	models.CardRecord
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [get]
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get card failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ExportVCard handles GET /api/cards/{id}/vcard.
//
//	@Summary		Download a card record as a vCard 3.0 file
//	@Tags			cards
//	@Produce		text/vcard
//	@Param			id	path	string	true	"Record id"
//	@Success		200	"vCard document"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id}/vcard [get]
func (h *Handler) ExportVCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filename, body, err := h.svc.ExportVCard(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("vcard export failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	w.Header().Set("Content-Type", vcard.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across saved contacts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
