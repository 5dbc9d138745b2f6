package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/cardex/internal/cards"
	"github.com/starford/cardex/internal/flow"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *cards.Service, flows *flow.Manager, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, flows)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Records.
	r.Get("/cards", h.ListCards)
	r.Get("/cards/{id}", h.GetCard)
	r.Get("/cards/{id}/vcard", h.ExportVCard)

	// Search.
	r.Get("/search", h.Search)

	// Capture flow.
	r.Post("/flow", h.CreateFlow)
	r.Route("/flow/{sid}", func(r chi.Router) {
		r.Get("/", h.GetFlow)
		r.Post("/capture", h.StartCapture)
		r.Post("/image", h.SubmitImage)
		r.Post("/backside/add", h.AddBackside)
		r.Post("/backside/skip", h.SkipBackside)
		r.Post("/back-image", h.AttachBackImage)
		r.Put("/draft", h.UpdateDraft)
		r.Post("/save", h.SaveDraft)
		r.Post("/cancel", h.CancelFlow)
		r.Post("/retry", h.RetryCapture)
		r.Post("/delete", h.RequestDelete)
		r.Post("/delete/confirm", h.ConfirmDelete)
		r.Post("/delete/cancel", h.CancelDelete)
		r.Post("/edit/{cardID}", h.EditExisting)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
