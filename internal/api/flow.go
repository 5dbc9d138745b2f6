package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/extract"
	"github.com/starford/cardex/internal/flow"
)

// maxImageBytes caps an uploaded card photo (decoded form size).
const maxImageBytes = 10 << 20 // 10 MB

func flowResponse(s *flow.Session) FlowResponse {
	return FlowResponse{SessionID: s.ID, State: s.Snapshot()}
}

// session resolves the {sid} URL parameter. Writes the 404 itself so
// callers can just return on nil.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *flow.Session {
	s, err := h.flows.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("session not found"))
		return nil
	}
	return s
}

// respondFlow maps a flow action result onto HTTP. Success and extraction
// failure both carry the state snapshot so the client always knows which
// screen to render.
func (h *Handler) respondFlow(w http.ResponseWriter, s *flow.Session, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, flowResponse(s))
	case errors.Is(err, apperr.ErrExtraction):
		writeJSON(w, http.StatusBadGateway, flowResponse(s))
	case errors.Is(err, apperr.ErrFlowBusy):
		writeJSON(w, http.StatusConflict, errorBody("extraction in progress"))
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrEmptyRecord):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("record has no contact data"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	default:
		slog.Error("flow action failed", slog.String("session", s.ID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// readImage pulls the "file" field out of a multipart upload and returns it
// base64-encoded, the form the extraction service consumes. Writes the 400
// itself on failure.
func readImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return "", false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return "", false
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return "", false
	}
	return base64.StdEncoding.EncodeToString(raw), true
}

// CreateFlow handles POST /api/flow.
//
//	@Summary		Start a new capture session
//	@Tags			flow
//	@Produce		json
//	@Success		201	{object}	FlowResponse
//	@Security		BearerAuth
//	@Router			/flow [post]
func (h *Handler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	s := h.flows.Create()
	writeJSON(w, http.StatusCreated, flowResponse(s))
}

// GetFlow handles GET /api/flow/{sid}.
//
//	@Summary		Get the current session state
//	@Tags			flow
//	@Produce		json
//	@Param			sid	path		string	true	"Session id"
//	@Success		200	{object}	FlowResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flow/{sid} [get]
func (h *Handler) GetFlow(w http.ResponseWriter, r *http.Request) {
	if s := h.session(w, r); s != nil {
		writeJSON(w, http.StatusOK, flowResponse(s))
	}
}

// StartCapture handles POST /api/flow/{sid}/capture.
func (h *Handler) StartCapture(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.StartCapture())
}

// SubmitImage handles POST /api/flow/{sid}/image (multipart, field "file").
// For the second image of a two-sided capture the response is only written
// once extraction completes.
func (h *Handler) SubmitImage(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	img, ok := readImage(w, r)
	if !ok {
		return
	}
	h.respondFlow(w, s, s.SubmitImage(r.Context(), img))
}

// AddBackside handles POST /api/flow/{sid}/backside/add.
func (h *Handler) AddBackside(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.AddBackside())
}

// SkipBackside handles POST /api/flow/{sid}/backside/skip. Blocks until the
// front-only extraction completes.
func (h *Handler) SkipBackside(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.SkipBackside(r.Context()))
}

// CancelFlow handles POST /api/flow/{sid}/cancel.
func (h *Handler) CancelFlow(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.Cancel())
}

// RetryCapture handles POST /api/flow/{sid}/retry.
func (h *Handler) RetryCapture(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.RetryNoData())
}

// UpdateDraft handles PUT /api/flow/{sid}/draft.
//
//	@Summary		Replace the editable fields of the draft under review
//	@Tags			flow
//	@Accept			json
//	@Produce		json
//	@Param			sid		path		string				true	"Session id"
//	@Param			body	body		UpdateDraftRequest	true	"Draft fields"
//	@Success		200		{object}	FlowResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/flow/{sid}/draft [put]
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	var req UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	fields := extract.Fields{
		Name:    req.Name,
		Company: req.Company,
		Title:   req.Title,
		Phone:   req.Phone,
		Email:   req.Email,
		Website: req.Website,
		Address: req.Address,
	}
	h.respondFlow(w, s, s.UpdateDraft(fields, req.PersonPhoto))
}

// AttachBackImage handles POST /api/flow/{sid}/back-image (multipart, field
// "file"). Blocks while the combined extraction runs; a failure there still
// returns 200 with the image attached.
func (h *Handler) AttachBackImage(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	img, ok := readImage(w, r)
	if !ok {
		return
	}
	h.respondFlow(w, s, s.AttachBackImage(r.Context(), img))
}

// SaveDraft handles POST /api/flow/{sid}/save.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.Save(r.Context()))
}

// RequestDelete handles POST /api/flow/{sid}/delete.
func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.RequestDelete())
}

// ConfirmDelete handles POST /api/flow/{sid}/delete/confirm.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.ConfirmDelete(r.Context()))
}

// CancelDelete handles POST /api/flow/{sid}/delete/cancel.
func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.CancelDelete())
}

// EditExisting handles POST /api/flow/{sid}/edit/{cardID}.
func (h *Handler) EditExisting(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.respondFlow(w, s, s.EditExisting(r.Context(), chi.URLParam(r, "cardID")))
}
