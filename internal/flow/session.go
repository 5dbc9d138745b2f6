package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/cards"
	"github.com/starford/cardex/internal/extract"
	"github.com/starford/cardex/internal/models"
)

const extractionFailedBanner = "Could not read the card. Please retake the photo."

// Session is one client's capture flow. All mutation goes through the
// session mutex; the lock is released while a remote extraction is in
// flight, and a generation counter invalidates results that arrive after
// the user cancelled or moved on.
type Session struct {
	ID string

	mu           sync.Mutex
	state        State
	gen          uint64
	scanningBack bool
	lastUsed     time.Time

	extractor extract.Extractor
	cards     *cards.Service
	logger    *slog.Logger
}

func newSession(id string, ex extract.Extractor, svc *cards.Service, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:        id,
		state:     State{Kind: KindList},
		lastUsed:  time.Now(),
		extractor: ex,
		cards:     svc,
		logger:    logger,
	}
}

// Snapshot returns a copy of the current state, safe to serialize.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// LastUsed reports when the session last handled an action.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// guard checks that the current state allows the action. Callers hold s.mu.
func (s *Session) guard(allowed ...Kind) error {
	if s.state.Kind == KindExtracting {
		return apperr.ErrFlowBusy
	}
	for _, k := range allowed {
		if s.state.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", apperr.ErrInvalidTransition, s.state.Kind)
}

func (s *Session) touch() {
	s.lastUsed = time.Now()
}

// StartCapture begins a new capture flow from the list.
func (s *Session) StartCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindList); err != nil {
		return err
	}
	s.state = State{Kind: KindCapturing}
	return nil
}

// SubmitImage accepts a captured photo. The first image moves the flow to
// the backside prompt; a second image (after AddBackside) runs extraction
// over both sides. Blocks until extraction completes when it is the second
// image.
func (s *Session) SubmitImage(ctx context.Context, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindCapturing); err != nil {
		return err
	}
	if image == "" {
		return fmt.Errorf("%w: empty image", apperr.ErrInvalidTransition)
	}

	if s.state.FrontImage == "" {
		s.state = State{Kind: KindConfirmBackside, FrontImage: image}
		return nil
	}
	return s.runExtraction(ctx, s.state.FrontImage, image)
}

// AddBackside answers the backside prompt with "yes": capture another photo.
func (s *Session) AddBackside() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindConfirmBackside); err != nil {
		return err
	}
	s.state = State{Kind: KindCapturing, FrontImage: s.state.FrontImage}
	return nil
}

// SkipBackside answers the backside prompt with "no" and extracts from the
// front image alone.
func (s *Session) SkipBackside(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindConfirmBackside); err != nil {
		return err
	}
	return s.runExtraction(ctx, s.state.FrontImage, "")
}

// Cancel abandons the current flow and returns to the list. It is the one
// action allowed while extraction is in flight: the generation bump below
// makes the in-flight result land on the floor.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.gen++
	s.state = State{Kind: KindList}
	return nil
}

// RetryNoData restarts capture after extraction found no contact data.
func (s *Session) RetryNoData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindNoDataFound); err != nil {
		return err
	}
	s.state = State{Kind: KindCapturing}
	return nil
}

// UpdateDraft replaces the editable fields of the draft under review.
// personPhoto overwrites the draft's photo, including clearing it.
func (s *Session) UpdateDraft(fields extract.Fields, personPhoto string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindReviewing); err != nil {
		return err
	}
	fields.Apply(s.state.Draft)
	s.state.Draft.PersonPhoto = personPhoto
	return nil
}

// AttachBackImage adds a back photo to the draft under review and runs a
// second extraction over both sides. The image sticks immediately; fields
// recovered from the back fill only blanks the user has not already filled,
// and an extraction failure keeps the image and is logged, never surfaced.
func (s *Session) AttachBackImage(ctx context.Context, image string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindReviewing); err != nil {
		return err
	}
	if s.scanningBack {
		return apperr.ErrFlowBusy
	}
	if s.state.Draft.BackImage != "" {
		return fmt.Errorf("%w: back image already attached", apperr.ErrInvalidTransition)
	}
	if image == "" {
		return fmt.Errorf("%w: empty image", apperr.ErrInvalidTransition)
	}

	s.state.Draft.BackImage = image
	s.scanningBack = true
	front := s.state.Draft.FrontImage
	draftID := s.state.Draft.ID
	gen := s.gen

	s.mu.Unlock()
	fields, err := s.extractor.Extract(ctx, front, image)
	s.mu.Lock()

	s.scanningBack = false
	if s.gen != gen || s.state.Kind != KindReviewing || s.state.Draft == nil || s.state.Draft.ID != draftID {
		return nil
	}
	if err != nil {
		s.logger.Warn("flow: back image extraction failed",
			slog.String("session", s.ID), slog.String("error", err.Error()))
		return nil
	}
	fields.MergeInto(s.state.Draft)
	return nil
}

// Save commits the draft under review and returns to the list.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindReviewing); err != nil {
		return err
	}
	if !s.state.Draft.HasContactData() {
		return apperr.ErrEmptyRecord
	}

	s.cards.Save(ctx, *s.state.Draft)
	s.gen++
	s.state = State{Kind: KindList}
	return nil
}

// RequestDelete asks for confirmation before deleting the record under
// review. Only stored records can be deleted; an unsaved draft is discarded
// with Cancel instead.
func (s *Session) RequestDelete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindReviewing); err != nil {
		return err
	}
	if !s.state.Existing {
		return fmt.Errorf("%w: draft is not a stored record", apperr.ErrInvalidTransition)
	}
	s.state.Kind = KindConfirmDelete
	return nil
}

// ConfirmDelete removes the record and returns to the list.
func (s *Session) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindConfirmDelete); err != nil {
		return err
	}

	s.cards.Delete(ctx, s.state.Draft.ID)
	s.gen++
	s.state = State{Kind: KindList}
	return nil
}

// CancelDelete backs out of the delete confirmation to reviewing.
func (s *Session) CancelDelete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindConfirmDelete); err != nil {
		return err
	}
	s.state.Kind = KindReviewing
	return nil
}

// EditExisting opens a stored record for review from the list.
func (s *Session) EditExisting(ctx context.Context, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.guard(KindList); err != nil {
		return err
	}

	rec, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return err
	}
	s.state = State{Kind: KindReviewing, Draft: &rec, Existing: true}
	return nil
}

// runExtraction drives the remote extraction for a fresh capture. Called
// with s.mu held; the lock is dropped for the duration of the remote call
// and the result is discarded if the generation moved on in the meantime.
func (s *Session) runExtraction(ctx context.Context, front, back string) error {
	s.gen++
	gen := s.gen
	s.state = State{Kind: KindExtracting, FrontImage: front, BackImage: back}

	s.mu.Unlock()
	fields, err := s.extractor.Extract(ctx, front, back)
	s.mu.Lock()

	if s.gen != gen || s.state.Kind != KindExtracting {
		// Cancelled while extracting; whatever came back is stale.
		return nil
	}

	if err != nil {
		s.logger.Warn("flow: extraction failed",
			slog.String("session", s.ID), slog.String("error", err.Error()))
		s.state = State{Kind: KindCapturing, Err: extractionFailedBanner}
		return fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}

	if fields.Empty() {
		s.state = State{Kind: KindNoDataFound}
		return nil
	}

	draft := &models.CardRecord{
		ID:         newCardID(),
		FrontImage: front,
		BackImage:  back,
	}
	fields.Apply(draft)
	s.state = State{Kind: KindReviewing, Draft: draft}
	return nil
}
