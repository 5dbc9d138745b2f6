package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrFlowBusy          = errors.New("flow busy")
	ErrEmptyRecord       = errors.New("record has no contact data")
	ErrExtraction        = errors.New("extraction failed")
)
