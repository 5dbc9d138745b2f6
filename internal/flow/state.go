// Package flow implements the capture/extraction/review state machine that
// drives a card digitizing session from the first photo to a saved record.
package flow

import "github.com/starford/cardex/internal/models"

// Kind identifies which screen of the capture flow a session is on.
type Kind string

const (
	// KindList is the resting state: no capture in progress.
	KindList Kind = "list"
	// KindCapturing waits for a photo. The front is being captured when
	// FrontImage is empty, the back otherwise.
	KindCapturing Kind = "capturing"
	// KindConfirmBackside asks whether the card has a back worth scanning.
	KindConfirmBackside Kind = "confirm_backside"
	// KindExtracting means a remote extraction is in flight. All actions
	// except Cancel are rejected until it completes.
	KindExtracting Kind = "extracting"
	// KindReviewing presents a draft record for editing before save.
	KindReviewing Kind = "reviewing"
	// KindConfirmDelete asks for confirmation before removing a stored record.
	KindConfirmDelete Kind = "confirm_delete"
	// KindNoDataFound is reached when extraction succeeded but returned no
	// usable contact fields.
	KindNoDataFound Kind = "no_data_found"
)

// State is a snapshot of a session. Exactly the fields relevant to the
// current Kind are populated; everything else is zero.
type State struct {
	Kind Kind `json:"kind"`

	// FrontImage and BackImage hold transient base64 capture data while the
	// flow is between the first photo and a committed draft.
	FrontImage string `json:"front_image,omitempty"`
	BackImage  string `json:"back_image,omitempty"`

	// Draft is the record under review. Nil outside reviewing/confirm_delete.
	Draft *models.CardRecord `json:"draft,omitempty"`

	// Existing reports whether Draft corresponds to an already stored record
	// (opened via edit) rather than a fresh extraction.
	Existing bool `json:"existing,omitempty"`

	// Err carries a user-facing banner after a failed extraction.
	Err string `json:"error,omitempty"`
}

func (st State) clone() State {
	out := st
	if st.Draft != nil {
		d := *st.Draft
		out.Draft = &d
	}
	return out
}
