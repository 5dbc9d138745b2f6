// Package extract derives structured contact fields from business card
// images via an external AI vision service.
package extract

import (
	"context"

	"github.com/starford/cardex/internal/models"
)

// Fields holds the seven contact fields an extraction can yield. Every field
// is always a plain string; missing values are the empty string.
type Fields struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Title   string `json:"title"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	Address string `json:"address"`
}

// Empty reports whether the extraction yielded no usable contact data: all
// of name, company, and email are empty.
func (f Fields) Empty() bool {
	return f.Name == "" && f.Company == "" && f.Email == ""
}

// MergeInto fills only the currently-empty fields of rec. Populated fields
// are never overwritten, whether they came from a prior extraction or a
// manual edit.
func (f Fields) MergeInto(rec *models.CardRecord) {
	if rec.Name == "" {
		rec.Name = f.Name
	}
	if rec.Company == "" {
		rec.Company = f.Company
	}
	if rec.Title == "" {
		rec.Title = f.Title
	}
	if rec.Phone == "" {
		rec.Phone = f.Phone
	}
	if rec.Email == "" {
		rec.Email = f.Email
	}
	if rec.Website == "" {
		rec.Website = f.Website
	}
	if rec.Address == "" {
		rec.Address = f.Address
	}
}

// Apply copies all seven fields onto rec unconditionally.
func (f Fields) Apply(rec *models.CardRecord) {
	rec.Name = f.Name
	rec.Company = f.Company
	rec.Title = f.Title
	rec.Phone = f.Phone
	rec.Email = f.Email
	rec.Website = f.Website
	rec.Address = f.Address
}

// Extractor is the capability interface for card field extraction.
// front is required; back may be empty. Both are base64-encoded JPEG
// payloads. Implementations make exactly one attempt per call.
type Extractor interface {
	Extract(ctx context.Context, front, back string) (Fields, error)
}
