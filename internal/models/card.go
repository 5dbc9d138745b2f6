// Package models defines the domain types for Cardex.
package models

// CardRecord is a digitized business card contact. All text fields use the
// empty string as the canonical "absent" value; image fields hold base64
// encoded JPEG payloads.
type CardRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	FrontImage  string `json:"front_image"`
	BackImage   string `json:"back_image,omitempty"`
	PersonPhoto string `json:"person_photo,omitempty"`
}

// HasContactData reports whether at least one of the identifying fields
// (name, company, email) is populated. Records failing this check are never
// persisted.
func (c *CardRecord) HasContactData() bool {
	return c.Name != "" || c.Company != "" || c.Email != ""
}

// SearchText returns the concatenated free-text content used for indexing.
func (c *CardRecord) SearchText() string {
	return c.Name + " " + c.Company + " " + c.Title + " " + c.Phone + " " +
		c.Email + " " + c.Website + " " + c.Address
}
