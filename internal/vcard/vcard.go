// Package vcard serializes card records into vCard 3.0 documents.
//
// The directive set, ordering, and escaping mirror what common contact
// managers expect and form a compatibility contract: do not reorder.
package vcard

import (
	"strings"

	"github.com/starford/cardex/internal/models"
)

// MIMEType is the interchange media type for vCard downloads.
const MIMEType = "text/vcard;charset=utf-8"

// Serialize renders one record as a vCard 3.0 document. Output is
// deterministic: only populated fields emit a directive, in fixed order.
func Serialize(rec models.CardRecord) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")

	if rec.Name != "" {
		// N is structured: Family;Given;Additional;Prefixes;Suffixes.
		// The last whitespace-separated token is the family name; a
		// single-token name yields an empty family name.
		parts := strings.Fields(rec.Name)
		family := ""
		given := strings.Join(parts, " ")
		if len(parts) > 1 {
			family = parts[len(parts)-1]
			given = strings.Join(parts[:len(parts)-1], " ")
		}
		b.WriteString("N:" + family + ";" + given + ";;;\n")
		b.WriteString("FN:" + rec.Name + "\n")
	}

	if rec.Company != "" {
		b.WriteString("ORG:" + rec.Company + "\n")
	}
	if rec.Title != "" {
		b.WriteString("TITLE:" + rec.Title + "\n")
	}
	if rec.Phone != "" {
		b.WriteString("TEL;TYPE=WORK,VOICE:" + rec.Phone + "\n")
	}
	if rec.Email != "" {
		b.WriteString("EMAIL:" + rec.Email + "\n")
	}
	if rec.Website != "" {
		b.WriteString("URL:" + rec.Website + "\n")
	}
	if rec.Address != "" {
		// ADR is structured: PO Box;Extended;Street;Locality;Region;Postal;Country.
		// Only the street slot is populated, newlines escaped.
		street := strings.ReplaceAll(rec.Address, "\n", "\\n")
		b.WriteString("ADR;TYPE=WORK:;;" + street + ";;;;\n")
	}
	if rec.PersonPhoto != "" {
		b.WriteString("PHOTO;ENCODING=b;TYPE=JPEG:" + rec.PersonPhoto + "\n")
	}

	b.WriteString("END:VCARD\n")
	return b.String()
}

// Filename derives the download filename from a contact name: whitespace
// runs collapse to underscores, a blank name falls back to "contact".
func Filename(name string) string {
	base := strings.Join(strings.Fields(name), "_")
	if base == "" {
		base = "contact"
	}
	return base + ".vcf"
}
