package mcpserver

// VCardFormatContract describes the vCard documents the export tools emit,
// for LLM consumers that post-process or validate them.
const VCardFormatContract = `# Cardex vCard Export Format

Every export is a vCard 3.0 document with LF line endings. Only populated
fields emit a directive, always in this order:

` + "```" + `
BEGIN:VCARD
VERSION:3.0
N:Family;Given names;;;
FN:Full display name
ORG:Company
TITLE:Job title
TEL;TYPE=WORK,VOICE:Phone number
EMAIL:Email address
URL:Website
ADR;TYPE=WORK:;;Street address;;;;
PHOTO;ENCODING=b;TYPE=JPEG:base64...
END:VCARD
` + "```" + `

## Rules

1. **N** splits on whitespace: the last token is the family name, the rest
   are given names. A single-token name leaves the family slot empty.
2. **ADR** carries the whole address in the street slot; embedded newlines
   are escaped as ` + "`" + `\n` + "`" + `.
3. **PHOTO** appears only when a contact photo was attached during review,
   base64-encoded JPEG.
4. Card images themselves (front/back photos of the card) are never part of
   the export.
5. Download filenames are the contact name with whitespace collapsed to
   underscores plus ` + "`" + `.vcf` + "`" + `; a blank name falls back to ` + "`" + `contact.vcf` + "`" + `.
`
