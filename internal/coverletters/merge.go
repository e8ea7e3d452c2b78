package coverletters

import "resume-coach/internal/schemas"

// Merge applies a partial update. The header is merged field by field; every other
// field present in the patch replaces the stored value.
func Merge(current schemas.CoverLetterContent, p schemas.CoverLetterPatch) schemas.CoverLetterContent {
	out := current
	out.BodyParagraphs = append([]string(nil), current.BodyParagraphs...)

	if h := p.Header; h != nil {
		set(&out.Header.FullName, h.FullName)
		set(&out.Header.Email, h.Email)
		set(&out.Header.Phone, h.Phone)
		set(&out.Header.Location, h.Location)
		set(&out.Header.LinkedIn, h.LinkedIn)
		set(&out.Header.Website, h.Website)
	}
	set(&out.Date, p.Date)
	set(&out.RecipientName, p.RecipientName)
	set(&out.Opening, p.Opening)
	set(&out.Closing, p.Closing)
	set(&out.Signature, p.Signature)
	if p.BodyParagraphs != nil {
		out.BodyParagraphs = append([]string(nil), p.BodyParagraphs...)
	}
	return out
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
