package schemas

import "strings"

// Section buckets for line improvements.
const (
	SectionSummary    = "summary"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionOther      = "other"
)

var sectionAliases = map[string]string{
	"summary":                 SectionSummary,
	"profile":                 SectionSummary,
	"objective":               SectionSummary,
	"professional summary":    SectionSummary,
	"experience":              SectionExperience,
	"work experience":         SectionExperience,
	"professional experience": SectionExperience,
	"employment":              SectionExperience,
	"work history":            SectionExperience,
	"education":               SectionEducation,
	"skills":                  SectionSkills,
	"technical skills":        SectionSkills,
}

// NormalizeSection lower-cases and trims s and maps it to a known section, or "other".
func NormalizeSection(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if mapped, ok := sectionAliases[key]; ok {
		return mapped
	}
	return SectionOther
}

func normalizeDocument(shape Shape, doc any) any {
	switch shape {
	case ShapeFeedback:
		obj, ok := doc.(map[string]any)
		if !ok {
			return doc
		}
		if items, ok := obj["lineImprovements"].([]any); ok {
			for _, item := range items {
				normalizeLineImprovement(item)
			}
		}
	case ShapeLineImprovement:
		normalizeLineImprovement(doc)
	case ShapeJobData:
		trimFields(doc, "companyName", "jobTitle", "jobDescription")
	case ShapeOutreachFeedback:
		if s, ok := doc.(string); ok {
			return strings.TrimSpace(s)
		}
	case ShapeOutreachEmail:
		trimFields(doc, "subject", "body")
	case ShapeLatexImprovement:
		if obj, ok := doc.(map[string]any); ok && obj["sectionsModified"] == nil {
			obj["sectionsModified"] = []any{}
		}
	}
	return doc
}

func normalizeLineImprovement(item any) {
	obj, ok := item.(map[string]any)
	if !ok {
		return
	}
	switch v := obj["section"].(type) {
	case string:
		obj["section"] = NormalizeSection(v)
	case nil:
		// missing section stays missing and fails "required"
	default:
		obj["section"] = SectionOther
	}
}

func trimFields(doc any, keys ...string) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return
	}
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			obj[k] = strings.TrimSpace(s)
		}
	}
}
