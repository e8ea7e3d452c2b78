package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"resume-coach/internal/shared/apperr"
)

// Shape names an accepted payload shape.
type Shape string

const (
	ShapeJobData            Shape = "job_data"
	ShapeFeedback           Shape = "feedback"
	ShapeLineImprovement    Shape = "line_improvement"
	ShapeCoverLetterBody    Shape = "cover_letter_body"
	ShapeCoverLetterHeader  Shape = "cover_letter_header"
	ShapeCoverLetterContent Shape = "cover_letter_content"
	ShapeCoverLetterPatch   Shape = "cover_letter_patch"
	ShapeCoverLetterSection Shape = "cover_letter_section"
	ShapeOutreachFeedback   Shape = "outreach_feedback"
	ShapeOutreachEmail      Shape = "outreach_email"
	ShapeLatexImprovement   Shape = "latex_improvement"
)

//go:embed json/*.json
var schemaFiles embed.FS

var (
	compileOnce sync.Once
	compiled    map[Shape]*gojsonschema.Schema
	compileErr  error
)

func schemaFor(shape Shape) (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		entries, err := schemaFiles.ReadDir("json")
		if err != nil {
			compileErr = err
			return
		}
		compiled = make(map[Shape]*gojsonschema.Schema, len(entries))
		for _, e := range entries {
			data, err := schemaFiles.ReadFile("json/" + e.Name())
			if err != nil {
				compileErr = err
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
				return
			}
			compiled[Shape(strings.TrimSuffix(e.Name(), ".json"))] = s
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	s, ok := compiled[shape]
	if !ok {
		return nil, fmt.Errorf("unknown schema shape %q", shape)
	}
	return s, nil
}

// Failure describes why a payload did not match its shape.
type Failure struct {
	Shape   Shape
	Summary string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Shape, f.Summary)
}

// Result is either a narrowed Value or a Failure.
type Result[T any] struct {
	Value   T
	Failure *Failure
}

// OK reports whether validation succeeded.
func (r Result[T]) OK() bool {
	return r.Failure == nil
}

// Err converts a failure into a typed schema error attributed to source. It is nil on success.
func (r Result[T]) Err(source apperr.Source) error {
	if r.Failure == nil {
		return nil
	}
	return apperr.Schema(string(r.Failure.Shape), r.Failure.Summary, source)
}

type normalizer interface {
	normalize()
}

// Validate normalizes raw, checks it against shape and narrows it to T. raw may be JSON
// bytes ([]byte, json.RawMessage) or any JSON-marshalable value, including a parsed document.
// Malformed input is reported as a Failure, never a panic.
func Validate[T any](shape Shape, raw any) Result[T] {
	fail := func(format string, args ...any) Result[T] {
		return Result[T]{Failure: &Failure{Shape: shape, Summary: fmt.Sprintf(format, args...)}}
	}

	schema, err := schemaFor(shape)
	if err != nil {
		return fail("%v", err)
	}

	doc, err := toDocument(raw)
	if err != nil {
		return fail("not valid JSON: %v", err)
	}
	doc = normalizeDocument(shape, doc)

	normalized, err := json.Marshal(doc)
	if err != nil {
		return fail("encode: %v", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(normalized))
	if err != nil {
		return fail("%v", err)
	}
	if !res.Valid() {
		return fail("%s", summarize(res.Errors()))
	}

	var out T
	if err := json.Unmarshal(normalized, &out); err != nil {
		return fail("decode: %v", err)
	}
	if n, ok := any(&out).(normalizer); ok {
		n.normalize()
	}
	return Result[T]{Value: out}
}

func toDocument(raw any) (any, error) {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("empty payload")
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		data = b
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func summarize(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for i, e := range errs {
		if i == 5 {
			parts = append(parts, fmt.Sprintf("and %d more", len(errs)-5))
			break
		}
		field := e.Field()
		if field == "(root)" {
			parts = append(parts, e.Description())
			continue
		}
		parts = append(parts, field+": "+e.Description())
	}
	return strings.Join(parts, "; ")
}
