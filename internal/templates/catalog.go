package templates

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Template is one entry of the static cover-letter catalog.
type Template struct {
	ID               string `yaml:"id" json:"id"`
	Name             string `yaml:"name" json:"name"`
	Description      string `yaml:"description" json:"description"`
	Category         string `yaml:"category" json:"category"`
	Tone             string `yaml:"tone" json:"tone"`
	AccentColor      string `yaml:"accentColor" json:"accentColor"`
	HeaderLayout     string `yaml:"headerLayout" json:"headerLayout"`
	FontWeight       string `yaml:"fontWeight" json:"fontWeight"`
	AccentBarVariant string `yaml:"accentBarVariant" json:"accentBarVariant"`
}

// DefaultID is used for stored rows whose template is no longer in the catalog.
const DefaultID = "classic"

//go:embed catalog.yaml
var catalogYAML []byte

var (
	loadOnce sync.Once
	catalog  []Template
	byID     map[string]Template
)

func load() {
	loadOnce.Do(func() {
		var doc struct {
			Templates []Template `yaml:"templates"`
		}
		if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
			panic(fmt.Sprintf("templates: invalid catalog: %v", err))
		}
		catalog = doc.Templates
		byID = make(map[string]Template, len(catalog))
		for _, t := range catalog {
			byID[t.ID] = t
		}
		if _, ok := byID[DefaultID]; !ok {
			panic("templates: default template missing from catalog")
		}
	})
}

// All returns the catalog in display order.
func All() []Template {
	load()
	return append([]Template(nil), catalog...)
}

// Lookup returns the template with id, or false when id is unknown.
func Lookup(id string) (Template, bool) {
	load()
	t, ok := byID[id]
	return t, ok
}

// Default returns the fallback template.
func Default() Template {
	load()
	return byID[DefaultID]
}

// LookupOrDefault degrades unknown ids to the default template.
func LookupOrDefault(id string) Template {
	if t, ok := Lookup(id); ok {
		return t
	}
	return Default()
}
