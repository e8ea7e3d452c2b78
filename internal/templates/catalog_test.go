package templates

import "testing"

func TestCatalogHasSixTemplates(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("expected 6 templates, got %d", len(all))
	}
	seen := map[string]bool{}
	for _, tpl := range all {
		if tpl.ID == "" || tpl.Tone == "" || tpl.AccentColor == "" {
			t.Fatalf("incomplete template: %+v", tpl)
		}
		if seen[tpl.ID] {
			t.Fatalf("duplicate id %s", tpl.ID)
		}
		seen[tpl.ID] = true
	}
}

func TestLookupUnknownIsAbsent(t *testing.T) {
	if _, ok := Lookup("nonexistent"); ok {
		t.Fatalf("expected unknown id absent")
	}
	if got := LookupOrDefault("nonexistent"); got.ID != DefaultID {
		t.Fatalf("expected default fallback, got %s", got.ID)
	}
	if got, ok := Lookup("modern"); !ok || got.Name != "Modern" {
		t.Fatalf("expected modern template, got %+v", got)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].ID = "mutated"
	if _, ok := Lookup("mutated"); ok {
		t.Fatalf("catalog must not be mutable through All")
	}
}
